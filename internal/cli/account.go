package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/execudex-backend/internal/services"
)

func NewQuotaCommand(rootOpts *RootOptions) *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Check or inspect a user's weekly profile quota",
	}
	cmd.PersistentFlags().StringVar(&user, "user", "", "user uuid")
	_ = cmd.MarkPersistentFlagRequired("user")

	check := &cobra.Command{
		Use:   "check <profile-key>",
		Short: "Record a profile view against the quota and print the decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			d := a.Services.Quota.CheckAccess(cmd.Context(), userID, args[0])
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			return p.Emit(d, quotaLines(d)...)
		},
	}

	usage := &cobra.Command{
		Use:   "usage",
		Short: "Show profiles used in the current weekly cycle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			u, err := a.Services.Quota.Usage(cmd.Context(), userID)
			if err != nil {
				return err
			}
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			return p.Emit(u, usageLines(u)...)
		},
	}

	cmd.AddCommand(check, usage)
	return cmd
}

func usageLines(u *services.QuotaUsage) []string {
	lines := []string{
		fmt.Sprintf("plan: %s", u.Plan),
		fmt.Sprintf("used: %d/%d", u.ProfilesUsed, u.Limit),
		"resets: " + u.ResetDate.Format("2006-01-02"),
	}
	for _, k := range u.ProfileKeys {
		lines = append(lines, "  "+k)
	}
	return lines
}

func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		user  string
		limit int
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear a user's recently viewed profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(user)
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			if wipe {
				if err := a.Services.History.Clear(cmd.Context(), userID.String()); err != nil {
					return err
				}
				return p.Emit(map[string]bool{"cleared": true}, "cleared")
			}
			items, err := a.Services.History.List(cmd.Context(), userID.String(), limit)
			if err != nil {
				return err
			}
			return p.Emit(items, historyLines(items)...)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user uuid")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum items to list")
	cmd.Flags().BoolVar(&wipe, "clear", false, "remove every entry instead of listing")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func historyLines(items []services.HistoryItem) []string {
	if len(items) == 0 {
		return []string{"no history"}
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s  %s %d  %s (%s)", it.VisitedAt.Format("2006-01-02 15:04"), it.Kind, it.ID, it.Name, it.SubName))
	}
	return lines
}

// NewTokenCommand issues bearer tokens for local testing of the HTTP API.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API bearer tokens",
	}
	issue := &cobra.Command{
		Use:   "issue <user-uuid>",
		Short: "Sign an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseUser(args[0])
			if err != nil {
				return err
			}
			cfg, err := rootOpts.config()
			if err != nil {
				return err
			}
			sessions := services.NewSessionService(rootOpts.logger(), cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL.Duration)
			token, err := sessions.IssueToken(userID)
			if err != nil {
				return err
			}
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			return p.Emit(map[string]any{
				"access_token": token,
				"expires_in":   int64(sessions.GetAccessTTL().Seconds()),
			}, token)
		},
	}
	cmd.AddCommand(issue)
	return cmd
}
