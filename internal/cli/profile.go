package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/services"
)

func parseProfile(rawKind, rawID string) (profiles.Kind, int64, error) {
	kind, err := profiles.ParseKind(rawKind)
	if err != nil {
		return "", 0, err
	}
	id, err := profiles.ParseID(rawID)
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func NewEnsureCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure <politician|legislation> <id>",
		Short: "Run the readiness pipeline for one profile without touching quota",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseProfile(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			orch := a.Services.Legislation
			if kind.IsPolitician() {
				orch = a.Services.Politicians
			}
			report, err := orch.Ensure(cmd.Context(), id, rootOpts.TraceID)
			if err != nil {
				return fmt.Errorf("ensure %s %d: %w", kind, id, err)
			}
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			return p.Emit(report, reportLines(report)...)
		},
	}
}

type lockView struct {
	services.LockStatus
	ShouldHideTabBar bool `json:"should_hide_tab_bar"`
}

func NewLockCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <politician|legislation> <id>",
		Short: "Evaluate whether a profile is locked",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseProfile(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			st := a.Services.Locks.CheckLockStatus(cmd.Context(), id, kind)
			view := lockView{LockStatus: st, ShouldHideTabBar: a.Services.Locks.TabBarHidden(cmd.Context(), id, kind, st)}

			lines := []string{fmt.Sprintf("locked: %t (%s)", st.IsLocked, st.LockReason)}
			if st.LockedPage != nil {
				lines = append(lines, "page: "+*st.LockedPage)
			}
			lines = append(lines, fmt.Sprintf("active cards: %d", st.ActiveCards))
			lines = append(lines, fmt.Sprintf("hide tab bar: %t", view.ShouldHideTabBar))
			if st.Error != "" {
				lines = append(lines, "error: "+st.Error)
			}
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			return p.Emit(view, lines...)
		},
	}
}

func NewMetricsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <politician-id>",
		Short: "Manually regenerate polling metrics for a politician",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := profiles.ParseID(args[0])
			if err != nil {
				return err
			}
			a, err := rootOpts.App()
			if err != nil {
				return err
			}
			res := a.Services.Metrics.GenerateMetrics(cmd.Context(), id, rootOpts.TraceID)
			p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
			if err := p.Emit(res, fmt.Sprintf("success: %t", res.Success), "message: "+res.Message); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("metrics: %s", res.Message)
			}
			return nil
		},
	}
}
