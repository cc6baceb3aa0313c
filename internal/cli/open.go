package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/execudex-backend/internal/domain/profiles"
	"github.com/yungbote/execudex-backend/internal/navigation"
	"github.com/yungbote/execudex-backend/internal/platform/ctxutil"
)

type openOptions struct {
	Title    string
	Subtitle string
	User     string
}

// NewOpenCommand runs one navigation through the gate exactly as a tap would.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &openOptions{}
	cmd := &cobra.Command{
		Use:   "open <politician|legislation> <id>",
		Short: "Navigate to a profile through quota, readiness and prefetch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd, rootOpts, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "display name recorded in history")
	cmd.Flags().StringVar(&opts.Subtitle, "subtitle", "", "display subtitle recorded in history")
	cmd.Flags().StringVar(&opts.User, "user", "", "user uuid; anonymous when empty")
	return cmd
}

func runOpen(cmd *cobra.Command, rootOpts *RootOptions, opts *openOptions, rawKind, rawID string) error {
	kind, err := profiles.ParseKind(rawKind)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.User != "" {
		userID, err := parseUser(opts.User)
		if err != nil {
			return err
		}
		ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID})
	}

	a, err := rootOpts.App()
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	deps := a.Services.NavigationDeps(navigation.NavigatorFunc(func(_ context.Context, dest navigation.Destination) error {
		_, err := fmt.Fprintf(stderr, "-> %s?index=%s\n", dest.Pathname, dest.RawID)
		return err
	}))
	// Background work finishes before the process exits.
	deps.Dispatcher = navigation.InlineDispatcher{Log: a.Log}
	deps.Alerter = navigation.AlerterFunc(func(p navigation.Prompt) {
		fmt.Fprintln(stderr, promptLine(p))
	})
	deps.ErrorDisplay = 0
	session, err := navigation.NewSession(deps)
	if err != nil {
		return err
	}
	session.SetErrorCallback(func(msg string) {
		if msg != "" {
			fmt.Fprintln(stderr, "error: "+msg)
		}
	})

	req := navigation.Request{
		RawID:    rawID,
		Title:    opts.Title,
		Subtitle: opts.Subtitle,
		TraceID:  rootOpts.TraceID,
	}
	var outcome navigation.Outcome
	if kind.IsPolitician() {
		outcome = session.NavigateToPoliticianProfile(ctx, req)
	} else {
		outcome = session.NavigateToLegislationProfile(ctx, req)
	}

	p := Printer{Format: rootOpts.Format, W: cmd.OutOrStdout()}
	return p.Emit(outcome, outcomeLines(outcome)...)
}
