// Package cli implements profilectl, an operator tool that drives the readiness
// pipeline and navigation gate against a configured backend.
package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/execudex-backend/internal/app"
	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type RootOptions struct {
	Format  string // "json" | "text"
	TraceID string

	// newApp is swapped in tests.
	newApp func(*config.Config) (*app.App, error)
	cfg    *config.Config
	app    *app.App
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{newApp: app.NewWithConfig})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "profilectl",
		Short:         "Inspect and drive profile readiness",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.app != nil {
				opts.app.Close()
				opts.app = nil
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.TraceID, "trace-id", "", "trace id forwarded to remote functions")

	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewEnsureCommand(opts))
	cmd.AddCommand(NewLockCommand(opts))
	cmd.AddCommand(NewMetricsCommand(opts))
	cmd.AddCommand(NewQuotaCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

// App builds the full backend on first use.
func (o *RootOptions) App() (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	a, err := o.newApp(cfg)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

// logger is quiet for commands that never build the full app.
func (o *RootOptions) logger() *logger.Logger {
	if o.app != nil {
		return o.app.Log
	}
	return logger.Nop()
}

func parseUser(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}
