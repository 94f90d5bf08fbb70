package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/dayplanner/internal/intelligence"
	"github.com/alexanderramin/dayplanner/internal/notify"
	"github.com/alexanderramin/dayplanner/internal/service"
	"github.com/alexanderramin/dayplanner/internal/share"
	"github.com/spf13/cobra"
)

// App holds the planner and the collaborators CLI commands use.
type App struct {
	Planner *service.Planner

	// Connect builds Planner on first use. useMemory comes from --memory.
	// Tests set Planner directly and leave Connect nil.
	Connect func(ctx context.Context, useMemory bool) (*service.Planner, error)

	Corrector intelligence.TranscriptCorrector
	Clipboard share.Sharer
	// Telegram is nil unless a bot token and chat are configured.
	Telegram share.Sharer

	// Reminders drives `remind run`; nil disables the command.
	Reminders    *notify.CronScheduler
	SyncInterval time.Duration

	IsInteractive func() bool
	Now           func() time.Time
}

var errNoPlanner = errors.New("planner is not configured")

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// ensurePlanner connects if needed and loads the planner once.
func (a *App) ensurePlanner(ctx context.Context, useMemory bool) error {
	if a.Planner == nil {
		if a.Connect == nil {
			return errNoPlanner
		}
		p, err := a.Connect(ctx, useMemory)
		if err != nil {
			return err
		}
		a.Planner = p
	}
	if a.Planner.State() == service.StateReady {
		return nil
	}
	if err := a.Planner.Load(ctx); err != nil {
		return fmt.Errorf("loading planner: %w", err)
	}
	return nil
}

// NewRootCmd creates the top-level "dayplanner" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var useMemory bool

	root := &cobra.Command{
		Use:           "dayplanner",
		Short:         "Plan your day, one list at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return app.ensurePlanner(cmd.Context(), useMemory)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runDayView(cmd, app, app.Planner.Today())
			}
			return showDay(cmd, app, app.Planner.Today(), false, false)
		},
	}
	root.PersistentFlags().BoolVar(&useMemory, "memory", false, "Use a throwaway in-memory store")

	root.AddCommand(
		newPlanCmd(app),
		newTodayCmd(app),
		newOverviewCmd(app),
		newStatsCmd(app),
		newSettingsCmd(app),
		newProfileCmd(app),
		newAICmd(app),
		newRemindCmd(app),
		newTUICmd(app),
		newSetupCmd(app),
	)

	return root
}
