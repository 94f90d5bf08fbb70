package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newRemindCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Daily reminder",
	}

	cmd.AddCommand(newRemindRunCmd(app), newRemindNextCmd(app))
	return cmd
}

func newRemindRunCmd(app *App) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reminder scheduler in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Reminders == nil {
				return fmt.Errorf("reminders are not available in this build")
			}
			if once {
				return app.Reminders.RunNow(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runReminders(ctx, cmd, app)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Send the reminder now and exit")
	return cmd
}

// runReminders starts the cron loop and re-reads settings periodically
// until ctx is done.
func runReminders(ctx context.Context, cmd *cobra.Command, app *App) error {
	interval := app.SyncInterval
	if interval < time.Second {
		interval = time.Minute
	}
	err := app.Reminders.Every(interval, func() {
		if err := app.Planner.SyncReminder(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "syncing settings: %v\n", err)
		}
	})
	if err != nil {
		return err
	}

	app.Reminders.Start()
	defer app.Reminders.Stop()

	if at, ok := app.Reminders.Scheduled(); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Daily reminder at %s (Ctrl+C to stop)\n", at)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Reminders are off; waiting for settings to change (Ctrl+C to stop)")
	}

	<-ctx.Done()
	return nil
}

func newRemindNextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show when the daily reminder fires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Planner.Settings()
			if !s.NotificationsEnabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Daily reminder is off")
				return nil
			}
			out := cmd.OutOrStdout()
			if app.Reminders != nil {
				if next, ok := app.Reminders.Next(app.now()); ok {
					fmt.Fprintf(out, "Daily reminder at %s, next on %s\n", s.ReminderTime(), next.Format("Mon Jan 2 15:04"))
					return nil
				}
			}
			fmt.Fprintf(out, "Daily reminder at %s\n", s.ReminderTime())
			return nil
		},
	}
}
