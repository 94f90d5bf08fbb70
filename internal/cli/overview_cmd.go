package cli

import (
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/cli/formatter"
	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/spf13/cobra"
)

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Greet and show today's plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Bold(formatter.Greeting(app.Planner.Profile(), app.now().Hour())))
			fmt.Fprintln(cmd.OutOrStdout())
			return showDay(cmd, app, app.Planner.Today(), false, false)
		},
	}
}

func newOverviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overview [date]",
		Short: "Show a day with its nearest planned days",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.Planner.Today()
			center, err := dateArg(args, 0, today)
			if err != nil {
				return err
			}
			plans := app.Planner.Plans()
			focus := formatter.SummarizeDays(plans, []domain.DateKey{center})[0]
			nearby := formatter.SummarizeDays(plans, app.Planner.Surrounding(center))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOverview(today, focus, nearby, app.Planner.FirstEmptyDate()))
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals across all days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(app.Planner.Stats()))
			return nil
		},
	}
}
