package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/cli/formatter"
	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/llm"
	"github.com/alexanderramin/dayplanner/internal/service"
	"github.com/spf13/cobra"
)

func newAICmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Turn free text into tasks with a language model",
	}

	cmd.AddCommand(newAITasksCmd(app), newAICorrectCmd(app))
	return cmd
}

func newAITasksCmd(app *App) *cobra.Command {
	var saveTo string
	var correct bool

	cmd := &cobra.Command{
		Use:   "tasks <paragraph>",
		Short: "Extract task titles from a description of your day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			paragraph := joinArgs(args)
			if correct && app.Corrector != nil {
				paragraph = app.Corrector.Correct(ctx, paragraph)
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "Thinking...")
			}
			titles, err := app.Planner.GenerateTasks(ctx, paragraph)
			stop()
			if err != nil {
				return explainAIError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.FormatTitles(titles))
			if saveTo == "" {
				return nil
			}

			date, err := parseDate(saveTo, app.Planner.Today())
			if err != nil {
				return err
			}
			draft := domain.NewDraft(app.Planner.Plan(date)...)
			added := draft.AddTitles(titles)
			if err := app.Planner.SavePlan(ctx, date, draft.Tasks()); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nAdded %s to %s\n", formatter.Pluralize(added, "task"), date.Display())
			return nil
		},
	}

	cmd.Flags().StringVar(&saveTo, "save", "", "Append the tasks to this day")
	cmd.Flags().BoolVar(&correct, "correct", false, "Clean up dictated text before extracting")
	return cmd
}

func newAICorrectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "correct <text>",
		Short: "Fix a speech-to-text transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinArgs(args)
			if app.Corrector != nil {
				text = app.Corrector.Correct(cmd.Context(), text)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

// explainAIError adds a hint for the failures users can fix themselves.
func explainAIError(err error) error {
	switch {
	case errors.Is(err, service.ErrAIUnavailable), errors.Is(err, llm.ErrDisabled):
		return fmt.Errorf("%w (enable it with DAYPLANNER_LLM_ENABLED=true or [ai] enabled = true)", err)
	case errors.Is(err, llm.ErrUnavailable):
		return fmt.Errorf("%w (is `ollama serve` running?)", err)
	case errors.Is(err, llm.ErrMissingAPIKey), errors.Is(err, llm.ErrUnauthorized):
		return fmt.Errorf("%w (set DAYPLANNER_LLM_API_KEY or [ai] api_key)", err)
	default:
		return err
	}
}
