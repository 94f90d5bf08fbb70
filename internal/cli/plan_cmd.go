package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/cli/formatter"
	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/service"
	"github.com/alexanderramin/dayplanner/internal/share"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show and edit daily plans",
	}

	cmd.AddCommand(
		newPlanShowCmd(app),
		newPlanSaveCmd(app),
		newPlanAddCmd(app),
		newPlanToggleCmd(app),
		newPlanPriorityCmd(app),
		newPlanRemoveCmd(app),
		newPlanDeleteCmd(app),
		newPlanCopyCmd(app),
		newPlanShareCmd(app),
		newPlanClearCmd(app),
	)

	return cmd
}

func newPlanShowCmd(app *App) *cobra.Command {
	var markdown, ids bool

	cmd := &cobra.Command{
		Use:   "show [date]",
		Short: "Show the tasks for a day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, app.Planner.Today())
			if err != nil {
				return err
			}
			return showDay(cmd, app, date, markdown, ids)
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the day as markdown")
	cmd.Flags().BoolVar(&ids, "ids", false, "Show short task ids")
	return cmd
}

func showDay(cmd *cobra.Command, app *App, date domain.DateKey, markdown, ids bool) error {
	tasks := app.Planner.Plan(date)
	out := cmd.OutOrStdout()
	if markdown {
		md := share.FormatMarkdown(date, tasks)
		fmt.Fprintln(out, formatter.RenderMarkdown(md, app.Planner.Settings().DarkMode))
		return nil
	}
	fmt.Fprint(out, formatter.FormatDay(date, app.Planner.Today(), tasks, formatter.DayOptions{ShowIDs: ids}))
	return nil
}

func newPlanSaveCmd(app *App) *cobra.Command {
	var priorityStr string

	cmd := &cobra.Command{
		Use:   "save <date> <title>...",
		Short: "Replace a day's tasks with the given titles",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[0], app.Planner.Today())
			if err != nil {
				return err
			}
			priority, err := domain.ParsePriority(priorityStr)
			if err != nil {
				return err
			}

			draft := domain.NewDraft()
			for _, title := range args[1:] {
				if _, err := draft.Add(title, priority); err != nil {
					return fmt.Errorf("task %q: %w", title, err)
				}
			}
			if err := app.Planner.SavePlan(cmd.Context(), date, draft.Tasks()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s for %s\n", formatter.Pluralize(draft.Len(), "task"), date.Display())
			return nil
		},
	}

	cmd.Flags().StringVarP(&priorityStr, "priority", "p", "", "Priority for every task (low, medium, high)")
	return cmd
}

func newPlanAddCmd(app *App) *cobra.Command {
	var dateStr, priorityStr string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Append a task to a day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateStr, app.Planner.Today())
			if err != nil {
				return err
			}
			priority, err := domain.ParsePriority(priorityStr)
			if err != nil {
				return err
			}

			draft := domain.NewDraft(app.Planner.Plan(date)...)
			task, err := draft.Add(strings.Join(args, " "), priority)
			if err != nil {
				return err
			}
			if err := app.Planner.SavePlan(cmd.Context(), date, draft.Tasks()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s (#%d)\n", task.Title, date.Display(), draft.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "Day to add to (default today)")
	cmd.Flags().StringVarP(&priorityStr, "priority", "p", "", "Priority (low, medium, high)")
	return cmd
}

// taskCmd builds a command that acts on one task of a day.
func taskCmd(app *App, use, short string, run func(ctx context.Context, cmd *cobra.Command, date domain.DateKey, task domain.Task) error) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(dateStr, app.Planner.Today())
			if err != nil {
				return err
			}
			task, err := resolveTask(app.Planner.Plan(date), args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), cmd, date, task)
		},
	}

	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "Day of the task (default today)")
	return cmd
}

func newPlanToggleCmd(app *App) *cobra.Command {
	return taskCmd(app, "toggle <task>", "Mark a task done or not done",
		func(ctx context.Context, cmd *cobra.Command, date domain.DateKey, task domain.Task) error {
			if err := app.Planner.ToggleTask(ctx, date, task.ID); err != nil {
				return err
			}
			state := "done"
			if task.Done {
				state = "not done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %q %s (%d%% complete)\n", task.Title, state, app.Planner.Completion(date))
			return nil
		})
}

func newPlanPriorityCmd(app *App) *cobra.Command {
	var setStr string

	cmd := taskCmd(app, "priority <task>", "Cycle a task's priority, or set it with --set",
		func(ctx context.Context, cmd *cobra.Command, date domain.DateKey, task domain.Task) error {
			var err error
			if setStr != "" {
				var p domain.Priority
				if p, err = domain.ParsePriority(setStr); err != nil {
					return err
				}
				err = app.Planner.UpdateTask(ctx, date, task.ID, domain.PriorityPatch(p))
			} else {
				err = app.Planner.CyclePriority(ctx, date, task.ID)
			}
			if err != nil {
				return err
			}
			updated, _ := resolveTask(app.Planner.Plan(date), task.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s\n", task.Title, updated.Priority.Label())
			return nil
		})

	cmd.Flags().StringVar(&setStr, "set", "", "Priority to set instead of cycling")
	return cmd
}

func newPlanRemoveCmd(app *App) *cobra.Command {
	return taskCmd(app, "remove <task>", "Remove a task from a day",
		func(ctx context.Context, cmd *cobra.Command, date domain.DateKey, task domain.Task) error {
			if err := app.Planner.RemoveTask(ctx, date, task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", task.Title)
			return nil
		})
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [date]",
		Short: "Delete every task of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, app.Planner.Today())
			if err != nil {
				return err
			}
			n := len(app.Planner.Plan(date))
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing planned for %s\n", date.Display())
				return nil
			}
			prompt := fmt.Sprintf("Delete %s planned for %s?", formatter.Pluralize(n, "task"), date.Display())
			ok, err := confirm(app, prompt, yes)
			if err != nil || !ok {
				return err
			}
			if err := app.Planner.DeletePlan(cmd.Context(), date); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted the plan for %s\n", date.Display())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newPlanCopyCmd(app *App) *cobra.Command {
	var refs []string

	cmd := &cobra.Command{
		Use:   "copy <from> <to>",
		Short: "Copy tasks from one day to another as pending",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := app.Planner.Today()
			from, err := parseDate(args[0], today)
			if err != nil {
				return err
			}
			to, err := parseDate(args[1], today)
			if err != nil {
				return err
			}
			ids, err := resolveTasks(app.Planner.Plan(from), refs)
			if err != nil {
				return err
			}
			n, err := app.Planner.CopyPlan(cmd.Context(), from, to, ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s from %s to %s\n", formatter.Pluralize(n, "task"), from.Display(), to.Display())
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&refs, "task", "t", nil, "Tasks to copy by number or id (default all)")
	return cmd
}

func newPlanShareCmd(app *App) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "share [date]",
		Short: "Share a day's plan as text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, app.Planner.Today())
			if err != nil {
				return err
			}
			sharer, err := app.sharer(cmd, target)
			if err != nil {
				return err
			}
			if err := sharer.Share(cmd.Context(), app.Planner.ShareText(date)); err != nil {
				return err
			}
			if target != "stdout" {
				fmt.Fprintf(cmd.OutOrStdout(), "Shared the plan for %s via %s\n", date.Display(), target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "stdout", "Where to share: stdout, clipboard or telegram")
	return cmd
}

func (a *App) sharer(cmd *cobra.Command, target string) (share.Sharer, error) {
	switch target {
	case "stdout":
		return share.WriterSharer{W: cmd.OutOrStdout()}, nil
	case "clipboard":
		if a.Clipboard == nil {
			return nil, fmt.Errorf("clipboard: %w", share.ErrUnsupported)
		}
		return a.Clipboard, nil
	case "telegram":
		if a.Telegram == nil {
			return nil, fmt.Errorf("telegram is not configured (set DAYPLANNER_TELEGRAM_TOKEN and DAYPLANNER_TELEGRAM_CHAT)")
		}
		return a.Telegram, nil
	default:
		return nil, fmt.Errorf("unknown share target %q (want stdout, clipboard or telegram)", target)
	}
}

func newPlanClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all plans, profile and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.Planner.DeleteAll(cmd.Context(), yes)
			if errors.Is(err, service.ErrConfirmationRequired) {
				if !app.interactive() {
					return fmt.Errorf("%w: re-run with --yes", err)
				}
				ok, cerr := askConfirm("Delete all plans, profile and settings?")
				if cerr != nil || !ok {
					return cerr
				}
				err = app.Planner.DeleteAll(cmd.Context(), true)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm asks before a destructive change when the user wants to be
// asked. Non-interactive sessions need --yes.
func confirm(app *App, prompt string, yes bool) (bool, error) {
	if yes || !app.Planner.Settings().AskBeforeDeleteAll {
		return true, nil
	}
	if !app.interactive() {
		return false, fmt.Errorf("%w: re-run with --yes", service.ErrConfirmationRequired)
	}
	return askConfirm(prompt)
}

func askConfirm(prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	).WithTheme(dayplannerHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
