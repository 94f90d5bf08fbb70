package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/cli/formatter"
	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

type dayKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Priority key.Binding
	Remove   key.Binding
	Add      key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newDayKeyMap() dayKeyMap {
	return dayKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle done")),
		Priority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		PrevDay:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		NextDay:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k dayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.PrevDay, k.NextDay, k.Help, k.Quit}
}

func (k dayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Priority},
		{k.Add, k.Remove, k.Refresh},
		{k.PrevDay, k.NextDay, k.Today},
		{k.Help, k.Quit},
	}
}

// plannerActionMsg reports the result of a planner mutation.
type plannerActionMsg struct {
	status string
	err    error
}

// dayView is the interactive single-day editor.
type dayView struct {
	planner *service.Planner
	date    domain.DateKey
	today   domain.DateKey
	tasks   []domain.Task
	cursor  int

	adding bool
	input  textinput.Model

	keys   dayKeyMap
	help   help.Model
	status string
	err    error
	width  int
}

func newDayView(p *service.Planner, date domain.DateKey) *dayView {
	in := textinput.New()
	in.Placeholder = "What needs doing?"
	in.CharLimit = 200
	in.Prompt = "+ "

	v := &dayView{
		planner: p,
		date:    date,
		today:   p.Today(),
		input:   in,
		keys:    newDayKeyMap(),
		help:    help.New(),
	}
	v.sync()
	return v
}

// sync re-reads the current day from the planner and clamps the cursor.
func (v *dayView) sync() {
	v.tasks = v.planner.Plan(v.date)
	if v.cursor >= len(v.tasks) {
		v.cursor = len(v.tasks) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *dayView) selected() (domain.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.tasks) {
		return domain.Task{}, false
	}
	return v.tasks[v.cursor], true
}

func (v *dayView) Init() tea.Cmd {
	return nil
}

func (v *dayView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.help.Width = msg.Width
		return v, nil

	case plannerActionMsg:
		v.err = msg.err
		if msg.err == nil {
			v.status = msg.status
		}
		v.sync()
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.updateAdding(msg)
		}
		return v.updateBrowsing(msg)
	}
	return v, nil
}

func (v *dayView) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
	case key.Matches(msg, v.keys.PrevDay):
		v.moveDay(-1)
	case key.Matches(msg, v.keys.NextDay):
		v.moveDay(1)
	case key.Matches(msg, v.keys.Today):
		v.moveDay(0)
	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
	case key.Matches(msg, v.keys.Refresh):
		return v, v.run("Refreshed", func(ctx context.Context) error {
			return v.planner.RefreshPlans(ctx)
		})
	case key.Matches(msg, v.keys.Add):
		v.adding = true
		v.input.Reset()
		return v, v.input.Focus()
	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok {
			return v, v.run("", func(ctx context.Context) error {
				return v.planner.ToggleTask(ctx, v.date, t.ID)
			})
		}
	case key.Matches(msg, v.keys.Priority):
		if t, ok := v.selected(); ok {
			return v, v.run("", func(ctx context.Context) error {
				return v.planner.CyclePriority(ctx, v.date, t.ID)
			})
		}
	case key.Matches(msg, v.keys.Remove):
		if t, ok := v.selected(); ok {
			return v, v.run(fmt.Sprintf("Removed %q", t.Title), func(ctx context.Context) error {
				return v.planner.RemoveTask(ctx, v.date, t.ID)
			})
		}
	}
	return v, nil
}

func (v *dayView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		v.adding = false
		v.input.Blur()
		return v, nil
	case tea.KeyEnter:
		title := strings.TrimSpace(v.input.Value())
		v.adding = false
		v.input.Blur()
		if title == "" {
			return v, nil
		}
		date := v.date
		return v, v.run(fmt.Sprintf("Added %q", title), func(ctx context.Context) error {
			draft := domain.NewDraft(v.planner.Plan(date)...)
			if _, err := draft.Add(title, domain.PriorityUnset); err != nil {
				return err
			}
			return v.planner.SavePlan(ctx, date, draft.Tasks())
		})
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// moveDay shifts the view by delta days; zero jumps back to today.
func (v *dayView) moveDay(delta int) {
	if delta == 0 {
		v.date = v.today
	} else {
		v.date = v.date.AddDays(delta)
	}
	v.cursor = 0
	v.err = nil
	v.sync()
}

func (v *dayView) run(status string, action func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return plannerActionMsg{status: status, err: action(context.Background())}
	}
}

func (v *dayView) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header(formatter.DayTitle(v.date, v.today)))
	b.WriteString("\n\n")

	if len(v.tasks) == 0 {
		b.WriteString(formatter.Dim("  Nothing planned. Press a to add a task."))
		b.WriteString("\n")
	}
	for i, t := range v.tasks {
		marker := "  "
		if i == v.cursor {
			marker = formatter.StyleHeader.Render("❯ ")
		}
		b.WriteString(marker)
		b.WriteString(strings.TrimPrefix(formatter.FormatTaskLine(i+1, t), "  "))
		b.WriteString("\n")
	}

	if len(v.tasks) > 0 {
		done, total := domain.CompletionCounts(v.tasks)
		fmt.Fprintf(&b, "\n  %s  %s\n",
			formatter.RenderProgress(float64(domain.WeightedCompletion(v.tasks))/100, 20),
			formatter.Dim(fmt.Sprintf("%d/%d done", done, total)))
	}

	if v.adding {
		b.WriteString("\n  ")
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}

	switch {
	case v.err != nil:
		b.WriteString("\n  ")
		b.WriteString(formatter.StyleRed.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.status != "":
		b.WriteString("\n  ")
		b.WriteString(formatter.StyleGreen.Render(v.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.help.View(v.keys))
	b.WriteString("\n")
	return b.String()
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [date]",
		Short: "Edit a day interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateArg(args, 0, app.Planner.Today())
			if err != nil {
				return err
			}
			return runDayView(cmd, app, date)
		},
	}
}

func runDayView(cmd *cobra.Command, app *App, date domain.DateKey) error {
	prog := tea.NewProgram(newDayView(app.Planner, date),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := prog.Run()
	return err
}
