package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// DayOptions tweaks FormatDay.
type DayOptions struct {
	// ShowIDs appends each task's short id, usable as a task reference.
	ShowIDs bool
}

// FormatDay renders one day's tasks as a numbered list with a weighted
// completion bar underneath.
func FormatDay(date, today domain.DateKey, tasks []domain.Task, opts DayOptions) string {
	var b strings.Builder
	b.WriteString(Header(DayTitle(date, today)))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(Dim("  No tasks planned. Add one with `dayplanner plan add`."))
		b.WriteString("\n")
		return b.String()
	}

	for i, t := range tasks {
		b.WriteString(FormatTaskLine(i+1, t))
		if opts.ShowIDs {
			b.WriteString("  " + TruncID(t.ID))
		}
		b.WriteString("\n")
	}

	done, total := domain.CompletionCounts(tasks)
	pct := domain.WeightedCompletion(tasks)
	fmt.Fprintf(&b, "\n  %s  %s\n",
		RenderProgress(float64(pct)/100, 20),
		Dim(fmt.Sprintf("%d/%d done", done, total)))
	return b.String()
}

// FormatTaskLine renders "  1. ✔ Title  ● HIGH".
func FormatTaskLine(n int, t domain.Task) string {
	title := StyleFg.Render(t.Title)
	if t.Done {
		title = StyleDone.Render(t.Title)
	}
	return fmt.Sprintf("  %s %s %s  %s", Dim(fmt.Sprintf("%2d.", n)), Checkbox(t.Done), title, PriorityBadge(t.Priority))
}

// DaySummary is one row of the overview.
type DaySummary struct {
	Date       domain.DateKey
	Tasks      int
	Done       int
	Completion int
}

// SummarizeDays builds overview rows for dates from plans.
func SummarizeDays(plans domain.Plans, dates []domain.DateKey) []DaySummary {
	out := make([]DaySummary, 0, len(dates))
	for _, d := range dates {
		done, total := domain.CompletionCounts(plans[d])
		out = append(out, DaySummary{
			Date:       d,
			Tasks:      total,
			Done:       done,
			Completion: domain.WeightedCompletion(plans[d]),
		})
	}
	return out
}

// FormatOverview renders the focus day followed by nearby planned days and
// the next free day.
func FormatOverview(today domain.DateKey, focus DaySummary, nearby []DaySummary, firstEmpty domain.DateKey) string {
	var b strings.Builder
	b.WriteString(Header("Overview"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s  %s  %s\n",
		Bold(RelativeDay(focus.Date, today)),
		RenderProgress(float64(focus.Completion)/100, 20),
		Dim(fmt.Sprintf("%d/%d done", focus.Done, focus.Tasks)))

	if len(nearby) > 0 {
		b.WriteString("\n")
		rows := make([][]string, 0, len(nearby))
		for _, d := range nearby {
			rows = append(rows, []string{
				RelativeDay(d.Date, today),
				Pluralize(d.Tasks, "task"),
				RenderCompactBar(float64(d.Completion)/100, 10, d.Date < today),
				fmt.Sprintf("%d%%", d.Completion),
			})
		}
		b.WriteString(RenderTable([]string{"DAY", "TASKS", "PROGRESS", "DONE"}, rows))
	}

	fmt.Fprintf(&b, "\n  %s %s\n", Dim("Next free day:"), StyleBlue.Render(RelativeDay(firstEmpty, today)))
	return b.String()
}

// FormatStats renders totals across all plans.
func FormatStats(s domain.PlanStats) string {
	var b strings.Builder
	b.WriteString(Header("Statistics"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-16s %d\n", "Planned days", s.TotalPlans)
	fmt.Fprintf(&b, "  %-16s %d\n", "Tasks", s.TotalTasks)
	fmt.Fprintf(&b, "  %-16s %d\n", "Completed", s.CompletedTasks)
	fmt.Fprintf(&b, "  %-16s %s\n", "Completion", RenderProgress(float64(s.CompletionPct())/100, 20))
	return b.String()
}

// FormatSettings renders the settings as a two-column list.
func FormatSettings(s domain.Settings) string {
	onOff := func(v bool) string {
		if v {
			return StyleGreen.Render("on")
		}
		return Dim("off")
	}
	var b strings.Builder
	b.WriteString(Header("Settings"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-22s %s\n", "Ask before delete all", onOff(s.AskBeforeDeleteAll))
	fmt.Fprintf(&b, "  %-22s %s\n", "Dark mode", onOff(s.DarkMode))
	fmt.Fprintf(&b, "  %-22s %s\n", "Daily reminder", onOff(s.NotificationsEnabled))
	fmt.Fprintf(&b, "  %-22s %s\n", "Reminder time", s.ReminderTime().String())
	return b.String()
}

// FormatProfile renders the greeting name and gender.
func FormatProfile(p domain.Profile) string {
	name := Dim("(not set)")
	if p.Username != nil {
		name = Bold(*p.Username)
	}
	var b strings.Builder
	b.WriteString(Header("Profile"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-8s %s\n", "Name", name)
	fmt.Fprintf(&b, "  %-8s %s\n", "Gender", string(p.Gender))
	return b.String()
}

// Greeting is the line shown above today's plan.
func Greeting(p domain.Profile, hour int) string {
	part := "evening"
	switch {
	case hour < 12:
		part = "morning"
	case hour < 18:
		part = "afternoon"
	}
	return fmt.Sprintf("Good %s, %s!", part, p.DisplayName())
}

// FormatTitles renders extracted task titles as a numbered list.
func FormatTitles(titles []string) string {
	var b strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%2d.", i+1)), t)
	}
	return b.String()
}
