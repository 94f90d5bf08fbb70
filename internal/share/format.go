// Package share formats a day's plan as text and hands it to a share target.
package share

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// FormatOptions tweaks the plain-text block.
type FormatOptions struct {
	// Owner is shown in the header when set.
	Owner string
	// HidePriority drops the per-task priority marker.
	HidePriority bool
}

// FormatPlan renders a numbered checklist followed by a completion footer.
func FormatPlan(date domain.DateKey, tasks []domain.Task, opts FormatOptions) string {
	var b strings.Builder
	if opts.Owner != "" {
		fmt.Fprintf(&b, "%s's plan for %s\n", opts.Owner, date.Display())
	} else {
		fmt.Fprintf(&b, "Plan for %s\n", date.Display())
	}
	if len(tasks) == 0 {
		b.WriteString("No tasks planned.\n")
		return b.String()
	}
	b.WriteString("\n")
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. %s %s", i+1, checkbox(t.Done), t.Title)
		if !opts.HidePriority {
			fmt.Fprintf(&b, " (%s)", t.Priority.Label())
		}
		b.WriteString("\n")
	}
	done, total := domain.CompletionCounts(tasks)
	fmt.Fprintf(&b, "\n%d/%d done, %d%% weighted\n", done, total, domain.WeightedCompletion(tasks))
	return b.String()
}

// FormatMarkdown renders the plan as a markdown task list.
func FormatMarkdown(date domain.DateKey, tasks []domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", date.Display())
	if len(tasks) == 0 {
		b.WriteString("_No tasks planned._\n")
		return b.String()
	}
	for _, t := range tasks {
		fmt.Fprintf(&b, "- %s %s", checkbox(t.Done), escapeMarkdown(t.Title))
		if t.Priority == domain.PriorityHigh {
			b.WriteString(" **high**")
		} else if t.Priority == domain.PriorityMedium {
			b.WriteString(" *medium*")
		}
		b.WriteString("\n")
	}
	done, total := domain.CompletionCounts(tasks)
	fmt.Fprintf(&b, "\n> %d of %d done, **%d%%** weighted completion\n", done, total, domain.WeightedCompletion(tasks))
	return b.String()
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
