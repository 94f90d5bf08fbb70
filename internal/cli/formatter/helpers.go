package formatter

import (
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

// RelativeDay names date relative to today: "Today", "Tomorrow",
// "Yesterday", or the display date otherwise.
func RelativeDay(date, today domain.DateKey) string {
	switch date {
	case today:
		return "Today"
	case today.AddDays(1):
		return "Tomorrow"
	case today.AddDays(-1):
		return "Yesterday"
	default:
		return date.Display()
	}
}

// DayTitle is the heading for one day, e.g. "Today · Jun 1, 2025".
func DayTitle(date, today domain.DateKey) string {
	rel := RelativeDay(date, today)
	if rel == date.Display() {
		return date.Weekday() + " · " + rel
	}
	return rel + " · " + date.Display()
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// Pluralize returns "1 task" / "3 tasks".
func Pluralize(n int, singular string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
