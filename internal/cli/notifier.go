package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/notify"
	"github.com/alexanderramin/dayplanner/internal/service"
)

// ReminderMessage is the daily reminder text for today's plan.
func ReminderMessage(p *service.Planner) string {
	today := p.Today()
	done, total := domain.CompletionCounts(p.Plan(today))
	name := p.Profile().DisplayName()
	switch {
	case total == 0:
		return fmt.Sprintf("Good morning, %s! Nothing is planned for today yet.", name)
	case done == total:
		return fmt.Sprintf("Nice work, %s! All %d tasks for today are done.", name, total)
	default:
		return fmt.Sprintf("Good morning, %s! You have %d of %d tasks left today.", name, total-done, total)
	}
}

// NewReminderNotifier prints the reminder to w. Plans are refreshed first
// so a long-running process sees edits made by other commands.
// planner is resolved on each call because it is connected lazily.
func NewReminderNotifier(planner func() *service.Planner, w io.Writer, log *slog.Logger) notify.Notifier {
	return func(ctx context.Context) error {
		p := planner()
		if p == nil {
			return errNoPlanner
		}
		if err := p.RefreshPlans(ctx); err != nil {
			log.WarnContext(ctx, "refreshing plans for reminder failed", "error", err)
		}
		msg := ReminderMessage(p)
		log.InfoContext(ctx, "daily reminder", "message", msg)
		_, err := fmt.Fprintln(w, msg)
		return err
	}
}
