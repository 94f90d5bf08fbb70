package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/alexanderramin/dayplanner/internal/repository"
)

// SetUsername trims and stores the display name.
func (p *Planner) SetUsername(ctx context.Context, name string) (err error) {
	done := p.observe(ctx, "set-username", nil)
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: username must not be blank", repository.ErrValidation)
	}
	if err = p.repo.SaveUserName(ctx, name); err != nil {
		return err
	}
	p.mu.Lock()
	p.username = &name
	p.mu.Unlock()
	return nil
}

func (p *Planner) SetGender(ctx context.Context, g domain.Gender) (err error) {
	done := p.observe(ctx, "set-gender", map[string]any{"gender": string(g)})
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	if err = p.repo.SaveGender(ctx, g); err != nil {
		return err
	}
	p.mu.Lock()
	p.gender = g
	p.mu.Unlock()
	return nil
}

// UpdateSettings merges patch into the current settings and persists the
// whole result. Changing a notification field reschedules the reminder.
func (p *Planner) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (settings domain.Settings, err error) {
	done := p.observe(ctx, "update-settings", nil)
	defer done(&err)

	if err = p.ready(); err != nil {
		return domain.Settings{}, err
	}
	if err = patch.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %w", repository.ErrValidation, err)
	}
	merged := patch.Apply(p.Settings())
	if err = p.repo.SaveSettings(ctx, merged); err != nil {
		return domain.Settings{}, err
	}
	p.mu.Lock()
	p.settings = merged
	p.mu.Unlock()

	if patch.TouchesReminder() {
		p.applyReminder(ctx, merged)
	}
	return merged, nil
}

// SaveProfile stores name, gender and settings in one write, as the
// onboarding form does.
func (p *Planner) SaveProfile(ctx context.Context, prof domain.Profile, settings domain.Settings) (err error) {
	done := p.observe(ctx, "save-profile", nil)
	defer done(&err)

	if err = p.ready(); err != nil {
		return err
	}
	if prof.Username != nil {
		name := strings.TrimSpace(*prof.Username)
		if name == "" {
			return fmt.Errorf("%w: username must not be blank", repository.ErrValidation)
		}
		prof.Username = &name
	}
	if err = p.repo.SaveProfile(ctx, prof, settings); err != nil {
		return err
	}
	p.mu.Lock()
	if prof.Username != nil {
		p.username = prof.Username
	}
	p.gender = prof.Gender
	p.settings = settings
	p.mu.Unlock()

	p.applyReminder(ctx, settings)
	return nil
}

// SyncReminder re-reads settings from storage and reapplies the reminder.
// Long-running processes call it to pick up changes made elsewhere.
func (p *Planner) SyncReminder(ctx context.Context) (err error) {
	if err = p.ready(); err != nil {
		return err
	}
	settings, err := p.repo.GetSettings(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	changed := settings != p.settings
	p.settings = settings
	p.mu.Unlock()

	if changed {
		p.applyReminder(ctx, settings)
	}
	return nil
}

// applyReminder schedules or cancels the daily reminder. Failures are
// logged; the settings themselves are already saved.
func (p *Planner) applyReminder(ctx context.Context, s domain.Settings) {
	var err error
	if s.NotificationsEnabled {
		err = p.reminders.ScheduleDaily(s.ReminderTime())
	} else {
		err = p.reminders.CancelAll()
	}
	if err != nil {
		p.log.WarnContext(ctx, "updating reminder failed", "error", err)
	}
}
