package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/domain"
)

func (r *KVPlanRepo) GetUserName(ctx context.Context) (string, bool, error) {
	name, ok, err := r.store.Get(ctx, UserNameKey)
	if err != nil {
		return "", false, fmt.Errorf("reading user name: %w", err)
	}
	return name, ok, nil
}

func (r *KVPlanRepo) SaveUserName(ctx context.Context, name string) error {
	if err := r.store.Set(ctx, UserNameKey, name); err != nil {
		return fmt.Errorf("writing user name: %w", err)
	}
	return nil
}

// GetGender treats anything other than "female", including absence, as male.
func (r *KVPlanRepo) GetGender(ctx context.Context) (domain.Gender, error) {
	raw, _, err := r.store.Get(ctx, GenderKey)
	if err != nil {
		return domain.GenderMale, fmt.Errorf("reading gender: %w", err)
	}
	return domain.ParseGender(raw), nil
}

func (r *KVPlanRepo) SaveGender(ctx context.Context, g domain.Gender) error {
	if err := validateGender(g); err != nil {
		return err
	}
	if err := r.store.Set(ctx, GenderKey, string(g)); err != nil {
		return fmt.Errorf("writing gender: %w", err)
	}
	return nil
}

// GetSettings returns defaults for an absent value and for any field the
// stored object omits.
func (r *KVPlanRepo) GetSettings(ctx context.Context) (domain.Settings, error) {
	raw, ok, err := r.store.Get(ctx, SettingsKey)
	if err != nil {
		return domain.DefaultSettings(), fmt.Errorf("reading settings: %w", err)
	}
	if !ok {
		return domain.DefaultSettings(), nil
	}
	s := domain.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		if r.strict {
			return domain.DefaultSettings(), fmt.Errorf("reading settings: %w: %v", ErrCorruptData, err)
		}
		r.log.Warn("discarding unreadable settings", "bytes", len(raw), "error", err)
		return domain.DefaultSettings(), nil
	}
	return s, nil
}

func (r *KVPlanRepo) SaveSettings(ctx context.Context, s domain.Settings) error {
	raw, err := encodeSettings(s)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, SettingsKey, raw); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func (r *KVPlanRepo) SaveProfile(ctx context.Context, p domain.Profile, s domain.Settings) error {
	if err := validateGender(p.Gender); err != nil {
		return err
	}
	settings, err := encodeSettings(s)
	if err != nil {
		return err
	}
	entries := map[string]string{
		GenderKey:   string(p.Gender),
		SettingsKey: settings,
	}
	if p.Username != nil {
		entries[UserNameKey] = *p.Username
	}
	if err := r.store.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// encodeSettings stores NotificationTime as zero-padded HH:MM.
func encodeSettings(s domain.Settings) (string, error) {
	at, err := domain.ParseClockTime(s.NotificationTime)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.NotificationTime = at.String()
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	return string(raw), nil
}

func validateGender(g domain.Gender) error {
	if g != domain.GenderMale && g != domain.GenderFemale {
		return fmt.Errorf("%w: unknown gender %q", ErrValidation, g)
	}
	return nil
}
