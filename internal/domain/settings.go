package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTime = errors.New("invalid time, expected HH:MM")

type Settings struct {
	AskBeforeDeleteAll   bool   `json:"askBeforeDeleteAll"`
	DarkMode             bool   `json:"darkMode"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	NotificationTime     string `json:"notificationTime"`
}

func DefaultSettings() Settings {
	return Settings{
		AskBeforeDeleteAll:   true,
		DarkMode:             false,
		NotificationsEnabled: true,
		NotificationTime:     "08:00",
	}
}

// ReminderTime parses NotificationTime, falling back to the default.
func (s Settings) ReminderTime() ClockTime {
	ct, err := ParseClockTime(s.NotificationTime)
	if err != nil {
		return ClockTime{Hour: 8}
	}
	return ct
}

// SettingsPatch is a partial settings update. Nil fields are kept.
type SettingsPatch struct {
	AskBeforeDeleteAll   *bool
	DarkMode             *bool
	NotificationsEnabled *bool
	NotificationTime     *string
}

func (p SettingsPatch) Apply(s Settings) Settings {
	if p.AskBeforeDeleteAll != nil {
		s.AskBeforeDeleteAll = *p.AskBeforeDeleteAll
	}
	if p.DarkMode != nil {
		s.DarkMode = *p.DarkMode
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.NotificationTime != nil {
		s.NotificationTime = NormalizeClockTime(*p.NotificationTime)
	}
	return s
}

// TouchesReminder reports whether applying p can change the daily reminder.
func (p SettingsPatch) TouchesReminder() bool {
	return p.NotificationsEnabled != nil || p.NotificationTime != nil
}

// Validate checks a patch before anything is persisted.
func (p SettingsPatch) Validate() error {
	if p.NotificationTime != nil {
		if _, err := ParseClockTime(*p.NotificationTime); err != nil {
			return err
		}
	}
	return nil
}

// ClockTime is a 24-hour wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// NormalizeClockTime rewrites a valid time as zero-padded HH:MM. Invalid
// input is returned unchanged.
func NormalizeClockTime(s string) string {
	ct, err := ParseClockTime(s)
	if err != nil {
		return s
	}
	return ct.String()
}

// ParseClockTime parses "HH:MM" with hour 0-23 and minute 0-59. Each field
// is one or two digits and surrounding whitespace is ignored.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, err := clockField(parts[0])
	if err != nil || hour > 23 {
		return ClockTime{}, fmt.Errorf("%w: hour must be 0-23 in %q", ErrInvalidTime, s)
	}
	minute, err := clockField(parts[1])
	if err != nil || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: minute must be 0-59 in %q", ErrInvalidTime, s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// clockField accepts one or two ASCII digits.
func clockField(s string) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, ErrInvalidTime
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidTime
		}
	}
	return strconv.Atoi(s)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps anything other than the literal "female" to male.
func ParseGender(s string) Gender {
	if s == string(GenderFemale) {
		return GenderFemale
	}
	return GenderMale
}

// Profile is the user's display identity.
type Profile struct {
	Username *string
	Gender   Gender
}

func (p Profile) DisplayName() string {
	if p.Username == nil || *p.Username == "" {
		return "friend"
	}
	return *p.Username
}
