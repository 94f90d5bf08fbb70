package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// setupAnswers holds what the onboarding form collects.
type setupAnswers struct {
	Name          string
	Gender        string
	Notifications bool
	Time          string
}

func newSetupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Set your name and reminder preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("setup needs a terminal; use `dayplanner profile` and `dayplanner settings set` instead")
			}

			answers := answersFrom(app.Planner.Profile(), app.Planner.Settings())
			if err := setupForm(&answers).Run(); err != nil {
				return err
			}
			if err := applySetup(cmd.Context(), app, answers); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "All set, %s!\n", app.Planner.Profile().DisplayName())
			return nil
		},
	}
}

func answersFrom(p domain.Profile, s domain.Settings) setupAnswers {
	a := setupAnswers{
		Gender:        string(p.Gender),
		Notifications: s.NotificationsEnabled,
		Time:          s.NotificationTime,
	}
	if p.Username != nil {
		a.Name = *p.Username
	}
	return a
}

func setupForm(a *setupAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What should we call you?").
				Value(&a.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Gender").
				Options(
					huh.NewOption("Male", string(domain.GenderMale)),
					huh.NewOption("Female", string(domain.GenderFemale)),
				).
				Value(&a.Gender),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send a daily reminder?").
				Value(&a.Notifications),
			huh.NewInput().
				Title("Reminder time (HH:MM)").
				Value(&a.Time).
				Validate(func(s string) error {
					_, err := domain.ParseClockTime(s)
					return err
				}),
		),
	).WithTheme(dayplannerHuhTheme()).WithShowHelp(false)
}

// applySetup saves the form answers in a single profile write, keeping
// any settings the form does not ask about.
func applySetup(ctx context.Context, app *App, a setupAnswers) error {
	at, err := domain.ParseClockTime(strings.TrimSpace(a.Time))
	if err != nil {
		return err
	}
	name := strings.TrimSpace(a.Name)

	settings := app.Planner.Settings()
	settings.NotificationsEnabled = a.Notifications
	settings.NotificationTime = at.String()

	return app.Planner.SaveProfile(ctx, domain.Profile{
		Username: &name,
		Gender:   domain.ParseGender(a.Gender),
	}, settings)
}
