package cli

import (
	"fmt"

	"github.com/alexanderramin/dayplanner/internal/cli/formatter"
	"github.com/alexanderramin/dayplanner/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(app.Planner.Settings()))
				return nil
			},
		},
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsSetCmd(app *App) *cobra.Command {
	var (
		askBeforeDelete, darkMode, notifications bool
		at                                       string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			patch := domain.SettingsPatch{
				AskBeforeDeleteAll:   changed(flags, "ask-before-delete", &askBeforeDelete),
				DarkMode:             changed(flags, "dark-mode", &darkMode),
				NotificationsEnabled: changed(flags, "notifications", &notifications),
				NotificationTime:     changed(flags, "time", &at),
			}
			if patch == (domain.SettingsPatch{}) {
				return fmt.Errorf("nothing to change; see --help for the available flags")
			}

			settings, err := app.Planner.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSettings(settings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&askBeforeDelete, "ask-before-delete", true, "Confirm before deleting a day or all data")
	cmd.Flags().BoolVar(&darkMode, "dark-mode", false, "Use the dark markdown theme")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "Send a daily reminder")
	cmd.Flags().StringVar(&at, "time", "", "Reminder time as HH:MM")
	return cmd
}

// changed returns v if the named flag was set on the command line.
func changed[T any](flags *pflag.FlagSet, name string, v *T) *T {
	if !flags.Changed(name) {
		return nil
	}
	return v
}

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your name and gender",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProfile(app.Planner.Profile()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "name <name>",
			Short: "Set the name used in greetings",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Planner.SetUsername(cmd.Context(), joinArgs(args)); err != nil {
					return err
				}
				name, _ := app.Planner.Username()
				fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s!\n", name)
				return nil
			},
		},
		&cobra.Command{
			Use:       "gender <male|female>",
			Short:     "Set the gender",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(domain.GenderMale), string(domain.GenderFemale)},
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Planner.SetGender(cmd.Context(), domain.Gender(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Gender set to %s\n", args[0])
				return nil
			},
		},
	)

	return cmd
}
