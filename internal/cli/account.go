// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"github.com/spf13/cobra"
)

// setupCommand registers this device, or recovers the account when the
// stored secret matches.
func (state *app) setupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "setup <username>",
		Short: "Register this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := state.settings.DeviceSecret
			if secret == "" {
				generated, err := newDeviceSecret()
				if err != nil {
					return err
				}
				secret = generated
			}

			session, err := state.anonymousClient().Setup(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			if err := SaveSession(state.viper, session.User.Username, secret, session.AccessToken); err != nil {
				return err
			}

			state.printf("Signed in as %s\n", session.User.Username)
			return nil
		},
	}
}

func (state *app) themesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			themes, err := state.anonymousClient().Themes(cmd.Context())
			if err != nil {
				return err
			}

			table := newTable(state.out, "KEY", "NAME", "TIER")
			for _, theme := range themes {
				tier := "free"
				if theme.IsPremium {
					tier = "premium"
				}
				table.row(theme.Key, theme.Name, tier)
			}
			return table.flush()
		},
	}
}

func (state *app) themeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "theme <key>",
		Short: "Select a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}

			user, err := api.SelectTheme(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state.printf("Theme set to %s\n", user.SelectedTheme)
			return nil
		},
	}
}

func (state *app) premiumCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "premium",
		Short: "Open a checkout for the premium themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}

			session, err := api.CheckoutPremium(cmd.Context())
			if err != nil {
				return err
			}
			state.printf("Complete the payment at:\n%s\n", session.URL)
			return nil
		},
	}
}
