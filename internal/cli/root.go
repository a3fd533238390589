// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements the animetrack command line client.

Configuration is resolved by viper from flags, ANIMETRACK_* environment
variables and ~/.animetrack.yaml, in that order of precedence. Progress
commands go through [progressctl.Controller] so the terminal follows the same
optimistic flow as the graphical clients.
*/
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taibuivan/animetrack/internal/client"
	"github.com/taibuivan/animetrack/internal/library/entry"
)

// app is the state shared by every command.
type app struct {
	viper    *viper.Viper
	out      io.Writer
	logger   *slog.Logger
	settings Settings
}

// errNotConfigured is returned by commands that need a session before setup ran.
var errNotConfigured = errors.New("not set up yet: run `animetrack setup <username>` first")

/*
NewRootCommand builds the command tree.

Parameters:
  - v: *viper.Viper (see [NewViper])
  - out: io.Writer for command output

Returns:
  - *cobra.Command
*/
func NewRootCommand(v *viper.Viper, out io.Writer) *cobra.Command {
	state := &app{viper: v, out: out, logger: slog.New(slog.DiscardHandler)}

	var configPath string
	var debug bool

	root := &cobra.Command{
		Use:           "animetrack",
		Short:         "Track the anime you watch",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := ReadConfig(v, configPath); err != nil {
				return err
			}
			settings, err := LoadSettings(v)
			if err != nil {
				return err
			}
			state.settings = settings

			if debug {
				state.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $HOME/.animetrack.yaml)")
	flags.BoolVarP(&debug, "debug", "d", false, "log progress requests to stderr")
	flags.String(KeyAPIURL, "", "API base URL")
	flags.Duration(KeyTimeout, 0, "request deadline for progress edits")
	_ = v.BindPFlag(KeyAPIURL, flags.Lookup(KeyAPIURL))
	_ = v.BindPFlag(KeyTimeout, flags.Lookup(KeyTimeout))

	root.AddCommand(
		state.setupCommand(),
		state.themesCommand(),
		state.themeCommand(),
		state.premiumCommand(),
		state.listCommand(),
		state.addCommand(),
		state.searchCommand(),
		state.showCommand(),
		state.progressCommand(),
		state.quickActionCommand("pause", "Put an entry on hold", entry.ActionPause),
		state.quickActionCommand("drop", "Drop an entry", entry.ActionDrop),
		state.favoriteCommand(),
		state.removeCommand(),
		state.statsCommand(),
	)
	return root
}

// anonymousClient talks to the API without a session.
func (state *app) anonymousClient() *client.Client {
	return client.New(state.settings.APIURL)
}

// authenticatedClient requires a saved session.
func (state *app) authenticatedClient() (*client.Client, error) {
	if state.settings.Token == "" {
		return nil, errNotConfigured
	}
	return client.New(state.settings.APIURL, client.WithToken(state.settings.Token)), nil
}

func (state *app) printf(format string, args ...any) {
	fmt.Fprintf(state.out, format, args...)
}
