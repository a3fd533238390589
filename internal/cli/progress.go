// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/animetrack/internal/client"
	"github.com/taibuivan/animetrack/internal/client/progressctl"
	"github.com/taibuivan/animetrack/internal/library/entry"
)

// errUnchanged is returned when a gesture would not change the episode.
var errUnchanged = errors.New("progress unchanged")

func (state *app) progressCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "progress",
		Short: "Edit watched episodes",
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "set <id> <episode>",
			Short: "Set the watched episode count",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				episode, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("episode must be a whole number, got %q", args[1])
				}
				return state.editProgress(cmd, args[0], func(controller *progressctl.Controller) bool {
					return controller.SetEpisode(episode)
				})
			},
		},
		&cobra.Command{
			Use:   "inc <id>",
			Short: "Mark the next episode as watched",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return state.editProgress(cmd, args[0], (*progressctl.Controller).Increment)
			},
		},
		&cobra.Command{
			Use:   "dec <id>",
			Short: "Unmark the last watched episode",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return state.editProgress(cmd, args[0], (*progressctl.Controller).Decrement)
			},
		},
		&cobra.Command{
			Use:   "sync <id>",
			Short: "Recompute the status from the saved progress",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				api, err := state.authenticatedClient()
				if err != nil {
					return err
				}
				synced, err := api.SyncStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				state.printf("%s: %s, %s\n", synced.Title, progressLabel(synced), synced.Status.Label())
				return nil
			},
		},
	)
	return command
}

// editProgress loads the entry, applies gesture through a controller and
// waits for the edit to settle.
func (state *app) editProgress(cmd *cobra.Command, id string, gesture func(*progressctl.Controller) bool) error {
	api, err := state.authenticatedClient()
	if err != nil {
		return err
	}

	current, err := api.GetEntry(cmd.Context(), id)
	if err != nil {
		return err
	}

	updated, err := runEdit(cmd.Context(), api, *current, state.settings, state.logger, gesture)
	if errors.Is(err, errUnchanged) {
		state.printf("%s: already at %s\n", current.Title, progressLabel(current))
		return nil
	}
	if err != nil {
		return err
	}

	state.printf("%s: %s, %s\n", updated.Title, progressLabel(updated), updated.Status.Label())
	return nil
}

/*
runEdit drives one controller edit to completion.

Returns:
  - *entry.Entry: the committed entry
  - error: errUnchanged when the gesture dispatched nothing, the rollback
    cause otherwise
*/
func runEdit(
	context context.Context,
	dispatcher progressctl.Dispatcher,
	initial entry.Entry,
	settings Settings,
	logger *slog.Logger,
	gesture func(*progressctl.Controller) bool,
) (*entry.Entry, error) {
	committed := make(chan entry.Entry, 1)
	failed := make(chan error, 1)

	controller := progressctl.New(dispatcher, initial,
		progressctl.WithTimeout(settings.Timeout),
		progressctl.WithOnChange(func(view progressctl.View) {
			logger.Debug("progress_view",
				slog.String("phase", view.Phase.String()),
				slog.Int("current_episode", view.Entry.CurrentEpisode),
			)
			if view.Phase == progressctl.Committed {
				select {
				case committed <- view.Entry:
				default:
				}
			}
		}),
		progressctl.WithOnError(func(err error) {
			select {
			case failed <- err:
			default:
			}
		}),
	)
	defer controller.Close()

	if !gesture(controller) {
		return nil, errUnchanged
	}

	select {
	case result := <-committed:
		return &result, nil
	case err := <-failed:
		return nil, err
	case <-context.Done():
		return nil, context.Err()
	}
}

// Statically assert the API client can drive a controller.
var _ progressctl.Dispatcher = (*client.Client)(nil)
