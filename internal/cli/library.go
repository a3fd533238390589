// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taibuivan/animetrack/internal/client"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/pkg/pointer"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

func (state *app) listCommand() *cobra.Command {
	var (
		statuses []string
		favorite bool
		options  client.ListOptions
	)

	command := &cobra.Command{
		Use:   "list",
		Short: "List your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}

			for _, raw := range statuses {
				status, err := watchstatus.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid --status %q (valid: %s)", raw, strings.Join(watchstatus.Strings(), ", "))
				}
				options.Statuses = append(options.Statuses, status)
			}
			if cmd.Flags().Changed("favorite") {
				options.Favorite = pointer.To(favorite)
			}

			entries, meta, err := api.ListEntries(cmd.Context(), options)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				state.printf("Your library is empty.\n")
				return nil
			}

			if err := writeEntries(state.out, entries); err != nil {
				return err
			}
			if meta.TotalPages > 1 {
				state.printf("\npage %d of %d (%d entries)\n", meta.Page, meta.TotalPages, meta.Total)
			}
			if meta.HasNext() {
				state.printf("next: --page %d\n", meta.Page+1)
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.StringSliceVarP(&statuses, "status", "s", nil, "filter by status (repeatable)")
	flags.BoolVar(&favorite, "favorite", false, "only favorites (or --favorite=false for the others)")
	flags.IntVar(&options.Page, "page", 0, "page number")
	flags.IntVar(&options.Limit, "limit", 0, "entries per page")
	return command
}

/*
addCommand creates an entry. With --mal-id the catalog record prefills the
fields the user did not set.
*/
func (state *app) addCommand() *cobra.Command {
	var (
		draft     entry.Draft
		malID     int
		total     int
		status    string
		rating    float64
		noPrefill bool
	)

	command := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a title to your library",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				draft.Title = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("total") {
				draft.TotalEpisodes = pointer.To(total)
			}
			if flags.Changed("rating") {
				draft.Rating = pointer.To(rating)
			}
			if status != "" {
				parsed, err := watchstatus.Parse(status)
				if err != nil {
					return fmt.Errorf("invalid --status %q", status)
				}
				draft.Status = &parsed
			}

			if malID > 0 {
				draft.MalID = pointer.To(malID)
				if !noPrefill {
					state.prefill(cmd, api, &draft, malID)
				}
			}
			if draft.Title == "" {
				return errors.New("a title is required")
			}

			created, err := api.CreateEntry(cmd.Context(), draft)
			if err != nil {
				return err
			}
			state.printf("Added %q (%s)\n", created.Title, created.ID)
			return nil
		},
	}

	flags := command.Flags()
	flags.IntVar(&malID, "mal-id", 0, "MyAnimeList id used to prefill the entry")
	flags.BoolVar(&noPrefill, "no-prefill", false, "keep --mal-id as a reference only")
	flags.IntVar(&total, "total", 0, "total episodes")
	flags.IntVar(&draft.CurrentEpisode, "episode", 0, "episodes already watched")
	flags.IntVar(&draft.TotalSeasons, "seasons", 0, "total seasons")
	flags.StringVar(&status, "status", "", "explicit status")
	flags.Float64Var(&rating, "rating", 0, "rating 0-10")
	flags.StringSliceVar(&draft.Genres, "genre", nil, "genre (repeatable)")
	flags.StringVar(&draft.Notes, "notes", "", "free text notes")
	flags.BoolVar(&draft.Favorite, "fav", false, "mark as favorite")
	return command
}

// prefill copies catalog data into the unset fields of draft. A catalog
// failure only prints a warning: the entry is created from what the user gave.
func (state *app) prefill(cmd *cobra.Command, api *client.Client, draft *entry.Draft, malID int) {
	prefill, err := api.CatalogAnime(cmd.Context(), malID)
	if err != nil {
		state.logger.Debug("catalog_prefill_failed", slog.Int("mal_id", malID), slog.Any("error", err))
		fmt.Fprintf(cmd.ErrOrStderr(), "catalog unavailable, continuing without prefill\n")
		return
	}

	if draft.Title == "" {
		draft.Title = prefill.Title
	}
	if draft.CoverImage == "" {
		draft.CoverImage = prefill.CoverImage
	}
	if draft.TotalEpisodes == nil {
		draft.TotalEpisodes = prefill.TotalEpisodes
	}
	if draft.TotalSeasons == 0 {
		draft.TotalSeasons = prefill.TotalSeasons
	}
	if draft.Rating == nil {
		draft.Rating = prefill.Rating
	}
	if len(draft.Genres) == 0 {
		draft.Genres = prefill.Genres
	}
}

func (state *app) searchCommand() *cobra.Command {
	var catalogOnly bool

	command := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your library, or the public catalog with --catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			if catalogOnly {
				results, err := state.anonymousClient().CatalogSearch(cmd.Context(), query)
				if err != nil {
					return err
				}
				table := newTable(state.out, "MAL ID", "TITLE", "EPISODES")
				for _, result := range results {
					episodes := "?"
					if result.TotalEpisodes != nil {
						episodes = strconv.Itoa(*result.TotalEpisodes)
					}
					table.row(strconv.Itoa(result.MalID), result.Title, episodes)
				}
				return table.flush()
			}

			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}
			entries, err := api.SearchEntries(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				state.printf("No match.\n")
				return nil
			}
			return writeEntries(state.out, entries)
		},
	}

	command.Flags().BoolVar(&catalogOnly, "catalog", false, "search the public catalog instead of your library")
	return command
}

func (state *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}
			found, err := api.GetEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeEntry(state.out, found)
			return nil
		},
	}
}

func (state *app) quickActionCommand(use, short string, action entry.Action) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.runQuickAction(cmd, args[0], action)
		},
	}
}

func (state *app) favoriteCommand() *cobra.Command {
	var off bool

	command := &cobra.Command{
		Use:   "fav <id>",
		Short: "Mark an entry as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := entry.ActionFavorite
			if off {
				action = entry.ActionUnfavorite
			}
			return state.runQuickAction(cmd, args[0], action)
		},
	}

	command.Flags().BoolVar(&off, "off", false, "remove the favorite mark")
	return command
}

func (state *app) runQuickAction(cmd *cobra.Command, id string, action entry.Action) error {
	api, err := state.authenticatedClient()
	if err != nil {
		return err
	}
	updated, err := api.QuickAction(cmd.Context(), id, action)
	if err != nil {
		return err
	}
	state.printf("%s: %s %s\n", updated.Title, updated.Status.Label(), favoriteMark(updated))
	return nil
}

func (state *app) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}
			if err := api.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			state.printf("Removed %s\n", args[0])
			return nil
		},
	}
}

func (state *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise your library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := state.authenticatedClient()
			if err != nil {
				return err
			}
			stats, err := api.Stats(cmd.Context())
			if err != nil {
				return err
			}

			table := newTable(state.out, "STATUS", "COUNT")
			table.row(watchstatus.ToWatch.Label(), strconv.Itoa(stats.ToWatch))
			table.row(watchstatus.Watching.Label(), strconv.Itoa(stats.Watching))
			table.row(watchstatus.Completed.Label(), strconv.Itoa(stats.Completed))
			table.row(watchstatus.OnHold.Label(), strconv.Itoa(stats.OnHold))
			table.row(watchstatus.Dropped.Label(), strconv.Itoa(stats.Dropped))
			table.row("Total", strconv.Itoa(stats.Total))
			if err := table.flush(); err != nil {
				return err
			}
			state.printf("\n%d favorites, %d episodes watched\n", stats.Favorites, stats.TotalEpisodesWatched)
			return nil
		},
	}
}
