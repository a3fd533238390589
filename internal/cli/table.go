// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

type table struct {
	writer *tabwriter.Writer
}

func newTable(out io.Writer, headers ...string) *table {
	t := &table{writer: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	t.row(headers...)
	return t
}

func (t *table) row(cells ...string) {
	fmt.Fprintln(t.writer, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.writer.Flush()
}

// progressLabel renders "7/12 (58%)", or "7/?" when the total is unknown.
func progressLabel(e *entry.Entry) string {
	if e.TotalEpisodes == nil || *e.TotalEpisodes <= 0 {
		return fmt.Sprintf("%d/?", e.CurrentEpisode)
	}
	return fmt.Sprintf("%d/%d (%d%%)", e.CurrentEpisode, *e.TotalEpisodes,
		watchstatus.Percent(e.CurrentEpisode, e.TotalEpisodes))
}

func favoriteMark(e *entry.Entry) string {
	if e.Favorite {
		return "*"
	}
	return ""
}

func writeEntries(out io.Writer, entries []*entry.Entry) error {
	t := newTable(out, "ID", "TITLE", "STATUS", "PROGRESS", "FAV")
	for _, e := range entries {
		t.row(e.ID, e.Title, e.Status.Label(), progressLabel(e), favoriteMark(e))
	}
	return t.flush()
}

func writeEntry(out io.Writer, e *entry.Entry) {
	fmt.Fprintf(out, "%s\n", e.Title)
	fmt.Fprintf(out, "  id:       %s\n", e.ID)
	fmt.Fprintf(out, "  status:   %s\n", e.Status.Label())
	fmt.Fprintf(out, "  progress: %s\n", progressLabel(e))
	fmt.Fprintf(out, "  season:   %d/%d\n", e.CurrentSeason, e.TotalSeasons)
	if e.Rating != nil {
		fmt.Fprintf(out, "  rating:   %.1f\n", *e.Rating)
	}
	if len(e.Genres) > 0 {
		fmt.Fprintf(out, "  genres:   %s\n", strings.Join(e.Genres, ", "))
	}
	if e.Favorite {
		fmt.Fprintf(out, "  favorite: yes\n")
	}
	if e.Notes != "" {
		fmt.Fprintf(out, "  notes:    %s\n", e.Notes)
	}
}
