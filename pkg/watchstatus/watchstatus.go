// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package watchstatus holds the single rule that derives an entry's watch status
from its episode progress.

Both the API server and every client import this package, so the status a
client predicts optimistically is always the one the server will persist.

Rule:

  - total known, positive, and reached: completed
  - no episode watched: to_watch
  - anything in between (or no known total): watching

on_hold and dropped are never produced here; they are set by explicit
quick-actions only.
*/
package watchstatus

import (
	"fmt"
	"math"
)

// Status is the watch state of a tracked title.
type Status string

const (
	ToWatch   Status = "to_watch"
	Watching  Status = "watching"
	Completed Status = "completed"
	OnHold    Status = "on_hold"
	Dropped   Status = "dropped"
)

// All lists every status in display order.
var All = []Status{ToWatch, Watching, Completed, OnHold, Dropped}

var labels = map[Status]string{
	ToWatch:   "To Watch",
	Watching:  "Watching",
	Completed: "Completed",
	OnHold:    "On Hold",
	Dropped:   "Dropped",
}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return string(s)
}

// Strings returns the wire values of all statuses, for validation messages.
func Strings() []string {
	out := make([]string, len(All))
	for i, s := range All {
		out[i] = string(s)
	}
	return out
}

// Parse accepts either a wire value ("on_hold") or a display label ("On Hold").
func Parse(raw string) (Status, error) {
	if s := Status(raw); s.Valid() {
		return s, nil
	}
	for s, label := range labels {
		if label == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("watchstatus: unknown status %q", raw)
}

// IsManual reports whether s can only be reached through an explicit
// quick-action and is therefore never produced by [Derive].
func IsManual(s Status) bool {
	return s == OnHold || s == Dropped
}

// # Rule

// Derive returns the status an entry should hold after a progress edit.
//
// currentEpisode is expected to be clamped already (see [Clamp]). A nil or
// zero totalEpisodes means no upper bound is known, so the entry can never
// complete automatically.
func Derive(previous Status, currentEpisode int, totalEpisodes *int) Status {
	known := totalEpisodes != nil && *totalEpisodes > 0

	switch {
	case known && currentEpisode >= *totalEpisodes:
		return Completed
	case currentEpisode == 0:
		return ToWatch
	case currentEpisode > 0 && (!known || currentEpisode < *totalEpisodes):
		return Watching
	}

	// Unreachable for clamped input.
	return previous
}

// Clamp bounds an episode number to [0, total] when total is known and
// positive, and to >= 0 otherwise.
func Clamp(episode int, totalEpisodes *int) int {
	if episode < 0 {
		return 0
	}
	if totalEpisodes != nil && *totalEpisodes > 0 && episode > *totalEpisodes {
		return *totalEpisodes
	}
	return episode
}

// EpisodeAt maps a relative position on a progress bar (0 = left edge,
// 1 = right edge) to an episode number.
//
// It returns ok=false when the total is unknown: the bar is inert and only
// the step buttons and direct entry remain usable.
func EpisodeAt(relativePosition float64, totalEpisodes *int) (episode int, ok bool) {
	if totalEpisodes == nil || *totalEpisodes <= 0 {
		return 0, false
	}
	if math.IsNaN(relativePosition) {
		return 0, false
	}

	// Positions past either edge, infinities included, pin to that edge
	// before the float to int conversion.
	position := math.Max(0, math.Min(1, relativePosition))
	return int(math.Round(position * float64(*totalEpisodes))), true
}

// CanIncrement reports whether the "+" control is enabled.
func CanIncrement(currentEpisode int, totalEpisodes *int) bool {
	if totalEpisodes == nil || *totalEpisodes <= 0 {
		return true
	}
	return currentEpisode < *totalEpisodes
}

// CanDecrement reports whether the "-" control is enabled.
func CanDecrement(currentEpisode int) bool {
	return currentEpisode > 0
}

// Percent returns the completion percentage shown next to the bar.
func Percent(currentEpisode int, totalEpisodes *int) int {
	if totalEpisodes == nil || *totalEpisodes <= 0 {
		return 0
	}
	return int(math.Round(float64(currentEpisode) / float64(*totalEpisodes) * 100))
}
