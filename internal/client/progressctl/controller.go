// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progressctl turns progress gestures on a single entry into "set
episode to N" requests and reconciles them with the server's answer.

Lifecycle of one edit:

	Idle -> Pending -> Committed   (server confirmed)
	                -> RolledBack  (server rejected or deadline passed)
	     -> Idle

The new episode and the predicted status are shown as soon as the gesture
lands. Every dispatch gets a sequence number and only the latest one may
touch the state; responses for superseded edits are dropped when they arrive.

Requests leave one at a time, in the order they were issued, from a single
sender goroutine. An edit superseded while it waits behind an in-flight
request is never sent.
*/
package progressctl

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/animetrack/internal/client"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// DefaultTimeout is the deadline applied to a progress request when none is
// configured.
const DefaultTimeout = 10 * time.Second

// ErrTimeout is reported through OnError when a request misses its deadline.
var ErrTimeout = errors.New("progressctl: progress request timed out")

// Phase is the state of the current edit.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// Dispatcher sends progress edits to the server. [*client.Client] satisfies it.
type Dispatcher interface {
	ApplyProgress(context context.Context, entryID string, episode int) (*entry.Entry, error)
	SyncStatus(context context.Context, entryID string) (*entry.Entry, error)
}

// View is what the progress bar renders.
type View struct {
	Entry    entry.Entry
	Phase    Phase
	Sequence uint64
}

// Option configures a [Controller].
type Option func(*Controller)

// WithTimeout sets the request deadline. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) { c.timeout = timeout }
}

// WithOnChange registers the render callback. It runs outside the
// controller's lock and may call back into it.
func WithOnChange(fn func(View)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithOnError registers the callback for rolled back edits.
func WithOnError(fn func(error)) Option {
	return func(c *Controller) { c.onError = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns the progress state of one entry.
type Controller struct {
	dispatcher Dispatcher
	entryID    string
	timeout    time.Duration
	onChange   func(View)
	onError    func(error)
	logger     *slog.Logger

	context context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	wake    chan struct{}

	mu        sync.Mutex
	confirmed entry.Entry
	displayed entry.Entry
	phase     Phase
	latest    uint64
	expired   bool
	dragging  bool
	closed    bool
	timer     *time.Timer
	queued    *job
}

// job is the next request for the sender. A newer job replaces an unsent one.
type job struct {
	sequence uint64
	episode  int
	sync     bool
}

/*
New creates a controller for initial, the last state confirmed by the server.

Parameters:
  - dispatcher: Dispatcher
  - initial: entry.Entry
  - options: ...Option

Returns:
  - *Controller: call [Controller.Close] when the view goes away
*/
func New(dispatcher Dispatcher, initial entry.Entry, options ...Option) *Controller {
	c := &Controller{
		dispatcher: dispatcher,
		entryID:    initial.ID,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		confirmed:  initial,
		displayed:  initial,
		wake:       make(chan struct{}, 1),
	}
	for _, option := range options {
		option(c)
	}
	c.context, c.cancel = context.WithCancel(context.Background())

	c.workers.Add(1)
	go c.send()
	return c
}

// # Queries

// View returns the current display state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked(c.phase)
}

// CanIncrement reports whether the "+" control is enabled.
func (c *Controller) CanIncrement() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return watchstatus.CanIncrement(c.displayed.CurrentEpisode, c.displayed.TotalEpisodes)
}

// CanDecrement reports whether the "-" control is enabled.
func (c *Controller) CanDecrement() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return watchstatus.CanDecrement(c.displayed.CurrentEpisode)
}

// # Gestures
//
// Every gesture returns true when it dispatched a request.

// SetEpisode handles direct numeric entry. Out of range values are clamped.
func (c *Controller) SetEpisode(episode int) bool {
	return c.propose(func(current entry.Entry) (int, bool) {
		return watchstatus.Clamp(episode, current.TotalEpisodes), true
	})
}

// Increment handles the "+" button.
func (c *Controller) Increment() bool {
	return c.propose(func(current entry.Entry) (int, bool) {
		if !watchstatus.CanIncrement(current.CurrentEpisode, current.TotalEpisodes) {
			return 0, false
		}
		return current.CurrentEpisode + 1, true
	})
}

// Decrement handles the "-" button.
func (c *Controller) Decrement() bool {
	return c.propose(func(current entry.Entry) (int, bool) {
		if !watchstatus.CanDecrement(current.CurrentEpisode) {
			return 0, false
		}
		return current.CurrentEpisode - 1, true
	})
}

// Press starts a drag at a relative bar position (0 = left edge, 1 = right).
func (c *Controller) Press(position float64) bool {
	c.mu.Lock()
	c.dragging = true
	c.mu.Unlock()
	return c.propose(barPosition(position))
}

// Drag moves an active drag. It is ignored without a prior [Controller.Press].
func (c *Controller) Drag(position float64) bool {
	c.mu.Lock()
	dragging := c.dragging
	c.mu.Unlock()
	if !dragging {
		return false
	}
	return c.propose(barPosition(position))
}

// Release ends a drag.
func (c *Controller) Release() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
}

// Tap is a press immediately followed by a release.
func (c *Controller) Tap(position float64) bool {
	dispatched := c.Press(position)
	c.Release()
	return dispatched
}

func barPosition(position float64) func(entry.Entry) (int, bool) {
	return func(current entry.Entry) (int, bool) {
		return watchstatus.EpisodeAt(position, current.TotalEpisodes)
	}
}

// Close drops every in-flight response, discards the unsent request and
// waits for background work.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.queued = nil
	c.stopTimerLocked()
	c.mu.Unlock()

	c.cancel()
	c.workers.Wait()
}

// # Dispatch

// propose applies target to the displayed state and dispatches the result
// unless it equals the displayed episode.
func (c *Controller) propose(target func(current entry.Entry) (int, bool)) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	episode, ok := target(c.displayed)
	if !ok || episode == c.displayed.CurrentEpisode {
		c.mu.Unlock()
		return false
	}

	c.latest++
	sequence := c.latest

	c.displayed.CurrentEpisode = episode
	c.displayed.Status = watchstatus.Derive(c.displayed.Status, episode, c.displayed.TotalEpisodes)
	c.phase = Pending
	c.expired = false

	c.stopTimerLocked()
	if c.timeout > 0 {
		c.workers.Add(1)
		c.timer = time.AfterFunc(c.timeout, func() { c.expire(sequence) })
	}

	c.enqueueLocked(job{sequence: sequence, episode: episode})

	view := c.viewLocked(Pending)
	c.mu.Unlock()

	c.notify(view, nil)
	return true
}

func (c *Controller) enqueueLocked(next job) {
	c.queued = &next
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// send is the only goroutine that talks to the dispatcher, so the server
// sees requests in the order they were issued.
func (c *Controller) send() {
	defer c.workers.Done()

	for {
		select {
		case <-c.context.Done():
			return
		case <-c.wake:
		}

		for {
			c.mu.Lock()
			next := c.queued
			c.queued = nil
			closed := c.closed
			c.mu.Unlock()

			if next == nil || closed {
				break
			}
			if next.sync {
				c.syncStatus(next.sequence)
			} else {
				c.apply(next.sequence, next.episode)
			}
		}
	}
}

func (c *Controller) apply(sequence uint64, episode int) {
	result, err := c.dispatcher.ApplyProgress(c.context, c.entryID, episode)

	c.mu.Lock()
	if c.closed || sequence != c.latest {
		c.mu.Unlock()
		c.logger.Debug("progress_response_discarded",
			slog.String("entry_id", c.entryID),
			slog.Uint64("sequence", sequence),
		)
		return
	}
	c.stopTimerLocked()

	if err == nil {
		view := c.commitLocked(*result)
		c.mu.Unlock()
		c.notify(view, nil)
		return
	}

	if committed, ok := client.IsStatusSyncFailed(err); ok && committed != nil {
		c.confirmed = *committed
		c.displayed = *committed
		c.displayed.Status = watchstatus.Derive(committed.Status, committed.CurrentEpisode, committed.TotalEpisodes)
		c.phase = Pending

		c.enqueueLocked(job{sequence: sequence, sync: true})

		view := c.viewLocked(Pending)
		c.mu.Unlock()

		c.logger.Warn("progress_status_sync_retry",
			slog.String("entry_id", c.entryID),
			slog.Int("current_episode", committed.CurrentEpisode),
		)
		c.notify(view, nil)
		return
	}

	if c.expired {
		// Already rolled back and reported when the deadline passed.
		c.mu.Unlock()
		return
	}

	view := c.rollbackLocked()
	c.mu.Unlock()
	c.notify(view, err)
}

// syncStatus retries the status write once. Its failure is not surfaced:
// the progress itself is already committed.
func (c *Controller) syncStatus(sequence uint64) {
	result, err := c.dispatcher.SyncStatus(c.context, c.entryID)

	c.mu.Lock()
	if c.closed || sequence != c.latest {
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.logger.Warn("progress_status_sync_retry_failed",
			slog.String("entry_id", c.entryID),
			slog.String("error", err.Error()),
		)
		result = &c.confirmed
	}

	view := c.commitLocked(*result)
	c.mu.Unlock()
	c.notify(view, nil)
}

func (c *Controller) expire(sequence uint64) {
	defer c.workers.Done()

	c.mu.Lock()
	if c.closed || sequence != c.latest || c.phase != Pending {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.expired = true

	view := c.rollbackLocked()
	c.mu.Unlock()

	c.logger.Warn("progress_request_timed_out",
		slog.String("entry_id", c.entryID),
		slog.Uint64("sequence", sequence),
		slog.Duration("timeout", c.timeout),
	)
	c.notify(view, ErrTimeout)
}

// # State Transitions

func (c *Controller) commitLocked(authoritative entry.Entry) View {
	c.confirmed = authoritative
	c.displayed = authoritative
	c.phase = Idle
	return c.viewLocked(Committed)
}

func (c *Controller) rollbackLocked() View {
	c.displayed = c.confirmed
	c.phase = Idle
	return c.viewLocked(RolledBack)
}

func (c *Controller) viewLocked(phase Phase) View {
	return View{Entry: c.displayed, Phase: phase, Sequence: c.latest}
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil && c.timer.Stop() {
		c.workers.Done()
	}
	c.timer = nil
}

func (c *Controller) notify(view View, err error) {
	if c.onChange != nil {
		c.onChange(view)
	}
	if err != nil && c.onError != nil {
		c.onError(err)
	}
}
