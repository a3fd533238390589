// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package entry

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/metrics"
	"github.com/taibuivan/animetrack/internal/platform/validate"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// # Progress Orchestration

// ProgressService applies episode edits and keeps the stored status in line
// with [watchstatus.Derive].
//
// An edit is two sequential writes: the progress first, then the status if
// it has to change. The store offers no transaction across them, so a
// failure of the second write is reported as STATUS_SYNC_FAILED together with
// the committed progress, and [ProgressService.SyncStatus] retries it alone.
type ProgressService struct {
	repository Repository
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewProgressService constructs a [ProgressService]. collectors may be nil.
func NewProgressService(repository Repository, logger *slog.Logger, collectors *metrics.Metrics) *ProgressService {
	return &ProgressService{
		repository: repository,
		logger:     logger,
		metrics:    collectors,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for start and end dates.
func (service *ProgressService) WithClock(now func() time.Time) *ProgressService {
	service.now = now
	return service
}

/*
ApplyProgress sets the current episode of an owned entry.

Description:
 1. Load the entry scoped to its owner.
 2. Clamp the episode to [0, total] (or >= 0 when the total is unknown).
 3. Write the episode, stamping the start date on the first 0 -> >0 move.
 4. Derive the status from the written state and write it if it changed,
    stamping the end date on entering completed.

An unchanged episode on an on-hold or dropped entry writes nothing, so a
repeated edit never clears a manual status.

Parameters:
  - context: context.Context
  - entryID, ownerID: string
  - newEpisode: int (may be negative or over the total)

Returns:
  - *Entry: The entry as stored. On STATUS_SYNC_FAILED this is the entry
    after the progress write, with the stale status.
  - error: VALIDATION_ERROR (episode beyond the storable range), NOT_FOUND,
    STORE_UNAVAILABLE or STATUS_SYNC_FAILED
*/
func (service *ProgressService) ApplyProgress(context context.Context, entryID, ownerID string, newEpisode int) (*Entry, error) {
	if err := (&validate.Validator{}).Max(FieldCurrentEpisode, newEpisode, maxCount).Err(); err != nil {
		return nil, err
	}

	current, err := service.repository.FindByIDAndOwner(context, entryID, ownerID)
	if err != nil {
		return nil, service.abort(context, entryID, err)
	}

	episode := watchstatus.Clamp(newEpisode, current.TotalEpisodes)

	committed := current
	if episode != current.CurrentEpisode {
		fields := Fields{CurrentEpisode: &episode}
		if current.CurrentEpisode == 0 && episode > 0 && current.StartDate == nil {
			startedAt := service.now()
			fields.StartDate = &startedAt
		}

		committed, err = service.repository.UpdateFields(context, entryID, ownerID, fields)
		if err != nil {
			return nil, service.abort(context, entryID, err)
		}
	} else if watchstatus.IsManual(current.Status) {
		service.metrics.ProgressOutcome(metrics.OutcomeNoop)
		return current, nil
	}

	final, err := service.syncStatus(context, committed)
	if err != nil {
		return final, err
	}

	outcome := metrics.OutcomeApplied
	if final == current {
		outcome = metrics.OutcomeNoop
	}
	service.metrics.ProgressOutcome(outcome)

	service.logger.Info("entry_progress_applied",
		slog.String("entry_id", entryID),
		slog.Int("current_episode", final.CurrentEpisode),
		slog.String("status", string(final.Status)),
	)

	return final, nil
}

/*
SyncStatus re-derives and writes the status of an owned entry without
touching its progress.

Description: This is the retry path after STATUS_SYNC_FAILED. A manual
status is left as it is.

Returns:
  - *Entry: The entry as stored
  - error: NOT_FOUND, STORE_UNAVAILABLE or STATUS_SYNC_FAILED
*/
func (service *ProgressService) SyncStatus(context context.Context, entryID, ownerID string) (*Entry, error) {
	current, err := service.repository.FindByIDAndOwner(context, entryID, ownerID)
	if err != nil {
		return nil, service.abort(context, entryID, err)
	}

	if watchstatus.IsManual(current.Status) {
		return current, nil
	}

	return service.syncStatus(context, current)
}

// syncStatus performs the conditional status write for an entry whose
// progress is already stored.
func (service *ProgressService) syncStatus(context context.Context, committed *Entry) (*Entry, error) {
	target := watchstatus.Derive(committed.Status, committed.CurrentEpisode, committed.TotalEpisodes)
	if target == committed.Status {
		return committed, nil
	}

	fields := Fields{Status: &target}
	if target == watchstatus.Completed && committed.EndDate == nil {
		endedAt := service.now()
		fields.EndDate = &endedAt
	}

	final, err := service.repository.UpdateFields(context, committed.ID, committed.OwnerID, fields)
	if err != nil {
		// The entry vanished between the two writes.
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, service.abort(context, committed.ID, err)
		}

		service.metrics.ProgressOutcome(metrics.OutcomeStatusSyncFailed)
		service.logger.ErrorContext(context, "entry_status_sync_failed",
			slog.String("entry_id", committed.ID),
			slog.String("from", string(committed.Status)),
			slog.String("to", string(target)),
			slog.Any("error", err),
		)
		return committed, apperr.StatusSyncFailed(committed, err)
	}

	service.metrics.StatusTransition(string(committed.Status), string(final.Status))
	return final, nil
}

// abort classifies a failure that left nothing written.
func (service *ProgressService) abort(context context.Context, entryID string, err error) error {
	err = storeFailure(err)

	if apperr.HasCode(err, apperr.CodeNotFound) {
		service.metrics.ProgressOutcome(metrics.OutcomeNotFound)
		return err
	}

	service.metrics.ProgressOutcome(metrics.OutcomeStoreUnavailable)
	service.logger.WarnContext(context, "entry_progress_aborted",
		slog.String("entry_id", entryID),
		slog.Any("error", err),
	)
	return err
}
