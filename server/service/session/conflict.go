package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/ifmtech/event-planning/internal/taskpool"
	"github.com/ifmtech/event-planning/store"
)

// ErrConflictIndeterminate is returned when a conflict check could not finish
// before its deadline. The check is retryable; no statement about overlap can
// be made.
var ErrConflictIndeterminate = errors.New("conflict check did not finish; result indeterminate")

// defaultCheckTimeout bounds one full scan of the session cache.
const defaultCheckTimeout = 5 * time.Second

// ConflictDetector answers whether a candidate time range overlaps any live
// session. It scans the warmed session cache, one pool task per cached entry,
// and short-circuits on the first overlap found.
type ConflictDetector struct {
	store   Store
	pool    *taskpool.Pool
	timeout time.Duration
}

// NewConflictDetector creates a detector scanning the given store's session
// cache on the given shared pool.
func NewConflictDetector(s Store, pool *taskpool.Pool) *ConflictDetector {
	return &ConflictDetector{
		store:   s,
		pool:    pool,
		timeout: defaultCheckTimeout,
	}
}

// HasConflict reports whether candidate overlaps any cached session other
// than excludeID. A candidate without a complete time range never conflicts.
// Failures are contained per entry: a panicking comparison or a rejected pool
// submission counts that entry as non-overlapping. Only a missed deadline
// escalates, as ErrConflictIndeterminate.
func (d *ConflictDetector) HasConflict(ctx context.Context, candidate *store.Session, excludeID *int32) (bool, error) {
	if candidate == nil || !candidate.HasTimeRange() {
		return false, nil
	}

	entries := d.store.SessionSnapshot(ctx)
	if excludeID != nil {
		filtered := entries[:0]
		for _, entry := range entries {
			if entry.ID != *excludeID {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	if len(entries) == 0 {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	// Buffered to the full fan-out so every task can complete its send even
	// after this function has returned.
	results := make(chan bool, len(entries))
	submitted := 0
	for _, entry := range entries {
		entry := entry
		err := d.pool.Submit(func() {
			results <- overlaps(candidate, entry)
		})
		if err != nil {
			// A rejected task cannot vote; treat its entry as non-overlapping.
			slog.Warn("conflict check task rejected", "session_id", entry.ID, "error", err)
			continue
		}
		submitted++
	}

	for i := 0; i < submitted; i++ {
		select {
		case overlap := <-results:
			if overlap {
				return true, nil
			}
		case <-ctx.Done():
			slog.Warn("conflict check deadline exceeded",
				"checked", i, "submitted", submitted, "error", ctx.Err())
			return false, errors.Wrap(ErrConflictIndeterminate, ctx.Err().Error())
		}
	}
	return false, nil
}

// overlaps compares one cache entry against the candidate, converting any
// panic into a non-overlap verdict.
func overlaps(candidate, entry *store.Session) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("conflict comparison panicked", "panic", r)
			result = false
		}
	}()
	return candidate.OverlapsWith(entry)
}
