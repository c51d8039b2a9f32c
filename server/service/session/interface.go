// Package session implements session scheduling on top of the store: input
// validation, partial updates, paged listing and overlap conflict detection
// against the session cache.
package session

import (
	"context"

	"github.com/ifmtech/event-planning/store"
)

// Store is the subset of store operations the session service depends on.
type Store interface {
	CreateSession(ctx context.Context, create *store.Session) (*store.Session, error)
	GetSession(ctx context.Context, find *store.FindSession) (*store.Session, error)
	UpdateSession(ctx context.Context, update *store.UpdateSession) (*store.Session, error)
	DeleteSession(ctx context.Context, delete *store.DeleteSession) error
	SearchSessions(ctx context.Context, find *store.FindSession) (*store.Page, error)
	SessionSnapshot(ctx context.Context) []*store.Session
}

// CreateSessionRequest carries the fields for a new session.
type CreateSessionRequest struct {
	Title    string
	Speaker  string
	Priority int32
	// StartTs and EndTs are unix seconds. Both optional; a session without a
	// complete time range is never checked for conflicts.
	StartTs *int64
	EndTs   *int64
	VIP     bool
}

// UpdateSessionRequest carries a partial update. Nil fields keep the stored
// value.
type UpdateSessionRequest struct {
	ID int32

	Title    *string
	Speaker  *string
	Priority *int32
	StartTs  *int64
	EndTs    *int64
	VIP      *bool
}

// ListSessionsRequest carries paging, filtering and ordering for a listing.
type ListSessionsRequest struct {
	// Inclusive bounds on session start time, unix seconds.
	StartFrom *int64
	StartTo   *int64

	// SortBy is "priority" (case-insensitive) for priority descending;
	// anything else sorts by start time ascending.
	SortBy string

	// Page is zero-based, defaulting to 0. Size defaults to 20.
	Page *int
	Size *int
}
