package store

import (
	"context"
	"time"
)

// Session is the object representing an event session.
type Session struct {
	ID        int32
	CreatedTs int64
	UpdatedTs int64

	Title    string
	Speaker  string
	Priority int32
	// StartTs and EndTs are unix seconds. Either may be absent; a session
	// without both carries no time range and never conflicts.
	StartTs *int64
	EndTs   *int64
	VIP     bool
}

// Sort orders accepted by FindSession.OrderBy.
const (
	// OrderByStartTime sorts ascending by start time. This is the default.
	OrderByStartTime = "start_time"
	// OrderByPriority sorts descending by priority (higher first).
	OrderByPriority = "priority"
)

// FindSession is the find condition for sessions.
type FindSession struct {
	ID *int32

	// Inclusive bounds on StartTs. An absent bound is unconstrained.
	StartFrom *int64
	StartTo   *int64

	// OrderBy is one of the OrderBy constants. Empty means OrderByStartTime.
	OrderBy string

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateSession is the partial-update request for a session. Nil fields leave
// the stored value untouched.
type UpdateSession struct {
	ID int32

	Title    *string
	Speaker  *string
	Priority *int32
	StartTs  *int64
	EndTs    *int64
	VIP      *bool
}

// DeleteSession is the delete request for a session.
type DeleteSession struct {
	ID int32
}

// Page is one page of a session listing.
type Page struct {
	Sessions []*Session `json:"sessions"`
	Total    int64      `json:"total"`
	Page     int        `json:"page"`
	Size     int        `json:"size"`
}

// HasTimeRange reports whether both timestamps are set.
func (s *Session) HasTimeRange() bool {
	return s.StartTs != nil && s.EndTs != nil
}

// OverlapsWith reports whether the two sessions' time ranges overlap.
// Ranges are half-open [start, end): sessions that merely touch at an
// endpoint do not overlap. Sessions missing either timestamp never overlap.
func (s *Session) OverlapsWith(other *Session) bool {
	if !s.HasTimeRange() || !other.HasTimeRange() {
		return false
	}
	return *s.StartTs < *other.EndTs && *s.EndTs > *other.StartTs
}

// ParseStartTime parses the session start time to time.Time.
func (s *Session) ParseStartTime() *time.Time {
	if s.StartTs == nil {
		return nil
	}
	t := time.Unix(*s.StartTs, 0)
	return &t
}

// ParseEndTime parses the session end time to time.Time.
func (s *Session) ParseEndTime() *time.Time {
	if s.EndTs == nil {
		return nil
	}
	t := time.Unix(*s.EndTs, 0)
	return &t
}

// SessionService is the interface for session-related store operations.
type SessionService interface {
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	ListSessions(ctx context.Context, find *FindSession) ([]*Session, error)
	GetSession(ctx context.Context, find *FindSession) (*Session, error)
	UpdateSession(ctx context.Context, update *UpdateSession) (*Session, error)
	DeleteSession(ctx context.Context, delete *DeleteSession) error
}
