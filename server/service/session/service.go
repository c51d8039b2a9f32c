package session

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ifmtech/event-planning/internal/taskpool"
	apperr "github.com/ifmtech/event-planning/server/internal/errors"
	"github.com/ifmtech/event-planning/store"
)

const (
	defaultPage = 0
	defaultSize = 20
)

// Service implements session scheduling operations with overlap conflict
// detection. All methods return coded errors from server/internal/errors.
type Service struct {
	store    Store
	detector *ConflictDetector
}

// NewService creates a session service running conflict checks on the given
// shared pool.
func NewService(s Store, pool *taskpool.Pool) *Service {
	return &Service{
		store:    s,
		detector: NewConflictDetector(s, pool),
	}
}

// CreateSession validates, conflict-checks and persists a new session.
func (s *Service) CreateSession(ctx context.Context, req *CreateSessionRequest) (*store.Session, error) {
	if req == nil {
		return nil, apperr.InvalidArgument("request is required")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperr.InvalidArgument("title is required")
	}
	if req.Priority < 0 {
		return nil, apperr.InvalidArgument("priority must not be negative")
	}
	if err := validateTimeRange(req.StartTs, req.EndTs); err != nil {
		return nil, err
	}

	candidate := &store.Session{
		Title:    title,
		Speaker:  req.Speaker,
		Priority: req.Priority,
		StartTs:  req.StartTs,
		EndTs:    req.EndTs,
		VIP:      req.VIP,
	}
	conflict, err := s.detector.HasConflict(ctx, candidate, nil)
	if err != nil {
		return nil, apperr.Unavailable("conflict check did not complete, retry the request", err)
	}
	if conflict {
		return nil, apperr.Conflict("session time range overlaps an existing session")
	}

	created, err := s.store.CreateSession(ctx, candidate)
	if err != nil {
		return nil, apperr.Unavailable("failed to create session", err)
	}
	slog.Info("session created", "session_id", created.ID, "title", created.Title)
	return created, nil
}

// UpdateSession applies a partial update. The conflict check runs on the time
// range carried by the request itself, with the updated session excluded from
// the scan, and runs before the existence check.
func (s *Service) UpdateSession(ctx context.Context, req *UpdateSessionRequest) (*store.Session, error) {
	if req == nil {
		return nil, apperr.InvalidArgument("request is required")
	}
	if req.ID <= 0 {
		return nil, apperr.InvalidArgument("session id is required")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, apperr.InvalidArgument("title must not be blank")
	}
	if req.Priority != nil && *req.Priority < 0 {
		return nil, apperr.InvalidArgument("priority must not be negative")
	}
	if err := validateTimeRange(req.StartTs, req.EndTs); err != nil {
		return nil, err
	}

	candidate := &store.Session{
		ID:      req.ID,
		StartTs: req.StartTs,
		EndTs:   req.EndTs,
	}
	conflict, err := s.detector.HasConflict(ctx, candidate, &req.ID)
	if err != nil {
		return nil, apperr.Unavailable("conflict check did not complete, retry the request", err)
	}
	if conflict {
		return nil, apperr.Conflict("session time range overlaps an existing session")
	}

	existing, err := s.store.GetSession(ctx, &store.FindSession{ID: &req.ID})
	if err != nil {
		return nil, apperr.Unavailable("failed to load session", err)
	}
	if existing == nil {
		return nil, apperr.NotFound("session not found")
	}

	// The merged range must still be valid even when the request only moved
	// one endpoint.
	mergedStart := existing.StartTs
	if req.StartTs != nil {
		mergedStart = req.StartTs
	}
	mergedEnd := existing.EndTs
	if req.EndTs != nil {
		mergedEnd = req.EndTs
	}
	if err := validateTimeRange(mergedStart, mergedEnd); err != nil {
		return nil, err
	}

	update := &store.UpdateSession{
		ID:       req.ID,
		Speaker:  req.Speaker,
		Priority: req.Priority,
		StartTs:  req.StartTs,
		EndTs:    req.EndTs,
		VIP:      req.VIP,
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		update.Title = &trimmed
	}
	updated, err := s.store.UpdateSession(ctx, update)
	if err != nil {
		return nil, apperr.Unavailable("failed to update session", err)
	}
	slog.Info("session updated", "session_id", updated.ID)
	return updated, nil
}

// DeleteSession removes a session. Deleting an absent id or an id that does
// not exist is a no-op success.
func (s *Service) DeleteSession(ctx context.Context, id int32) error {
	if id <= 0 {
		return nil
	}
	if err := s.store.DeleteSession(ctx, &store.DeleteSession{ID: id}); err != nil {
		return apperr.Unavailable("failed to delete session", err)
	}
	slog.Info("session deleted", "session_id", id)
	return nil
}

// ListSessions returns one page of sessions. Page defaults to 0 and size to
// 20; sorting is by priority descending when requested, otherwise by start
// time ascending.
func (s *Service) ListSessions(ctx context.Context, req *ListSessionsRequest) (*store.Page, error) {
	if req == nil {
		req = &ListSessionsRequest{}
	}
	page := defaultPage
	if req.Page != nil {
		page = *req.Page
	}
	size := defaultSize
	if req.Size != nil {
		size = *req.Size
	}
	if page < 0 {
		return nil, apperr.InvalidArgument("page must not be negative")
	}
	if size <= 0 {
		return nil, apperr.InvalidArgument("size must be positive")
	}
	if req.StartFrom != nil && req.StartTo != nil && *req.StartFrom > *req.StartTo {
		return nil, apperr.InvalidArgument("start time window is inverted")
	}

	orderBy := store.OrderByStartTime
	if strings.EqualFold(req.SortBy, "priority") {
		orderBy = store.OrderByPriority
	}

	offset := page * size
	find := &store.FindSession{
		StartFrom: req.StartFrom,
		StartTo:   req.StartTo,
		OrderBy:   orderBy,
		Limit:     &size,
		Offset:    &offset,
	}
	result, err := s.store.SearchSessions(ctx, find)
	if err != nil {
		return nil, apperr.Unavailable("failed to list sessions", err)
	}
	return result, nil
}

// validateTimeRange rejects an inverted or empty range. One-sided or absent
// timestamps are allowed; such sessions carry no range and never conflict.
func validateTimeRange(start, end *int64) error {
	if start != nil && end != nil && *end <= *start {
		return apperr.InvalidArgument("end time must be after start time")
	}
	return nil
}
