package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperr "github.com/ifmtech/event-planning/server/internal/errors"
	"github.com/ifmtech/event-planning/server/service/session"
	"github.com/ifmtech/event-planning/store"
)

// SessionResponse is the JSON shape of one session. Times are RFC 3339 in
// UTC; absent timestamps are omitted.
type SessionResponse struct {
	ID          int32  `json:"id"`
	Title       string `json:"title"`
	Speaker     string `json:"speaker,omitempty"`
	Priority    int32  `json:"priority"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	VIP         bool   `json:"vip"`
	CreatedTime string `json:"createdTime,omitempty"`
	UpdatedTime string `json:"updatedTime,omitempty"`
}

// PageResponse is one page of sessions.
type PageResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

// ErrorResponse carries a machine-readable code and a human-readable message.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createSessionBody struct {
	Title     string  `json:"title"`
	Speaker   string  `json:"speaker"`
	Priority  int32   `json:"priority"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	VIP       bool    `json:"vip"`
}

type updateSessionBody struct {
	Title     *string `json:"title"`
	Speaker   *string `json:"speaker"`
	Priority  *int32  `json:"priority"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	VIP       *bool   `json:"vip"`
}

// CreateSession handles POST /api/v1/sessions.
func (s *APIV1Service) CreateSession(c echo.Context) error {
	var body createSessionBody
	if err := c.Bind(&body); err != nil {
		return writeError(c, apperr.InvalidArgument("malformed request body"))
	}
	startTs, err := parseTimeParam(body.StartTime)
	if err != nil {
		return writeError(c, apperr.InvalidArgument("startTime must be RFC 3339"))
	}
	endTs, err := parseTimeParam(body.EndTime)
	if err != nil {
		return writeError(c, apperr.InvalidArgument("endTime must be RFC 3339"))
	}

	created, err := s.SessionService.CreateSession(c.Request().Context(), &session.CreateSessionRequest{
		Title:    body.Title,
		Speaker:  body.Speaker,
		Priority: body.Priority,
		StartTs:  startTs,
		EndTs:    endTs,
		VIP:      body.VIP,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionFromStore(created))
}

// UpdateSession handles PUT /api/v1/sessions/:id.
func (s *APIV1Service) UpdateSession(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return writeError(c, apperr.InvalidArgument("invalid session id"))
	}
	var body updateSessionBody
	if err := c.Bind(&body); err != nil {
		return writeError(c, apperr.InvalidArgument("malformed request body"))
	}
	startTs, err := parseTimeParam(body.StartTime)
	if err != nil {
		return writeError(c, apperr.InvalidArgument("startTime must be RFC 3339"))
	}
	endTs, err := parseTimeParam(body.EndTime)
	if err != nil {
		return writeError(c, apperr.InvalidArgument("endTime must be RFC 3339"))
	}

	updated, err := s.SessionService.UpdateSession(c.Request().Context(), &session.UpdateSessionRequest{
		ID:       id,
		Title:    body.Title,
		Speaker:  body.Speaker,
		Priority: body.Priority,
		StartTs:  startTs,
		EndTs:    endTs,
		VIP:      body.VIP,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionFromStore(updated))
}

// DeleteSession handles DELETE /api/v1/sessions/:id.
func (s *APIV1Service) DeleteSession(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return writeError(c, apperr.InvalidArgument("invalid session id"))
	}
	if err := s.SessionService.DeleteSession(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSessions handles GET /api/v1/sessions.
// Query parameters: page, size, sortBy, startFrom, startTo.
func (s *APIV1Service) ListSessions(c echo.Context) error {
	req := &session.ListSessionsRequest{SortBy: c.QueryParam("sortBy")}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, apperr.InvalidArgument("page must be an integer"))
		}
		req.Page = &page
	}
	if raw := c.QueryParam("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return writeError(c, apperr.InvalidArgument("size must be an integer"))
		}
		req.Size = &size
	}
	var err error
	if req.StartFrom, err = parseQueryTime(c, "startFrom"); err != nil {
		return writeError(c, apperr.InvalidArgument("startFrom must be RFC 3339"))
	}
	if req.StartTo, err = parseQueryTime(c, "startTo"); err != nil {
		return writeError(c, apperr.InvalidArgument("startTo must be RFC 3339"))
	}

	page, err := s.SessionService.ListSessions(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	resp := &PageResponse{
		Sessions: make([]*SessionResponse, 0, len(page.Sessions)),
		Total:    page.Total,
		Page:     page.Page,
		Size:     page.Size,
	}
	for _, item := range page.Sessions {
		resp.Sessions = append(resp.Sessions, sessionFromStore(item))
	}
	return c.JSON(http.StatusOK, resp)
}

// sessionFromStore converts a store.Session to its response shape.
func sessionFromStore(s *store.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:       s.ID,
		Title:    s.Title,
		Speaker:  s.Speaker,
		Priority: s.Priority,
		VIP:      s.VIP,
	}
	if s.StartTs != nil {
		resp.StartTime = formatTime(*s.StartTs)
	}
	if s.EndTs != nil {
		resp.EndTime = formatTime(*s.EndTs)
	}
	if s.CreatedTs != 0 {
		resp.CreatedTime = formatTime(s.CreatedTs)
	}
	if s.UpdatedTs != 0 {
		resp.UpdatedTime = formatTime(s.UpdatedTs)
	}
	return resp
}

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func parseID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// parseTimeParam converts an optional RFC 3339 string to unix seconds.
func parseTimeParam(raw *string) (*int64, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, err
	}
	ts := t.Unix()
	return &ts, nil
}

func parseQueryTime(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	return parseTimeParam(&raw)
}

// writeError maps a coded error to its HTTP status.
func writeError(c echo.Context, err error) error {
	code := apperr.CodeOf(err, apperr.ErrCodeUnavailable)
	status := http.StatusServiceUnavailable
	switch code {
	case apperr.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apperr.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperr.ErrCodeConflict:
		status = http.StatusConflict
	case apperr.ErrCodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	message := err.Error()
	var coded *apperr.Error
	if errors.As(err, &coded) {
		message = coded.Message
	}
	return c.JSON(status, &ErrorResponse{Code: string(code), Message: message})
}
