// Package v1 exposes the session scheduling API over HTTP.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/ifmtech/event-planning/internal/profile"
	"github.com/ifmtech/event-planning/internal/taskpool"
	"github.com/ifmtech/event-planning/server/middleware"
	"github.com/ifmtech/event-planning/server/service/session"
	"github.com/ifmtech/event-planning/store"
)

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	SessionService *session.Service

	rateLimiter *middleware.RateLimiter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, pool *taskpool.Pool) *APIV1Service {
	return &APIV1Service{
		Profile:        profile,
		Store:          store,
		SessionService: session.NewService(store, pool),
		rateLimiter:    middleware.NewRateLimiter(10, 20),
	}
}

// RegisterRoutes registers the v1 routes on the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	g := echoServer.Group("/api/v1", s.rateLimiter.Echo())

	g.POST("/sessions", s.CreateSession)
	g.GET("/sessions", s.ListSessions)
	g.PUT("/sessions/:id", s.UpdateSession)
	g.DELETE("/sessions/:id", s.DeleteSession)
}
