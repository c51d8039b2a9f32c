// Package server wires the HTTP server: echo instance, middleware, routes
// and lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ifmtech/event-planning/internal/profile"
	"github.com/ifmtech/event-planning/internal/taskpool"
	"github.com/ifmtech/event-planning/server/internal/observability"
	apiv1 "github.com/ifmtech/event-planning/server/router/api/v1"
	"github.com/ifmtech/event-planning/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store, pool *taskpool.Pool) (*Server, error) {
	e := echo.New()
	e.Debug = profile.Mode == "dev"
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.CORS())
	e.Use(requestLogger())
	e.Use(echomw.TimeoutWithConfig(echomw.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	apiv1.NewAPIV1Service(profile, store, pool).RegisterRoutes(e)

	// Warm the session cache before serving: conflict checks scan the cache
	// only, so it must mirror the full persisted set from the first request.
	warmed, err := store.WarmSessionCache(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to warm session cache")
	}
	slog.Info("session cache warmed", "sessions", warmed)

	return s, nil
}

// requestLogger attaches a request-scoped logger and logs each request on
// completion.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqCtx := observability.NewRequestContext(slog.Default())
			ctx := observability.WithRequestContext(c.Request().Context(), reqCtx)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(echo.HeaderXRequestID, reqCtx.RequestID)

			err := next(c)

			reqCtx.Info("request completed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", c.Response().Status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			)
			return err
		}
	}
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "mode", s.Profile.Mode)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "failed to start echo server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.echoServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
	slog.Info("server shutdown")
}
