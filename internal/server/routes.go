package server

import (
	"net/http"
	"time"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/version", s.VersionHandler)

	e.GET("/api/catalog", s.CatalogHandler)
	e.POST("/api/catalog/refresh", s.RefreshCatalogHandler)
	e.GET("/api/devices/:format/:id", s.DeviceHandler)

	sessions := e.Group("/api/sessions")
	sessions.POST("", s.CreateSessionHandler)
	sessions.GET("/:session/selection", s.SelectionHandler)
	sessions.POST("/:session/devices", s.AddDeviceHandler)
	sessions.DELETE("/:session/devices", s.ClearSelectionHandler)
	sessions.DELETE("/:session/devices/:format/:id", s.RemoveDeviceHandler)
	sessions.POST("/:session/refresh", s.RefreshSelectionHandler)
	sessions.GET("/:session/candidates", s.CandidatesHandler)
	sessions.GET("/:session/comparison", s.ComparisonHandler)
	sessions.GET("/:session/specs", s.SpecsHandler)

	tickets := e.Group("/api/tickets")
	tickets.POST("", s.CreateTicketHandler)
	tickets.GET("", s.ListTicketsHandler)
	tickets.GET("/:id", s.GetTicketHandler)
	tickets.PATCH("/:id/status", s.TicketStatusHandler)
	tickets.POST("/:id/comments", s.TicketCommentHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"version":     versioninfo.Short(),
		"revision":    versioninfo.Revision,
		"dirty":       versioninfo.DirtyBuild,
		"last_commit": versioninfo.LastCommit,
	})
}
