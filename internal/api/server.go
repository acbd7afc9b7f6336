package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logsentry/internal/store"
	"logsentry/pkg/models"
)

// Handler serves the read-only query surface consumed by the external
// dashboard. No mutation entry point is exposed.
type Handler struct {
	store *store.Store
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// NewServer creates an echo server with the query routes registered.
func NewServer(st *store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	NewHandler(st).RegisterRoutes(e)
	return e
}

// RegisterRoutes attaches the handlers to the echo web server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/alerts", h.handleRecentAlerts)
	e.GET("/timeline", h.handleTimeline)
	e.GET("/healthz", h.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// timelineEntry is one row of the event timeline, with the browsing
// metadata lifted out of the sidecar.
type timelineEntry struct {
	Time   string `json:"time"`
	Host   string `json:"host"`
	User   string `json:"user"`
	Action string `json:"action"`
	Status string `json:"status"`
	IP     string `json:"ip"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
}

func (h *Handler) handleRecentAlerts(c echo.Context) error {
	limit := intQuery(c, "limit", 50)

	alerts, err := h.store.RecentAlerts(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *Handler) handleTimeline(c echo.Context) error {
	limit := intQuery(c, "limit", 100)
	filter := store.EventFilter{Host: c.QueryParam("host")}

	events, err := h.store.RecentEvents(c.Request().Context(), filter, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	entries := make([]timelineEntry, 0, len(events))
	for _, ev := range events {
		entries = append(entries, timelineEntry{
			Time:   ev.Timestamp,
			Host:   ev.Host,
			User:   ev.User,
			Action: ev.Action,
			Status: ev.Status,
			IP:     ev.IP,
			URL:    ev.Sidecar.URL,
			Title:  ev.Sidecar.Title,
		})
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) handleHealth(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
