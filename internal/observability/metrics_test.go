package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/tickets", fiber.MethodGet, 200, 4*time.Millisecond)
	m.RecordRequest("/api/tickets", fiber.MethodGet, 200, 2*time.Millisecond)
	m.RecordRequest("/api/auth/login", fiber.MethodPost, 401, time.Millisecond)
	m.RecordError("/api/auth/login", fiber.MethodPost, "INVALID_CREDENTIALS")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, RouteStat{Path: "/api/auth/login", Method: "POST", Status: "401", Count: 1, AvgLatencyMS: 1}, snap.Requests[0])
	assert.Equal(t, int64(2), snap.Requests[1].Count)
	assert.InDelta(t, 3.0, snap.Requests[1].AvgLatencyMS, 0.001)

	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "INVALID_CREDENTIALS", snap.Errors[0].Status)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", fiber.MethodGet, 200, 0)
	m.RecordError("/", fiber.MethodGet, "X")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusTeapot).SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "request", entries[0].Message)
	assert.Equal(t, "/items/42", entries[0].ContextMap()["path"])

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 1)
	assert.Equal(t, "/items/:id", snap.Requests[0].Path)
}

func TestRouteLabel(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Use(func(c *fiber.Ctx) error {
		MarkUnmatched(c)
		return c.SendStatus(fiber.StatusNotFound)
	})

	for _, path := range []string{"/items/1", "/items/2", "/nope-1", "/nope-2", "/nope-3"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, RouteStat{Path: "/items/:id", Method: "GET", Status: "200", Count: 2}, withoutLatency(snap.Requests[0]))
	assert.Equal(t, RouteStat{Path: UnmatchedRoute, Method: "GET", Status: "404", Count: 3}, withoutLatency(snap.Requests[1]))
}

func withoutLatency(s RouteStat) RouteStat {
	s.AvgLatencyMS = 0
	return s
}
