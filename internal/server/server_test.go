package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/me/depstart/internal/condition"
	"github.com/me/depstart/internal/metrics"
	"github.com/me/depstart/internal/runtime/runtimetest"
	"github.com/me/depstart/internal/supervisor"
	"github.com/me/depstart/pkg/model"
)

var sweepTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testServer builds a server over a real loop with one dependency-started
// container, one running container and metrics enabled.
func testServer(t *testing.T, sweep bool, now time.Time) *Server {
	t.Helper()
	fake := runtimetest.NewFake().Add("db", true).Add("web", false)
	m := metrics.New()
	loop := supervisor.NewLoop([]supervisor.ManagedContainer{
		{Name: "web", DependsOn: []condition.Condition{condition.Single("db")}},
		{Name: "db"},
	}, fake, supervisor.DefaultConfig(), testLogger(),
		supervisor.WithClock(func() time.Time { return sweepTime }),
		supervisor.WithMetrics(m),
	)
	if sweep {
		if err := loop.Tick(context.Background()); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	return New(loop, 5*time.Second, testLogger(),
		WithMetricsHandler(m.Handler()),
		WithClock(func() time.Time { return now }),
	)
}

// envelope is used to decode the standard response envelope.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Error     *model.APIError `json:"error"`
}

func doGet(t *testing.T, srv *Server, path string, wantStatus int) envelope {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != wantStatus {
		t.Fatalf("GET %s: status=%d, want %d, body=%s", path, w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("GET %s: invalid JSON: %v", path, err)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Errorf("GET %s: missing X-Request-ID header", path)
	}
	return env
}

func TestDiscovery(t *testing.T) {
	srv := testServer(t, false, sweepTime)
	env := doGet(t, srv, "/api/v1/", http.StatusOK)
	if env.Status != "ok" {
		t.Errorf("status = %q, want ok", env.Status)
	}

	var data discoveryResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var paths []string
	for _, e := range data.Endpoints {
		paths = append(paths, e.Path)
	}
	if !strings.Contains(strings.Join(paths, " "), "/metrics") {
		t.Errorf("endpoints %v missing /metrics", paths)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		sweep      bool
		now        time.Time
		wantCode   int
		wantStatus string
	}{
		{"before first sweep", false, sweepTime, http.StatusOK, "starting"},
		{"fresh", true, sweepTime.Add(5 * time.Second), http.StatusOK, "healthy"},
		{"stale", true, sweepTime.Add(time.Minute), http.StatusServiceUnavailable, "stale"},
	}
	for _, tt := range tests {
		srv := testServer(t, tt.sweep, tt.now)
		env := doGet(t, srv, "/healthz", tt.wantCode)

		var data healthResponse
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("%s: decode: %v", tt.name, err)
		}
		if data.Status != tt.wantStatus {
			t.Errorf("%s: health status = %q, want %q", tt.name, data.Status, tt.wantStatus)
		}
		if data.Containers != 2 {
			t.Errorf("%s: containers = %d, want 2", tt.name, data.Containers)
		}
	}
}

func TestListContainers(t *testing.T) {
	srv := testServer(t, true, sweepTime)
	env := doGet(t, srv, "/api/v1/containers", http.StatusOK)

	var data []model.ContainerStatus
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data) != 2 || data[0].Name != "db" || data[1].Name != "web" {
		t.Fatalf("containers = %+v, want db then web", data)
	}
	web := data[1]
	if web.LastAction == nil || web.LastAction.Action != model.ActionStarted || web.LastAction.Trigger != model.TriggerDependency {
		t.Errorf("web last action = %+v, want STARTED by dependency", web.LastAction)
	}
	if web.LastChecked != nil {
		t.Errorf("web last checked = %v, want null", web.LastChecked)
	}
}

func TestGetContainer(t *testing.T) {
	srv := testServer(t, true, sweepTime)

	env := doGet(t, srv, "/api/v1/containers/db", http.StatusOK)
	var data model.ContainerStatus
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.LastAction == nil || data.LastAction.Action != model.ActionSkippedRunning {
		t.Errorf("db last action = %+v, want SKIPPED_RUNNING", data.LastAction)
	}

	env = doGet(t, srv, "/api/v1/containers/ghost", http.StatusNotFound)
	if env.Status != "error" || env.Error == nil || env.Error.Code != model.ErrNotFound {
		t.Errorf("ghost: envelope = %+v, want NOT_FOUND error", env)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t, true, sweepTime)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "depstart_sweeps_total 1") {
		t.Errorf("metrics body missing sweep counter:\n%s", w.Body.String())
	}
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	loop := supervisor.NewLoop(nil, runtimetest.NewFake(), supervisor.DefaultConfig(), testLogger())
	srv := New(loop, 5*time.Second, testLogger())

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with metrics disabled", w.Code)
	}
}

func TestLoggingMiddleware_HealthTrafficIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	loop := supervisor.NewLoop(nil, runtimetest.NewFake(), supervisor.DefaultConfig(), testLogger())
	srv := New(loop, 5*time.Second, logger)

	for _, path := range []string{"/healthz", "/api/v1/containers"} {
		srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	out := buf.String()
	if strings.Contains(out, "path=/healthz") {
		t.Errorf("health probe logged at INFO:\n%s", out)
	}
	if !strings.Contains(out, "path=/api/v1/containers") {
		t.Errorf("API request not logged:\n%s", out)
	}
}
