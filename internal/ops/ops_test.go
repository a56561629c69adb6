package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/julianstephens/mellow/internal/metrics"
)

func TestHealthOK(t *testing.T) {
	h := NewRouter(nil, map[string]HealthCheck{
		"store": func() error { return nil },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if st.Status != "ok" || st.Checks["store"] != "ok" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestHealthDegraded(t *testing.T) {
	h := NewRouter(nil, map[string]HealthCheck{
		"gateway": func() error { return errors.New("not connected") },
		"store":   func() error { return nil },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var st Status
	json.NewDecoder(rec.Body).Decode(&st)
	if st.Status != "degraded" || st.Checks["gateway"] != "not connected" {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg).RecordCheckIn("happy")

	rec := httptest.NewRecorder()
	NewRouter(reg, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `mellow_checkins_total{mood="happy"} 1`) {
		t.Errorf("expected check-in counter, got:\n%s", rec.Body.String())
	}
}

func TestMetricsRouteDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a gatherer, got %d", rec.Code)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", NewRouter(nil, nil)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
