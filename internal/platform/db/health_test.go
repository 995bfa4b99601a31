package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakePinger struct {
	err   error
	stats *PoolStats
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

type statsPinger struct{ fakePinger }

func (s *statsPinger) PoolStats() *PoolStats { return s.stats }

func serveHealth(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, body
}

func TestHealthHandler_OK(t *testing.T) {
	rec, body := serveHealth(t, HealthHandler(&fakePinger{}, "/tmp/sqlite/patients.sqlite"))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if body["ok"] != true {
		t.Errorf("expected ok=true, got %v", body["ok"])
	}
	if body["db"] != "/tmp/sqlite/patients.sqlite" {
		t.Errorf("unexpected db %v", body["db"])
	}
	if _, ok := body["pool"]; ok {
		t.Error("expected no pool stats for a plain pinger")
	}
}

func TestHealthHandler_Unreachable(t *testing.T) {
	rec, body := serveHealth(t, HealthHandler(&fakePinger{err: errors.New("dial tcp: refused")}, "db.internal:5432/intake"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if body["ok"] != false {
		t.Errorf("expected ok=false, got %v", body["ok"])
	}
	if strings.Contains(rec.Body.String(), "refused") {
		t.Error("driver error text must not leak into the response")
	}
}

func TestHealthHandler_IncludesPoolStats(t *testing.T) {
	p := &statsPinger{fakePinger{stats: &PoolStats{TotalConns: 3, MaxConns: 20}}}
	_, body := serveHealth(t, HealthHandler(p, "db.internal:5432/intake"))

	pool, ok := body["pool"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected pool object, got %v", body["pool"])
	}
	if pool["max_conns"] != float64(20) {
		t.Errorf("expected max_conns 20, got %v", pool["max_conns"])
	}
}
