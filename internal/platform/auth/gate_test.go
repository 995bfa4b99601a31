package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestGate_Check(t *testing.T) {
	g := NewGate("s3cret")

	tests := []struct {
		name      string
		presented string
		wantErr   bool
	}{
		{"exact match", "s3cret", false},
		{"wrong", "nope", true},
		{"empty", "", true},
		{"prefix", "s3cre", true},
		{"longer", "s3cret!", true},
		{"case differs", "S3CRET", true},
		{"trailing space", "s3cret ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.presented)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check(%q) error = %v, wantErr %v", tt.presented, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestGate_EmptySecretRejectsEverything(t *testing.T) {
	g := NewGate("")
	if err := g.Check(""); err == nil {
		t.Error("expected empty credential to be rejected")
	}
	if err := g.Check("anything"); err == nil {
		t.Error("expected any credential to be rejected")
	}
}

func TestGate_NilRejects(t *testing.T) {
	var g *Gate
	if err := g.Check("x"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized from nil gate, got %v", err)
	}
}

func TestRequireAdmin(t *testing.T) {
	e := echo.New()
	mw := RequireAdmin(NewGate("changeme"))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong header", "wrong", http.StatusUnauthorized, false},
		{"correct header", "changeme", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
			if tt.header != "" {
				req.Header.Set(AdminHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			called := false
			h := mw(func(c echo.Context) error {
				called = true
				return c.String(http.StatusOK, "ok")
			})
			if err := h(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized && strings.TrimSpace(rec.Body.String()) != `{"error":"Unauthorized"}` {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin_HeaderNameCaseInsensitive(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/patients/1", nil)
	req.Header.Set("x-admin-password", "changeme")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAdmin(NewGate("changeme"))(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	_ = h(c)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected lowercase header to be accepted, got %d", rec.Code)
	}
}
