package dashboard

import (
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"

	"marketsim/internal/config"
)

func newTestHandlers(allowed []string) *Handlers {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	hub := NewHub(logger)
	return NewHandlers(config.DashboardConfig{AllowedOrigins: allowed}, hub, logger)
}

func TestCheckOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origin  string
		allowed []string
		want    bool
	}{
		{name: "no allowlist permits any origin", origin: "https://evil.example", allowed: nil, want: true},
		{name: "exact match in allowlist", origin: "https://dash.example.com", allowed: []string{"https://dash.example.com"}, want: true},
		{name: "mismatch rejected", origin: "https://evil.example", allowed: []string{"https://dash.example.com"}, want: false},
		{name: "wildcard permits any origin", origin: "https://evil.example", allowed: []string{"*"}, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHandlers(tt.allowed)
			req := httptest.NewRequest("GET", "/ws", nil)
			req.Header.Set("Origin", tt.origin)
			if got := h.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	h := newTestHandlers(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	h.HandleHealth(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got == "" {
		t.Error("HandleHealth wrote an empty body")
	}
}
