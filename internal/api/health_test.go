package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		ping       func(context.Context) error
		path       string
		want       int
		wantStatus string
		wantError  string
	}{
		{name: "healthz ignores database", ping: func(context.Context) error { return assertErr{} }, path: "/healthz", want: 200, wantStatus: "ok"},
		{name: "readyz without store", ping: nil, path: "/readyz", want: 200, wantStatus: "ready"},
		{name: "readyz ok", ping: func(context.Context) error { return nil }, path: "/readyz", want: 200, wantStatus: "ready"},
		{name: "readyz degraded", ping: func(context.Context) error { return assertErr{} }, path: "/readyz", want: 503, wantStatus: "degraded", wantError: "err"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler(tc.ping).Register(r)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.want {
				t.Fatalf("want %d got %d", tc.want, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["status"] != tc.wantStatus || body["error"] != tc.wantError {
				t.Fatalf("unexpected body %v", body)
			}
		})
	}
}

// TestHealthHandler_OnAPIRouter mounts the health checks the way InitializeApp
// does: the ping runs under the router's request timeout and health checks are
// never rate limited.
func TestHealthHandler_OnAPIRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pings := 0
	r := NewRouter(NewHandler(&mockSnapshotService{}))
	NewHealthHandler(func(ctx context.Context) error {
		pings++
		if _, ok := ctx.Deadline(); !ok {
			return context.DeadlineExceeded
		}
		return nil
	}).Register(r)

	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("check %d: got %d (%s)", i, w.Code, w.Body.String())
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("check %d: missing request id", i)
		}
	}
	if pings != 100 {
		t.Fatalf("want 100 pings, got %d", pings)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "err" }
