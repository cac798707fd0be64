package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
	"github.com/guttosm/sectorpulse/internal/domain/models"
)

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockSnapshotService{sector: &models.SectorSummary{SectorCode: "013", TotalMarketCap: 400, Count: 2, Records: sampleRecords}}
	r := NewRouter(NewHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sectors/013", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	if svc.gotCode != "013" {
		t.Fatalf("service saw code %q", svc.gotCode)
	}

	var out dto.SectorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json response: %v", err)
	}
	if out.Sector.Count != 2 || out.Sector.Records[0].Name != "삼성전자" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestNewRouter_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(NewHandler(&mockSnapshotService{}))

	cases := []struct {
		method  string
		path    string
		status  int
		message string
	}{
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound, dto.MsgRouteNotFound},
		{http.MethodPost, "/api/v1/records", http.StatusMethodNotAllowed, dto.MsgMethodNotAllowed},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, w.Code)
		}
		var out dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid json: %v", tc.method, tc.path, err)
		}
		if out.Message != tc.message || out.RequestID == "" {
			t.Fatalf("%s %s: unexpected body %+v", tc.method, tc.path, out)
		}
	}
}

func TestNewRouter_ErrorBodiesCarryRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/api/v1/sectors/13a", http.StatusBadRequest, dto.MsgBadSectorCode},
		{"/api/v1/sectors/999", http.StatusNotFound, dto.MsgSectorNotFound},
	}
	r := NewRouter(NewHandler(&mockSnapshotService{}))
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.Header.Set("X-Request-ID", "client-abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, w.Code)
		}
		var out dto.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: invalid json: %v", tc.path, err)
		}
		if out.Message != tc.message || out.RequestID != "client-abc" || w.Header().Get("X-Request-ID") != "client-abc" {
			t.Fatalf("%s: unexpected body %+v", tc.path, out)
		}
	}
}
