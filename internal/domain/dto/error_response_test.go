package dto

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestErrorResponse_Error(t *testing.T) {
	cases := []struct {
		resp ErrorResponse
		want string
	}{
		{ErrorResponse{Message: MsgNoSnapshot}, "no snapshot available"},
		{ErrorResponse{Message: MsgLoadFailed, ErrorDetails: "connection refused"}, "failed to load snapshot: connection refused"},
	}
	for _, tc := range cases {
		if got := tc.resp.Error(); got != tc.want {
			t.Fatalf("want %q got %q", tc.want, got)
		}
	}
}

func TestNewErrorResponse(t *testing.T) {
	e := NewErrorResponse(MsgSectorNotFound, nil)
	if e.Message != MsgSectorNotFound || e.ErrorDetails != "" || e.RequestID != "" {
		t.Fatalf("unexpected %+v", e)
	}
	if e.Timestamp.IsZero() || time.Since(e.Timestamp) > time.Second || e.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp not set to current UTC: %v", e.Timestamp)
	}

	e2 := NewErrorResponse(MsgLoadFailed, errors.New("pq: relation \"snapshot_runs\" does not exist"))
	if e2.ErrorDetails != `pq: relation "snapshot_runs" does not exist` {
		t.Fatalf("unexpected %+v", e2)
	}
}

func TestErrorResponse_WithRequestID(t *testing.T) {
	base := NewErrorResponse(MsgBadSectorCode, nil)
	tagged := base.WithRequestID("req-42")
	if tagged.RequestID != "req-42" || tagged.Message != MsgBadSectorCode {
		t.Fatalf("unexpected %+v", tagged)
	}
	if base.RequestID != "" {
		t.Fatalf("WithRequestID must not modify the receiver")
	}
}

// TestErrorResponse_JSON pins the bodies the snapshot API sends for its
// 404, 400 and 500 responses.
func TestErrorResponse_JSON(t *testing.T) {
	stamp := time.Date(2025, 9, 18, 6, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		resp ErrorResponse
		want string
	}{
		{
			name: "no snapshot",
			resp: ErrorResponse{Message: MsgNoSnapshot, Timestamp: stamp},
			want: `{"message":"no snapshot available","timestamp":"2025-09-18T06:30:00Z"}`,
		},
		{
			name: "bad sector code with request id",
			resp: ErrorResponse{Message: MsgBadSectorCode, RequestID: "req-1", Timestamp: stamp},
			want: `{"message":"sector code must be three digits","request_id":"req-1","timestamp":"2025-09-18T06:30:00Z"}`,
		},
		{
			name: "storage failure",
			resp: ErrorResponse{Message: MsgLoadFailed, ErrorDetails: "timeout", Timestamp: stamp},
			want: `{"message":"failed to load snapshot","error":"timeout","timestamp":"2025-09-18T06:30:00Z"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}
