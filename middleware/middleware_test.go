// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/shadow-board/models"
)

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reqID  string
	}{
		{name: "implicit 200", body: "ok"},
		{name: "created", status: http.StatusCreated, body: `{"room_id":"ABC123"}`},
		{name: "forbidden", status: http.StatusForbidden, body: "capacity"},
		{name: "caller request id", status: http.StatusNotFound, reqID: "trace-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *http.Request
			h := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				seen = r
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(http.MethodPost, "/rooms", nil)
			if tt.reqID != "" {
				req.Header.Set(RequestIDHeader, tt.reqID)
			}
			w := httptest.NewRecorder()
			h(w, req)

			if seen == nil {
				t.Fatal("wrapped handler was not called")
			}
			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if w.Code != want || w.Body.String() != tt.body {
				t.Errorf("got %d %q, want %d %q", w.Code, w.Body.String(), want, tt.body)
			}

			id := w.Header().Get(RequestIDHeader)
			if tt.reqID != "" && id != tt.reqID {
				t.Errorf("request id = %q, want %q", id, tt.reqID)
			}
			if id == "" {
				t.Error("response has no request id")
			}
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusTeapot)
	if rec.status != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.status, http.StatusTeapot)
	}
}

func TestJSONResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		data   any
		want   string
	}{
		{
			name:   "envelope with data",
			status: http.StatusCreated,
			data:   models.Envelope{Success: true, Message: "Question created successfully", Data: map[string]int{"total_votes": 0}},
			want:   `{"success":true,"message":"Question created successfully","data":{"total_votes":0}}`,
		},
		{
			name:   "envelope without data",
			status: http.StatusOK,
			data:   models.Envelope{Success: true, Message: "Left room successfully"},
			want:   `{"success":true,"message":"Left room successfully"}`,
		},
		{
			name:   "error body",
			status: http.StatusForbidden,
			data:   models.ErrorResponse{Error: "capacity_exceeded", Message: "Room has reached maximum capacity"},
			want:   `{"success":false,"error":"capacity_exceeded","message":"Room has reached maximum capacity"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONResponse(w, tt.status, tt.data)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		ErrorResponse(w, status, "nope")

		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != status || resp.Success || resp.Error != http.StatusText(status) || resp.Message != "nope" {
			t.Errorf("ErrorResponse(%d) wrote %d %+v", status, w.Code, resp)
		}
	}
}

func TestParseJSONBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantText string
		wantOpts int
	}{
		{name: "question", body: `{"question_text":"Lunch?","custom_options":[{"option_text":"A"},{"option_text":"B"}]}`, wantText: "Lunch?", wantOpts: 2},
		{name: "unknown fields ignored", body: `{"question_text":"Q","colour":"blue"}`, wantText: "Q"},
		{name: "malformed", body: `{"question_text":`, wantErr: true},
		{name: "empty", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/rooms/ABC123/questions", strings.NewReader(tt.body))

			var got models.CreateQuestionRequest
			err := ParseJSONBody(req, &got)
			if tt.wantErr {
				if err == nil {
					t.Error("expected a decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJSONBody() error = %v", err)
			}
			if got.QuestionText != tt.wantText || len(got.CustomOptions) != tt.wantOpts {
				t.Errorf("decoded %+v", got)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	})
	h := CORS(next)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantBody   string
		wantOrigin string
	}{
		{"preflight", http.MethodOptions, "http://localhost:5173", http.StatusNoContent, "", "http://localhost:5173"},
		{"reflects origin", http.MethodGet, "https://board.example.com", http.StatusOK, "handled", "https://board.example.com"},
		{"no origin", http.MethodPost, "", http.StatusOK, "handled", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/rooms", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus || w.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", w.Code, w.Body.String(), tt.wantStatus, tt.wantBody)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}

			headers := w.Header().Get("Access-Control-Allow-Headers")
			for _, want := range []string{"Authorization", "Content-Type", RequestIDHeader} {
				if !strings.Contains(headers, want) {
					t.Errorf("Allow-Headers %q missing %s", headers, want)
				}
			}
			methods := w.Header().Get("Access-Control-Allow-Methods")
			for _, want := range []string{"GET", "POST", "PATCH", "DELETE"} {
				if !strings.Contains(methods, want) {
					t.Errorf("Allow-Methods %q missing %s", methods, want)
				}
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.2", "", "10.0.0.1:5555", "203.0.113.7"},
		{"forwarded single", "203.0.113.8", "198.51.100.1", "10.0.0.1:5555", "203.0.113.8"},
		{"real ip", "", "198.51.100.2", "10.0.0.1:5555", "198.51.100.2"},
		{"remote v4", "", "", "192.0.2.10:41000", "192.0.2.10"},
		{"remote v6", "", "", "[2001:db8::1]:41000", "2001:db8::1"},
		{"remote without port", "", "", "192.0.2.11", "192.0.2.11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
