package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mllanos/park-ticket-orders/internal/observability"
)

func TestLoggerMiddlewareInjectsRequestLogger(t *testing.T) {
	var got observability.Logger
	handler := LoggerMiddleware(observability.NewLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestLogger(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if got == nil {
		t.Fatal("no request logger in context")
	}
}

func TestRequestLoggerWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	if RequestLogger(req.Context()) != nil {
		t.Error("expected nil logger without middleware")
	}
}

func TestIdempotencyKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := IdempotencyKeyMiddleware(next)

	tests := []struct {
		name       string
		method     string
		path       string
		key        string
		wantStatus int
	}{
		{"missing key", http.MethodPost, "/v1/purchases", "", http.StatusBadRequest},
		{"short key", http.MethodPost, "/v1/purchases", "abc", http.StatusBadRequest},
		{"valid key", http.MethodPost, "/v1/purchases", strings.Repeat("k", 16), http.StatusNoContent},
		{"other route ignored", http.MethodGet, "/v1/orders/x", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set("Idempotency-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
