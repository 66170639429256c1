package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	req.Header.Set(TraceIDHeader, "trace-9")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "req-123" {
		t.Errorf("expected incoming id to be reused, got %q", seen)
	}
	if rec.Header().Get(TraceIDHeader) != "trace-9" {
		t.Errorf("expected trace id echoed, got %q", rec.Header().Get(TraceIDHeader))
	}
}
