package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	applog "gasdash/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(nil, func(*http.Request) string { return "10.0.0.1" })

	var seen string
	var hasLogger bool
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		hasLogger = applog.FromContext(r.Context()).Component() == applog.ComponentHTTP
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected a uuid request id, got %q", seen)
	}
	if rr.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("response header %q does not match context id %q", rr.Header().Get(HeaderRequestID), seen)
	}
	if !hasLogger {
		t.Fatal("expected a request logger in context")
	}

	got := m.GetMetrics()
	if got.TotalRequests != 1 || got.ClientErrors != 1 || got.ServerErrors != 0 {
		t.Fatalf("unexpected metrics: %+v", got)
	}
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	m := NewMiddleware(nil, nil)
	incoming := uuid.NewString()

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != incoming {
		t.Fatalf("expected %q, got %q", incoming, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid\nX-Injected: 1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen == "" || seen == req.Header.Get(HeaderRequestID) {
		t.Fatalf("malformed incoming id should be replaced, got %q", seen)
	}
}
