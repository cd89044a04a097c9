package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_CountsByRouteAndStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	failed := httpRequestsTotal.WithLabelValues("/generate", http.MethodPost, "502")
	ok := httpRequestsTotal.WithLabelValues("/healthz", http.MethodGet, "200")
	beforeFailed, beforeOK := testutil.ToFloat64(failed), testutil.ToFloat64(ok)

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/generate", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if got := testutil.ToFloat64(failed) - beforeFailed; got != 2 {
		t.Fatalf("/generate 502 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Fatalf("/healthz 200 count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight gauge should return to 0, got %v", got)
	}
}
