package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newInstrumentedRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/static/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

func TestMiddlewareCountsRequests(t *testing.T) {
	r := newInstrumentedRouter()

	req := httptest.NewRequest(http.MethodGet, "/search", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	count := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/search", "200"))
	require.GreaterOrEqual(t, count, 1.0)
	require.NotZero(t, testutil.CollectAndCount(requestDuration))
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := newInstrumentedRouter()

	// Two different file names should land in the same wildcard label.
	for _, path := range []string{"/static/styles.css", "/static/logo.png"} {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	count := testutil.ToFloat64(requestsTotal.WithLabelValues("GET", "/static/*", "404"))
	require.GreaterOrEqual(t, count, 2.0)
}
