package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveThrough(reg *Registry, h http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	HTTPMiddleware(reg)(h).ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHTTPMiddleware_RecordsStatusClass(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    int
		class   string
	}{
		{
			name:    "implicit 200 on write",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) },
			code:    http.StatusOK,
			class:   "2xx",
		},
		{
			name:    "explicit 404",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			code:    http.StatusNotFound,
			class:   "4xx",
		},
		{
			name: "first header wins",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.WriteHeader(http.StatusOK)
			},
			code:  http.StatusServiceUnavailable,
			class: "5xx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			w := serveThrough(reg, tt.handler, "GET", "/quote")

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, 1.0, testutil.ToFloat64(reg.httpRequestsTotal.WithLabelValues("GET", "/quote", tt.class)))
			assert.Equal(t, 1, testutil.CollectAndCount(reg.httpRequestsTotal))
		})
	}
}

func TestHTTPMiddleware_RecordsDuration(t *testing.T) {
	reg := NewRegistry()
	serveThrough(reg, func(w http.ResponseWriter, r *http.Request) {}, "GET", "/history")

	n, err := testutil.GatherAndCount(reg, "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	var during float64
	serveThrough(reg, func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(reg.httpRequestsInFlight)
	}, "GET", "/news")

	assert.Equal(t, 1.0, during)
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.httpRequestsInFlight))
}

func TestHTTPMiddleware_UnwrapReachesFlusher(t *testing.T) {
	var flushErr error
	w := serveThrough(nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		flushErr = http.NewResponseController(w).Flush()
	}, "GET", "/quote")

	require.NoError(t, flushErr)
	assert.True(t, w.Flushed)
}
