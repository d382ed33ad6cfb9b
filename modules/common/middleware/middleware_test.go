package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"style-assistant-server/modules/common/metrics"
)

func TestRequestLogger(t *testing.T) {
	reg := metrics.NewRegistry()
	var seen string

	r := mux.NewRouter()
	r.Use(RequestLogger(reg))
	r.HandleFunc("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	require.Equal(t, int64(1), reg.Get("http_requests_total", map[string]string{
		"method": "GET",
		"path":   "/items/{id}",
		"status": "4xx",
	}))
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	r := mux.NewRouter()
	r.Use(RequestLogger(nil))
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(RequestIDFrom(r.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "abc-123", rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/outfit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, called)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-View-ID")
}
