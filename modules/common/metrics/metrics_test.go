package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryInc(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	labels := map[string]string{"capability": "image", "outcome": "ok"}
	r.Inc(ctx, "ai_calls_total", labels, 1)
	r.Inc(ctx, "ai_calls_total", map[string]string{"outcome": "ok", "capability": "image"}, 2)

	require.Equal(t, int64(3), r.Get("ai_calls_total", labels))
	require.Equal(t, int64(0), r.Get("ai_calls_total", map[string]string{"capability": "text"}))
	require.Equal(t, int64(3), r.Snapshot()["ai_calls_total{capability=image,outcome=ok}"])
}

func TestRegistryConcurrentInc(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Inc(context.Background(), "hits", nil, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, int64(50), r.Get("hits", nil))
}

func TestNilRegistryIncIsNoop(t *testing.T) {
	var r *Registry
	require.NotPanics(t, func() { r.Inc(context.Background(), "x", nil, 1) })
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.Inc(context.Background(), "http_requests_total", map[string]string{"status": "2xx"}, 1)

	rec := httptest.NewRecorder()
	r.Handler(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Server   map[string]any   `json:"server"`
		Counters map[string]int64 `json:"counters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Server, "uptime")
	require.Equal(t, int64(1), body.Counters["http_requests_total{status=2xx}"])
}

func TestStatusClass(t *testing.T) {
	require.Equal(t, "2xx", StatusClass(200))
	require.Equal(t, "4xx", StatusClass(409))
	require.Equal(t, "5xx", StatusClass(502))
	require.Equal(t, "0", StatusClass(0))
}
