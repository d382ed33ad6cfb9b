package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry - 서버 카운터. 로컬 스냅샷과 OTel 카운터에 동시에 기록한다.
type Registry struct {
	mu        sync.RWMutex
	counters  map[string]*atomic.Int64
	meter     metric.Meter
	otelCtrs  map[string]metric.Int64Counter
	startTime time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		counters:  make(map[string]*atomic.Int64),
		meter:     otel.GetMeterProvider().Meter("style-assistant-server"),
		otelCtrs:  make(map[string]metric.Int64Counter),
		startTime: time.Now(),
	}
}

func fullKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Inc - name{labels} 카운터를 n 만큼 증가
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string, n int64) {
	if r == nil {
		return
	}
	key := fullKey(name, labels)

	r.mu.RLock()
	c := r.counters[key]
	inst := r.otelCtrs[name]
	r.mu.RUnlock()

	if c == nil || inst == nil {
		r.mu.Lock()
		if c = r.counters[key]; c == nil {
			c = &atomic.Int64{}
			r.counters[key] = c
		}
		if inst = r.otelCtrs[name]; inst == nil {
			if ctr, err := r.meter.Int64Counter(name); err == nil {
				r.otelCtrs[name] = ctr
				inst = ctr
			}
		}
		r.mu.Unlock()
	}
	c.Add(n)

	if inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, n, metric.WithAttributes(attrs...))
	}
}

// Get - 현재 값 (없으면 0)
func (r *Registry) Get(name string, labels map[string]string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.counters[fullKey(name, labels)]; c != nil {
		return c.Load()
	}
	return 0
}

// Snapshot - counter key → 값
func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v.Load()
	}
	return out
}

// Handler - GET /metrics
func (r *Registry) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":    time.Since(r.startTime).String(),
			"startTime": r.startTime,
		},
		"counters": r.Snapshot(),
	})
}

// StatusClass - 200 → "2xx"
func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
