package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"style-assistant-server/modules/common/fence"
	"style-assistant-server/modules/common/logger"
	"style-assistant-server/modules/common/metrics"
	"style-assistant-server/modules/stylist"
)

const (
	cleanupInterval   = 5 * time.Minute
	inactiveThreshold = 2 * time.Hour
)

// Executor - 작업 실행 (stylist.Handler)
type Executor interface {
	Run(ctx context.Context, op stylist.Operation, body []byte, view string) (*stylist.Response, int)
}

// View - 같은 view ID로 접속한 연결 묶음
type View struct {
	id           string
	clients      map[string]*Client
	createdAt    time.Time
	lastActivity time.Time
}

// Hub - view 관리
type Hub struct {
	exec      Executor
	metrics   *metrics.Registry
	readLimit int64
	upgrader  websocket.Upgrader

	mu    sync.RWMutex
	views map[string]*View
}

func NewHub(exec Executor, reg *metrics.Registry, maxUpload int) *Hub {
	return &Hub{
		exec:      exec,
		metrics:   reg,
		readLimit: int64(maxUpload)*4/3 + 1<<20,
		upgrader: websocket.Upgrader{
			// 개발용 - 모든 origin 허용
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		views: make(map[string]*View),
	}
}

// ServeWS - GET /ws?view=<id>
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	l := logger.For(r.Context(), "live")

	viewID := r.URL.Query().Get("view")
	if err := fence.ValidateView(viewID); err != nil {
		l.Warn().Err(err).Msg("Missing or invalid view parameter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(h.readLimit)

	client := newClient(h, conn, viewID, l.With().Str("view", viewID).Logger())
	h.add(client)

	go client.writePump()
	go client.readPump()
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	now := time.Now()
	v, ok := h.views[c.view]
	if !ok {
		v = &View{id: c.view, clients: make(map[string]*Client), createdAt: now}
		h.views[c.view] = v
	}
	v.clients[c.id] = c
	v.lastActivity = now
	count := len(v.clients)
	h.mu.Unlock()

	h.metrics.Inc(c.ctx, "ws_connections_total", nil, 1)
	c.log.Info().Str("client", c.id).Int("clients", count).Msg("👤 Client joined view")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	remaining := 0
	if v, ok := h.views[c.view]; ok {
		delete(v.clients, c.id)
		v.lastActivity = time.Now()
		remaining = len(v.clients)
	}
	h.mu.Unlock()

	c.log.Info().Str("client", c.id).Int("remaining", remaining).Msg("👋 Client left view")
}

// cleanup - 비활성 빈 view 정리
func (h *Hub) cleanup(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cleaned := 0
	for id, v := range h.views {
		if len(v.clients) == 0 && now.Sub(v.lastActivity) > inactiveThreshold {
			delete(h.views, id)
			cleaned++
		}
	}
	return cleaned
}

// StartCleanup - ctx가 끝날 때까지 주기적으로 정리
func (h *Hub) StartCleanup(ctx context.Context) {
	l := logger.For(ctx, "live")
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := h.cleanup(now); n > 0 {
					l.Info().Int("cleaned", n).Msg("🧹 Cleaned up inactive views")
				}
			}
		}
	}()
	l.Info().Dur("interval", cleanupInterval).Msg("🔄 Started view cleanup routine")
}

// ViewInfo - GET /views/{viewId}
func (h *Hub) ViewInfo(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewId"]

	h.mu.RLock()
	v, ok := h.views[viewID]
	var (
		clientCount  int
		createdAt    time.Time
		lastActivity time.Time
	)
	if ok {
		clientCount = len(v.clients)
		createdAt = v.createdAt
		lastActivity = v.lastActivity
	}
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "View not found"})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"viewId":       viewID,
		"clientCount":  clientCount,
		"createdAt":    createdAt,
		"lastActivity": lastActivity,
		"inactive":     time.Since(lastActivity).String(),
	})
}

// RegisterRoutes - /ws, /views/{viewId}
func (h *Hub) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/ws", h.ServeWS)
	r.HandleFunc("/views/{viewId}", h.ViewInfo).Methods("GET")
}
