package live

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"style-assistant-server/modules/common/fence"
	"style-assistant-server/modules/common/gemini"
	"style-assistant-server/modules/common/metrics"
	"style-assistant-server/modules/stylist"
)

// gatedProvider - "old" 프롬프트는 release 될 때까지 대기
type gatedProvider struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *gatedProvider) GenerateText(_ context.Context, req gemini.TextRequest) (*gemini.TextResponse, error) {
	if strings.Contains(req.Prompt, "old") {
		p.once.Do(func() { close(p.entered) })
		<-p.release
	}
	return &gemini.TextResponse{
		Text:   "analysis of " + req.Prompt,
		Chunks: []gemini.GroundingChunk{{Web: &gemini.SourceRef{URI: "https://src"}}},
	}, nil
}

func (p *gatedProvider) GenerateImages(context.Context, gemini.ImageRequest) (*gemini.ImageResponse, error) {
	return &gemini.ImageResponse{Images: [][]byte{{0xFF, 0xD8, 0xFF}}}, nil
}

func (p *gatedProvider) EditImage(context.Context, gemini.EditRequest) (*gemini.EditResponse, error) {
	return nil, errors.New("not used")
}

func newTestServer(t *testing.T, p stylist.Provider) (*httptest.Server, *Hub, *metrics.Registry) {
	t.Helper()
	reg := metrics.NewRegistry()
	svc, err := stylist.NewService(p, stylist.WithMetrics(reg))
	require.NoError(t, err)
	h := stylist.NewHandler(svc, fence.NewMemorySequencer(time.Minute), 1<<20)
	hub := NewHub(h, reg, 1<<20)

	r := mux.NewRouter()
	hub.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, reg
}

func dial(t *testing.T, srv *httptest.Server, view string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?view=" + view
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, done func(Outbound) bool) []Outbound {
	t.Helper()
	var got []Outbound
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg Outbound
		require.NoError(t, conn.ReadJSON(&msg))
		got = append(got, msg)
		if done(msg) {
			return got
		}
	}
}

func TestLatestRequestWins(t *testing.T) {
	p := newGatedProvider()
	srv, _, _ := newTestServer(t, p)
	conn := dial(t, srv, "item-view")

	require.NoError(t, conn.WriteJSON(Inbound{
		Type:      TypeItemTextRequest,
		RequestID: "r1",
		Payload:   json.RawMessage(`{"text":"old jacket"}`),
	}))
	<-p.entered

	require.NoError(t, conn.WriteJSON(Inbound{
		Type:      TypeItemTextRequest,
		RequestID: "r2",
		Payload:   json.RawMessage(`{"text":"new jacket"}`),
	}))

	msgs := readUntil(t, conn, func(m Outbound) bool { return m.RequestID == "r2" && m.Type == TypeResult })
	result := msgs[len(msgs)-1]
	require.Equal(t, int64(2), result.Sequence)
	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data["description"], "new jacket")

	close(p.release)
	msgs = readUntil(t, conn, func(m Outbound) bool { return m.RequestID == "r1" && m.Type != TypeAccepted })
	stale := msgs[len(msgs)-1]
	require.Equal(t, TypeSuperseded, stale.Type)
	require.Equal(t, int64(1), stale.Sequence)
	require.Nil(t, stale.Data)
	require.Equal(t, stylist.ErrCodeRequestSuperseded, stale.ErrorCode)
}

func TestUnknownMessageType(t *testing.T) {
	srv, _, reg := newTestServer(t, newGatedProvider())
	conn := dial(t, srv, "v")

	require.NoError(t, conn.WriteJSON(Inbound{Type: "dance", RequestID: "x"}))
	msgs := readUntil(t, conn, func(m Outbound) bool { return m.RequestID == "x" })
	require.Equal(t, TypeError, msgs[0].Type)
	require.Equal(t, stylist.ErrCodeInvalidRequest, msgs[0].ErrorCode)
	require.Equal(t, int64(1), reg.Get("ws_messages_total", map[string]string{"type": "dance"}))
}

func TestInvalidPayloadReturnsError(t *testing.T) {
	srv, _, _ := newTestServer(t, newGatedProvider())
	conn := dial(t, srv, "v")

	require.NoError(t, conn.WriteJSON(Inbound{Type: TypeTrendsRequest, Payload: json.RawMessage(`{"category":""}`)}))
	msgs := readUntil(t, conn, func(m Outbound) bool { return m.Type == TypeError })
	require.Equal(t, TypeAccepted, msgs[0].Type)
	require.NotEmpty(t, msgs[0].RequestID)
	require.Equal(t, msgs[0].RequestID, msgs[len(msgs)-1].RequestID)
	require.Equal(t, stylist.ErrCodeInvalidRequest, msgs[len(msgs)-1].ErrorCode)
}

func TestServeWSRequiresView(t *testing.T) {
	srv, _, _ := newTestServer(t, newGatedProvider())

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestViewInfoAndCleanup(t *testing.T) {
	srv, hub, _ := newTestServer(t, newGatedProvider())

	resp, err := http.Get(srv.URL + "/views/missing")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn := dial(t, srv, "outfit-view")
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/views/outfit-view")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var info map[string]any
		if json.NewDecoder(resp.Body).Decode(&info) != nil {
			return false
		}
		return info["clientCount"] == float64(1)
	}, 2*time.Second, 20*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.views["outfit-view"].clients) == 0
	}, 2*time.Second, 20*time.Millisecond)

	require.Zero(t, hub.cleanup(time.Now()), "recently active views are kept")
	require.Equal(t, 1, hub.cleanup(time.Now().Add(inactiveThreshold+time.Minute)))
}
