package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"style-assistant-server/modules/common/fence"
	"style-assistant-server/modules/common/logger"
	"style-assistant-server/modules/common/middleware"
)

// ViewHeader - 요청 펜싱용 view ID 헤더 (선택)
const ViewHeader = "X-View-ID"

const maxJSONBody = 1 << 20

// Operation - 화면별 작업
type Operation string

const (
	OpOutfit    Operation = "outfit"
	OpTrends    Operation = "trends"
	OpItemText  Operation = "item_text"
	OpItemImage Operation = "item_image"
)

// Handler - HTTP / WebSocket 공용 실행기
type Handler struct {
	service   *Service
	sequencer fence.Sequencer
	maxUpload int
}

// NewHandler - sequencer가 nil이면 펜싱 없이 동작
func NewHandler(service *Service, sequencer fence.Sequencer, maxUpload int) *Handler {
	return &Handler{service: service, sequencer: sequencer, maxUpload: maxUpload}
}

// call - 디코딩이 끝난 요청. 서비스 호출 결과를 resp에 채운다.
type call func(ctx context.Context, resp *Response) error

// prepare - 요청 본문 디코딩/검증. 서비스는 아직 호출하지 않는다.
func (h *Handler) prepare(op Operation, body []byte) (call, error) {
	switch op {
	case OpOutfit:
		in, err := decodeOutfitRequest(body)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, resp *Response) (err error) {
			resp.Outfit, err = h.service.GenerateOutfit(ctx, in)
			return err
		}, nil
	case OpTrends:
		category, err := decodeTrendsRequest(body)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, resp *Response) (err error) {
			resp.Trends, err = h.service.FetchTrends(ctx, category)
			return err
		}, nil
	case OpItemText:
		text, err := decodeItemTextRequest(body)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, resp *Response) (err error) {
			resp.Analysis, err = h.service.AnalyzeItemByText(ctx, text)
			return err
		}, nil
	case OpItemImage:
		in, err := decodeItemImageRequest(body, h.maxUpload)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, resp *Response) (err error) {
			resp.Analysis, err = h.service.AnalyzeItemByImage(ctx, in)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", ErrInvalidInput, op)
	}
}

// Execute - 요청 본문 디코딩 → 서비스 호출 → 공통 응답
func (h *Handler) Execute(ctx context.Context, op Operation, body []byte) (*Response, int) {
	fn, err := h.prepare(op, body)
	if err != nil {
		return h.failure(ctx, newResponse(ctx), op, err)
	}
	return h.invoke(ctx, op, fn)
}

func (h *Handler) invoke(ctx context.Context, op Operation, fn call) (*Response, int) {
	resp := newResponse(ctx)
	if err := fn(ctx, resp); err != nil {
		return h.failure(ctx, resp, op, err)
	}
	resp.Success = true
	return resp, http.StatusOK
}

// Run - view가 있으면 순번을 받아 실행하고, 그 사이 더 최신 요청이 들어왔으면 결과를 버린다.
// 검증에 실패한 요청은 순번을 받지 않으므로 진행 중인 요청을 밀어내지 않는다.
func (h *Handler) Run(ctx context.Context, op Operation, body []byte, view string) (*Response, int) {
	if view == "" || h.sequencer == nil {
		return h.Execute(ctx, op, body)
	}
	l := logger.For(ctx, "stylist")

	if err := fence.ValidateView(view); err != nil {
		return h.failure(ctx, newResponse(ctx), op, fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	fn, err := h.prepare(op, body)
	if err != nil {
		return h.failure(ctx, newResponse(ctx), op, err)
	}

	ticket, err := fence.Begin(ctx, h.sequencer, view)
	if err != nil {
		// 순번 저장소 장애 시 펜싱 없이 진행
		l.Warn().Err(err).Str("view", view).Msg("⚠️ Fence unavailable, running unfenced")
		return h.invoke(ctx, op, fn)
	}

	resp, status := h.invoke(ctx, op, fn)
	resp.Sequence = ticket.Sequence

	stale, err := ticket.Superseded(ctx)
	if err != nil {
		l.Warn().Err(err).Str("view", view).Msg("⚠️ Fence check failed, delivering result")
		return resp, status
	}
	if stale {
		l.Info().Str("view", view).Int64("sequence", ticket.Sequence).Msg("⏭️ Result superseded by newer request")
		return &Response{
			RequestID:    resp.RequestID,
			Sequence:     ticket.Sequence,
			ErrorMessage: msgSuperseded,
			ErrorCode:    ErrCodeRequestSuperseded,
		}, http.StatusConflict
	}
	return resp, status
}

func newResponse(ctx context.Context) *Response {
	return &Response{RequestID: middleware.RequestIDFrom(ctx)}
}

func (h *Handler) failure(ctx context.Context, resp *Response, op Operation, err error) (*Response, int) {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		// 서비스 호출 전 디코딩 단계 실패. 상세 사유는 로그에만 남긴다.
		opErr = &OperationError{Op: string(op), Kind: classify(err), Message: msgInvalidRequest, Err: err}
		logger.For(ctx, "stylist").Info().Err(err).Str("op", string(op)).Msg("🚫 Request rejected")
	}
	code, status := ErrorCode(opErr)
	resp.Success = false
	resp.ErrorMessage = opErr.Message
	resp.ErrorCode = code
	return resp, status
}

// RegisterRoutes - /api 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/outfit", h.serve(OpOutfit, maxJSONBody)).Methods("POST")
	api.HandleFunc("/trends", h.serve(OpTrends, maxJSONBody)).Methods("POST")
	api.HandleFunc("/items/analyze-text", h.serve(OpItemText, maxJSONBody)).Methods("POST")
	api.HandleFunc("/items/analyze-image", h.serve(OpItemImage, h.uploadBodyLimit())).Methods("POST")
	api.HandleFunc("/defaults", defaults).Methods("GET")
}

// defaults - 화면 초기값
func defaults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outfit":        DefaultOutfitInput(),
		"trendCategory": DefaultTrendCategory,
	})
}

// base64 팽창분 + JSON 여유
func (h *Handler) uploadBodyLimit() int64 {
	return int64(h.maxUpload)*4/3 + maxJSONBody
}

func (h *Handler) serve(op Operation, limit int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			resp, status := h.failure(r.Context(), newResponse(r.Context()), op,
				fmt.Errorf("%w: reading body: %v", ErrInvalidInput, err))
			writeJSON(w, status, resp)
			return
		}

		resp, status := h.Run(r.Context(), op, body, r.Header.Get(ViewHeader))
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
