package live

import (
	"encoding/json"

	"style-assistant-server/modules/stylist"
)

// 클라이언트 → 서버
const (
	TypeOutfitRequest    = "outfit_request"
	TypeTrendsRequest    = "trends_request"
	TypeItemTextRequest  = "item_text_request"
	TypeItemImageRequest = "item_image_request"
)

// 서버 → 클라이언트
const (
	TypeAccepted   = "accepted"
	TypeResult     = "result"
	TypeError      = "error"
	TypeSuperseded = "superseded"
)

var operations = map[string]stylist.Operation{
	TypeOutfitRequest:    stylist.OpOutfit,
	TypeTrendsRequest:    stylist.OpTrends,
	TypeItemTextRequest:  stylist.OpItemText,
	TypeItemImageRequest: stylist.OpItemImage,
}

// Inbound - 요청 메시지. payload는 HTTP 요청 본문과 같은 형식.
type Inbound struct {
	Type      string          `json:"type"`
	RequestID string          `json:"requestId,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// Outbound - 응답 메시지
type Outbound struct {
	Type         string `json:"type"`
	RequestID    string `json:"requestId,omitempty"`
	Sequence     int64  `json:"sequence,omitempty"`
	Data         any    `json:"data,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
}

// fromResponse - 공통 응답 → WebSocket 메시지
func fromResponse(requestID string, resp *stylist.Response) Outbound {
	out := Outbound{
		RequestID:    requestID,
		Sequence:     resp.Sequence,
		ErrorMessage: resp.ErrorMessage,
		ErrorCode:    resp.ErrorCode,
	}
	switch {
	case resp.Success:
		out.Type = TypeResult
		switch {
		case resp.Outfit != nil:
			out.Data = resp.Outfit
		case resp.Trends != nil:
			out.Data = resp.Trends
		case resp.Analysis != nil:
			out.Data = resp.Analysis
		}
	case resp.ErrorCode == stylist.ErrCodeRequestSuperseded:
		out.Type = TypeSuperseded
	default:
		out.Type = TypeError
	}
	return out
}
