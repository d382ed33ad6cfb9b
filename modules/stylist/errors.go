package stylist

import (
	"errors"
	"net/http"

	"style-assistant-server/modules/common/gemini"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrMalformedResponse  = errors.New("malformed AI response")
	ErrNoImageData        = errors.New("no image data returned")
	ErrQuotaExceeded      = errors.New("provider quota exceeded")
	ErrStyledImageMissing = errors.New("could not generate styled image")
)

// 사용자에게 보여주는 메시지 (화면 언어: 베트남어)
const (
	msgOutfitFailed    = "Không thể tạo gợi ý trang phục. Vui lòng thử lại."
	msgTrendsFailed    = "Không thể lấy dữ liệu xu hướng. Vui lòng thử lại."
	msgItemTextFailed  = "Không thể phân tích món đồ. Vui lòng thử lại."
	msgItemImageFailed = "Không thể phân tích món đồ từ hình ảnh. Vui lòng thử lại."
	msgQuotaExceeded   = "Không thể tạo hình ảnh do vượt quá hạn mức API. Vui lòng kiểm tra tài khoản Google Cloud của bạn."
	msgInvalidRequest  = "Yêu cầu không hợp lệ."
	msgSuperseded      = "Yêu cầu đã được thay thế bởi một yêu cầu mới hơn."

	msgOutfitMalformed = "Phản hồi không phải là JSON hợp lệ cho trang phục."
	msgTrendsMalformed = "Phản hồi không phải là JSON hợp lệ cho xu hướng."
	msgNoImageData     = "Không nhận được dữ liệu hình ảnh từ API. Vui lòng kiểm tra lại prompt hoặc hạn mức API."
	msgStyledImage     = "Không thể tạo hình ảnh phối đồ."
)

// Kind - 실패 분류
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindTransport         Kind = "transport"
	KindMalformedResponse Kind = "malformed_response"
	KindMissingArtifact   Kind = "missing_artifact"
	KindQuota             Kind = "quota"
)

// OperationError is the single error shape returned by every Service operation.
// Error() is the user-facing message; the cause stays reachable through Unwrap.
type OperationError struct {
	Op      string
	Kind    Kind
	Message string
	Err     error
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() error { return e.Err }

func classify(err error) Kind {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrQuotaExceeded), gemini.IsQuotaError(err):
		return KindQuota
	case errors.Is(err, ErrNoImageData), errors.Is(err, ErrStyledImageMissing):
		return KindMissingArtifact
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindTransport
	}
}

// Error codes
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeQuotaExceeded      = "QUOTA_EXCEEDED"
	ErrCodeNoImageData        = "NO_IMAGE_DATA"
	ErrCodeStyledImageMissing = "STYLED_IMAGE_MISSING"
	ErrCodeMalformedResponse  = "MALFORMED_RESPONSE"
	ErrCodeRequestSuperseded  = "REQUEST_SUPERSEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// ErrorCode - 에러 → (errorCode, HTTP status)
func ErrorCode(err error) (string, int) {
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		return ErrCodeInternalError, http.StatusInternalServerError
	}
	switch opErr.Kind {
	case KindInvalidInput:
		return ErrCodeInvalidRequest, http.StatusBadRequest
	case KindQuota:
		return ErrCodeQuotaExceeded, http.StatusTooManyRequests
	case KindMissingArtifact:
		if errors.Is(opErr, ErrStyledImageMissing) {
			return ErrCodeStyledImageMissing, http.StatusBadGateway
		}
		return ErrCodeNoImageData, http.StatusBadGateway
	case KindMalformedResponse:
		return ErrCodeMalformedResponse, http.StatusBadGateway
	default:
		return ErrCodeInternalError, http.StatusBadGateway
	}
}
