package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// IsQuotaError - Provider가 quota/rate limit 소진을 알렸는지 확인
// 재시도하지 않는다. 호출자가 별도 안내 메시지를 보여주기 위한 분류용.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isQuotaAPIError(apiErr) {
		return true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && isQuotaAPIError(*apiErrPtr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "rate limit")
}

func isQuotaAPIError(e genai.APIError) bool {
	return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
}
