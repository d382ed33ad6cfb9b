package stylist

import "style-assistant-server/modules/common/model"

// OutfitInput - 코디 추천 입력 (모두 자유 텍스트)
type OutfitInput struct {
	BodyShape string `json:"bodyShape"`
	Style     string `json:"style"`
	Occasion  string `json:"occasion"`
	Weather   string `json:"weather"`
}

// DefaultOutfitInput - 추천 화면의 초기값
func DefaultOutfitInput() OutfitInput {
	return OutfitInput{
		BodyShape: "Đồng hồ cát",
		Style:     "Thanh lịch",
		Occasion:  "Đi làm công sở",
		Weather:   "Nắng nhẹ, 28 độ C",
	}
}

// DefaultTrendCategory - 트렌드 화면 기본 카테고리
const DefaultTrendCategory = "Nổi bật nhất"

// ImageInput - 디코딩된 업로드 이미지
type ImageInput struct {
	Data     []byte
	MIMEType string
}

// TrendsRequest - POST /api/trends
type TrendsRequest struct {
	Category string `json:"category"`
}

// ItemTextRequest - POST /api/items/analyze-text
type ItemTextRequest struct {
	Text string `json:"text"`
}

// InputImage - base64 업로드
type InputImage struct {
	Data     string `json:"data"`     // base64 또는 data URI
	MimeType string `json:"mimeType"` // image/jpeg, image/png, image/webp
}

// ItemImageRequest - POST /api/items/analyze-image
type ItemImageRequest struct {
	Image InputImage `json:"image"`
}

// Response - 모든 엔드포인트 공통 응답
type Response struct {
	Success      bool                        `json:"success"`
	RequestID    string                      `json:"requestId,omitempty"`
	Sequence     int64                       `json:"sequence,omitempty"`
	Outfit       *model.OutfitRecommendation `json:"outfit,omitempty"`
	Trends       []model.Trend               `json:"trends,omitempty"`
	Analysis     *model.ItemAnalysis         `json:"analysis,omitempty"`
	ErrorMessage string                      `json:"errorMessage,omitempty"`
	ErrorCode    string                      `json:"errorCode,omitempty"`
}
