package gemini

// InlineImage - 요청에 함께 보내는 이미지 바이트
type InlineImage struct {
	Data     []byte
	MIMEType string
}

// TextRequest - 텍스트 생성 요청
// Model이 비어 있으면 Client 기본 모델 사용 (이미지가 있으면 vision 모델)
type TextRequest struct {
	Model           string
	Prompt          string
	Image           *InlineImage
	Schema          *Schema // 응답 JSON 형태 제약
	Grounded        bool    // Google Search grounding
	DisableThinking bool
}

// TextResponse - 텍스트 + grounding chunk
type TextResponse struct {
	Text   string
	Chunks []GroundingChunk
}

// SourceRef is one source descriptor inside a grounding chunk.
type SourceRef struct {
	URI   string
	Title string
}

// GroundingChunk is a citation unit. The provider fills at most one of the
// descriptors per chunk in practice, but both may be present.
type GroundingChunk struct {
	Web  *SourceRef
	Maps *SourceRef
}

// Descriptors returns the non-nil descriptors in precedence order: web, then maps.
func (c GroundingChunk) Descriptors() []*SourceRef {
	out := make([]*SourceRef, 0, 2)
	if c.Web != nil {
		out = append(out, c.Web)
	}
	if c.Maps != nil {
		out = append(out, c.Maps)
	}
	return out
}

// ImageRequest - 이미지 생성 요청 (Imagen)
type ImageRequest struct {
	Model          string
	Prompt         string
	NumberOfImages int
	MIMEType       string
	AspectRatio    string
}

// ImageResponse - 생성된 이미지 원본 바이트
type ImageResponse struct {
	Images [][]byte
}

// EditRequest - 입력 이미지 기반 이미지 생성/편집 요청
type EditRequest struct {
	Model  string
	Prompt string
	Image  InlineImage
}

// Part - 응답 content part
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// EditResponse - 첫 번째 candidate의 part 목록
type EditResponse struct {
	Parts []Part
}
