package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"style-assistant-server/modules/common/config"
	"style-assistant-server/modules/common/logger"
)

// Client - google.golang.org/genai 기반 provider 어댑터
type Client struct {
	genaiClient *genai.Client

	textModel   string
	visionModel string
	imageModel  string
	editModel   string
}

// NewClient - Gemini API 클라이언트 생성 (API 키 필수)
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg == nil || cfg.GeminiAPIKey == "" {
		return nil, config.ErrMissingCredential
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	logger.For(ctx, "gemini").Info().Msg("✅ Genai client initialized")
	return &Client{
		genaiClient: genaiClient,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		imageModel:  cfg.ImageModel,
		editModel:   cfg.EditModel,
	}, nil
}

// GenerateText - 텍스트 생성 (스키마 제약, grounding, 이미지 입력 선택)
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (*TextResponse, error) {
	model := req.Model
	if model == "" {
		model = c.textModel
		if req.Image != nil {
			model = c.visionModel
		}
	}

	var parts []*genai.Part
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	genCfg := &genai.GenerateContentConfig{}
	if req.Schema != nil {
		genCfg.ResponseMIMEType = "application/json"
		genCfg.ResponseSchema = req.Schema.toGenai()
	}
	if req.Grounded {
		genCfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	if req.DisableThinking {
		budget := int32(0)
		genCfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	l := logger.For(ctx, "gemini")
	l.Debug().
		Str("model", model).
		Int("prompt_len", len(req.Prompt)).
		Bool("grounded", req.Grounded).
		Bool("schema", req.Schema != nil).
		Bool("image", req.Image != nil).
		Msg("📤 GenerateContent")

	result, err := c.genaiClient.Models.GenerateContent(ctx, model, []*genai.Content{{Parts: parts}}, genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content (%s): %w", model, err)
	}

	out := &TextResponse{Text: result.Text()}
	if len(result.Candidates) > 0 && result.Candidates[0].GroundingMetadata != nil {
		for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
			if chunk == nil {
				continue
			}
			out.Chunks = append(out.Chunks, fromGenaiChunk(chunk))
		}
	}

	l.Debug().Int("text_len", len(out.Text)).Int("chunks", len(out.Chunks)).Msg("✅ GenerateContent done")
	return out, nil
}

// GenerateImages - Imagen 이미지 생성
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	model := req.Model
	if model == "" {
		model = c.imageModel
	}

	n := req.NumberOfImages
	if n <= 0 {
		n = 1
	}

	imgCfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(n),
		OutputMIMEType: req.MIMEType,
		AspectRatio:    req.AspectRatio,
	}
	result, err := c.genaiClient.Models.GenerateImages(ctx, model, req.Prompt, imgCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate images (%s): %w", model, err)
	}

	out := &ImageResponse{}
	for _, img := range result.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		out.Images = append(out.Images, img.Image.ImageBytes)
	}

	logger.For(ctx, "gemini").Debug().
		Str("model", model).
		Int("requested", n).
		Int("received", len(out.Images)).
		Msg("🎨 GenerateImages done")
	return out, nil
}

// EditImage - 입력 이미지 + 지시문으로 새 이미지 생성 (이미지 출력만 요청)
func (c *Client) EditImage(ctx context.Context, req EditRequest) (*EditResponse, error) {
	model := req.Model
	if model == "" {
		model = c.editModel
	}

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(req.Image.Data, req.Image.MIMEType),
			genai.NewPartFromText(req.Prompt),
		},
	}

	editCfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}
	result, err := c.genaiClient.Models.GenerateContent(ctx, model, []*genai.Content{content}, editCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini edit image (%s): %w", model, err)
	}

	return &EditResponse{Parts: firstCandidateParts(result)}, nil
}

// firstCandidateParts - 첫 후보의 part 목록. nil part도 빈 Part로 자리를 유지한다.
func firstCandidateParts(result *genai.GenerateContentResponse) []Part {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0] == nil || result.Candidates[0].Content == nil {
		return nil
	}
	parts := result.Candidates[0].Content.Parts
	out := make([]Part, len(parts))
	for i, part := range parts {
		if part == nil {
			continue
		}
		out[i].Text = part.Text
		if part.InlineData != nil {
			out[i].Data = part.InlineData.Data
			out[i].MIMEType = part.InlineData.MIMEType
		}
	}
	return out
}

func fromGenaiChunk(chunk *genai.GroundingChunk) GroundingChunk {
	var out GroundingChunk
	if chunk.Web != nil {
		out.Web = &SourceRef{URI: chunk.Web.URI, Title: chunk.Web.Title}
	}
	if chunk.Maps != nil {
		out.Maps = &SourceRef{URI: chunk.Maps.URI, Title: chunk.Maps.Title}
	}
	return out
}
