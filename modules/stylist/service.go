package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"style-assistant-server/modules/common/config"
	"style-assistant-server/modules/common/gemini"
	"style-assistant-server/modules/common/logger"
	"style-assistant-server/modules/common/metrics"
	"style-assistant-server/modules/common/model"
	"style-assistant-server/modules/common/utils"
)

const (
	imageMIMEType    = "image/jpeg"
	imageAspectRatio = "1:1"
)

// Provider - 생성형 AI 호출 (텍스트 / 이미지 생성 / 이미지 편집)
type Provider interface {
	GenerateText(ctx context.Context, req gemini.TextRequest) (*gemini.TextResponse, error)
	GenerateImages(ctx context.Context, req gemini.ImageRequest) (*gemini.ImageResponse, error)
	EditImage(ctx context.Context, req gemini.EditRequest) (*gemini.EditResponse, error)
}

// Service is the stateless façade behind the four assistant screens.
// It is safe for concurrent use.
type Service struct {
	provider Provider
	metrics  *metrics.Registry
}

type Option func(*Service)

// WithMetrics - provider 호출 카운터 기록
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Service) { s.metrics = r }
}

func NewService(provider Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, errors.New("stylist: provider is required")
	}
	s := &Service{provider: provider}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromConfig - Gemini 클라이언트를 만들어 Service 생성 (API 키 없으면 실패)
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	client, err := gemini.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewService(client, opts...)
}

// GenerateOutfit - 체형/스타일/상황/날씨 → 코디 + 착용 이미지
func (s *Service) GenerateOutfit(ctx context.Context, in OutfitInput) (*model.OutfitRecommendation, error) {
	const op = "generate_outfit"
	l := logger.For(ctx, "stylist")
	l.Info().Str("op", op).Str("style", in.Style).Str("occasion", in.Occasion).Msg("👗 Generating outfit")

	resp, err := s.generateText(ctx, gemini.TextRequest{
		Prompt: outfitPrompt(in),
		Schema: outfitSchema,
	})
	if err != nil {
		return nil, s.fail(ctx, op, msgOutfitFailed, err)
	}

	var outfit model.OutfitRecommendation
	if err := decodeStructured(resp.Text, outfitSchema, &outfit); err != nil {
		l.Error().Err(err).Str("raw", resp.Text).Msg("❌ Outfit JSON parse failed")
		return nil, s.fail(ctx, op, msgOutfitFailed, malformed(msgOutfitMalformed, err))
	}
	if len(outfit.Items) == 0 {
		l.Error().Str("raw", resp.Text).Msg("❌ Outfit has no items")
		return nil, s.fail(ctx, op, msgOutfitFailed, malformed(msgOutfitMalformed, errors.New("items is empty")))
	}

	imageURL, err := s.synthesizeImage(ctx, outfitImagePrompt(outfit.Items))
	if err != nil {
		return nil, s.fail(ctx, op, msgOutfitFailed, err)
	}
	outfit.ImageURL = imageURL

	l.Info().Str("op", op).Str("outfit", outfit.OutfitName).Int("items", len(outfit.Items)).Msg("✅ Outfit ready")
	return &outfit, nil
}

// FetchTrends - 검색 grounding → JSON 구조화 → 트렌드별 이미지 3장 병렬 생성
// 하나라도 실패하면 전체 실패 (부분 결과 없음)
func (s *Service) FetchTrends(ctx context.Context, category string) ([]model.Trend, error) {
	const op = "fetch_trends"
	l := logger.For(ctx, "stylist")
	l.Info().Str("op", op).Str("category", category).Msg("🔍 Fetching trends")

	// Phase 1: grounded 검색
	search, err := s.generateText(ctx, gemini.TextRequest{
		Prompt:          trendsSearchPrompt(category),
		Grounded:        true,
		DisableThinking: true,
	})
	if err != nil {
		return nil, s.fail(ctx, op, msgTrendsFailed, err)
	}
	sources := NormalizeSources(search.Chunks)

	// Phase 2: 원문 → JSON 배열
	structured, err := s.generateText(ctx, gemini.TextRequest{
		Prompt:          trendsStructurePrompt(search.Text),
		Schema:          trendsSchema,
		DisableThinking: true,
	})
	if err != nil {
		return nil, s.fail(ctx, op, msgTrendsFailed, err)
	}

	var drafts []model.Trend
	if err := decodeStructured(structured.Text, trendsSchema, &drafts); err != nil {
		l.Error().Err(err).Str("raw", structured.Text).Msg("❌ Trends JSON parse failed")
		return nil, s.fail(ctx, op, msgTrendsFailed, malformed(msgTrendsMalformed, err))
	}
	if len(drafts) != TrendCount {
		l.Error().Int("count", len(drafts)).Str("raw", structured.Text).Msg("❌ Unexpected trend count")
		return nil, s.fail(ctx, op, msgTrendsFailed,
			malformed(msgTrendsMalformed, fmt.Errorf("expected %d trends, got %d", TrendCount, len(drafts))))
	}

	// Phase 3: 이미지 병렬 생성
	trends := make([]model.Trend, len(drafts))
	g, gctx := errgroup.WithContext(ctx)
	for i, draft := range drafts {
		g.Go(func() error {
			imageURL, err := s.synthesizeImage(gctx, trendImagePrompt(draft))
			if err != nil {
				return fmt.Errorf("trend %d (%s): %w", i+1, draft.Name, err)
			}
			draft.ImageURL = imageURL
			draft.SourceURLs = cloneSources(sources)
			trends[i] = draft
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, op, msgTrendsFailed, err)
	}

	l.Info().Str("op", op).Int("trends", len(trends)).Int("sources", len(sources)).Msg("✅ Trends ready")
	return trends, nil
}

// AnalyzeItemByText - 아이템 설명 텍스트 → 분석 + 코디 이미지
func (s *Service) AnalyzeItemByText(ctx context.Context, text string) (*model.ItemAnalysis, error) {
	const op = "analyze_item_text"
	l := logger.For(ctx, "stylist")
	l.Info().Str("op", op).Str("text", utils.TruncateString(text, 40)).Msg("🔎 Analyzing item by text")

	resp, err := s.generateText(ctx, gemini.TextRequest{
		Prompt:   itemTextPrompt(text),
		Grounded: true,
	})
	if err != nil {
		return nil, s.fail(ctx, op, msgItemTextFailed, err)
	}

	imageURL, err := s.synthesizeImage(ctx, itemTextImagePrompt(text))
	if err != nil {
		return nil, s.fail(ctx, op, msgItemTextFailed, err)
	}

	return &model.ItemAnalysis{
		Description: resp.Text,
		ImageURL:    imageURL,
		SourceURLs:  NormalizeSources(resp.Chunks),
	}, nil
}

// AnalyzeItemByImage - 업로드 이미지 → 분석 + 모델 착용 이미지 (편집 모델)
func (s *Service) AnalyzeItemByImage(ctx context.Context, in ImageInput) (*model.ItemAnalysis, error) {
	const op = "analyze_item_image"
	l := logger.For(ctx, "stylist")

	if len(in.Data) == 0 || in.MIMEType == "" {
		return nil, s.fail(ctx, op, msgItemImageFailed, fmt.Errorf("%w: image data and MIME type are required", ErrInvalidInput))
	}
	l.Info().Str("op", op).Str("mime", in.MIMEType).Int("bytes", len(in.Data)).Msg("📷 Analyzing item by image")

	image := &gemini.InlineImage{Data: in.Data, MIMEType: in.MIMEType}

	resp, err := s.generateText(ctx, gemini.TextRequest{
		Prompt:   itemImageAnalysisPrompt,
		Image:    image,
		Grounded: true,
	})
	if err != nil {
		return nil, s.fail(ctx, op, msgItemImageFailed, err)
	}

	edited, err := s.provider.EditImage(ctx, gemini.EditRequest{
		Prompt: itemImageRestylePrompt,
		Image:  *image,
	})
	s.record(ctx, "edit", err)
	if err != nil {
		return nil, s.fail(ctx, op, msgItemImageFailed, providerError("image edit", err))
	}
	if edited == nil || len(edited.Parts) == 0 || len(edited.Parts[0].Data) == 0 {
		l.Error().Int("parts", partCount(edited)).Msg("❌ Edit response has no inline image in first part")
		return nil, s.fail(ctx, op, msgItemImageFailed, fmt.Errorf("%w: %s", ErrStyledImageMissing, msgStyledImage))
	}

	first := edited.Parts[0]
	mimeType := first.MIMEType
	if mimeType == "" {
		mimeType = imageMIMEType
	}

	return &model.ItemAnalysis{
		Description: resp.Text,
		ImageURL:    utils.ToDataURI(mimeType, first.Data),
		SourceURLs:  NormalizeSources(resp.Chunks),
	}, nil
}

// synthesizeImage - 프롬프트 → 정사각형 JPEG 1장 → data URI
func (s *Service) synthesizeImage(ctx context.Context, prompt string) (string, error) {
	resp, err := s.provider.GenerateImages(ctx, gemini.ImageRequest{
		Prompt:         prompt,
		NumberOfImages: 1,
		MIMEType:       imageMIMEType,
		AspectRatio:    imageAspectRatio,
	})
	s.record(ctx, "image", err)
	if err != nil {
		return "", providerError("image generation", err)
	}

	if resp == nil || len(resp.Images) == 0 || len(resp.Images[0]) == 0 {
		logger.For(ctx, "stylist").Error().
			Str("prompt", utils.TruncateString(prompt, 80)).
			Msg("❌ No image data returned (safety filter or quota)")
		return "", fmt.Errorf("%w: %s", ErrNoImageData, msgNoImageData)
	}

	return utils.ToDataURI(imageMIMEType, resp.Images[0]), nil
}

func (s *Service) generateText(ctx context.Context, req gemini.TextRequest) (*gemini.TextResponse, error) {
	capability := "text"
	if req.Grounded {
		capability = "text_grounded"
	}
	resp, err := s.provider.GenerateText(ctx, req)
	s.record(ctx, capability, err)
	if err != nil {
		return nil, providerError("text generation", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty text response", ErrMalformedResponse)
	}
	return resp, nil
}

func (s *Service) record(ctx context.Context, capability string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case gemini.IsQuotaError(err):
		outcome = "quota"
	default:
		outcome = "error"
	}
	s.metrics.Inc(ctx, "ai_calls_total", map[string]string{"capability": capability, "outcome": outcome}, 1)
}

// fail - 원인은 로그에만, 호출자에게는 OperationError 하나
func (s *Service) fail(ctx context.Context, op, message string, err error) error {
	kind := classify(err)
	if kind == KindQuota {
		message = msgQuotaExceeded
	}

	logger.For(ctx, "stylist").Error().
		Err(err).
		Str("op", op).
		Str("kind", string(kind)).
		Msg("❌ Operation failed")

	return &OperationError{Op: op, Kind: kind, Message: message, Err: err}
}

func providerError(what string, err error) error {
	if gemini.IsQuotaError(err) {
		return fmt.Errorf("%s: %w: %w", what, ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%s failed: %w", what, err)
}

func malformed(message string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, message, err)
}

// decodeStructured - 스키마 검증 후 디코딩
func decodeStructured(text string, schema *gemini.Schema, out any) error {
	raw := []byte(stripCodeFence(text))
	if err := schema.Check(raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// stripCodeFence - ```json ... ``` 감싸기 제거
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

func partCount(resp *gemini.EditResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Parts)
}
