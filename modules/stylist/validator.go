package stylist

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"style-assistant-server/modules/common/utils"
)

const (
	maxFieldRunes = 500
	maxTextRunes  = 2000
)

// 요청 본문 → 서비스 입력. 실패는 모두 ErrInvalidInput으로 감싼다.

func decodeOutfitRequest(body []byte) (OutfitInput, error) {
	var in OutfitInput
	if err := decodeJSON(body, &in); err != nil {
		return OutfitInput{}, err
	}
	fields := []struct {
		name  string
		value *string
	}{
		{"bodyShape", &in.BodyShape},
		{"style", &in.Style},
		{"occasion", &in.Occasion},
		{"weather", &in.Weather},
	}
	for _, f := range fields {
		v, err := requireText(f.name, *f.value, maxFieldRunes)
		if err != nil {
			return OutfitInput{}, err
		}
		*f.value = v
	}
	return in, nil
}

func decodeTrendsRequest(body []byte) (string, error) {
	var req TrendsRequest
	if err := decodeJSON(body, &req); err != nil {
		return "", err
	}
	return requireText("category", req.Category, maxFieldRunes)
}

func decodeItemTextRequest(body []byte) (string, error) {
	var req ItemTextRequest
	if err := decodeJSON(body, &req); err != nil {
		return "", err
	}
	return requireText("text", req.Text, maxTextRunes)
}

func decodeItemImageRequest(body []byte, maxBytes int) (ImageInput, error) {
	var req ItemImageRequest
	if err := decodeJSON(body, &req); err != nil {
		return ImageInput{}, err
	}

	data, err := utils.DecodeBase64Image(req.Image.Data)
	if err != nil {
		return ImageInput{}, fmt.Errorf("%w: image.data: %v", ErrInvalidInput, err)
	}
	mimeType, _, err := utils.ValidateImage(data, req.Image.MimeType, maxBytes)
	if err != nil {
		return ImageInput{}, fmt.Errorf("%w: image: %v", ErrInvalidInput, err)
	}
	return ImageInput{Data: data, MIMEType: mimeType}, nil
}

func decodeJSON(body []byte, v any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty request body", ErrInvalidInput)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrInvalidInput, err)
	}
	return nil
}

func requireText(name, value string, maxRunes int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	if utf8.RuneCountInString(value) > maxRunes {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, name, maxRunes)
	}
	return value, nil
}
