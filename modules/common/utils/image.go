package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG 디코더 등록
	_ "image/png"  // PNG 디코더 등록
	"strings"

	"github.com/gen2brain/webp"
)

var (
	ErrEmptyImage       = errors.New("image data is empty")
	ErrImageTooLarge    = errors.New("image exceeds upload limit")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// 업로드 허용 포맷 (MIME → image 패키지 포맷 이름)
var supportedFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ToDataURI - 바이너리를 data URI로 변환
func ToDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64Image - base64(또는 data URI) 업로드 디코딩
func DecodeBase64Image(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		if idx := strings.Index(encoded, ","); idx >= 0 {
			encoded = encoded[idx+1:]
		}
	}
	if encoded == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, nil
}

// ValidateImage - 크기 제한과 실제 포맷이 선언된 MIME과 일치하는지 확인
// 정규화된 MIME 타입과 이미지 크기를 돌려준다.
func ValidateImage(data []byte, mimeType string, maxBytes int) (string, image.Config, error) {
	if len(data) == 0 {
		return "", image.Config{}, ErrEmptyImage
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return "", image.Config{}, fmt.Errorf("%w: %d > %d bytes", ErrImageTooLarge, len(data), maxBytes)
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	want, ok := supportedFormats[mimeType]
	if !ok {
		return "", image.Config{}, fmt.Errorf("%w: %q", ErrUnsupportedImage, mimeType)
	}

	var (
		cfg    image.Config
		format string
		err    error
	)
	if want == "webp" {
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
		format = "webp"
	} else {
		cfg, format, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return "", image.Config{}, fmt.Errorf("%w: cannot decode %s header: %v", ErrUnsupportedImage, want, err)
	}
	if format != want {
		return "", image.Config{}, fmt.Errorf("%w: declared %s but data is %s", ErrUnsupportedImage, mimeType, format)
	}

	if mimeType == "image/jpg" {
		mimeType = "image/jpeg"
	}
	return mimeType, cfg, nil
}

// TruncateString - 로그용 문자열 자르기 (rune 단위)
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
