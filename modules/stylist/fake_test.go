package stylist

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"style-assistant-server/modules/common/gemini"
)

// fakeProvider - 호출 기록 + 함수 주입
type fakeProvider struct {
	mu         sync.Mutex
	textCalls  []gemini.TextRequest
	imageCalls []gemini.ImageRequest
	editCalls  []gemini.EditRequest

	text   func(req gemini.TextRequest) (*gemini.TextResponse, error)
	images func(req gemini.ImageRequest) (*gemini.ImageResponse, error)
	edit   func(req gemini.EditRequest) (*gemini.EditResponse, error)
}

func (f *fakeProvider) GenerateText(_ context.Context, req gemini.TextRequest) (*gemini.TextResponse, error) {
	f.mu.Lock()
	f.textCalls = append(f.textCalls, req)
	f.mu.Unlock()
	if f.text == nil {
		return nil, errors.New("unexpected text call")
	}
	return f.text(req)
}

func (f *fakeProvider) GenerateImages(_ context.Context, req gemini.ImageRequest) (*gemini.ImageResponse, error) {
	f.mu.Lock()
	f.imageCalls = append(f.imageCalls, req)
	f.mu.Unlock()
	if f.images == nil {
		return &gemini.ImageResponse{Images: [][]byte{jpegStub}}, nil
	}
	return f.images(req)
}

func (f *fakeProvider) EditImage(_ context.Context, req gemini.EditRequest) (*gemini.EditResponse, error) {
	f.mu.Lock()
	f.editCalls = append(f.editCalls, req)
	f.mu.Unlock()
	if f.edit == nil {
		return nil, errors.New("unexpected edit call")
	}
	return f.edit(req)
}

func (f *fakeProvider) imageCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.imageCalls)
}

// JPEG SOI + APP0 일부. 서비스는 바이트를 해석하지 않는다.
var jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

const outfitJSON = `{"outfitName":"X","description":"Y","items":[{"type":"Áo","description":"Z"}]}`

func textReply(text string, chunks ...gemini.GroundingChunk) func(gemini.TextRequest) (*gemini.TextResponse, error) {
	return func(gemini.TextRequest) (*gemini.TextResponse, error) {
		return &gemini.TextResponse{Text: text, Chunks: chunks}, nil
	}
}

func newTestService(t *testing.T, p *fakeProvider, opts ...Option) *Service {
	t.Helper()
	s, err := NewService(p, opts...)
	require.NoError(t, err)
	return s
}

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func requireOpError(t *testing.T, err error, kind Kind, message string) *OperationError {
	t.Helper()
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, kind, opErr.Kind)
	require.Equal(t, message, opErr.Error())
	return opErr
}
