package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type stubBackend struct {
	name       string
	text       string
	confidence float64
	err        error
	calls      int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Recognize(_ context.Context, _ []byte, _ string) (string, float64, error) {
	s.calls++
	return s.text, s.confidence, s.err
}

func TestChainPrefersFirstBackend(t *testing.T) {
	cloud := &stubBackend{name: "cloud", text: "from cloud", confidence: 0.98}
	local := &stubBackend{name: "tesseract", text: "from tesseract", confidence: 0.70}

	chain := NewChain(zerolog.Nop(), cloud, local)
	text, confidence := chain.Recognize(context.Background(), []byte("img"), "scan.png")

	if text != "from cloud" || confidence != 0.98 {
		t.Errorf("got (%q, %v), want cloud result", text, confidence)
	}
	if local.calls != 0 {
		t.Errorf("fallback backend called %d times, want 0", local.calls)
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	cloud := &stubBackend{name: "cloud", err: errors.New("service unavailable")}
	local := &stubBackend{name: "tesseract", text: "from tesseract", confidence: 0.70}

	chain := NewChain(zerolog.Nop(), cloud, local)
	text, confidence := chain.Recognize(context.Background(), []byte("img"), "scan.png")

	if text != "from tesseract" || confidence != 0.70 {
		t.Errorf("got (%q, %v), want tesseract result", text, confidence)
	}
}

func TestChainAllBackendsFail(t *testing.T) {
	cloud := &stubBackend{name: "cloud", err: errors.New("down")}
	local := &stubBackend{name: "tesseract", err: errors.New("not installed")}

	chain := NewChain(zerolog.Nop(), cloud, local)
	text, confidence := chain.Recognize(context.Background(), []byte("img"), "scan.png")

	if text != "" || confidence != 0.0 {
		t.Errorf("got (%q, %v), want empty text and zero confidence", text, confidence)
	}
}
