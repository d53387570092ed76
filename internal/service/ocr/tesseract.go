package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// tesseractConfidence is the confidence attributed to local recognition.
const tesseractConfidence = 0.70

// TesseractBackend shells out to a local tesseract binary.
type TesseractBackend struct {
	cmd     string
	lang    string
	timeout time.Duration
}

func NewTesseractBackend(cmd, lang string, timeout time.Duration) *TesseractBackend {
	if cmd == "" {
		cmd = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractBackend{cmd: cmd, lang: lang, timeout: timeout}
}

func (b *TesseractBackend) Name() string { return "tesseract" }

func (b *TesseractBackend) Recognize(ctx context.Context, image []byte, filename string) (string, float64, error) {
	if _, err := exec.LookPath(b.cmd); err != nil {
		return "", 0, fmt.Errorf("tesseract not found in PATH: %w", err)
	}

	// tesseract reads from a file, so the scan goes through a temp copy
	// keeping the original extension.
	f, err := os.CreateTemp("", "scan-*"+filepath.Ext(filename))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	if _, err := f.Write(image); err != nil {
		return "", 0, fmt.Errorf("failed to write temp file: %w", err)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, b.cmd, f.Name(), "stdout", "-l", b.lang)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("tesseract failed: %s: %w", stderr.String(), err)
	}

	return out.String(), tesseractConfidence, nil
}
