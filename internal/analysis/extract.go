package analysis

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FileTextExtractor reads pages that are already plain text.
type FileTextExtractor struct{}

var _ TextExtractor = FileTextExtractor{}

func (FileTextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", "":
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// TesseractExtractor runs the tesseract binary on image pages.
type TesseractExtractor struct {
	// Binary defaults to "tesseract" on PATH.
	Binary string
	// Languages defaults to "kor+eng".
	Languages string
}

var _ TextExtractor = TesseractExtractor{}

func (e TesseractExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "tesseract"
	}
	langs := e.Languages
	if langs == "" {
		langs = "kor+eng"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path, "stdout", "-l", langs)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s on %s: %w: %s", bin, path, err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// NewTextExtractor returns the extractor named by kind ("text" or "tesseract").
func NewTextExtractor(kind string) (TextExtractor, error) {
	switch kind {
	case "", "text":
		return FileTextExtractor{}, nil
	case "tesseract":
		return TesseractExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor type: %s", kind)
	}
}
