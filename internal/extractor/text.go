package extractor

import (
	"context"
	"fmt"
	"os"

	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
)

// TextExtractor reads plain text files verbatim. There is no extraction step
// to distrust, so confidence is always 1.0.
type TextExtractor struct {
	detector *lang.Detector
}

func NewTextExtractor(detector *lang.Detector) *TextExtractor {
	return &TextExtractor{detector: detector}
}

// TextExtensions lists the formats TextExtractor handles.
func TextExtensions() []string {
	return []string{".txt", ".md", ".csv", ".log"}
}

func (t *TextExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	text := string(data)

	var language *string
	if code, ok := t.detector.Best(text); ok {
		language = models.StrPtr(code)
	}

	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath: path,
		FileSize: size,
		SHA256:   hash,
		Language: language,
	}
	conf := 1.0
	res := models.Success(text, &conf, language, meta)
	return &res, nil
}
