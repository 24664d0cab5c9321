package extractor

import (
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
)

// FallbackExtractor covers legacy office formats through docconv, which
// shells out to the usual converters (wv, unrtf, LibreOffice) under the
// hood. Output is treated like native text: confidence 1.0 when non-empty.
type FallbackExtractor struct {
	detector *lang.Detector
}

func NewFallbackExtractor(detector *lang.Detector) *FallbackExtractor {
	return &FallbackExtractor{detector: detector}
}

// FallbackExtensions lists formats routed through docconv.
func FallbackExtensions() []string {
	return []string{".doc", ".rtf", ".odt", ".html", ".htm", ".pages"}
}

func (f *FallbackExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}

	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: docconv: %v", ErrExternalTool, err)
	}
	text := strings.TrimSpace(res.Body)

	var language *string
	if code, ok := f.detector.Best(text); ok {
		language = models.StrPtr(code)
	}

	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath: path,
		FileSize: size,
		SHA256:   hash,
		Language: language,
	}
	if t, ok := res.Meta["Title"]; ok {
		meta.Title = optional(t)
	}
	if a, ok := res.Meta["Author"]; ok {
		meta.Author = optional(a)
	}

	conf := 0.0
	if text != "" {
		conf = 1.0
	}
	out := models.Success(text, &conf, language, meta)
	return &out, nil
}
