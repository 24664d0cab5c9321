package extractor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ingestly/docextract/internal/confidence"
	"github.com/ingestly/docextract/internal/imaging"
	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
	"github.com/ingestly/docextract/internal/ocr"
)

// ImageExtensions lists the raster formats routed to the image extractor.
func ImageExtensions() []string {
	return []string{"jpg", "jpeg", "png", "webp", "bmp", "tiff"}
}

// ImageExtractor runs a single OCR engine over a contrast-prepared image and
// scores the surviving tokens with the length-weighted formula.
type ImageExtractor struct {
	engine   ocr.Engine
	detector *lang.Detector
	// minConf drops tokens below this engine-native (0-100) confidence.
	minConf float64
}

// NewImageExtractor wires the OCR engine and the shared detector. minConf
// defaults to 20 when non-positive.
func NewImageExtractor(engine ocr.Engine, detector *lang.Detector, minConf float64) *ImageExtractor {
	if minConf <= 0 {
		minConf = 20
	}
	return &ImageExtractor{engine: engine, detector: detector, minConf: minConf}
}

// Extract implements Extractor for image inputs.
func (ie *ImageExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	prepared, err := imaging.EncodePNG(imaging.PrepareImage(img))
	if err != nil {
		return nil, err
	}

	recognized, err := ie.engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalTool, err)
	}

	words := filterWords(recognized.Words, ie.minConf)

	segments := make([]models.Segment, 0, len(words))
	tokens := make([]confidence.Token, 0, len(words))
	texts := make([]string, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, confidence.Token{Text: w.Text, Confidence: w.Confidence})
		texts = append(texts, w.Text)
		segments = append(segments, models.Segment{
			BBox:       &models.BBox{X: w.X, Y: w.Y, W: w.W, H: w.H},
			Text:       w.Text,
			Confidence: confidence.Round(w.Confidence/100, 3),
		})
	}

	text := strings.Join(texts, " ")
	score := confidence.WeightedTokenScore(tokens)

	language := "und"
	if code, ok := ie.detector.Best(text); ok {
		language = code
	}

	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath:  path,
		FileSize:  size,
		SHA256:    hash,
		Pages:     1,
		IsScanned: models.BoolPtr(true),
		Language:  &language,
	}

	res := models.Success(text, models.FloatPtr(score/100), &language, meta)
	res.Segments = segments
	return &res, nil
}

// filterWords drops empty tokens and those below the minimum engine
// confidence. Engines report -1 for non-text blocks; those go too.
func filterWords(words []ocr.Word, minConf float64) []ocr.Word {
	out := make([]ocr.Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" || w.Confidence < minConf {
			continue
		}
		w.Text = strings.TrimSpace(w.Text)
		out = append(out, w)
	}
	return out
}
