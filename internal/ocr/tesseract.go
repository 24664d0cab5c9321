package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine implements Engine on the gosseract client. Each Recognize
// call uses a fresh client so the engine itself stays stateless and safe to
// share.
type TesseractEngine struct {
	// Languages are trained-data hints, e.g. ["vie", "eng"].
	Languages []string
	// PageSegMode tunes layout analysis; PSM_SINGLE_BLOCK suits blocks of text.
	PageSegMode gosseract.PageSegMode

	clientFactory func() *gosseract.Client
}

// NewTesseractEngine builds the engine for a fixed bilingual configuration.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{
		Languages:     languages,
		PageSegMode:   gosseract.PSM_SINGLE_BLOCK,
		clientFactory: gosseract.NewClient,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize runs OCR on an encoded image and returns both the plain text and
// per-word boxes with confidences.
func (e *TesseractEngine) Recognize(ctx context.Context, image []byte) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return Result{}, fmt.Errorf("tesseract set image: %w", err)
	}
	if len(e.Languages) > 0 {
		if err := c.SetLanguage(e.Languages...); err != nil {
			return Result{}, fmt.Errorf("tesseract set languages: %w", err)
		}
	}
	if err := c.SetPageSegMode(e.PageSegMode); err != nil {
		return Result{}, fmt.Errorf("tesseract set psm: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("tesseract recognize: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Plain text still stands; word-level data is best effort.
		boxes = nil
	}
	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Confidence: b.Confidence,
			X:          b.Box.Min.X,
			Y:          b.Box.Min.Y,
			W:          b.Box.Dx(),
			H:          b.Box.Dy(),
		})
	}

	return Result{PlainText: strings.TrimSpace(text), Words: words}, nil
}
