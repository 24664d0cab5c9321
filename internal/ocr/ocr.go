// Package ocr defines the provider contract for optical character
// recognition and the two engines the pipeline uses: a Tesseract binding and
// a line-oriented external command wrapper for deep-learning readers.
package ocr

import "context"

// Word is a single recognized token with its pixel bounds and the engine's
// native 0-100 confidence.
type Word struct {
	Text       string
	Confidence float64
	X, Y, W, H int
}

// Result captures OCR output for one image.
type Result struct {
	// PlainText is the linearized recognized text.
	PlainText string
	// Words carries per-token confidences and boxes when the engine
	// provides them; nil otherwise.
	Words []Word
}

// Engine is the OCR provider contract: one encoded image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (Result, error)
}
