package models

// Processing status values recorded on every extraction result.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// BBox is a pixel-space bounding box for a recognized token.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Segment is one unit of recognized text: timed for audio, spatially
// bounded for image OCR.
type Segment struct {
	Start      *float64 `json:"start,omitempty"` // seconds, 2-decimal rounding
	End        *float64 `json:"end,omitempty"`
	BBox       *BBox    `json:"bbox,omitempty"`
	Text       string   `json:"text"`
	Confidence float64  `json:"confidence"` // [0,1]
}

// Metadata is the format-dependent descriptive bag attached to a result.
// Fields that do not apply to a format are omitted.
type Metadata struct {
	FilePath       string   `json:"file_path"`
	FileSize       int64    `json:"file_size,omitempty"`
	SHA256         string   `json:"sha256,omitempty"`
	Pages          int      `json:"pages,omitempty"`
	ParagraphCount int      `json:"paragraphs_count,omitempty"`
	TableCount     int      `json:"tables_count,omitempty"`
	Title          *string  `json:"title,omitempty"`
	Author         *string  `json:"author,omitempty"`
	LastModifiedBy *string  `json:"last_modified_by,omitempty"`
	Created        *string  `json:"created,omitempty"`  // ISO-8601 or null
	Modified       *string  `json:"modified,omitempty"` // ISO-8601 or null
	IsScanned      *bool    `json:"is_scanned,omitempty"`
	Language       *string  `json:"language,omitempty"`
	Headers        []string `json:"headers,omitempty"`
	Footers        []string `json:"footers,omitempty"`
}

// ExtractionResult is the canonical per-file output shape. Exactly one of
// Text and Error is populated; Confidence is nil or 0 whenever Text is empty.
type ExtractionResult struct {
	Text       *string   `json:"text"`
	Confidence *float64  `json:"confidence"`
	Language   *string   `json:"language"`
	Metadata   Metadata  `json:"metadata"`
	Segments   []Segment `json:"segments,omitempty"`
	Error      *string   `json:"error,omitempty"`
	Status     string    `json:"processing_status"`
}

// FileResult pairs an input file name with its extraction result in the
// serialized batch output.
type FileResult struct {
	File   string           `json:"file"`
	Result ExtractionResult `json:"result"`
}

// Success builds a completed result. Confidence may be nil (e.g. zero audio
// segments after trimming).
func Success(text string, confidence *float64, language *string, meta Metadata) ExtractionResult {
	return ExtractionResult{
		Text:       &text,
		Confidence: confidence,
		Language:   language,
		Metadata:   meta,
		Status:     StatusCompleted,
	}
}

// Failure builds a failed result carrying the error message. Confidence is
// pinned to zero so downstream scoring never sees a spuriously high value.
func Failure(err error, meta Metadata) ExtractionResult {
	msg := err.Error()
	zero := 0.0
	return ExtractionResult{
		Confidence: &zero,
		Metadata:   meta,
		Error:      &msg,
		Status:     StatusFailed,
	}
}

// StrPtr returns a pointer to s, for optional metadata fields.
func StrPtr(s string) *string { return &s }

// FloatPtr returns a pointer to f.
func FloatPtr(f float64) *float64 { return &f }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
