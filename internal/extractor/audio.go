package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ingestly/docextract/internal/audio"
	"github.com/ingestly/docextract/internal/confidence"
	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
	"github.com/ingestly/docextract/internal/stt"
)

// audioFormats is the fixed allow-list of supported audio extensions.
var audioFormats = map[string]bool{
	".mp3": true, ".m4a": true, ".webm": true, ".wav": true,
	".flac": true, ".aac": true, ".ogg": true,
}

// AudioExtensions lists the allow-list without dots, for router registration.
func AudioExtensions() []string {
	return []string{"mp3", "m4a", "webm", "wav", "flac", "aac", "ogg"}
}

// AudioExtractor transcribes speech recordings: preprocess the waveform, run
// the speech model, and score segments from their log-probabilities.
type AudioExtractor struct {
	pre    *audio.Preprocessor
	model  stt.Model
	logger *slog.Logger
}

// NewAudioExtractor wires the preprocessor and the model selected at startup.
func NewAudioExtractor(pre *audio.Preprocessor, model stt.Model, logger *slog.Logger) *AudioExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioExtractor{pre: pre, model: model, logger: logger}
}

// Extract implements Extractor for audio inputs.
func (a *AudioExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(path)); !audioFormats[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	cleanPath, err := a.pre.Process(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalTool, err)
	}

	tr, err := a.model.Transcribe(ctx, cleanPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalTool, err)
	}

	segments := make([]models.Segment, 0, len(tr.Segments))
	confs := make([]float64, 0, len(tr.Segments))
	for _, seg := range tr.Segments {
		c := confidence.FromLogProb(seg.AvgLogProb)
		confs = append(confs, c)
		start := confidence.Round(seg.Start, 2)
		end := confidence.Round(seg.End, 2)
		segments = append(segments, models.Segment{
			Start:      &start,
			End:        &end,
			Text:       strings.TrimSpace(seg.Text),
			Confidence: c,
		})
	}

	var language *string
	if tr.Language != "" {
		language = models.StrPtr(lang.Normalize(tr.Language))
	}

	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath: path,
		FileSize: size,
		SHA256:   hash,
		Language: language,
	}

	res := models.Success(strings.TrimSpace(tr.Text), confidence.MeanOfSegments(confs), language, meta)
	res.Segments = segments
	return &res, nil
}
