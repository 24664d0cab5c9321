package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TranscriptSegment is one timed unit of recognized speech with the model's
// average token log-probability.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogProb float64 `json:"avg_logprob"`
}

// Transcription is the raw model output before scoring and normalization.
type Transcription struct {
	Text     string              `json:"text"`
	Language string              `json:"language"`
	Segments []TranscriptSegment `json:"segments"`
}

// Model is the function-call boundary with the speech runtime. Implementations
// are read-only after construction and shared across the batch loop.
type Model interface {
	Transcribe(ctx context.Context, wavPath string) (*Transcription, error)
}

// WhisperCLI runs a whisper command-line runtime that emits the standard JSON
// transcript (text, language, segments with avg_logprob).
type WhisperCLI struct {
	Bin      string
	Size     ModelSize
	ModelDir string
	Logger   *slog.Logger
}

// NewWhisperCLI selects the checkpoint tier once and binds it for the life of
// the process.
func NewWhisperCLI(ctx context.Context, bin, modelDir string, t Thresholds, logger *slog.Logger) *WhisperCLI {
	if logger == nil {
		logger = slog.Default()
	}
	memGB, hasAccel := AcceleratorMemoryGB(ctx)
	size := ChooseModelSize(memGB, hasAccel, t)
	logger.Info("speech model selected", "size", size, "accelerator", hasAccel, "memory_gb", memGB)
	return &WhisperCLI{Bin: bin, Size: size, ModelDir: modelDir, Logger: logger}
}

// Transcribe invokes the runtime on a preprocessed WAV file and parses the
// JSON transcript it writes.
func (w *WhisperCLI) Transcribe(ctx context.Context, wavPath string) (*Transcription, error) {
	outDir, err := os.MkdirTemp("", "transcript-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(outDir)

	args := []string{
		wavPath,
		"--model", string(w.Size),
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if w.ModelDir != "" {
		args = append(args, "--model_dir", w.ModelDir)
	}

	cmd := exec.CommandContext(ctx, w.Bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper run %s: %w: %s", wavPath, err, firstLine(out))
	}

	stem := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	data, err := os.ReadFile(filepath.Join(outDir, stem+".json"))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var tr Transcription
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return &tr, nil
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
