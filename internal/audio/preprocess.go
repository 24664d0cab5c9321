// Package audio prepares raw audio for transcription: decode to a mono
// 16 kHz waveform, spectral denoise, peak normalization, and voice-activity
// trimming, then a temporary WAV artifact for the speech model.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the canonical rate every input is resampled to.
const SampleRate = 16000

// Preprocessor runs the fixed four-step pipeline. It is immutable after
// construction and shared across the sequential per-file loop.
type Preprocessor struct {
	// FFmpegBin is the resolved path of the decoder binary.
	FFmpegBin string
	// TrimTopDB is the silence cutoff below peak energy (default 30).
	TrimTopDB float64
	Logger    *slog.Logger
}

// NewPreprocessor applies defaults for zero-valued fields.
func NewPreprocessor(ffmpegBin string, logger *slog.Logger) *Preprocessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preprocessor{
		FFmpegBin: ffmpegBin,
		TrimTopDB: 30,
		Logger:    logger,
	}
}

// Process decodes path, denoises, normalizes and trims the waveform, and
// writes the result next to the input as "<stem>_clean.wav". The artifact is
// left for the caller; cleanup is not this package's job.
func (p *Preprocessor) Process(ctx context.Context, path string) (string, error) {
	samples, err := p.decode(ctx, path)
	if err != nil {
		return "", err
	}

	samples = Denoise(samples)
	samples = PeakNormalize(samples)

	intervals := SplitVoiced(samples, p.TrimTopDB)
	voiced := Concat(samples, intervals)
	p.Logger.Debug("voice-activity trim",
		"path", path, "intervals", len(intervals),
		"kept_samples", len(voiced), "total_samples", len(samples))

	out := strings.TrimSuffix(path, filepath.Ext(path)) + "_clean.wav"
	if err := writeWAV(out, voiced); err != nil {
		return "", fmt.Errorf("write preprocessed wav: %w", err)
	}
	return out, nil
}

// decode shells out to ffmpeg for format handling and resampling, reading
// mono 16 kHz 32-bit float PCM from stdout.
func (p *Preprocessor) decode(ctx context.Context, path string) ([]float64, error) {
	cmd := exec.CommandContext(ctx, p.FFmpegBin,
		"-v", "error",
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprint(SampleRate),
		"-f", "f32le",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	samples := make([]float64, len(raw)/4)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = float64(math.Float32frombits(bits))
	}
	return samples, nil
}

// writeWAV encodes samples as 16-bit mono PCM.
func writeWAV(path string, samples []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int(s * math.MaxInt16)
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
