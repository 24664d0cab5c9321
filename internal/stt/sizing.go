// Package stt wraps the speech-to-text model behind a small interface and
// holds the model-sizing heuristic that picks a checkpoint at startup.
package stt

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// ModelSize is a whisper checkpoint tier.
type ModelSize string

const (
	ModelLarge  ModelSize = "large"
	ModelMedium ModelSize = "medium"
	ModelSmall  ModelSize = "small"
	ModelTiny   ModelSize = "tiny"
)

// Thresholds are the descending accelerator-memory cutoffs (GB) for tier
// selection.
type Thresholds struct {
	LargeGB  float64
	MediumGB float64
	SmallGB  float64
}

// ChooseModelSize maps an accelerator-memory reading onto a checkpoint tier.
// Without an accelerator the fixed lightweight model is used regardless of
// system memory. Pure function; the memory value is injected so the heuristic
// stays testable away from real hardware.
func ChooseModelSize(memGB float64, hasAccelerator bool, t Thresholds) ModelSize {
	if !hasAccelerator {
		return ModelSmall
	}
	switch {
	case memGB >= t.LargeGB:
		return ModelLarge
	case memGB >= t.MediumGB:
		return ModelMedium
	case memGB >= t.SmallGB:
		return ModelSmall
	default:
		return ModelTiny
	}
}

// AcceleratorMemoryGB queries total accelerator memory. Returns ok=false when
// no accelerator (or no query tool) is present.
func AcceleratorMemoryGB(ctx context.Context) (float64, bool) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.total", "--format=csv,noheader,nounits").Output()
	if err != nil {
		return 0, false
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	mib, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil || mib <= 0 {
		return 0, false
	}
	return mib / 1024, true
}
