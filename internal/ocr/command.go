package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CommandEngine wraps an external OCR binary that prints one recognized line
// per stdout line. It covers deep-learning readers (easyocr and compatible
// CLIs) that have no Go binding; the binary path is resolved once at startup
// so a missing tool fails during wiring rather than mid-batch.
type CommandEngine struct {
	name string
	bin  string
	// args precede the image path on every invocation.
	args []string
}

// NewEasyOCREngine configures a CommandEngine for the easyocr CLI with the
// pipeline's fixed bilingual pair.
func NewEasyOCREngine(bin string) *CommandEngine {
	return &CommandEngine{
		name: "easyocr",
		bin:  bin,
		args: []string{"-l", "vi", "en", "--detail", "0", "-f"},
	}
}

// NewCommandEngine builds a generic line-oriented engine.
func NewCommandEngine(name, bin string, args ...string) *CommandEngine {
	return &CommandEngine{name: name, bin: bin, args: args}
}

func (e *CommandEngine) Name() string { return e.name }

// Recognize writes the image to a temp file, invokes the binary, and returns
// its stdout lines as the recognized text. No word-level data is produced.
func (e *CommandEngine) Recognize(ctx context.Context, image []byte) (Result, error) {
	tmp := filepath.Join(os.TempDir(), "ocr-"+uuid.NewString()+".png")
	if err := os.WriteFile(tmp, image, 0o600); err != nil {
		return Result{}, fmt.Errorf("stage ocr input: %w", err)
	}
	defer os.Remove(tmp)

	args := append(append([]string{}, e.args...), tmp)
	cmd := exec.CommandContext(ctx, e.bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("%s run: %w: %s", e.name, err, strings.TrimSpace(stderr.String()))
	}

	var lines []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return Result{PlainText: strings.Join(lines, "\n")}, nil
}
