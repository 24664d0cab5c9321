// Package extractor routes input files to format-specific extractors and
// runs them as a strictly sequential batch with per-file failure isolation.
package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ingestly/docextract/internal/models"
)

// Extractor turns one input file into the canonical result shape. An error
// return means total failure for that file; the router converts it into a
// failed result and moves on.
type Extractor interface {
	Extract(ctx context.Context, path string) (*models.ExtractionResult, error)
}

// statInput verifies the input exists and returns its size. Missing files map
// onto ErrNotFound.
func statInput(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// fileSHA256 hashes the input for dedup bookkeeping in metadata.
func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
