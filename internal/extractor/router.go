package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ingestly/docextract/internal/models"
)

// Router dispatches files to extractors by extension and sequences batch
// runs. Registration happens once during wiring; afterwards the router is
// read-only and shared.
type Router struct {
	byExt  map[string]Extractor
	logger *slog.Logger
}

// NewRouter builds an empty router.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{byExt: make(map[string]Extractor), logger: logger}
}

// Register binds an extractor to one or more extensions, with or without
// leading dots.
func (r *Router) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[strings.TrimPrefix(strings.ToLower(ext), ".")] = e
	}
}

// Route selects the extractor for a path, or ErrUnsupportedFormat.
func (r *Router) Route(path string) (Extractor, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	e, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return e, nil
}

// Run processes each path in order, one file fully completing before the
// next begins. A failure — unsupported extension, missing file, extractor
// error — becomes that file's error result and never escapes the batch.
func (r *Router) Run(ctx context.Context, paths []string) []models.FileResult {
	results := make([]models.FileResult, 0, len(paths))
	for _, path := range paths {
		res := r.runOne(ctx, path)
		results = append(results, models.FileResult{
			File:   filepath.Base(path),
			Result: res,
		})
	}
	return results
}

func (r *Router) runOne(ctx context.Context, path string) models.ExtractionResult {
	meta := models.Metadata{FilePath: path}

	e, err := r.Route(path)
	if err != nil {
		r.logger.Warn("no extractor for input", "path", path, "err", err)
		return models.Failure(err, meta)
	}

	res, err := e.Extract(ctx, path)
	if err != nil {
		r.logger.Error("extraction failed", "path", path, "err", err)
		return models.Failure(err, meta)
	}
	return *res
}
