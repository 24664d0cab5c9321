package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
)

func writeTextFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRouterRoute(t *testing.T) {
	r := NewRouter(nil)
	te := NewTextExtractor(lang.NewDetector())
	r.Register(te, TextExtensions()...)

	got, err := r.Route("/tmp/notes.TXT")
	require.NoError(t, err)
	assert.Same(t, Extractor(te), got)

	_, err = r.Route("/tmp/slides.pptx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = r.Route("/tmp/no-extension")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRunBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	first := writeTextFile(t, dir, "first.txt", "This document speaks plain English throughout.")
	missing := filepath.Join(dir, "missing.txt")
	third := writeTextFile(t, dir, "third.txt", "Another perfectly ordinary English document here.")

	r := NewRouter(nil)
	r.Register(NewTextExtractor(lang.NewDetector()), TextExtensions()...)

	results := r.Run(context.Background(), []string{first, missing, third})
	require.Len(t, results, 3)

	// Order mirrors the input order.
	assert.Equal(t, "first.txt", results[0].File)
	assert.Equal(t, "missing.txt", results[1].File)
	assert.Equal(t, "third.txt", results[2].File)

	assert.Equal(t, models.StatusCompleted, results[0].Result.Status)
	assert.Equal(t, models.StatusFailed, results[1].Result.Status)
	assert.Equal(t, models.StatusCompleted, results[2].Result.Status)

	// The middle failure never contaminates its neighbours.
	require.NotNil(t, results[0].Result.Text)
	assert.Contains(t, *results[0].Result.Text, "plain English")
	require.NotNil(t, results[2].Result.Text)
	assert.Contains(t, *results[2].Result.Text, "ordinary English")
	assert.Nil(t, results[1].Result.Text)
	assert.NotNil(t, results[1].Result.Error)
}

func TestRunBatchUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	odd := writeTextFile(t, dir, "diagram.xyz", "content")

	r := NewRouter(nil)
	r.Register(NewTextExtractor(lang.NewDetector()), TextExtensions()...)

	results := r.Run(context.Background(), []string{odd})
	require.Len(t, results, 1)
	assert.Equal(t, models.StatusFailed, results[0].Result.Status)
}

// A result is either a success with text and no error, or a failure with an
// error and zero confidence. Both at once never happens.
func TestResultStatusExclusive(t *testing.T) {
	dir := t.TempDir()
	good := writeTextFile(t, dir, "good.txt", "Readable text goes in here for the run.")
	bad := filepath.Join(dir, "absent.txt")

	r := NewRouter(nil)
	r.Register(NewTextExtractor(lang.NewDetector()), TextExtensions()...)

	for _, fr := range r.Run(context.Background(), []string{good, bad}) {
		switch fr.Result.Status {
		case models.StatusCompleted:
			assert.Nil(t, fr.Result.Error)
		case models.StatusFailed:
			require.NotNil(t, fr.Result.Error)
			require.NotNil(t, fr.Result.Confidence)
			assert.Zero(t, *fr.Result.Confidence)
		default:
			t.Fatalf("unexpected status %q", fr.Result.Status)
		}
	}
}
