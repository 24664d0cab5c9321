package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	dir  string
	fail map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, uri string) (string, func(), error) {
	if f.fail[uri] {
		return "", nil, errors.New("download failed")
	}
	local := filepath.Join(f.dir, filepath.Base(uri))
	if err := os.WriteFile(local, []byte(uri), 0o644); err != nil {
		return "", nil, err
	}
	return local, func() { os.Remove(local) }, nil
}

func TestSplitURI(t *testing.T) {
	b, k, err := splitURI("s3://my-bucket/path/to/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", b)
	assert.Equal(t, "path/to/file.pdf", k)

	_, _, err = splitURI("https://example.com/file.pdf")
	assert.Error(t, err)

	_, _, err = splitURI("s3://bucket-only")
	assert.Error(t, err)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("s3://b/k.txt"))
	assert.False(t, IsRemote("/var/data/k.txt"))
	assert.False(t, IsRemote("relative.txt"))
}

func TestPrefetchMixedInputs(t *testing.T) {
	f := &fakeFetcher{dir: t.TempDir()}
	inputs := []string{"/local/a.txt", "s3://b/remote.pdf", "/local/c.docx"}

	locals, cleanup, err := Prefetch(context.Background(), f, inputs)
	require.NoError(t, err)
	defer cleanup()

	require.Len(t, locals, 3)
	assert.Equal(t, "/local/a.txt", locals[0])
	assert.Equal(t, "/local/c.docx", locals[2])
	assert.FileExists(t, locals[1])

	cleanup()
	assert.NoFileExists(t, locals[1])
}

func TestPrefetchFailureCleansUp(t *testing.T) {
	f := &fakeFetcher{dir: t.TempDir(), fail: map[string]bool{"s3://b/bad.pdf": true}}
	inputs := []string{"s3://b/good.pdf", "s3://b/bad.pdf"}

	_, _, err := Prefetch(context.Background(), f, inputs)
	require.Error(t, err)

	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
