package extractor

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingestly/docextract/internal/lang"
)

const docxDocumentXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>The quick brown fox jumps over the lazy dog.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph with more English text inside.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>alpha</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>one</w:t></w:r></w:p><w:p><w:r><w:t>two</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

const docxHeaderXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:p><w:r><w:t>Annual Report</w:t></w:r></w:p>
</w:hdr>`

const docxFooterXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:p><w:r><w:t>Page 1</w:t></w:r></w:p>
</w:ftr>`

const docxCorePropsXML = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
  <dc:title>Fixture Document</dc:title>
  <dc:creator>Test Author</dc:creator>
  <cp:lastModifiedBy>Another Author</cp:lastModifiedBy>
  <dcterms:created>2023-05-02T10:20:30Z</dcterms:created>
  <dcterms:modified>2023-06-03T11:22:33Z</dcterms:modified>
</cp:coreProperties>`

func writeDocxFixture(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDocxExtract(t *testing.T) {
	path := writeDocxFixture(t, map[string]string{
		"word/document.xml":   docxDocumentXML,
		"word/header1.xml":    docxHeaderXML,
		"word/footer1.xml":    docxFooterXML,
		"docProps/core.xml":   docxCorePropsXML,
		"[Content_Types].xml": "<Types/>",
	})

	e := NewDocxExtractor(lang.NewDetector())
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, res.Text)
	assert.Contains(t, *res.Text, "The quick brown fox jumps over the lazy dog.")
	assert.Contains(t, *res.Text, "Second paragraph with more English text inside.")

	// Tables render after paragraphs as pipe-joined rows; multi-paragraph
	// cells keep their internal line breaks.
	assert.Contains(t, *res.Text, "Name | Value")
	assert.Contains(t, *res.Text, "alpha | one\ntwo")

	require.NotNil(t, res.Confidence)
	assert.Equal(t, 1.0, *res.Confidence)

	require.NotNil(t, res.Language)
	assert.Equal(t, "en-US", *res.Language)

	assert.Equal(t, 2, res.Metadata.ParagraphCount)
	assert.Equal(t, 1, res.Metadata.TableCount)
	require.NotNil(t, res.Metadata.Title)
	assert.Equal(t, "Fixture Document", *res.Metadata.Title)
	require.NotNil(t, res.Metadata.Author)
	assert.Equal(t, "Test Author", *res.Metadata.Author)
	require.NotNil(t, res.Metadata.LastModifiedBy)
	assert.Equal(t, "Another Author", *res.Metadata.LastModifiedBy)
	require.NotNil(t, res.Metadata.Created)
	assert.Equal(t, "2023-05-02T10:20:30", *res.Metadata.Created)
	require.NotNil(t, res.Metadata.Modified)
	assert.Equal(t, "2023-06-03T11:22:33", *res.Metadata.Modified)

	assert.Equal(t, []string{"Annual Report"}, res.Metadata.Headers)
	assert.Equal(t, []string{"Page 1"}, res.Metadata.Footers)
	assert.NotEmpty(t, res.Metadata.SHA256)
}

func TestDocxExtractNoTables(t *testing.T) {
	path := writeDocxFixture(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>Just one line.</w:t></w:r></w:p></w:body>
</w:document>`,
	})

	e := NewDocxExtractor(lang.NewDetector())
	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, res.Text)
	assert.Equal(t, "Just one line.", *res.Text)
	assert.Equal(t, 0, res.Metadata.TableCount)
	assert.Empty(t, res.Metadata.Headers)
	assert.Empty(t, res.Metadata.Footers)
}

func TestDocxExtractNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.docx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0o644))

	e := NewDocxExtractor(lang.NewDetector())
	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestDocxExtractMissing(t *testing.T) {
	e := NewDocxExtractor(lang.NewDetector())
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.docx"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsoDate(t *testing.T) {
	got := isoDate("2023-05-02T10:20:30Z")
	require.NotNil(t, got)
	assert.Equal(t, "2023-05-02T10:20:30", *got)

	assert.Nil(t, isoDate(""))
	assert.Nil(t, isoDate("yesterday"))
}
