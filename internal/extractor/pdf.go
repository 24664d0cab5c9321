package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/ingestly/docextract/internal/imaging"
	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
	"github.com/ingestly/docextract/internal/ocr"
)

// renderDPI is the rasterization resolution for scanned pages. 400 keeps
// small glyphs legible for OCR at the cost of render time.
const renderDPI = 400

// nativeTextThreshold is the minimum count of alphanumeric characters the
// embedded text layer must carry to classify the PDF as native text. Scanned
// PDFs often embed stray glyphs and metadata strings; requiring more than 50
// real characters keeps them out of the native path.
const nativeTextThreshold = 50

// PDFExtractor decides between the embedded text layer and a dual-engine OCR
// pass over rendered pages, merging engine outputs per page by line-level
// set union.
type PDFExtractor struct {
	renderBin string
	engines   []ocr.Engine
	detector  *lang.Detector
	logger    *slog.Logger
}

// NewPDFExtractor wires the rasterizer binary and the two OCR engines.
func NewPDFExtractor(renderBin string, engines []ocr.Engine, detector *lang.Detector, logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{renderBin: renderBin, engines: engines, detector: detector, logger: logger}
}

// Extract implements Extractor for PDF inputs.
//
// Unlike the other extractors, a failure on any single scanned page aborts
// the whole document: partial OCR output with silent holes is worse for the
// downstream pipeline than an explicit failure.
func (p *PDFExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pdfCtx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: read pdf: %v", ErrMalformedInput, err)
	}

	var text strings.Builder
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		text.WriteString(pageText(pdfCtx, pageNr))
	}

	isScanned := !hasNativeText(text.String())
	if isScanned {
		text.Reset()
		p.logger.Debug("pdf classified as scanned", "path", path, "pages", pdfCtx.PageCount)

		for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
			pageOut, err := p.ocrPage(ctx, path, pageNr)
			if err != nil {
				return nil, fmt.Errorf("%w: page %d: %v", ErrExternalTool, pageNr, err)
			}
			text.WriteString(pageOut)
			text.WriteByte('\n')
		}
	}

	final := strings.TrimSpace(text.String())

	var language *string
	if code, ok := p.detector.Best(final); ok {
		language = models.StrPtr(code)
	}

	author, created, modified := pdfInfo(pdfCtx)
	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath:  path,
		FileSize:  size,
		SHA256:    hash,
		Pages:     pdfCtx.PageCount,
		Author:    author,
		Created:   created,
		Modified:  modified,
		IsScanned: models.BoolPtr(isScanned),
		Language:  language,
	}

	// No token-level scores survive the dual-engine merge, so confidence is
	// binary on whether any text was produced.
	conf := 0.0
	if final != "" {
		conf = 1.0
	}
	res := models.Success(final, &conf, language, meta)
	return &res, nil
}

// ocrPage renders one page, preprocesses it, and runs both OCR engines,
// merging their line outputs.
func (p *PDFExtractor) ocrPage(ctx context.Context, path string, pageNr int) (string, error) {
	raster, err := p.renderPage(ctx, path, pageNr)
	if err != nil {
		return "", err
	}
	img, err := imaging.Decode(raster)
	if err != nil {
		return "", err
	}
	prepared, err := imaging.EncodePNG(imaging.PreparePDFPage(img))
	if err != nil {
		return "", err
	}

	outputs := make([]string, 0, len(p.engines))
	for _, engine := range p.engines {
		res, err := engine.Recognize(ctx, prepared)
		if err != nil {
			return "", fmt.Errorf("%s: %w", engine.Name(), err)
		}
		outputs = append(outputs, strings.TrimSpace(res.PlainText))
	}

	merged := mergePageTexts(outputs)
	p.logger.Debug("pdf page ocr", "page", pageNr, "chars", len(merged))
	return merged, nil
}

// renderPage rasterizes a single page to PNG at renderDPI via the external
// renderer.
func (p *PDFExtractor) renderPage(ctx context.Context, path string, pageNr int) ([]byte, error) {
	prefix := filepath.Join(os.TempDir(), "pdfpage-"+uuid.NewString())
	nr := strconv.Itoa(pageNr)
	cmd := exec.CommandContext(ctx, p.renderBin,
		"-png", "-r", strconv.Itoa(renderDPI),
		"-f", nr, "-l", nr,
		"-singlefile",
		path, prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("render page: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	out := prefix + ".png"
	defer os.Remove(out)
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}
	return data, nil
}

// hasNativeText strips everything but letters and digits and checks whether
// enough remains to trust the embedded text layer.
func hasNativeText(text string) bool {
	count := 0
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			count++
			if count > nativeTextThreshold {
				return true
			}
		}
	}
	return false
}

// mergePageTexts applies the per-page merge policy: a single non-empty
// engine output wins outright; two non-empty outputs merge as the set union
// of their lines, keeping first-seen order; all-empty pages contribute
// nothing.
func mergePageTexts(outputs []string) string {
	var nonEmpty []string
	for _, out := range outputs {
		if out != "" {
			nonEmpty = append(nonEmpty, out)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return ""
	case 1:
		return nonEmpty[0]
	}

	seen := make(map[string]bool)
	var lines []string
	for _, out := range nonEmpty {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || seen[line] {
				continue
			}
			seen[line] = true
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// pageText extracts the embedded text layer of one page from its content
// stream. Extraction is best effort; a page that fails simply contributes no
// text to the native-vs-scanned classification.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

var pdfLiteralRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromContentStream scans content-stream operators for shown text: Tj,
// TJ, the quote shorthand, and the line-advance operators for layout.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
				sb.WriteString(decodeLiteralString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
				sb.WriteByte('\n')
				sb.WriteString(decodeLiteralString(m[1]))
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// decodeLiteralString resolves PDF escape sequences inside a literal string.
func decodeLiteralString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(c)
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(c)
			}
		}
	}
	return sb.String()
}

// pdfInfo pulls author and timestamps out of the document Info dictionary.
func pdfInfo(ctx *model.Context) (author, created, modified *string) {
	if ctx.Info == nil {
		return nil, nil, nil
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return nil, nil, nil
	}
	if v, ok := d["Author"]; ok {
		if s, err := ctx.DereferenceText(v); err == nil {
			author = optional(s)
		}
	}
	if v, ok := d["CreationDate"]; ok {
		if s, err := ctx.DereferenceText(v); err == nil {
			created = ParsePDFDate(s)
		}
	}
	if v, ok := d["ModDate"]; ok {
		if s, err := ctx.DereferenceText(v); err == nil {
			modified = ParsePDFDate(s)
		}
	}
	return author, created, modified
}

// ParsePDFDate converts the internal PDF date format
// (D:YYYYMMDDHHMMSS[+/-TZ]) to ISO-8601. Malformed dates yield nil rather
// than an error.
func ParsePDFDate(s string) *string {
	if !strings.HasPrefix(s, "D:") {
		return nil
	}
	s = s[2:]
	if i := strings.IndexAny(s, "+-Z"); i >= 0 {
		s = s[:i]
	}
	if len(s) < 14 {
		return nil
	}
	t, err := time.Parse("20060102150405", s[:14])
	if err != nil {
		return nil
	}
	return models.StrPtr(t.Format("2006-01-02T15:04:05"))
}
