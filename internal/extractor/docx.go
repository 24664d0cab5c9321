package extractor

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ingestly/docextract/internal/lang"
	"github.com/ingestly/docextract/internal/models"
)

// DocxExtractor walks a .docx archive in document order: body paragraphs,
// then tables, then the header and footer paragraphs of every section.
// Native text carries no uncertainty, so confidence is a constant 1.0.
type DocxExtractor struct {
	detector *lang.Detector
}

// NewDocxExtractor binds the shared language detector.
func NewDocxExtractor(detector *lang.Detector) *DocxExtractor {
	return &DocxExtractor{detector: detector}
}

// Extract implements Extractor for .docx inputs.
func (d *DocxExtractor) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	size, err := statInput(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open docx: %v", ErrMalformedInput, err)
	}
	defer r.Close()

	doc, err := parseDocxBody(&r.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	headers, footers := parseDocxMargins(&r.Reader)
	props := parseDocxCoreProps(&r.Reader)

	// Paragraph text first, then each table as pipe-joined rows.
	var sb strings.Builder
	sb.WriteString(strings.Join(doc.paragraphs, "\n"))
	for _, table := range doc.tables {
		for _, row := range table {
			sb.WriteByte('\n')
			sb.WriteString(strings.Join(row, " | "))
		}
	}
	text := strings.TrimSpace(sb.String())

	var language *string
	if code, ok := d.detector.Ranked(text); ok {
		language = models.StrPtr(code)
	}

	hash, _ := fileSHA256(path)
	meta := models.Metadata{
		FilePath:       path,
		FileSize:       size,
		SHA256:         hash,
		ParagraphCount: len(doc.paragraphs),
		TableCount:     len(doc.tables),
		Title:          optional(props.Title),
		Author:         optional(props.Creator),
		LastModifiedBy: optional(props.LastModifiedBy),
		Created:        isoDate(props.Created),
		Modified:       isoDate(props.Modified),
		Language:       language,
		Headers:        headers,
		Footers:        footers,
	}

	res := models.Success(text, models.FloatPtr(1.0), language, meta)
	return &res, nil
}

type docxBody struct {
	paragraphs []string
	tables     [][][]string // table → row → cell text
}

// parseDocxBody streams word/document.xml, collecting body-level paragraphs
// and top-level tables. Cell text joins the cell's own sub-paragraphs with
// newlines, preserving intra-cell line breaks.
func parseDocxBody(r *zip.Reader) (*docxBody, error) {
	rc, err := openZipFile(r, "word/document.xml")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		body      docxBody
		dec       = xml.NewDecoder(rc)
		paragraph strings.Builder
		inRun     bool
		tblDepth  int
		table     [][]string
		row       []string
		cellParas []string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				if tblDepth == 1 {
					table = nil
				}
			case "tr":
				if tblDepth == 1 {
					row = nil
				}
			case "tc":
				if tblDepth == 1 {
					cellParas = nil
				}
			case "p":
				paragraph.Reset()
			case "t":
				inRun = true
			}

		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				text := strings.TrimSpace(paragraph.String())
				switch {
				case text == "":
					// whitespace-only paragraphs are skipped everywhere
				case tblDepth == 0:
					body.paragraphs = append(body.paragraphs, text)
				default:
					cellParas = append(cellParas, text)
				}
			case "tc":
				if tblDepth == 1 {
					row = append(row, strings.Join(cellParas, "\n"))
				}
			case "tr":
				if tblDepth == 1 {
					table = append(table, row)
				}
			case "tbl":
				if tblDepth == 1 {
					body.tables = append(body.tables, table)
				}
				tblDepth--
			}
		}
	}
	return &body, nil
}

// parseDocxMargins reads header*.xml and footer*.xml paragraph text. Malformed
// or absent parts degrade to empty lists.
func parseDocxMargins(r *zip.Reader) (headers, footers []string) {
	var names []string
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "word/header") || strings.HasPrefix(f.Name, "word/footer") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		rc, err := openZipFile(r, name)
		if err != nil {
			continue
		}
		paras := readParagraphTexts(rc)
		rc.Close()
		if strings.HasPrefix(name, "word/header") {
			headers = append(headers, paras...)
		} else {
			footers = append(footers, paras...)
		}
	}
	return headers, footers
}

// readParagraphTexts pulls non-empty paragraph text out of a WordprocessingML
// part.
func readParagraphTexts(rc io.Reader) []string {
	var (
		out       []string
		dec       = xml.NewDecoder(rc)
		paragraph strings.Builder
		inRun     bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paragraph.Reset()
			case "t":
				inRun = true
			}
		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				if text := strings.TrimSpace(paragraph.String()); text != "" {
					out = append(out, text)
				}
			}
		}
	}
	return out
}

type docxCoreProps struct {
	Title          string `xml:"title"`
	Creator        string `xml:"creator"`
	LastModifiedBy string `xml:"lastModifiedBy"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
}

func parseDocxCoreProps(r *zip.Reader) docxCoreProps {
	var props docxCoreProps
	rc, err := openZipFile(r, "docProps/core.xml")
	if err != nil {
		return props
	}
	defer rc.Close()
	_ = xml.NewDecoder(rc).Decode(&props)
	return props
}

func openZipFile(r *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range r.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// isoDate re-emits a W3CDTF timestamp as ISO-8601, or nil when absent or
// malformed.
func isoDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return models.StrPtr(t.Format("2006-01-02T15:04:05"))
}
