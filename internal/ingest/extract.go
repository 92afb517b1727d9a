package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"image"
	"image/jpeg"
	"image/png"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
)

type ContentKind string

const (
	KindJSON ContentKind = "json"
	KindPDF  ContentKind = "pdf"
	KindDOCX ContentKind = "docx"
)

type PDFMode string

const (
	PDFModeImage PDFMode = "image"
	PDFModeText  PDFMode = "text"
)

const (
	DefaultMaxPages = 5
	DefaultDPI      = 300
)

var (
	pdfMagic  = []byte("%PDF-")
	zipMagic  = []byte("PK\x03\x04")
	utf8BOM   = []byte("\xef\xbb\xbf")
	errNoPage = errors.New("pdf has no renderable pages")
)

// PDFRenderer opens PDF documents for rasterization.
type PDFRenderer interface {
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument is an open PDF. Pages are numbered from 0.
type PDFDocument interface {
	NumPage() int
	RenderPage(page int, dpi float64) (image.Image, error)
	Close() error
}

// PageImage is one rendered page. Page is 1-based.
type PageImage struct {
	Page   int
	Data   []byte
	Format llm.ImageFormat
}

// Content is what the extractor pulled out of a stored object: Text for JSON,
// DOCX and text-mode PDFs, Pages for image-mode PDFs.
type Content struct {
	Kind       ContentKind
	Text       string
	Pages      []PageImage
	TotalPages int
}

// DetectKind sniffs the content type from the leading bytes.
func DetectKind(data []byte) (ContentKind, error) {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF, nil
	case bytes.HasPrefix(data, zipMagic):
		return KindDOCX, nil
	}
	rest := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(rest) > 0 && (rest[0] == '{' || rest[0] == '[') {
		return KindJSON, nil
	}
	return "", ErrUnsupportedContent
}

type Extractor struct {
	Renderer    PDFRenderer
	Mode        PDFMode
	MaxPages    int
	DPI         float64
	ImageFormat llm.ImageFormat
}

func (e *Extractor) maxPages() int {
	if e.MaxPages > 0 {
		return e.MaxPages
	}
	return DefaultMaxPages
}

func (e *Extractor) dpi() float64 {
	if e.DPI > 0 {
		return e.DPI
	}
	return DefaultDPI
}

func (e *Extractor) Extract(ctx context.Context, data []byte) (Content, error) {
	kind, err := DetectKind(data)
	if err != nil {
		return Content{}, err
	}
	switch kind {
	case KindJSON:
		if !utf8.Valid(data) {
			return Content{}, errors.New("json content is not valid UTF-8")
		}
		return Content{Kind: KindJSON, Text: string(bytes.TrimPrefix(data, utf8BOM))}, nil
	case KindDOCX:
		text, err := extractDocxText(data)
		if err != nil {
			return Content{}, err
		}
		return Content{Kind: KindDOCX, Text: text}, nil
	}

	if e.Mode == PDFModeText {
		text, total, err := extractPDFText(data, e.maxPages())
		if err != nil {
			return Content{}, err
		}
		return Content{Kind: KindPDF, Text: text, TotalPages: total}, nil
	}
	return e.renderPDF(ctx, data)
}

// renderPDF rasterizes at most MaxPages pages; later pages are never rendered.
func (e *Extractor) renderPDF(ctx context.Context, data []byte) (Content, error) {
	if e.Renderer == nil {
		return Content{}, errors.New("no pdf renderer configured")
	}
	doc, err := e.Renderer.Open(data)
	if err != nil {
		return Content{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	n := min(total, e.maxPages())
	pages := make([]PageImage, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Content{}, err
		}
		img, err := doc.RenderPage(i, e.dpi())
		if err != nil {
			return Content{}, fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		buf, err := encodeImage(img, e.ImageFormat)
		if err != nil {
			return Content{}, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		pages = append(pages, PageImage{Page: i + 1, Data: buf, Format: imageFormat(e.ImageFormat)})
	}
	if len(pages) == 0 {
		return Content{}, errNoPage
	}
	return Content{Kind: KindPDF, Pages: pages, TotalPages: total}, nil
}

func imageFormat(f llm.ImageFormat) llm.ImageFormat {
	if f == llm.ImageJPEG {
		return llm.ImageJPEG
	}
	return llm.ImagePNG
}

func encodeImage(img image.Image, f llm.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if imageFormat(f) == llm.ImageJPEG {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func extractPDFText(data []byte, maxPages int) (string, int, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read pdf: %w", err)
	}
	var textBuilder strings.Builder
	numPages := pdfReader.NumPage()
	for i := 1; i <= min(numPages, maxPages); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}
	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return "", numPages, errors.New("pdf has no text layer")
	}
	return text, numPages, nil
}

var (
	xmlTags     = regexp.MustCompile(`<[^>]+>`)
	inlineSpace = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	blankLines  = regexp.MustCompile(`\s*\n\s*`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	body := doc.Editable().GetContent()
	body = strings.ReplaceAll(body, "</w:p>", "\n")
	body = strings.ReplaceAll(body, "<w:tab/>", "\t")
	body = strings.ReplaceAll(body, "<w:br/>", "\n")
	text := html.UnescapeString(xmlTags.ReplaceAllString(body, ""))
	text = inlineSpace.ReplaceAllString(text, " ")
	text = strings.TrimSpace(blankLines.ReplaceAllString(text, "\n"))
	if text == "" {
		return "", errors.New("docx has no text")
	}
	return text, nil
}
