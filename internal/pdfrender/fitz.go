// Package pdfrender rasterizes PDF pages with MuPDF.
package pdfrender

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

// Fitz opens documents with go-fitz.
type Fitz struct{}

func (Fitz) Open(data []byte) (ingest.PDFDocument, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("mupdf open: %w", err)
	}
	return &document{doc: doc}, nil
}

type document struct {
	doc *fitz.Document
}

func (d *document) NumPage() int { return d.doc.NumPage() }

func (d *document) RenderPage(page int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("mupdf render page %d: %w", page+1, err)
	}
	return img, nil
}

func (d *document) Close() error { return d.doc.Close() }
