package pdfrender

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a PDF with n blank US-letter pages and a correct xref.
func minimalPDF(n int) []byte {
	var objs []string
	kids := make([]string, n)
	for i := range n {
		kids[i] = fmt.Sprintf("%d 0 R", 3+i)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for range n {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := sb.Len()
	fmt.Fprintf(&sb, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&sb, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&sb, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return []byte(sb.String())
}

func TestFitzRendersPages(t *testing.T) {
	doc, err := Fitz{}.Open(minimalPDF(3))
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 3, doc.NumPage())

	img, err := doc.RenderPage(0, 72)
	require.NoError(t, err)
	b := img.Bounds()
	assert.InDelta(t, 612, b.Dx(), 1)
	assert.InDelta(t, 792, b.Dy(), 1)

	_, err = doc.RenderPage(5, 72)
	assert.Error(t, err)
}

func TestFitzRejectsGarbage(t *testing.T) {
	_, err := Fitz{}.Open([]byte("not a pdf at all"))
	assert.Error(t, err)
}
