package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNoText is returned when a document carries no extractable text (scanned image, empty page).
var ErrNoText = errors.New("document has no extractable text")

// TextSource returns the raw text of a stored document.
type TextSource interface {
	FirstPageText(ctx context.Context, path string) (string, error)
}

// IsPDF reports whether an uploaded file looks like a PDF by mime type or extension.
func IsPDF(name, mimeType string) bool {
	if strings.Contains(strings.ToLower(mimeType), "pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// PDFSource validates PDFs with pdfcpu and reads page text with ledongthuc/pdf.
type PDFSource struct{}

func NewPDFSource() *PDFSource {
	return &PDFSource{}
}

func (s *PDFSource) FirstPageText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", fmt.Errorf("invalid PDF: %w", err)
	}
	if pdfCtx.PageCount < 1 {
		return "", ErrNoText
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	page := reader.Page(1)
	if page.V.IsNull() {
		return "", ErrNoText
	}

	text, err := pageText(page)
	if err != nil {
		return "", fmt.Errorf("failed to extract page text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// pageText rebuilds lines from positioned text runs so labeled fields stay on their own line.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, word := range row.Content {
			if line.Len() > 0 && !strings.HasSuffix(line.String(), " ") && !strings.HasPrefix(word.S, " ") {
				line.WriteString(" ")
			}
			line.WriteString(word.S)
		}
		b.WriteString(strings.TrimSpace(line.String()))
		b.WriteString("\n")
	}
	return b.String(), nil
}
