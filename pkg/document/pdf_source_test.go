package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		want     bool
	}{
		{name: "mime type", fileName: "order", mimeType: "application/pdf", want: true},
		{name: "extension only", fileName: "ORDER-123.PDF", mimeType: "", want: true},
		{name: "image", fileName: "photo.jpg", mimeType: "image/jpeg", want: false},
		{name: "no hints", fileName: "notes", mimeType: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.fileName, tt.mimeType))
		})
	}
}

func TestPDFSource_RejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	text, err := NewPDFSource().FirstPageText(context.Background(), path)
	assert.Error(t, err)
	assert.Empty(t, text)
}

func TestPDFSource_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFSource().FirstPageText(ctx, "does-not-matter.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
