package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

// buildPDF writes a minimal uncompressed PDF with one line of Helvetica text per page.
func buildPDF(pages ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractor_Extract(t *testing.T) {
	data := buildPDF("Photosynthesis converts light", "Mitochondria produce ATP")

	text, err := New().Extract(context.Background(), data)

	require.NoError(t, err)
	assert.Contains(t, text, "Photosynthesis converts light")
	assert.Contains(t, text, "Mitochondria produce ATP")
	assert.Less(t, bytes.Index([]byte(text), []byte("Photosynthesis")), bytes.Index([]byte(text), []byte("Mitochondria")))
}

func TestExtractor_RejectsNonPDF(t *testing.T) {
	tests := map[string][]byte{
		"empty":     nil,
		"plain":     []byte("just some text, not a pdf"),
		"truncated": buildPDF("cut short")[:40],
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New().Extract(context.Background(), data)

			var extractErr *domain.ExtractionError
			require.True(t, errors.As(err, &extractErr), "got %v", err)
			assert.Equal(t, domain.KindExtractionFailed, domain.ErrorKind(err))
		})
	}
}

func TestExtractor_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, buildPDF("one"))

	assert.ErrorIs(t, err, context.Canceled)
}
