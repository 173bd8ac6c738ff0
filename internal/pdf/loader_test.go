package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMinimalPDF writes a one-page PDF showing text in Helvetica, with a
// correct cross-reference table.
func writeMinimalPDF(t *testing.T, path, text string) {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
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

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func pdfErrorCode(t *testing.T, err error) PDFErrorCode {
	t.Helper()
	var pdfErr *PDFError
	require.True(t, errors.As(err, &pdfErr), "expected *PDFError, got %T", err)
	return pdfErr.Code
}

func TestLoader_ErrorPaths(t *testing.T) {
	loader := NewLoader(nil)
	tmpDir := t.TempDir()

	notPDF := filepath.Join(tmpDir, "invalid.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("This is not a PDF file"), 0644))

	tests := []struct {
		name string
		path string
		want PDFErrorCode
	}{
		{"non-existent file", filepath.Join(tmpDir, "missing.pdf"), ErrPDFNotFound},
		{"directory", tmpDir, ErrPDFInvalid},
		{"not a pdf", notPDF, ErrPDFInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.ExtractPages(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.want, pdfErrorCode(t, err))

			_, err = loader.GetPDFInfo(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.want, pdfErrorCode(t, err))
		})
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader(nil)
	tmpDir := t.TempDir()

	bad := filepath.Join(tmpDir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("%PDF-1.4\ngarbage"), 0644))
	err := loader.Validate(bad)
	require.Error(t, err)
	assert.Equal(t, ErrPDFInvalid, pdfErrorCode(t, err))

	good := filepath.Join(tmpDir, "good.pdf")
	writeMinimalPDF(t, good, "Hello world")
	assert.NoError(t, loader.Validate(good))
}

func TestLoader_ExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.pdf")
	writeMinimalPDF(t, path, "Hello world")

	loader := NewLoader(nil)

	info, err := loader.GetPDFInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 1, info.PageCount)
	assert.Equal(t, "hello.pdf", info.FileName)
	assert.True(t, info.IsTextPDF)

	pages, err := loader.ExtractPages(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Contains(t, pages[0].Text, "Hello world")

	text, err := loader.ExtractText(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello world")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("paper.pdf"))
	assert.True(t, IsPDF("/tmp/PAPER.PDF"))
	assert.False(t, IsPDF("notes.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestCleanPageText(t *testing.T) {
	input := "Title  \r\n\r\n\r\n/a 1 def /b 2 def\nBody line\n0 0 moveto\n\n\nEnd\n"
	assert.Equal(t, "Title\n\nBody line\n\nEnd", cleanPageText(input))
}

func TestIsPostScriptCode(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"/Name def", true},
		{"gsave 1 0 0 setrgbcolor", true},
		{"/a /b /c", true},
		{"see https://example.com/a/b/c", false},
		{"We define the matrix A.", false},
		{"Fill in the blanks", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isPostScriptCode(tt.text), tt.text)
	}
}

func TestHasExcessiveNonPrintable(t *testing.T) {
	assert.False(t, hasExcessiveNonPrintable("plain text"))
	assert.True(t, hasExcessiveNonPrintable("a\x01\x02\x03"))
	assert.False(t, hasExcessiveNonPrintable(""))
}
