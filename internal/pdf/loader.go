package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"ragtex/internal/logger"
)

// Loader validates PDFs with pdfcpu and extracts page text with
// ledongthuc/pdf, which copes better with the font encodings found in papers.
type Loader struct {
	conf     *model.Configuration
	log      logger.Logger
	validate bool
}

// NewLoader creates a Loader. A nil log discards log output.
func NewLoader(log logger.Logger) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		conf:     model.NewDefaultConfiguration(),
		log:      log,
		validate: true,
	}
}

// SkipValidation disables the pdfcpu structure check before extraction.
// Some producers write PDFs pdfcpu rejects that still extract fine.
func (l *Loader) SkipValidation() {
	l.validate = false
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func statFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewPDFError(ErrPDFNotFound, "file does not exist", err)
		}
		return nil, NewPDFError(ErrPDFInvalid, "cannot access file", err)
	}
	if info.IsDir() {
		return nil, NewPDFError(ErrPDFInvalid, "path is a directory", nil)
	}
	return info, nil
}

// Validate checks the structure of the PDF at path.
func (l *Loader) Validate(path string) error {
	if _, err := statFile(path); err != nil {
		return err
	}
	if err := api.ValidateFile(path, l.conf); err != nil {
		l.log.Warn("pdf validation failed", logger.String("path", path), logger.Err(err))
		return NewPDFError(ErrPDFInvalid, "invalid PDF structure", err)
	}
	return nil
}

// GetPDFInfo returns page count, size and whether the file carries
// extractable text.
func (l *Loader) GetPDFInfo(path string) (*PDFInfo, error) {
	info, err := statFile(path)
	if err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot open PDF", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	isText := false
	for n := 1; n <= pageCount && n <= 3; n++ {
		if text, err := pageText(r, n); err == nil && countNonSpace(text) > 0 {
			isText = true
			break
		}
	}

	return &PDFInfo{
		FilePath:  path,
		FileName:  filepath.Base(path),
		PageCount: pageCount,
		FileSize:  info.Size(),
		IsTextPDF: isText,
	}, nil
}

// ExtractPages returns the cleaned text of every page that has any. Pages
// that fail to decode are skipped with a warning.
func (l *Loader) ExtractPages(path string) ([]Page, error) {
	if _, err := statFile(path); err != nil {
		return nil, err
	}
	if l.validate {
		if err := l.Validate(path); err != nil {
			return nil, err
		}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, NewPDFError(ErrPDFInvalid, "cannot open PDF", err)
	}
	defer f.Close()

	var pages []Page
	total := r.NumPage()
	for n := 1; n <= total; n++ {
		text, err := pageText(r, n)
		if err != nil {
			l.log.Warn("skipping unreadable page", logger.String("path", path), logger.Int("page", n), logger.Err(err))
			continue
		}
		text = cleanPageText(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Number: n, Text: text})
	}

	if len(pages) == 0 {
		return nil, NewPDFError(ErrPDFNoText, "no extractable text (scanned PDF?)", nil)
	}
	l.log.Debug("pdf text extracted", logger.String("path", path), logger.Int("pages", total), logger.Int("textPages", len(pages)))
	return pages, nil
}

// ExtractText returns the text of all pages joined by blank lines.
func (l *Loader) ExtractText(path string) (string, error) {
	pages, err := l.ExtractPages(path)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n"), nil
}

// pageText extracts page n. The content stream parser panics on some
// malformed input, so a panic is turned into an error.
func pageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = NewPDFErrorWithPage(ErrExtractFailed, "page decode panicked", n, fmt.Errorf("%v", rec))
		}
	}()

	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", NewPDFErrorWithPage(ErrExtractFailed, "cannot extract page text", n, err)
	}
	return text, nil
}

func countNonSpace(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
