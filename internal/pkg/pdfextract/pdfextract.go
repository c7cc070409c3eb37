package pdfextract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"fundlens/internal/search"
)

// ExtractPages reads the entire content of r and extracts plain text page by
// page, keeping page numbers 1-based. Pages without extractable text are
// skipped; a scanned PDF yields an empty slice and nil error.
func ExtractPages(r io.Reader) ([]search.PageText, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf failed: %w", err)
	}

	var pages []search.PageText
	for num := 1; num <= pdfReader.NumPage(); num++ {
		page := pdfReader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not sink the document.
			continue
		}
		if text == "" {
			continue
		}
		pages = append(pages, search.PageText{PageNumber: num, Text: text})
	}
	return pages, nil
}
