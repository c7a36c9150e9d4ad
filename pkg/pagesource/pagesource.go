// Package pagesource yields per-page plain text and tabular grids extracted
// from an invoice document. The extraction engine only ever sees Pages; the
// underlying PDF library stays behind this boundary.
package pagesource

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Table is one tabular grid from a page: a header row plus data rows of
// string cells. Absent cells are empty strings, never nil.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns the trimmed cell at col for the given row, or "" when the
// row is too short.
func (t Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Page is the extracted content of one document page. Text may be empty
// for image-only pages.
type Page struct {
	Text   string
	Tables []Table
}

// Lines splits the page text into trimmed lines.
func (p Page) Lines() []string {
	if p.Text == "" {
		return nil
	}
	raw := strings.Split(p.Text, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// FromBytes reads a PDF and extracts each page's text layer. The PDF
// library panics on some malformed inputs, so failures of any shape come
// back as an error rather than taking the caller down.
func FromBytes(data []byte) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf extraction failed: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	pages = make([]Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, Page{})
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", i, err)
		}

		var b strings.Builder
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					b.WriteString(" ")
				}
				b.WriteString(word.S)
			}
			b.WriteString("\n")
		}
		pages = append(pages, Page{Text: b.String(), Tables: detectTables(rows)})
	}

	return pages, nil
}

// JoinText concatenates all page texts with single spaces, mirroring how
// override lookups scan the whole document as one string.
func JoinText(pages []Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, " ")
}
