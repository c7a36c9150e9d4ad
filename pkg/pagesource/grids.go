package pagesource

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Tables are reconstructed from positioned text rows by column alignment: a
// run of consecutive rows whose cells start at the same X offsets is a grid,
// and the first row of the run is its header. Tolerances are in PDF points.
const (
	// cellGap is the minimum horizontal whitespace between text chunks
	// for them to count as separate cells rather than one cell's words.
	cellGap = 14.0
	// columnTolerance is how far a cell's start X may drift from the
	// header's column position and still belong to the same column.
	columnTolerance = 6.0
	// minTableRows is a header plus at least one data row.
	minTableRows = 2
)

type gridRow struct {
	xs    []float64
	cells []string
}

// toGridRow merges a row's positioned chunks into cells, splitting wherever
// the horizontal gap exceeds cellGap.
func toGridRow(row *pdf.Row) gridRow {
	chunks := make([]pdf.Text, len(row.Content))
	copy(chunks, row.Content)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].X < chunks[j].X })

	var (
		g         gridRow
		cell      strings.Builder
		cellStart float64
		lastEnd   float64
	)
	flush := func() {
		if cell.Len() == 0 {
			return
		}
		g.xs = append(g.xs, cellStart)
		g.cells = append(g.cells, strings.TrimSpace(cell.String()))
		cell.Reset()
	}

	for _, chunk := range chunks {
		if chunk.S == "" {
			continue
		}
		if cell.Len() > 0 && chunk.X-lastEnd > cellGap {
			flush()
		}
		if cell.Len() == 0 {
			cellStart = chunk.X
		} else {
			cell.WriteString(" ")
		}
		cell.WriteString(chunk.S)
		lastEnd = chunk.X + chunk.W
	}
	flush()

	return g
}

// detectTables finds aligned runs of multi-cell rows and returns them as
// tables. Prose rows reduce to a single cell and never start or extend a
// run, so running text around a grid does not bleed into it.
func detectTables(rows pdf.Rows) []Table {
	grid := make([]gridRow, len(rows))
	for i, row := range rows {
		grid[i] = toGridRow(row)
	}

	var tables []Table
	for i := 0; i < len(grid); {
		head := grid[i]
		if len(head.cells) < 2 {
			i++
			continue
		}

		j := i + 1
		for j < len(grid) && alignsWith(head, grid[j]) {
			j++
		}

		if j-i >= minTableRows {
			t := Table{Header: head.cells}
			for _, r := range grid[i+1 : j] {
				t.Rows = append(t.Rows, r.cells)
			}
			tables = append(tables, t)
		}
		i = j
	}
	return tables
}

func alignsWith(head, row gridRow) bool {
	if len(row.cells) != len(head.cells) {
		return false
	}
	for k, x := range row.xs {
		if diff := x - head.xs[k]; diff > columnTolerance || diff < -columnTolerance {
			return false
		}
	}
	return true
}
