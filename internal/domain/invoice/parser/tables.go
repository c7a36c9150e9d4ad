package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/billfox/telco-invoices/pkg/pagesource"
)

// Table classification is the most failure-prone step of summary extraction:
// header names vary between invoice revisions and scan quality mangles cell
// text. Anything ambiguous is classified tableOther and skipped.

type tableKind int

const (
	tableOther tableKind = iota
	tableDataUsageOverseas
	tableWapSessions
)

// Header aliases seen across invoice revisions. Matching is by substring on
// the lowercased header cell; the first hit per concern wins.
var (
	descriptionAliases = []string{"description", "call type", "call description", "details", "service", "type"}
	locationAliases    = []string{"location", "origin", "country", "place"}
)

type tableColumns struct {
	volume      int
	description int
	location    int
}

func resolveColumns(header []string) tableColumns {
	cols := tableColumns{volume: -1, description: -1, location: -1}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if cols.volume == -1 && ((strings.Contains(name, "vol") && strings.Contains(name, "kb")) || name == "kb") {
			cols.volume = i
		}
		if cols.description == -1 {
			for _, alias := range descriptionAliases {
				if strings.Contains(name, alias) {
					cols.description = i
					break
				}
			}
		}
		if cols.location == -1 {
			for _, alias := range locationAliases {
				if strings.Contains(name, alias) {
					cols.location = i
					break
				}
			}
		}
	}
	return cols
}

// classifyTable decides what a table holds. Overseas data usage is detected
// by scanning every data row for the literal co-occurrence of its two
// markers; that check runs first and does not depend on header names. WAP
// session tables are detected through the description column.
func classifyTable(t pagesource.Table, cols tableColumns) tableKind {
	for _, row := range t.Rows {
		joined := strings.ToLower(strings.Join(row, " "))
		if strings.Contains(joined, "data usage overseas") && strings.Contains(joined, "gst free") {
			return tableDataUsageOverseas
		}
	}

	if cols.description >= 0 {
		for _, row := range t.Rows {
			cell := strings.ToLower(t.Cell(row, cols.description))
			if strings.Contains(cell, "wap") || strings.Contains(cell, "internet") {
				return tableWapSessions
			}
		}
	}

	return tableOther
}

var integerLiteralRe = regexp.MustCompile(`^\d+$`)

func (p *SummaryParser) applyTable(rec *subscriberTotals, t pagesource.Table) {
	cols := resolveColumns(t.Header)
	switch classifyTable(t, cols) {
	case tableDataUsageOverseas:
		if cols.location < 0 {
			return
		}
		for _, row := range t.Rows {
			if loc := t.Cell(row, cols.location); loc != "" {
				rec.addCountry(p.countries.Canonical(loc))
			}
		}

	case tableWapSessions:
		if cols.volume < 0 {
			return
		}
		for _, row := range t.Rows {
			cell := strings.ReplaceAll(t.Cell(row, cols.volume), ",", "")
			if !integerLiteralRe.MatchString(cell) {
				continue
			}
			if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
				rec.wapVolumeKB += v
			}
		}
	}
}
