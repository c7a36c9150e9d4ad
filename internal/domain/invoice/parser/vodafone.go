package parser

import (
	"regexp"
	"strings"

	"github.com/billfox/telco-invoices/internal/domain/invoice/sniffer"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

var (
	// The plan capture stops at the first whitespace, truncating multi-word
	// plan names to their first token. Known limitation; widening it changes
	// downstream plan groupings, so it stays until the billing owners ask.
	vodafoneChargeRe   = regexp.MustCompile(`(04\d{8}) on \$([\d,]*\.\d{2}|\d+)\s+(\S+)`)
	vodafoneOverrideRe = regexp.MustCompile(`\$([\d,]*\.\d{2})`)
)

// VodafoneParser extracts simple charge rows from Vodafone invoices. Same
// shape as the Optus variant, but the override token is any decimal currency
// amount rather than a labelled total, so a charge line formatted with
// decimals can override itself. Harmless: the value is identical.
type VodafoneParser struct{}

func (VodafoneParser) Carrier() sniffer.Carrier { return sniffer.CarrierVodafone }

func (VodafoneParser) Parse(pages []pagesource.Page) []ChargeRow {
	overrides := newOverrideIndex(pagesource.JoinText(pages), vodafoneOverrideRe)

	var rows []ChargeRow
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		for _, m := range vodafoneChargeRe.FindAllStringSubmatch(page.Text, -1) {
			number, rawAmount, plan := m[1], m[2], m[3]

			incl, ok := parseAmount(rawAmount)
			if ov, found := overrides.lookup(number); found {
				incl, ok = ov, true
			}

			row := ChargeRow{
				MobileNumber: NormalizeMobile(number),
				PlanName:     strings.TrimSpace(plan),
			}
			if ok {
				row.SpendInclGST = floatPtr(incl)
				row.SpendExclGST = floatPtr(incl.ExclGST())
			}
			rows = append(rows, row)
		}
	}

	return rows
}
