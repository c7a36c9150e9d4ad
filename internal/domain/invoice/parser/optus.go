package parser

import (
	"regexp"
	"strings"

	"github.com/billfox/telco-invoices/internal/domain/invoice/sniffer"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

var (
	// "0403061668 on $60 Business Mobile Plus M2M". The plan capture runs
	// to the final "M2M" token so multi-word plan names survive.
	optusChargeRe   = regexp.MustCompile(`(04\d{8}) on \$([\d,]*\.\d{2}|\d+)\s+(.+?M2M)`)
	optusOverrideRe = regexp.MustCompile(`Total Monthly Charges\s+\$([\d.]+)`)
)

// OptusParser extracts simple charge rows from Optus invoices. The amount
// on the plan line is only the list price; when a later "Total Monthly
// Charges" line exists for the same number, that value wins. The excl-GST
// figure is always derived from the incl-GST one.
type OptusParser struct{}

func (OptusParser) Carrier() sniffer.Carrier { return sniffer.CarrierOptus }

func (OptusParser) Parse(pages []pagesource.Page) []ChargeRow {
	overrides := newOverrideIndex(pagesource.JoinText(pages), optusOverrideRe)

	var rows []ChargeRow
	for _, page := range pages {
		if page.Text == "" {
			continue
		}
		for _, m := range optusChargeRe.FindAllStringSubmatch(page.Text, -1) {
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
