package parser

import (
	"regexp"
	"strings"

	"github.com/billfox/telco-invoices/internal/domain/invoice/sniffer"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

var (
	telstraMobileRe = regexp.MustCompile(`Mobile\s+(\d{4}\s?\d{3}\s?\d{3})`)
	// Plan name followed by exactly two trailing currency tokens:
	// excl-GST then incl-GST.
	telstraChargeRe = regexp.MustCompile(`^(.+?)\s+\$([\d,]*\.\d{2})\s+\$([\d,]*\.\d{2})\s*$`)
)

// TelstraParser extracts simple charge rows from Telstra invoices. A
// "Mobile NNNN NNN NNN" line sets the current subscriber until superseded;
// a line carrying a qualifying plan keyword plus two trailing amounts
// becomes a charge row for that subscriber.
type TelstraParser struct{}

func (TelstraParser) Carrier() sniffer.Carrier { return sniffer.CarrierTelstra }

func (TelstraParser) Parse(pages []pagesource.Page) []ChargeRow {
	var rows []ChargeRow
	currentNumber := ""

	for _, page := range pages {
		for _, line := range page.Lines() {
			if m := telstraMobileRe.FindStringSubmatch(line); m != nil {
				currentNumber = NormalizeMobile(m[1])
				continue
			}

			if !telstraPlanLine(line) {
				continue
			}

			m := telstraChargeRe.FindStringSubmatch(line)
			if m == nil || currentNumber == "" {
				// A charge line with no current subscriber is dropped.
				continue
			}

			row := ChargeRow{
				MobileNumber: currentNumber,
				PlanName:     strings.TrimSpace(m[1]),
			}
			if excl, ok := parseAmount(m[2]); ok {
				row.SpendExclGST = floatPtr(excl)
			}
			if incl, ok := parseAmount(m[3]); ok {
				row.SpendInclGST = floatPtr(incl)
			}
			rows = append(rows, row)
		}
	}

	return rows
}

// telstraPlanLine reports whether a line names a qualifying plan or bundle.
// Example: "Business Mobile Plan Basic - 10 Sep to 09 Oct  $63.64  $70.00"
func telstraPlanLine(line string) bool {
	return strings.Contains(line, "Business") &&
		(strings.Contains(line, "Plan") || strings.Contains(line, "Bundle"))
}
