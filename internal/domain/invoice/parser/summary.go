package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/billfox/telco-invoices/pkg/money"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

// SummaryParser runs the detailed-summary extraction over Telstra enterprise
// invoices: one row per mobile service carrying usage counters, charge
// subtotals, WAP data volume, and overseas usage.
type SummaryParser struct {
	countries *CountrySet
}

func NewSummaryParser(knownCountries []string) *SummaryParser {
	return &SummaryParser{countries: NewCountrySet(knownCountries)}
}

var mobileHeaderRe = regexp.MustCompile(`^Mobile\s+(\d{4}\s?\d{3}\s?\d{3})`)

// countRule binds a usage line pattern to the counter it sets. Counters are
// overwritten by the latest sighting because continuation pages restate the
// running figure, not a delta.
type countRule struct {
	re    *regexp.Regexp
	apply func(t *subscriberTotals, n int)
}

var summaryCountRules = []countRule{
	{regexp.MustCompile(`National Direct.*?(\d+)\s*calls`), func(t *subscriberTotals, n int) { t.nationalDirect = n }},
	{regexp.MustCompile(`Mobile Originated SMS.*?(\d+)\s*calls`), func(t *subscriberTotals, n int) { t.smsOriginated = n }},
	{regexp.MustCompile(`Mobile Enhanced SMS.*?(\d+)\s*calls?`), func(t *subscriberTotals, n int) { t.enhancedSMS = n }},
	{regexp.MustCompile(`Call Diversion.*?(\d+)\s*calls`), func(t *subscriberTotals, n int) { t.callDiversion = n }},
	{regexp.MustCompile(`Calls made O/S.*?(\d+)\s*calls`), func(t *subscriberTotals, n int) { t.callsMadeOverseas = n }},
	{regexp.MustCompile(`Calls received O/S.*?(\d+)\s*calls`), func(t *subscriberTotals, n int) { t.callsReceivedOverseas = n }},
	{regexp.MustCompile(`Data Usage Overseas.*?(\d+)\s*calls?`), func(t *subscriberTotals, n int) { t.overseasDataSessions = n }},
}

var (
	totalCallChargesRe    = regexp.MustCompile(`Total call charges\s*\$?\s*([\d,]*\.?\d+)\s*\$?\s*([\d,]*\.?\d+)`)
	totalServiceChargesRe = regexp.MustCompile(`Total service charges\s*\$?\s*([\d,]*\.?\d+)\s*\$?\s*([\d,]*\.?\d+)`)
)

const itemisedMarker = "Itemised call details"

// subscriberTotals is the running aggregate for one mobile service. The two
// charge pairs accumulate across sightings; everything else is overwritten.
type subscriberTotals struct {
	mobile string

	nationalDirect        int
	smsOriginated         int
	enhancedSMS           int
	callDiversion         int
	callsMadeOverseas     int
	callsReceivedOverseas int
	overseasDataSessions  int

	callExcl    money.Amount
	callIncl    money.Amount
	serviceExcl money.Amount
	serviceIncl money.Amount

	wapVolumeKB int64
	countries   map[string]struct{}
}

func newSubscriberTotals(mobile string) *subscriberTotals {
	return &subscriberTotals{mobile: mobile, countries: make(map[string]struct{})}
}

func (t *subscriberTotals) addCountry(name string) {
	if name != "" {
		t.countries[name] = struct{}{}
	}
}

func (t *subscriberTotals) row() SummaryRow {
	names := make([]string, 0, len(t.countries))
	for name := range t.countries {
		names = append(names, name)
	}
	sort.Strings(names)

	totalExcl := t.callExcl.Add(t.serviceExcl)
	totalIncl := t.callIncl.Add(t.serviceIncl)

	return SummaryRow{
		MobileNumber:            t.mobile,
		NationalDirectCalls:     t.nationalDirect,
		SMSMobileOriginated:     t.smsOriginated,
		EnhancedSMS:             t.enhancedSMS,
		CallDiversionCalls:      t.callDiversion,
		CallsMadeOverseas:       t.callsMadeOverseas,
		CallsReceivedOverseas:   t.callsReceivedOverseas,
		OverseasDataSessions:    t.overseasDataSessions,
		TotalCallChargesExcl:    t.callExcl.Float64(),
		TotalCallChargesIncl:    t.callIncl.Float64(),
		TotalServiceChargesExcl: t.serviceExcl.Float64(),
		TotalServiceChargesIncl: t.serviceIncl.Float64(),
		TotalWAPVolumeKB:        t.wapVolumeKB,
		OverseasCountries:       strings.Join(names, ", "),
		TotalSpendExcl:          totalExcl.Float64(),
		TotalSpendIncl:          totalIncl.Float64(),
	}
}

// Parse aggregates every page into per-subscriber totals. The current
// subscriber carries across page boundaries so continuation pages without a
// header still attach to the right service. Lines after an itemised call
// details marker are skipped until the next header or page end; those
// sections restate per-call figures that would double-count the totals.
func (p *SummaryParser) Parse(pages []pagesource.Page) []SummaryRow {
	totals := make(map[string]*subscriberTotals)
	var order []string
	var current *subscriberTotals

	for _, page := range pages {
		itemised := false
		for _, line := range page.Lines() {
			if m := mobileHeaderRe.FindStringSubmatch(line); m != nil {
				mobile := NormalizeMobile(m[1])
				rec, ok := totals[mobile]
				if !ok {
					rec = newSubscriberTotals(mobile)
					totals[mobile] = rec
					order = append(order, mobile)
				}
				current = rec
				itemised = false
				continue
			}
			if current == nil || line == "" {
				continue
			}
			if strings.HasPrefix(line, itemisedMarker) {
				itemised = true
				continue
			}
			if itemised {
				continue
			}
			p.applyLine(current, line)
		}

		// Tables belong to whichever subscriber the page ended on.
		if current != nil {
			for _, table := range page.Tables {
				p.applyTable(current, table)
			}
		}
	}

	rows := make([]SummaryRow, 0, len(order))
	for _, mobile := range order {
		rows = append(rows, totals[mobile].row())
	}
	return rows
}

func (p *SummaryParser) applyLine(rec *subscriberTotals, line string) {
	for _, rule := range summaryCountRules {
		if m := rule.re.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				rule.apply(rec, n)
			}
		}
	}

	if m := totalCallChargesRe.FindStringSubmatch(line); m != nil {
		if excl, incl, ok := parseAmountPair(m[1], m[2]); ok {
			rec.callExcl = rec.callExcl.Add(excl)
			rec.callIncl = rec.callIncl.Add(incl)
		}
	}
	if m := totalServiceChargesRe.FindStringSubmatch(line); m != nil {
		if excl, incl, ok := parseAmountPair(m[1], m[2]); ok {
			rec.serviceExcl = rec.serviceExcl.Add(excl)
			rec.serviceIncl = rec.serviceIncl.Add(incl)
		}
	}

	for _, country := range p.countries.Matches(line) {
		rec.addCountry(country)
	}
}

// parseAmountPair parses an excl/incl pair atomically: if either half is
// unparseable the whole pair is dropped so the two figures never drift.
func parseAmountPair(rawExcl, rawIncl string) (money.Amount, money.Amount, bool) {
	excl, ok := parseAmount(rawExcl)
	if !ok {
		return money.Amount{}, money.Amount{}, false
	}
	incl, ok := parseAmount(rawIncl)
	if !ok {
		return money.Amount{}, money.Amount{}, false
	}
	return excl, incl, true
}
