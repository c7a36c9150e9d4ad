// Package sniffer detects which carrier issued an invoice by scanning the
// document text for carrier-distinctive markers: brand names, canonical
// domain fragments, and billing-entity names.
package sniffer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Carrier identifies one of the supported billing-template families.
type Carrier string

const (
	CarrierTelstra  Carrier = "Telstra"
	CarrierOptus    Carrier = "Optus"
	CarrierVodafone Carrier = "Vodafone"
	CarrierUnknown  Carrier = "Unknown"
)

// markerSets lists carrier markers in detection priority order. All markers
// are matched case-insensitively; the first carrier with any hit wins.
var markerSets = []struct {
	carrier Carrier
	markers []string
}{
	{CarrierTelstra, []string{"telstra limited", "telstra.com"}},
	{CarrierOptus, []string{"optus billing services", "optus"}},
	{CarrierVodafone, []string{"vodafone pty", "vodafone"}},
}

// One Aho-Corasick pass finds every marker at once regardless of how many
// carriers are registered; the priority order is applied to the hit set
// afterwards.
var (
	matcher         *ahocorasick.Matcher
	patternCarriers []Carrier
)

func init() {
	var patterns []string
	for _, set := range markerSets {
		for _, m := range set.markers {
			patterns = append(patterns, m)
			patternCarriers = append(patternCarriers, set.carrier)
		}
	}
	matcher = ahocorasick.NewStringMatcher(patterns)
}

// Detect classifies the full concatenated document text as one carrier.
// Pure classification, no side effects; unrecognized documents come back as
// CarrierUnknown.
func Detect(fullText string) Carrier {
	if fullText == "" {
		return CarrierUnknown
	}

	hits := matcher.Match([]byte(strings.ToLower(fullText)))
	if len(hits) == 0 {
		return CarrierUnknown
	}

	found := make(map[Carrier]bool, len(hits))
	for _, idx := range hits {
		if idx >= 0 && idx < len(patternCarriers) {
			found[patternCarriers[idx]] = true
		}
	}

	for _, set := range markerSets {
		if found[set.carrier] {
			return set.carrier
		}
	}
	return CarrierUnknown
}
