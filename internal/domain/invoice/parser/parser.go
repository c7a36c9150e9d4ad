// Package parser implements the per-carrier extraction engines that fold
// loosely structured invoice text into one-row-per-subscriber records.
//
// Each carrier formats its invoices differently, so every variant carries
// its own battery of line rules. Two result shapes exist and stay separate:
// simple charge rows (one per plan line) and detailed summary rows (one per
// mobile service, aggregated across pages).
package parser

import (
	"regexp"

	"github.com/billfox/telco-invoices/internal/domain/invoice/sniffer"
	"github.com/billfox/telco-invoices/pkg/money"
	"github.com/billfox/telco-invoices/pkg/pagesource"
)

// ChargeRow is one extracted plan charge in simple mode. Spend fields are
// nil when the source value could not be parsed; absent is not zero.
type ChargeRow struct {
	MobileNumber string   `json:"mobile_number" csv:"Mobile Number"`
	PlanName     string   `json:"plan_name" csv:"Plan Name"`
	SpendExclGST *float64 `json:"spend_excl_gst" csv:"Spend Excl GST"`
	SpendInclGST *float64 `json:"spend_incl_gst" csv:"Spend Incl GST"`
}

// SummaryRow is one mobile service's aggregated usage and spend in
// detailed-summary mode.
type SummaryRow struct {
	MobileNumber            string  `json:"mobile_number" csv:"Mobile Number"`
	NationalDirectCalls     int     `json:"national_direct_calls" csv:"National Direct Calls"`
	SMSMobileOriginated     int     `json:"sms_mobile_originated" csv:"SMS (Mobile Originated)"`
	EnhancedSMS             int     `json:"enhanced_sms" csv:"Enhanced SMS"`
	CallDiversionCalls      int     `json:"call_diversion_calls" csv:"Call Diversion Calls"`
	CallsMadeOverseas       int     `json:"calls_made_overseas" csv:"Calls Made Overseas"`
	CallsReceivedOverseas   int     `json:"calls_received_overseas" csv:"Calls Received Overseas"`
	OverseasDataSessions    int     `json:"overseas_data_sessions" csv:"Overseas Data Sessions"`
	TotalCallChargesExcl    float64 `json:"total_call_charges_excl_gst" csv:"Total Call Charges (Excl GST)"`
	TotalCallChargesIncl    float64 `json:"total_call_charges_incl_gst" csv:"Total Call Charges (Incl GST)"`
	TotalServiceChargesExcl float64 `json:"total_service_charges_excl_gst" csv:"Total Service Charges (Excl GST)"`
	TotalServiceChargesIncl float64 `json:"total_service_charges_incl_gst" csv:"Total Service Charges (Incl GST)"`
	TotalWAPVolumeKB        int64   `json:"total_wap_volume_kb" csv:"Total WAP Volume (KB)"`
	OverseasCountries       string  `json:"overseas_countries" csv:"Overseas Countries"`
	TotalSpendExcl          float64 `json:"total_spend_excl_gst" csv:"Total Spend per Mobile (Excl GST)"`
	TotalSpendIncl          float64 `json:"total_spend_incl_gst" csv:"Total Spend per Mobile (Incl GST)"`
}

// ChargeParser extracts simple charge rows from one invoice's pages.
type ChargeParser interface {
	Carrier() sniffer.Carrier
	Parse(pages []pagesource.Page) []ChargeRow
}

// ForCarrier returns the charge parser for a detected carrier.
func ForCarrier(c sniffer.Carrier) (ChargeParser, bool) {
	switch c {
	case sniffer.CarrierTelstra:
		return TelstraParser{}, true
	case sniffer.CarrierOptus:
		return OptusParser{}, true
	case sniffer.CarrierVodafone:
		return VodafoneParser{}, true
	}
	return nil, false
}

var nonDigitRe = regexp.MustCompile(`\D`)

// NormalizeMobile strips non-digits and keeps the last 10 digits, guarding
// against country/area-code noise in OCR output.
func NormalizeMobile(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// parseAmount parses a monetary token. A failed parse means the field stays
// absent; it is never coerced to zero and never aborts the line.
func parseAmount(raw string) (money.Amount, bool) {
	a, err := money.FromString(raw)
	if err != nil {
		return money.Amount{}, false
	}
	return a, true
}

func floatPtr(a money.Amount) *float64 {
	f := a.Float64()
	return &f
}
