// Package export renders extraction results as CSV and XLSX downloads.
// Column order and header text match the JSON field order so every format
// carries the same table.
package export

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/billfox/telco-invoices/internal/domain/invoice/parser"
)

const (
	chargesSheet = "Charges"
	summarySheet = "Mobile Summary"
)

// ChargesCSV marshals charge rows using their csv struct tags. An empty
// result still yields the header line.
func ChargesCSV(rows []parser.ChargeRow) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal charges csv: %w", err)
	}
	return out, nil
}

// SummariesCSV marshals summary rows using their csv struct tags.
func SummariesCSV(rows []parser.SummaryRow) ([]byte, error) {
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal summaries csv: %w", err)
	}
	return out, nil
}

var chargeHeaders = []string{
	"Mobile Number", "Plan Name", "Spend Excl GST", "Spend Incl GST",
}

var summaryHeaders = []string{
	"Mobile Number",
	"National Direct Calls",
	"SMS (Mobile Originated)",
	"Enhanced SMS",
	"Call Diversion Calls",
	"Calls Made Overseas",
	"Calls Received Overseas",
	"Overseas Data Sessions",
	"Total Call Charges (Excl GST)",
	"Total Call Charges (Incl GST)",
	"Total Service Charges (Excl GST)",
	"Total Service Charges (Incl GST)",
	"Total WAP Volume (KB)",
	"Overseas Countries",
	"Total Spend per Mobile (Excl GST)",
	"Total Spend per Mobile (Incl GST)",
}

// ChargesXLSX renders charge rows into a single-sheet workbook. Unparsed
// spend values become blank cells, not zeros.
func ChargesXLSX(rows []parser.ChargeRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chargesSheet); err != nil {
		return nil, fmt.Errorf("name charges sheet: %w", err)
	}
	if err := writeRow(f, chargesSheet, 1, toCells(chargeHeaders)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := []interface{}{
			row.MobileNumber,
			row.PlanName,
			optionalFloat(row.SpendExclGST),
			optionalFloat(row.SpendInclGST),
		}
		if err := writeRow(f, chargesSheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	return workbookBytes(f)
}

// SummariesXLSX renders summary rows into a single-sheet workbook.
func SummariesXLSX(rows []parser.SummaryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("name summary sheet: %w", err)
	}
	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := []interface{}{
			row.MobileNumber,
			row.NationalDirectCalls,
			row.SMSMobileOriginated,
			row.EnhancedSMS,
			row.CallDiversionCalls,
			row.CallsMadeOverseas,
			row.CallsReceivedOverseas,
			row.OverseasDataSessions,
			row.TotalCallChargesExcl,
			row.TotalCallChargesIncl,
			row.TotalServiceChargesExcl,
			row.TotalServiceChargesIncl,
			row.TotalWAPVolumeKB,
			row.OverseasCountries,
			row.TotalSpendExcl,
			row.TotalSpendIncl,
		}
		if err := writeRow(f, summarySheet, i+2, cells); err != nil {
			return nil, err
		}
	}

	return workbookBytes(f)
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d coordinates: %w", rowNum, err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

func optionalFloat(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
