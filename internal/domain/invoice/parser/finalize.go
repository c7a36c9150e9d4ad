package parser

import "sort"

// FinalizeCharges orders rows by mobile number then tax-inclusive spend and
// collapses duplicate numbers, keeping the highest-spend revision. Rows with
// no parsed spend sort below every priced row, so a priced revision always
// wins over an unpriced one.
func FinalizeCharges(rows []ChargeRow) []ChargeRow {
	sorted := make([]ChargeRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MobileNumber != sorted[j].MobileNumber {
			return sorted[i].MobileNumber < sorted[j].MobileNumber
		}
		return inclSpend(sorted[i]) < inclSpend(sorted[j])
	})

	out := make([]ChargeRow, 0, len(sorted))
	for _, row := range sorted {
		if n := len(out); n > 0 && out[n-1].MobileNumber == row.MobileNumber {
			out[n-1] = row
			continue
		}
		out = append(out, row)
	}
	return out
}

func inclSpend(r ChargeRow) float64 {
	if r.SpendInclGST == nil {
		return -1
	}
	return *r.SpendInclGST
}

// FinalizeSummaries applies the same order-and-collapse to summary rows.
func FinalizeSummaries(rows []SummaryRow) []SummaryRow {
	sorted := make([]SummaryRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MobileNumber != sorted[j].MobileNumber {
			return sorted[i].MobileNumber < sorted[j].MobileNumber
		}
		return sorted[i].TotalSpendIncl < sorted[j].TotalSpendIncl
	})

	out := make([]SummaryRow, 0, len(sorted))
	for _, row := range sorted {
		if n := len(out); n > 0 && out[n-1].MobileNumber == row.MobileNumber {
			out[n-1] = row
			continue
		}
		out = append(out, row)
	}
	return out
}
