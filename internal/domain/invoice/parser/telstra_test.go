package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billfox/telco-invoices/pkg/pagesource"
)

func textPages(texts ...string) []pagesource.Page {
	pages := make([]pagesource.Page, len(texts))
	for i, t := range texts {
		pages[i] = pagesource.Page{Text: t}
	}
	return pages
}

func TestTelstraParse(t *testing.T) {
	pages := textPages(
		"Mobile 0400 936 296\n" +
			"Business Mobile Plan Basic $10.00 $11.00\n" +
			"Mobile 0411 222 333\n" +
			"Business Internet Bundle $54.55 $60.00\n",
	)

	rows := TelstraParser{}.Parse(pages)
	require.Len(t, rows, 2)

	assert.Equal(t, "0400936296", rows[0].MobileNumber)
	assert.Equal(t, "Business Mobile Plan Basic", rows[0].PlanName)
	require.NotNil(t, rows[0].SpendExclGST)
	require.NotNil(t, rows[0].SpendInclGST)
	assert.InDelta(t, 10.00, *rows[0].SpendExclGST, 0.001)
	assert.InDelta(t, 11.00, *rows[0].SpendInclGST, 0.001)

	assert.Equal(t, "0411222333", rows[1].MobileNumber)
	assert.Equal(t, "Business Internet Bundle", rows[1].PlanName)
	assert.InDelta(t, 60.00, *rows[1].SpendInclGST, 0.001)
}

func TestTelstraParse_ChargeBeforeAnyHeaderIsDropped(t *testing.T) {
	pages := textPages(
		"Business Mobile Plan Basic $10.00 $11.00\n" +
			"Mobile 0400 936 296\n" +
			"Business Mobile Plan Basic $20.00 $22.00\n",
	)

	rows := TelstraParser{}.Parse(pages)
	require.Len(t, rows, 1)
	assert.Equal(t, "0400936296", rows[0].MobileNumber)
	assert.InDelta(t, 22.00, *rows[0].SpendInclGST, 0.001)
}

func TestTelstraParse_SubscriberCarriesAcrossPages(t *testing.T) {
	pages := textPages(
		"Mobile 0400 936 296\n",
		"Business Mobile Plan Large $90.91 $100.00\n",
	)

	rows := TelstraParser{}.Parse(pages)
	require.Len(t, rows, 1)
	assert.Equal(t, "0400936296", rows[0].MobileNumber)
	assert.Equal(t, "Business Mobile Plan Large", rows[0].PlanName)
}

func TestTelstraParse_IgnoresNonPlanLines(t *testing.T) {
	pages := textPages(
		"Mobile 0400 936 296\n" +
			"Late payment fee $5.00 $5.50\n" +
			"Account summary $99.00 $108.90\n",
	)

	rows := TelstraParser{}.Parse(pages)
	assert.Empty(t, rows)
}

func TestTelstraParse_PlanLineWithoutAmountsIsSkipped(t *testing.T) {
	pages := textPages(
		"Mobile 0400 936 296\n" +
			"Business Mobile Plan Basic continued on next page\n",
	)

	rows := TelstraParser{}.Parse(pages)
	assert.Empty(t, rows)
}
