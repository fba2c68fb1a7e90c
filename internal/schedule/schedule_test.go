package schedule

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/holdings-extract/internal/holdings"
)

const tableFixture = `<html><body>
<table>
<tr><th>Portfolio Company</th><th>Investment Type</th><th>Acquisition Date</th><th>Maturity Date</th><th>Interest Rate</th></tr>
<tr><td>Brandner Design, LLC</td><td>First Lien Term Loan</td><td>06/01/2022</td><td>03/15/2027</td><td>SOFR + 6.50%</td></tr>
<tr><td>Acme Technologies LLC</td><td>First Lien Senior Secured Loan</td><td></td><td>03/15/2028</td><td>9.10%</td></tr>
<tr><td>Total Investments</td><td></td><td></td><td></td><td></td></tr>
</table>
<table>
<tr><td>Some unrelated</td><td>layout table</td></tr>
</table>
</body></html>`

func TestParseTable(t *testing.T) {
	rows, err := ParseTable(tableFixture)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Brandner Design, LLC", rows[0].Company)
	assert.Equal(t, "First Lien Term Loan", rows[0].InvestmentType)
	assert.Equal(t, "06/01/2022", rows[0].AcquisitionDate)
	assert.Equal(t, "03/15/2027", rows[0].MaturityDate)
	assert.Equal(t, "SOFR + 6.50%", rows[0].InterestRate)

	assert.Equal(t, "Acme Technologies LLC", rows[1].Company)
	assert.Empty(t, rows[1].AcquisitionDate)
}

func TestParseTable_NoCompanyColumn(t *testing.T) {
	rows, err := ParseTable(`<table><tr><th>Amount</th></tr><tr><td>100</td></tr></table>`)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "BRANDNER DESIGN LLC", normalizeName("Brandner Design, LLC"))
	assert.Equal(t, "BRANDNER DESIGN LLC", normalizeName("Brandner Design LLC"))
	assert.Equal(t, "SMITH AND JONES LLC", normalizeName("Smith & Jones, L.L.C."))
	assert.Equal(t, "", normalizeName("  "))
}

func TestStrippedName(t *testing.T) {
	assert.Equal(t, "BRANDNER DESIGN", strippedName("Brandner Design, LLC"))
	assert.Equal(t, "ACME", strippedName("Acme Holdings, Inc."))
	assert.Equal(t, "WIDGET", strippedName("Widget Corp. (fka Gadget Corp.)"))
}

func fv(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFill_NormalizedMatchBackfillsOnlyNulls(t *testing.T) {
	rows, err := ParseTable(tableFixture)
	require.NoError(t, err)

	inv := &holdings.Investment{
		Company:        "Brandner Design LLC",
		InvestmentType: "First Lien Debt",
		InterestRate:   "11.25%",
		FairValue:      fv("100"),
	}
	m := NewMerger(rows, 0)
	filled := m.Fill([]*holdings.Investment{inv})

	assert.Equal(t, 2, filled)
	assert.Equal(t, "03/15/2027", inv.MaturityDate)
	assert.Equal(t, "06/01/2022", inv.AcquisitionDate)
	assert.Equal(t, "11.25%", inv.InterestRate)
}

func TestFill_ExactNameAndTypePreferred(t *testing.T) {
	rows := []Row{
		{Company: "Acme Technologies LLC", InvestmentType: "Revolver", MaturityDate: "01/01/2026"},
		{Company: "Acme Technologies LLC", InvestmentType: "First Lien Term Loan", MaturityDate: "03/15/2028"},
	}
	inv := &holdings.Investment{Company: "Acme Technologies LLC", InvestmentType: "First Lien Term Loan"}
	NewMerger(rows, 0).Fill([]*holdings.Investment{inv})
	assert.Equal(t, "03/15/2028", inv.MaturityDate)
}

func TestFill_FuzzyMatch(t *testing.T) {
	rows := []Row{{Company: "Brandner Design Co", MaturityDate: "03/15/2027"}}
	inv := &holdings.Investment{Company: "Brandner Designs LLC"}
	NewMerger(rows, 0).Fill([]*holdings.Investment{inv})
	assert.Equal(t, "03/15/2027", inv.MaturityDate)
}

func TestFill_NoMatchLeavesRecordUntouched(t *testing.T) {
	rows := []Row{{Company: "Completely Different Name Inc", MaturityDate: "01/01/2030"}}
	inv := &holdings.Investment{Company: "Acme Technologies LLC"}
	NewMerger(rows, 0).Fill([]*holdings.Investment{inv})
	assert.Empty(t, inv.MaturityDate)
}
