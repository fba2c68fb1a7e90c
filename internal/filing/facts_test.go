package filing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const factsFixture = `<html>
<body>
<us-gaap:InvestmentOwnedBalancePrincipalAmount contextRef="c1" unitRef="usd">1000000</us-gaap:InvestmentOwnedBalancePrincipalAmount>
<us-gaap:InvestmentOwnedAtCost contextRef="c1" unitRef="usd">990000</us-gaap:InvestmentOwnedAtCost>
<table><tr>
<td>Acme Technologies LLC</td>
<td>SOFR + 5.25%, 1.00% Floor</td>
<td>Maturity Date 03/15/2028</td>
<td><ix:nonFraction name="us-gaap:InvestmentOwnedAtFairValue" contextRef="c1" unitRef="usd" decimals="0">995,000</ix:nonFraction></td>
</tr></table>
<us-gaap:InvestmentOwnedAtFairValue contextRef="orphan" unitRef="usd">123</us-gaap:InvestmentOwnedAtFairValue>
</body>
</html>`

func TestAggregateFacts_StandardEncoding(t *testing.T) {
	facts := AggregateFacts(factsFixture, 0)
	require.Contains(t, facts, "c1")

	concepts := make(map[string]string)
	for _, f := range facts["c1"] {
		concepts[f.Concept] = f.Value
	}
	assert.Equal(t, "1000000", concepts["us-gaap:InvestmentOwnedBalancePrincipalAmount"])
	assert.Equal(t, "990000", concepts["us-gaap:InvestmentOwnedAtCost"])
	assert.Equal(t, "995,000", concepts["us-gaap:InvestmentOwnedAtFairValue"])
}

func TestAggregateFacts_UnitHintPreserved(t *testing.T) {
	facts := AggregateFacts(factsFixture, 0)
	for _, f := range facts["c1"] {
		if f.Concept == "us-gaap:InvestmentOwnedAtCost" {
			assert.Equal(t, "usd", f.Unit)
		}
	}
}

func TestAggregateFacts_DerivedFromWindow(t *testing.T) {
	facts := AggregateFacts(factsFixture, 0)

	concepts := make(map[string]string)
	for _, f := range facts["c1"] {
		concepts[f.Concept] = f.Value
	}
	assert.Equal(t, "SOFR", concepts["derived:reference_rate"])
	assert.Equal(t, "5.25%", concepts["derived:spread"])
	assert.Equal(t, "1.00%", concepts["derived:floor_rate"])
	assert.Equal(t, "03/15/2028", concepts["derived:maturity_date"])
}

func TestAggregateFacts_OrphanContextStillCollected(t *testing.T) {
	// The aggregator itself keeps orphan facts; the join against resolved
	// contexts is what drops them.
	facts := AggregateFacts(factsFixture, 0)
	assert.Contains(t, facts, "orphan")
}

func TestAggregateFacts_DuplicatesPreserved(t *testing.T) {
	markup := `<root>
<us-gaap:InvestmentOwnedAtFairValue contextRef="c1">100</us-gaap:InvestmentOwnedAtFairValue>
<us-gaap:InvestmentOwnedAtFairValue contextRef="c1">100</us-gaap:InvestmentOwnedAtFairValue>
</root>`
	facts := AggregateFacts(markup, 0)
	assert.Len(t, facts["c1"], 2)
}

func TestScanWindow_SingleDateAcquisitionHint(t *testing.T) {
	derived := scanWindow("Initial Acquisition Date 06/01/2022 on first lien loan", "c9")
	require.Len(t, derived, 1)
	assert.Equal(t, "derived:acquisition_date", derived[0].Concept)
	assert.Equal(t, "06/01/2022", derived[0].Value)
}

func TestScanWindow_SingleDateDefaultsToMaturity(t *testing.T) {
	derived := scanWindow("due 03/15/2028", "c9")
	require.Len(t, derived, 1)
	assert.Equal(t, "derived:maturity_date", derived[0].Concept)
}

func TestScanWindow_TwoDates(t *testing.T) {
	derived := scanWindow("06/01/2022 through 03/15/2028", "c9")
	require.Len(t, derived, 2)
	assert.Equal(t, "derived:acquisition_date", derived[0].Concept)
	assert.Equal(t, "06/01/2022", derived[0].Value)
	assert.Equal(t, "derived:maturity_date", derived[1].Concept)
	assert.Equal(t, "03/15/2028", derived[1].Value)
}

func TestScanWindow_ManyDatesUsesFirstAndLast(t *testing.T) {
	derived := scanWindow("01/01/2020 then 05/05/2024 then 12/31/2029", "c9")
	require.Len(t, derived, 2)
	assert.Equal(t, "01/01/2020", derived[0].Value)
	assert.Equal(t, "12/31/2029", derived[1].Value)
}

func TestScanWindow_PIK(t *testing.T) {
	derived := scanWindow("interest 2.00% PIK accrual", "c9")
	require.Len(t, derived, 1)
	assert.Equal(t, "derived:pik_rate", derived[0].Concept)
	assert.Equal(t, "2.00%", derived[0].Value)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "03/15/2028", NormalizeDate("03/15/2028"))
	assert.Equal(t, "03/15/2028", NormalizeDate("2028-03-15"))
	assert.Equal(t, "06/01/2022", NormalizeDate("6/1/2022"))
	assert.Equal(t, "", NormalizeDate("not a date"))
}
