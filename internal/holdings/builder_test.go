package holdings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/holdings-extract/internal/filing"
)

func testCtx(id, raw string) filing.Context {
	return filing.Context{ID: id, RawIdentifier: raw, Instant: "2024-09-30"}
}

func fact(concept, value, unit string) filing.Fact {
	return filing.Fact{Concept: concept, ContextID: "c1", Value: value, Unit: unit}
}

func TestBuild_MergesFactsIntoRecord(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC, Software, First Lien Senior Secured Loan, SOFR + 5.25%")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedBalancePrincipalAmount", "1,000,000", "usd"),
		fact("us-gaap:InvestmentOwnedAtCost", "990000", "usd"),
		fact("us-gaap:InvestmentOwnedAtFairValue", "995000", "usd"),
		fact("us-gaap:InvestmentMaturityDate", "2028-03-15", ""),
		fact("us-gaap:InvestmentInterestRate", "0.0910", ""),
	})
	require.NotNil(t, inv)

	assert.Equal(t, "Acme Technologies LLC", inv.Company)
	assert.Equal(t, "Software", inv.Industry)
	assert.Equal(t, "First Lien Debt", inv.InvestmentType)
	assert.Equal(t, "SOFR", inv.ReferenceRate)
	assert.Equal(t, "5.25%", inv.Spread)
	assert.Equal(t, "9.10%", inv.InterestRate)
	assert.Equal(t, "03/15/2028", inv.MaturityDate)
	assert.Equal(t, "1000000", inv.PrincipalAmount.String())
	assert.Equal(t, "990000", inv.Cost.String())
	assert.Equal(t, "995000", inv.FairValue.String())
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "c1", inv.ContextRef)
}

func TestBuild_NoCompany(t *testing.T) {
	b := NewBuilder(nil, nil)
	inv := b.Build(testCtx("c1", "Total Investments"), []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "995000", "usd"),
	})
	assert.Nil(t, inv)
}

func TestBuild_NoFinancials(t *testing.T) {
	b := NewBuilder(nil, nil)
	inv := b.Build(testCtx("c1", "Acme Technologies LLC First Lien Term Loan"), nil)
	assert.Nil(t, inv)
}

func TestBuild_IndustryHintFallback(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan")
	ctx.IndustryHint = "Consumer Products"

	inv := b.Build(ctx, []filing.Fact{fact("us-gaap:InvestmentOwnedAtFairValue", "100", "")})
	require.NotNil(t, inv)
	assert.Equal(t, "Consumer Products", inv.Industry)
}

func TestBuild_DerivedFactsFillGapsOnly(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan Maturity Date 03/15/2028")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "100", ""),
		fact("derived:maturity_date", "12/31/2099", ""),
		fact("derived:reference_rate", "SF", ""),
		fact("derived:spread", "6.50%", ""),
	})
	require.NotNil(t, inv)
	assert.Equal(t, "03/15/2028", inv.MaturityDate)
	assert.Equal(t, "SOFR", inv.ReferenceRate)
	assert.Equal(t, "6.50%", inv.Spread)
}

func TestBuild_InterestRateSummaryComposed(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan SOFR + 5.25% (1.00% Floor)")

	inv := b.Build(ctx, []filing.Fact{fact("us-gaap:InvestmentOwnedAtFairValue", "100", "")})
	require.NotNil(t, inv)
	assert.Equal(t, "SOFR + 5.25%, Floor 1.00%", inv.InterestRate)
}

func TestBuild_TaggedInterestRateWins(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan SOFR + 5.25%")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "100", ""),
		fact("us-gaap:InvestmentInterestRate", "9.10%", ""),
	})
	require.NotNil(t, inv)
	assert.Equal(t, "9.10%", inv.InterestRate)
}

func TestBuild_ReferenceRateSkipsURLValues(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "100", ""),
		fact("us-gaap:InvestmentVariableInterestRateTypeExtensibleEnumeration", "http://fasb.org/us-gaap/2023#SecuredOvernightFinancingRateSofrMember", ""),
	})
	require.NotNil(t, inv)
	assert.Empty(t, inv.ReferenceRate)
}

func TestBuild_RevolverCommitmentHeuristic(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC Revolving Credit Facility")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedBalancePrincipalAmount", "400000", "usd"),
		fact("us-gaap:InvestmentOwnedAtFairValue", "1000000", "usd"),
	})
	require.NotNil(t, inv)
	require.NotNil(t, inv.UndrawnCommitment)
	require.NotNil(t, inv.CommitmentLimit)
	assert.Equal(t, "600000", inv.UndrawnCommitment.String())
	assert.Equal(t, "1000000", inv.CommitmentLimit.String())
}

func TestBuild_NoCommitmentForTermLoans(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedBalancePrincipalAmount", "400000", "usd"),
		fact("us-gaap:InvestmentOwnedAtFairValue", "1000000", "usd"),
	})
	require.NotNil(t, inv)
	assert.Nil(t, inv.UndrawnCommitment)
	assert.Nil(t, inv.CommitmentLimit)
}

func TestBuild_MalformedNumberLeavesFieldNull(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedBalancePrincipalAmount", "n/a", "usd"),
		fact("us-gaap:InvestmentOwnedAtFairValue", "100", "usd"),
	})
	require.NotNil(t, inv)
	assert.Nil(t, inv.PrincipalAmount)
	assert.Equal(t, "100", inv.FairValue.String())
}

func TestBuild_ParenthesizedNegative(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC First Lien Term Loan")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "(500)", "usd"),
	})
	require.NotNil(t, inv)
	assert.Equal(t, "-500", inv.FairValue.String())
}

func TestBuild_SharesAndPercentNetAssets(t *testing.T) {
	b := NewBuilder(nil, nil)
	ctx := testCtx("c1", "Acme Technologies LLC Common Stock")

	inv := b.Build(ctx, []filing.Fact{
		fact("us-gaap:InvestmentOwnedAtFairValue", "100", "usd"),
		fact("us-gaap:InvestmentOwnedBalanceShares", "12,500", ""),
		fact("us-gaap:InvestmentOwnedPercentOfNetAssets", "0.012", ""),
	})
	require.NotNil(t, inv)
	require.NotNil(t, inv.SharesUnits)
	assert.Equal(t, "12500", inv.SharesUnits.String())
	assert.Equal(t, "1.20%", inv.PercentNetAssets)
}
