// Package holdings defines the extraction output record and the builder that
// merges a resolved context with its tagged facts into one record per holding.
package holdings

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Investment is one portfolio holding of the filer for the reporting period.
// Monetary magnitudes are nil when the filing did not supply them; dates are
// MM/DD/YYYY text and percentages are "N.NN%" text.
type Investment struct {
	Company         string `json:"company_name"`
	Industry        string `json:"industry,omitempty"`
	InvestmentType  string `json:"investment_type,omitempty"`
	ReferenceRate   string `json:"reference_rate,omitempty"`
	Spread          string `json:"spread,omitempty"`
	FloorRate       string `json:"floor_rate,omitempty"`
	PIKRate         string `json:"pik_rate,omitempty"`
	InterestRate    string `json:"interest_rate,omitempty"`
	AcquisitionDate string `json:"acquisition_date,omitempty"`
	MaturityDate    string `json:"maturity_date,omitempty"`

	PrincipalAmount   *decimal.Decimal `json:"principal_amount,omitempty"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	FairValue         *decimal.Decimal `json:"fair_value,omitempty"`
	SharesUnits       *decimal.Decimal `json:"shares_units,omitempty"`
	PercentNetAssets  string           `json:"percent_net_assets,omitempty"`
	Currency          string           `json:"currency,omitempty"`
	CommitmentLimit   *decimal.Decimal `json:"commitment_limit,omitempty"`
	UndrawnCommitment *decimal.Decimal `json:"undrawn_commitment,omitempty"`

	ContextRef string `json:"context_ref,omitempty"`
}

// HasFinancials reports whether the record carries at least one monetary
// magnitude. Records without one are header/subtotal artifacts, not holdings.
func (inv *Investment) HasFinancials() bool {
	return inv.PrincipalAmount != nil || inv.Cost != nil || inv.FairValue != nil
}

// Dedupe removes exact repeats: the same company/type/maturity with the same
// value tuple tagged under two context ids. Distinct tranches (different
// dates or amounts) survive. First occurrence wins; input order is kept.
func Dedupe(list []*Investment) []*Investment {
	seen := make(map[string]bool, len(list))
	out := make([]*Investment, 0, len(list))
	for _, inv := range list {
		k := dedupeKey(inv)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, inv)
	}
	return out
}

func dedupeKey(inv *Investment) string {
	return strings.Join([]string{
		inv.Company,
		inv.InvestmentType,
		inv.MaturityDate,
		decimalKey(inv.PrincipalAmount),
		decimalKey(inv.Cost),
		decimalKey(inv.FairValue),
	}, "|")
}

func decimalKey(d *decimal.Decimal) string {
	if d == nil {
		return "0"
	}
	return d.String()
}
