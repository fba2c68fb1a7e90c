package holdings

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/holdings-extract/internal/filing"
	"github.com/sells-group/holdings-extract/internal/identifier"
	"github.com/sells-group/holdings-extract/internal/rate"
	"github.com/sells-group/holdings-extract/internal/standardize"
)

// Builder merges one (context, fact list) pair into an Investment.
type Builder struct {
	parser *identifier.Parser
	mapper *standardize.Mapper
}

// NewBuilder wires the identifier parser and vocabulary mapper. Nil arguments
// fall back to defaults.
func NewBuilder(parser *identifier.Parser, mapper *standardize.Mapper) *Builder {
	if mapper == nil {
		mapper = standardize.NewMapper(nil)
	}
	if parser == nil {
		parser = identifier.NewParser(mapper, "")
	}
	return &Builder{parser: parser, mapper: mapper}
}

// Build produces the Investment for one context, or nil when the context
// cannot be identified or carries no financial magnitude. Identifier-derived
// fields seed the record; tagged facts then overwrite per semantic field
// (last writer wins, so duplicate tag encodings are harmless), except dates
// and derived prose facts, which only fill gaps.
func (b *Builder) Build(ctx filing.Context, facts []filing.Fact) *Investment {
	parsed := b.parser.Parse(ctx.RawIdentifier)
	if parsed.Company == "" {
		return nil
	}

	inv := &Investment{
		Company:         parsed.Company,
		Industry:        parsed.Industry,
		InvestmentType:  parsed.InvestmentType,
		ReferenceRate:   parsed.ReferenceRate,
		Spread:          parsed.Spread,
		FloorRate:       parsed.FloorRate,
		PIKRate:         parsed.PIKRate,
		InterestRate:    parsed.InterestRate,
		AcquisitionDate: parsed.AcquisitionDate,
		MaturityDate:    parsed.MaturityDate,
		ContextRef:      ctx.ID,
	}
	if inv.Industry == "" {
		inv.Industry = ctx.IndustryHint
	}

	for _, f := range facts {
		b.applyFact(inv, f)
	}

	if inv.InterestRate == "" && inv.ReferenceRate != "" && inv.Spread != "" {
		inv.InterestRate = rate.Components{
			Reference: inv.ReferenceRate,
			Spread:    inv.Spread,
			Floor:     inv.FloorRate,
			PIK:       inv.PIKRate,
		}.Summary()
	}

	b.estimateCommitment(inv)

	if !inv.HasFinancials() {
		return nil
	}
	return inv
}

// applyFact classifies one fact by keywords in its concept name and assigns
// the matching field.
func (b *Builder) applyFact(inv *Investment, f filing.Fact) {
	concept := strings.ToLower(f.Concept)
	val := strings.TrimSpace(f.Value)
	if val == "" {
		return
	}

	if strings.HasPrefix(concept, "derived:") {
		b.applyDerived(inv, concept, val)
		return
	}

	switch {
	case strings.Contains(concept, "principal"):
		setDecimal(&inv.PrincipalAmount, val)
	case strings.Contains(concept, "fairvalue"):
		setDecimal(&inv.FairValue, val)
	case strings.Contains(concept, "cost"):
		setDecimal(&inv.Cost, val)
	case strings.Contains(concept, "floor"):
		inv.FloorRate = rate.Normalize(val)
	case strings.Contains(concept, "spread"):
		inv.Spread = rate.NormalizeSpread(val)
	case strings.Contains(concept, "paymentinkind") || strings.Contains(concept, "paidinkind") || strings.Contains(concept, "pik"):
		inv.PIKRate = rate.Normalize(val)
	case (strings.Contains(concept, "variable") || strings.Contains(concept, "reference")) &&
		strings.Contains(concept, "rate"):
		// Some filers tag a taxonomy URL here instead of a rate name.
		if !strings.Contains(val, "://") {
			inv.ReferenceRate = b.mapper.ReferenceRate(val)
		}
	case strings.Contains(concept, "interestrate"):
		inv.InterestRate = rate.Normalize(val)
	case strings.Contains(concept, "maturity"):
		if inv.MaturityDate == "" {
			inv.MaturityDate = filing.NormalizeDate(val)
		}
	case strings.Contains(concept, "acquisition") || strings.Contains(concept, "origination"):
		if inv.AcquisitionDate == "" {
			inv.AcquisitionDate = filing.NormalizeDate(val)
		}
	case strings.Contains(concept, "netassets"):
		inv.PercentNetAssets = rate.Normalize(val)
	case strings.Contains(concept, "shares") || strings.Contains(concept, "units"):
		setDecimal(&inv.SharesUnits, val)
	}

	if inv.Currency == "" {
		if cur := currencyFromUnit(f.Unit); cur != "" {
			inv.Currency = cur
		}
	}
}

// applyDerived assigns prose-window facts. These are weaker than identifier
// fields and tagged facts, so they only fill empty fields.
func (b *Builder) applyDerived(inv *Investment, concept, val string) {
	switch concept {
	case "derived:reference_rate":
		if inv.ReferenceRate == "" {
			inv.ReferenceRate = b.mapper.ReferenceRate(val)
		}
	case "derived:spread":
		if inv.Spread == "" {
			inv.Spread = val
		}
	case "derived:floor_rate":
		if inv.FloorRate == "" {
			inv.FloorRate = val
		}
	case "derived:pik_rate":
		if inv.PIKRate == "" {
			inv.PIKRate = val
		}
	case "derived:acquisition_date":
		if inv.AcquisitionDate == "" {
			inv.AcquisitionDate = val
		}
	case "derived:maturity_date":
		if inv.MaturityDate == "" {
			inv.MaturityDate = val
		}
	}
}

// estimateCommitment fills the revolver heuristic: when a revolving-type
// holding is valued above its funded principal, the excess is treated as the
// undrawn portion and fair value as the facility limit.
func (b *Builder) estimateCommitment(inv *Investment) {
	if inv.CommitmentLimit != nil || inv.PrincipalAmount == nil || inv.FairValue == nil {
		return
	}
	t := strings.ToLower(inv.InvestmentType)
	if !strings.Contains(t, "revolv") && !strings.Contains(t, "delayed draw") {
		return
	}
	if inv.FairValue.GreaterThan(*inv.PrincipalAmount) {
		undrawn := inv.FairValue.Sub(*inv.PrincipalAmount)
		inv.UndrawnCommitment = &undrawn
		limit := *inv.FairValue
		inv.CommitmentLimit = &limit
	}
}

// setDecimal parses a monetary string ("$1,234,567", "(500)") and assigns it.
// Unparseable values leave the field as-is; the rest of the record still
// forms.
func setDecimal(dst **decimal.Decimal, raw string) {
	s := strings.TrimSpace(raw)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.Trim(s, "$ "))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" || s == "—" {
		return
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return
	}
	if neg {
		d = d.Neg()
	}
	*dst = &d
}

// currencyFromUnit recovers an ISO currency code from a unit hint like "usd"
// or "U_iso4217USD".
func currencyFromUnit(unit string) string {
	if unit == "" {
		return ""
	}
	u := strings.ToUpper(unit)
	if i := strings.LastIndex(u, ":"); i >= 0 {
		u = u[i+1:]
	}
	if len(u) == 3 && isAlpha(u) {
		return u
	}
	for _, code := range []string{"USD", "EUR", "GBP", "CAD", "AUD", "CHF", "JPY"} {
		if strings.Contains(u, code) {
			return code
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
