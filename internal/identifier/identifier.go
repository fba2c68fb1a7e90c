// Package identifier decomposes the free-text label a filer attaches to an
// investment context into semantic sub-fields. Filers format these labels
// wildly differently (pipe-delimited positional fields, comma-joined fields,
// boilerplate classification prefixes, embedded rate formulas and dates), so
// parsing runs as an ordered cascade of self-contained strategies; the first
// one that yields a usable company name wins. Rate and date sub-extraction
// runs over the whole string regardless of which strategy matched.
package identifier

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/holdings-extract/internal/rate"
	"github.com/sells-group/holdings-extract/internal/standardize"
)

// Parsed is the decomposition of one raw identifier. Every field is optional;
// an empty field means the identifier alone did not determine it and tagged
// facts or the rendered-table fallback should fill it instead.
type Parsed struct {
	Company         string
	Industry        string
	InvestmentType  string
	ReferenceRate   string
	Spread          string
	FloorRate       string
	PIKRate         string
	InterestRate    string
	AcquisitionDate string
	MaturityDate    string
}

// Parser applies the strategy cascade using a standardization vocabulary for
// its keyword tables.
type Parser struct {
	mapper          *standardize.Mapper
	defaultIndustry string
}

// NewParser builds a parser. A nil mapper falls back to the default
// vocabulary; defaultIndustry, when non-empty, fills the industry field of
// identifiers that carry none of their own.
func NewParser(m *standardize.Mapper, defaultIndustry string) *Parser {
	if m == nil {
		m = standardize.NewMapper(nil)
	}
	return &Parser{mapper: m, defaultIndustry: defaultIndustry}
}

const datePattern = `\d{1,2}/\d{1,2}/\d{4}|\d{4}-\d{2}-\d{2}`

var (
	multiWSRe = regexp.MustCompile(`\s+`)

	// spreadAnchorRe matches the "SOFR Spread 5.25%" convention: a single
	// reference token immediately before the word "Spread".
	spreadAnchorRe = regexp.MustCompile(`(?i)\b([A-Za-z]{1,10})\s+spread\s*:?\s*(?:of\s+)?(\d+(?:\.\d+)?)\s*%`)

	interestRateRe = regexp.MustCompile(`(?i)\binterest\s+rate\s*:?\s*(?:of\s+)?(\d+(?:\.\d+)?)\s*%`)
	maturityRe     = regexp.MustCompile(`(?i)\bmaturity(?:\s+date)?\s*:?\s*(` + datePattern + `)`)
	acquisitionRe  = regexp.MustCompile(`(?i)\b(?:initial\s+)?acquisition(?:\s+date)?\s*:?\s*(` + datePattern + `)`)

	typeAnchorRe = regexp.MustCompile(`(?i)\binvestment\s+type\b\s*:?\s*`)

	leadingConnRe   = regexp.MustCompile(`(?i)^(?:and|&|or)\s+`)
	trailingStockRe = regexp.MustCompile(`(?i)[,\s]+(?:common|preferred)\s+(?:stock|shares|units|equity)$`)
)

// boilerplatePrefixes are classification phrases filers prepend to the
// identifier. Ordered longest first so compound phrases strip whole.
var boilerplatePrefixes = []string{
	"non-controlled/non-affiliated investments",
	"non-controlled/non-affiliate investments",
	"non-control/non-affiliate investments",
	"non-controlled/affiliated investments",
	"controlled/affiliated investments",
	"non-affiliated investments",
	"affiliated investments",
	"controlled investments",
	"control investments",
	"debt investments",
	"equity investments",
	"investments",
}

// legalSuffixes are entity-form tokens that mark a string as a company name.
var legalSuffixes = map[string]bool{
	"llc": true, "inc": true, "corp": true, "corporation": true,
	"incorporated": true, "ltd": true, "limited": true, "lp": true,
	"llp": true, "lllp": true, "plc": true, "co": true, "company": true,
	"holdings": true, "holding": true, "gmbh": true, "sa": true, "bv": true,
	"nv": true, "srl": true, "ulc": true, "lc": true,
}

// Parse decomposes one raw identifier.
func (p *Parser) Parse(raw string) Parsed {
	s := cleanText(raw)
	if s == "" {
		return Parsed{Industry: p.defaultIndustry}
	}

	var out Parsed
	for _, strategy := range []func(string) (Parsed, bool){
		p.parsePiped,
		p.parseAnchored,
		p.parseGeneric,
	} {
		if cand, ok := strategy(s); ok {
			out = cand
			break
		}
	}
	out.Company = cleanCompany(out.Company)

	p.extractRates(s, &out)
	extractDates(s, &out)

	if out.Industry == "" {
		out.Industry = p.defaultIndustry
	}
	return out
}

// parsePiped handles pipe-delimited identifiers. Positions follow the
// observed convention: category, subtype, company, industry, spread, floor,
// coupon, acquisition date, maturity date.
func (p *Parser) parsePiped(s string) (Parsed, bool) {
	if strings.Count(s, "|") < 2 {
		return Parsed{}, false
	}
	fields := strings.Split(s, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	var out Parsed
	at := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch {
	case hasLegalSuffix(at(2)):
		out.Company = at(2)
	default:
		for _, f := range fields {
			if hasLegalSuffix(f) {
				out.Company = f
				break
			}
		}
		if out.Company == "" && plausibleName(at(2)) {
			out.Company = at(2)
		}
	}
	if out.Company == "" {
		return Parsed{}, false
	}

	if t := at(1); t != "" {
		out.InvestmentType = p.mapper.InvestmentType(t)
	}
	if ind := at(3); ind != "" && !strings.ContainsAny(ind, "%0123456789") {
		out.Industry = ind
	}
	if sp := at(4); strings.ContainsAny(sp, "0123456789") {
		out.Spread = rate.NormalizeSpread(sp)
	}
	if fl := at(5); strings.ContainsAny(fl, "0123456789") {
		out.FloorRate = rate.Normalize(fl)
	}
	if cp := at(6); strings.ContainsAny(cp, "0123456789") {
		out.InterestRate = rate.Normalize(cp)
	}
	if d := normalizeDate(at(7)); d != "" {
		out.AcquisitionDate = d
	}
	if d := normalizeDate(at(8)); d != "" {
		out.MaturityDate = d
	}
	return out, true
}

// parseAnchored handles comma-joined identifiers: boilerplate prefixes are
// stripped, then the text before the first investment-type anchor is treated
// as a company+industry block. The block must actually contain a comma; the
// last comma segment becomes the industry when it reads like an industry
// phrase.
func (p *Parser) parseAnchored(s string) (Parsed, bool) {
	stripped := stripBoilerplate(s)

	var out Parsed
	pos := -1
	if loc := typeAnchorRe.FindStringIndex(stripped); loc != nil {
		pos = loc[0]
		after := stripped[loc[1]:]
		if i := strings.IndexAny(after, ",|"); i >= 0 {
			after = after[:i]
		}
		out.InvestmentType = p.mapper.InvestmentType(strings.TrimSpace(after))
	} else if canonical, kwPos, ok := p.mapper.MatchTypeKeyword(stripped); ok {
		pos = kwPos
		out.InvestmentType = canonical
	}
	if pos <= 0 {
		return Parsed{}, false
	}

	block := strings.TrimSpace(stripped[:pos])
	if !strings.Contains(block, ",") {
		return Parsed{}, false
	}

	var segs []string
	for _, seg := range strings.Split(block, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segs = append(segs, seg)
		}
	}
	if len(segs) == 0 {
		return Parsed{}, false
	}
	if last := segs[len(segs)-1]; len(segs) >= 2 && readsLikeIndustry(last) {
		out.Industry = last
		segs = segs[:len(segs)-1]
	}
	out.Company = strings.Join(segs, ", ")
	return out, true
}

// parseGeneric is the fallback heuristic: a canonical industry anchored at
// the string start, then the earliest investment-type keyword splits company
// name from the remainder.
func (p *Parser) parseGeneric(s string) (Parsed, bool) {
	stripped := stripBoilerplate(s)

	var out Parsed
	if industry, rest, ok := p.mapper.MatchIndustryPrefix(stripped); ok {
		out.Industry = industry
		stripped = rest
	}

	canonical, pos, ok := p.mapper.MatchTypeKeyword(stripped)
	if ok && pos > 0 {
		out.Company = strings.TrimSpace(stripped[:pos])
		out.InvestmentType = canonical
		return out, true
	}
	if !ok && hasLegalSuffix(stripped) {
		out.Company = stripped
		return out, true
	}
	return Parsed{}, false
}

// extractRates searches the whole identifier for rate formulas and fills any
// still-empty rate fields.
func (p *Parser) extractRates(s string, out *Parsed) {
	if m := spreadAnchorRe.FindStringSubmatch(s); m != nil && p.mapper.KnownReferenceRate(m[1]) {
		if out.ReferenceRate == "" {
			out.ReferenceRate = p.mapper.ReferenceRate(m[1])
		}
		if out.Spread == "" {
			out.Spread = rate.Normalize(m[2] + "%")
		}
	}

	c := rate.Decompose(s)
	if out.ReferenceRate == "" && c.Reference != "" {
		// The compound match captures text greedily to the left, so only the
		// token nearest the "+" is trusted as the reference.
		fields := strings.Fields(c.Reference)
		tok := fields[len(fields)-1]
		if p.mapper.KnownReferenceRate(tok) {
			ref := tok
			if c.Term != "" {
				ref += " " + c.Term
			}
			out.ReferenceRate = p.mapper.ReferenceRate(ref)
			if out.Spread == "" {
				out.Spread = c.Spread
			}
		}
	}
	if out.FloorRate == "" {
		out.FloorRate = c.Floor
	}
	if out.PIKRate == "" {
		out.PIKRate = c.PIK
	}
	if m := interestRateRe.FindStringSubmatch(s); m != nil && out.InterestRate == "" {
		out.InterestRate = rate.Normalize(m[1] + "%")
	}
}

func extractDates(s string, out *Parsed) {
	if m := maturityRe.FindStringSubmatch(s); m != nil && out.MaturityDate == "" {
		out.MaturityDate = normalizeDate(m[1])
	}
	if m := acquisitionRe.FindStringSubmatch(s); m != nil && out.AcquisitionDate == "" {
		out.AcquisitionDate = normalizeDate(m[1])
	}
}

// stripBoilerplate removes classification prefixes, repeating until none
// remain ("Non-controlled Investments Debt Investments ..." stacks two).
func stripBoilerplate(s string) string {
	for {
		lower := strings.ToLower(s)
		matched := false
		for _, prefix := range boilerplatePrefixes {
			if !strings.HasPrefix(lower, prefix) {
				continue
			}
			rest := s[len(prefix):]
			if rest != "" && isWordChar(rest[0]) {
				continue
			}
			s = strings.TrimLeft(rest, " ,:;-")
			matched = true
			break
		}
		if !matched {
			return s
		}
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// hasLegalSuffix reports whether any token of s is a legal-entity suffix.
func hasLegalSuffix(s string) bool {
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.Trim(f, ".,()")
		f = strings.ReplaceAll(f, ".", "")
		if legalSuffixes[f] {
			return true
		}
	}
	return false
}

// plausibleName accepts a token sitting in the company position of a piped
// identifier: it must read like a name, not a rate, date or empty cell.
func plausibleName(s string) bool {
	if s == "" || strings.Contains(s, "%") {
		return false
	}
	if normalizeDate(s) != "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool {
		return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
	}) >= 0
}

// readsLikeIndustry accepts a short prose phrase with no numbers and no
// entity suffix.
func readsLikeIndustry(s string) bool {
	if strings.ContainsAny(s, "%0123456789") || hasLegalSuffix(s) {
		return false
	}
	return len(strings.Fields(s)) <= 6
}

// cleanCompany applies the always-on company-name cleanup: entity decode,
// whitespace collapse, stray separators, a mis-split leading connective and a
// wrongly-included trailing share-class fragment.
func cleanCompany(s string) string {
	s = html.UnescapeString(s)
	s = multiWSRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = leadingConnRe.ReplaceAllString(s, "")
	s = trailingStockRe.ReplaceAllString(s, "")
	return strings.Trim(s, " ,;:|-")
}

func cleanText(s string) string {
	s = html.UnescapeString(s)
	return strings.TrimSpace(multiWSRe.ReplaceAllString(s, " "))
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// normalizeDate renders an accepted date shape as MM/DD/YYYY, or "" when s is
// not a recognizable date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return ""
}
