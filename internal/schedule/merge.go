package schedule

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/sells-group/holdings-extract/internal/holdings"
)

// legalSuffixes lists entity-form suffixes stripped during the deeper name
// normalization pass. Uppercase, leading-space form so suffix checks stay
// word-anchored.
var legalSuffixes = []string{
	" LLC", " L.L.C.", " L.L.C",
	" INC", " INC.", " INCORPORATED",
	" CORP", " CORP.", " CORPORATION",
	" LTD", " LTD.", " LIMITED",
	" LP", " L.P.", " L.P",
	" LLP", " L.L.P.", " L.L.P",
	" PLC", " P.L.C.",
	" CO", " CO.",
	" HOLDINGS", " HOLDING",
	" PLLC",
}

var (
	parenRe      = regexp.MustCompile(`\([^)]*\)`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// normalizeName standardizes an entity name for matching: trim, uppercase,
// strip punctuation, collapse spaces. Legal suffixes are kept at this level;
// strippedName removes them.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToUpper(name)
	name = strings.NewReplacer(
		",", "",
		".", "",
		"'", "",
		"\"", "",
		"&", "AND",
		"-", " ",
	).Replace(name)
	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// strippedName is the deeper normalization: parentheticals removed, then
// every trailing legal suffix peeled off.
func strippedName(name string) string {
	name = normalizeName(parenRe.ReplaceAllString(name, " "))
	for {
		stripped := name
		for _, suffix := range legalSuffixes {
			cleaned := strings.NewReplacer(",", "", ".", "").Replace(suffix)
			if strings.HasSuffix(name, cleaned) {
				name = strings.TrimSpace(strings.TrimSuffix(name, cleaned))
				break
			}
		}
		if name == stripped {
			return name
		}
	}
}

// DefaultFuzzyThreshold is the minimum similarity ratio for the last-resort
// fuzzy match.
const DefaultFuzzyThreshold = 0.8

// Merger backfills investment records from rendered-table rows. It never
// overwrites a populated field; only null acquisition date, maturity date and
// interest rate are filled.
type Merger struct {
	rows      []Row
	threshold float64
}

// NewMerger wraps the parsed rows. threshold <= 0 uses
// DefaultFuzzyThreshold.
func NewMerger(rows []Row, threshold float64) *Merger {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	return &Merger{rows: rows, threshold: threshold}
}

// Fill runs the merge over every record and returns how many fields were
// backfilled.
func (m *Merger) Fill(list []*holdings.Investment) int {
	filled := 0
	for _, inv := range list {
		row := m.match(inv)
		if row == nil {
			continue
		}
		if inv.AcquisitionDate == "" && row.AcquisitionDate != "" {
			inv.AcquisitionDate = row.AcquisitionDate
			filled++
		}
		if inv.MaturityDate == "" && row.MaturityDate != "" {
			inv.MaturityDate = row.MaturityDate
			filled++
		}
		if inv.InterestRate == "" && row.InterestRate != "" {
			inv.InterestRate = row.InterestRate
			filled++
		}
	}
	return filled
}

// match finds the table row for one record. Strategies run in order of
// decreasing confidence and the first hit wins: exact name+type, exact name,
// stripped name, then fuzzy similarity with substring containment as an
// automatic hit.
func (m *Merger) match(inv *holdings.Investment) *Row {
	name := normalizeName(inv.Company)
	if name == "" {
		return nil
	}
	typ := normalizeName(inv.InvestmentType)

	if typ != "" {
		for i := range m.rows {
			if normalizeName(m.rows[i].Company) == name && normalizeName(m.rows[i].InvestmentType) == typ {
				return &m.rows[i]
			}
		}
	}
	for i := range m.rows {
		if normalizeName(m.rows[i].Company) == name {
			return &m.rows[i]
		}
	}

	stripped := strippedName(inv.Company)
	if stripped == "" {
		return nil
	}
	for i := range m.rows {
		if strippedName(m.rows[i].Company) == stripped {
			return &m.rows[i]
		}
	}

	for i := range m.rows {
		candidate := strippedName(m.rows[i].Company)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, stripped) || strings.Contains(stripped, candidate) {
			return &m.rows[i]
		}
		if levenshtein.Similarity(stripped, candidate, levenshtein.NewParams()) >= m.threshold {
			return &m.rows[i]
		}
	}
	return nil
}
