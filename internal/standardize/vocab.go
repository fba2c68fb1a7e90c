// Package standardize maps raw filer vocabulary (investment types, industries,
// reference-rate names) onto closed canonical enumerations. The tables are the
// only tunable surface of the extraction engine: a YAML file can override any
// of them without touching pipeline code.
package standardize

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TypeKeyword pairs a keyword that identifies an investment type inside free
// text with the canonical type it maps to. Order matters: earlier entries win
// when two keywords start at the same offset.
type TypeKeyword struct {
	Match     string `yaml:"match"`
	Canonical string `yaml:"canonical"`
}

// Vocabulary holds the three tunable tables plus the keyword lists used by
// the identifier parser.
type Vocabulary struct {
	// ReferenceAliases maps short reference-rate tokens to canonical names
	// (SF -> SOFR, P -> PRIME, ...). Keys are matched case-insensitively.
	ReferenceAliases map[string]string `yaml:"reference_aliases"`

	// TypeKeywords identify investment types inside identifier strings.
	TypeKeywords []TypeKeyword `yaml:"type_keywords"`

	// TypeSynonyms maps normalized raw type phrases to canonical types.
	TypeSynonyms map[string]string `yaml:"type_synonyms"`

	// Industries is the fixed list of canonical industry phrases used for
	// anchored prefix matching in identifier strings.
	Industries []string `yaml:"industries"`

	// IndustrySynonyms maps normalized raw industry phrases to canonical ones.
	IndustrySynonyms map[string]string `yaml:"industry_synonyms"`
}

// Default returns the built-in vocabulary covering the filer conventions seen
// across BDC schedules of investments.
func Default() *Vocabulary {
	return &Vocabulary{
		ReferenceAliases: map[string]string{
			"SF":        "SOFR",
			"S":         "SOFR",
			"SOFR":      "SOFR",
			"TSOFR":     "SOFR",
			"E":         "EURIBOR",
			"SN":        "EURIBOR",
			"EURIBOR":   "EURIBOR",
			"L":         "LIBOR",
			"LIBOR":     "LIBOR",
			"P":         "PRIME",
			"PRIME":     "PRIME",
			"C":         "CDOR",
			"CA":        "CDOR",
			"CDOR":      "CDOR",
			"F":         "FED FUNDS",
			"FF":        "FED FUNDS",
			"FED FUNDS": "FED FUNDS",
			"SONIA":     "SONIA",
			"BSBY":      "BSBY",
		},
		TypeKeywords: []TypeKeyword{
			{Match: "first lien", Canonical: "First Lien Debt"},
			{Match: "1st lien", Canonical: "First Lien Debt"},
			{Match: "second lien", Canonical: "Second Lien Debt"},
			{Match: "2nd lien", Canonical: "Second Lien Debt"},
			{Match: "unitranche", Canonical: "First Lien Debt"},
			{Match: "delayed draw", Canonical: "Delayed Draw Term Loan"},
			{Match: "revolving", Canonical: "Revolver"},
			{Match: "revolver", Canonical: "Revolver"},
			{Match: "senior secured loan", Canonical: "First Lien Debt"},
			{Match: "senior secured bond", Canonical: "Secured Debt"},
			{Match: "senior secured note", Canonical: "Secured Debt"},
			{Match: "senior secured", Canonical: "Secured Debt"},
			{Match: "subordinated", Canonical: "Subordinated Debt"},
			{Match: "mezzanine", Canonical: "Mezzanine Debt"},
			{Match: "unsecured debt", Canonical: "Unsecured Debt"},
			{Match: "unsecured note", Canonical: "Unsecured Debt"},
			{Match: "term loan", Canonical: "First Lien Debt"},
			{Match: "preferred stock", Canonical: "Preferred Equity"},
			{Match: "preferred equity", Canonical: "Preferred Equity"},
			{Match: "preferred units", Canonical: "Preferred Equity"},
			{Match: "preferred interest", Canonical: "Preferred Equity"},
			{Match: "common stock", Canonical: "Common Equity"},
			{Match: "common equity", Canonical: "Common Equity"},
			{Match: "common units", Canonical: "Common Equity"},
			{Match: "membership interest", Canonical: "Equity"},
			{Match: "partnership interest", Canonical: "Equity"},
			{Match: "llc interest", Canonical: "Equity"},
			{Match: "warrant", Canonical: "Warrants"},
			{Match: "equity", Canonical: "Equity"},
		},
		TypeSynonyms: map[string]string{
			"first lien senior secured loan":  "First Lien Debt",
			"first lien term loan":            "First Lien Debt",
			"first lien debt":                 "First Lien Debt",
			"first-lien":                      "First Lien Debt",
			"senior secured first lien":       "First Lien Debt",
			"second lien senior secured loan": "Second Lien Debt",
			"second lien term loan":           "Second Lien Debt",
			"second lien debt":                "Second Lien Debt",
			"senior secured loan":             "First Lien Debt",
			"senior secured notes":            "Secured Debt",
			"senior secured bonds":            "Secured Debt",
			"revolving credit facility":       "Revolver",
			"revolving loan":                  "Revolver",
			"delayed draw term loan":          "Delayed Draw Term Loan",
			"subordinated debt":               "Subordinated Debt",
			"subordinated notes":              "Subordinated Debt",
			"mezzanine debt":                  "Mezzanine Debt",
			"unsecured notes":                 "Unsecured Debt",
			"preferred stock":                 "Preferred Equity",
			"preferred units":                 "Preferred Equity",
			"preferred shares":                "Preferred Equity",
			"common stock":                    "Common Equity",
			"common shares":                   "Common Equity",
			"common units":                    "Common Equity",
			"membership units":                "Equity",
			"equity interest":                 "Equity",
			"equity interests":                "Equity",
			"warrants":                        "Warrants",
			"warrant":                         "Warrants",
		},
		Industries: []string{
			"Aerospace & Defense",
			"Automotive",
			"Banking",
			"Beverage, Food & Tobacco",
			"Biotechnology",
			"Business Services",
			"Capital Equipment",
			"Chemicals, Plastics & Rubber",
			"Chemicals",
			"Commercial Services & Supplies",
			"Construction & Building",
			"Consumer Goods",
			"Consumer Products",
			"Consumer Services",
			"Containers, Packaging & Glass",
			"Distribution",
			"Diversified Financial Services",
			"Education",
			"Energy",
			"Environmental Industries",
			"Financial Services",
			"Food & Beverage",
			"Healthcare & Pharmaceuticals",
			"Healthcare Providers & Services",
			"Healthcare",
			"Health Care",
			"High Tech Industries",
			"Hotel, Gaming & Leisure",
			"Industrials",
			"Insurance",
			"IT Services",
			"Manufacturing",
			"Media",
			"Pharmaceuticals",
			"Real Estate",
			"Retail",
			"Software",
			"Technology",
			"Telecommunications",
			"Transportation",
			"Utilities",
			"Wholesale",
		},
		IndustrySynonyms: map[string]string{
			"health care":                     "Healthcare",
			"healthcare and pharmaceuticals":  "Healthcare & Pharmaceuticals",
			"healthcare & pharmaceuticals":    "Healthcare & Pharmaceuticals",
			"healthcare providers & services": "Healthcare Providers & Services",
			"software & computer services":    "Software",
			"software and services":           "Software",
			"high tech industries":            "High Tech Industries",
			"hotel gaming & leisure":          "Hotel, Gaming & Leisure",
			"hotels gaming & leisure":         "Hotel, Gaming & Leisure",
			"beverage food & tobacco":         "Beverage, Food & Tobacco",
			"banking finance insurance & real estate": "Financial Services",
			"chemicals plastics & rubber":             "Chemicals, Plastics & Rubber",
			"containers packaging & glass":            "Containers, Packaging & Glass",
			"telecom":                                 "Telecommunications",
			"it services":                             "IT Services",
			"media diversified & production":          "Media",
		},
	}
}

// Load reads a vocabulary override file and merges it over the defaults.
// Absent keys keep their default values, so an override file only needs the
// entries a particular filer requires.
func Load(path string) (*Vocabulary, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "standardize: read vocabulary file")
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "standardize: parse vocabulary file")
	}

	for k, val := range override.ReferenceAliases {
		v.ReferenceAliases[strings.ToUpper(k)] = val
	}
	if len(override.TypeKeywords) > 0 {
		// Override keywords are prepended so they win over the defaults.
		v.TypeKeywords = append(override.TypeKeywords, v.TypeKeywords...)
	}
	for k, val := range override.TypeSynonyms {
		v.TypeSynonyms[normalizeKey(k)] = val
	}
	if len(override.Industries) > 0 {
		v.Industries = append(override.Industries, v.Industries...)
	}
	for k, val := range override.IndustrySynonyms {
		v.IndustrySynonyms[normalizeKey(k)] = val
	}

	return v, nil
}

// industryPattern builds a case-insensitive alternation over the industry
// list anchored at the start of the string. Longer phrases are tried first so
// "Healthcare & Pharmaceuticals" wins over "Healthcare".
func (v *Vocabulary) industryPattern() *regexp.Regexp {
	phrases := make([]string, len(v.Industries))
	copy(phrases, v.Industries)
	sort.Slice(phrases, func(i, j int) bool { return len(phrases[i]) > len(phrases[j]) })

	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)^\s*(` + strings.Join(quoted, "|") + `)\b`)
}
