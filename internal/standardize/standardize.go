package standardize

import (
	"regexp"
	"strings"
	"sync"
)

var (
	footnoteRe   = regexp.MustCompile(`\(\d+\)`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// normalizeKey prepares a raw categorical value for table lookup: case-fold,
// strip footnote markers like "(3)", collapse whitespace.
func normalizeKey(s string) string {
	s = footnoteRe.ReplaceAllString(s, " ")
	s = strings.ToLower(strings.TrimSpace(s))
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Mapper resolves raw vocabulary against a Vocabulary's lookup tables. It is
// safe for concurrent use; the compiled industry pattern is built lazily.
type Mapper struct {
	vocab *Vocabulary

	once       sync.Once
	industryRe *regexp.Regexp
}

// NewMapper wraps a vocabulary. A nil vocabulary falls back to the defaults.
func NewMapper(v *Vocabulary) *Mapper {
	if v == nil {
		v = Default()
	}
	return &Mapper{vocab: v}
}

// Vocab exposes the underlying vocabulary tables.
func (m *Mapper) Vocab() *Vocabulary { return m.vocab }

// ReferenceRate resolves a reference-rate token or name to its canonical form
// (SF -> SOFR, P -> PRIME). Unknown values are passed through unchanged.
func (m *Mapper) ReferenceRate(raw string) string {
	key := strings.ToUpper(strings.TrimSpace(footnoteRe.ReplaceAllString(raw, "")))
	key = strings.TrimSpace(multiSpaceRe.ReplaceAllString(key, " "))
	if key == "" {
		return ""
	}
	if canonical, ok := m.vocab.ReferenceAliases[key]; ok {
		return canonical
	}
	// "SOFR (3-month)" and similar carry a parenthetical term; resolve the
	// leading token and keep the term.
	if i := strings.IndexAny(key, " ("); i > 0 {
		if canonical, ok := m.vocab.ReferenceAliases[strings.TrimSpace(key[:i])]; ok {
			return canonical + " " + strings.TrimSpace(key[i:])
		}
	}
	return strings.TrimSpace(raw)
}

// KnownReferenceRate reports whether raw resolves through the alias table,
// with or without a trailing parenthetical term.
func (m *Mapper) KnownReferenceRate(raw string) bool {
	key := strings.ToUpper(strings.TrimSpace(footnoteRe.ReplaceAllString(raw, "")))
	key = strings.TrimSpace(multiSpaceRe.ReplaceAllString(key, " "))
	if key == "" {
		return false
	}
	if _, ok := m.vocab.ReferenceAliases[key]; ok {
		return true
	}
	if i := strings.IndexAny(key, " ("); i > 0 {
		_, ok := m.vocab.ReferenceAliases[strings.TrimSpace(key[:i])]
		return ok
	}
	return false
}

// InvestmentType resolves a raw investment-type phrase to its canonical type.
// Unmatched values fall back to keyword scanning, then pass through unchanged.
func (m *Mapper) InvestmentType(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := m.vocab.TypeSynonyms[key]; ok {
		return canonical
	}
	if canonical, _, ok := m.MatchTypeKeyword(key); ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// Industry resolves a raw industry phrase to its canonical form. Unmatched
// values pass through unchanged.
func (m *Mapper) Industry(raw string) string {
	key := normalizeKey(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := m.vocab.IndustrySynonyms[key]; ok {
		return canonical
	}
	for _, ind := range m.vocab.Industries {
		if normalizeKey(ind) == key {
			return ind
		}
	}
	return strings.TrimSpace(raw)
}

// MatchTypeKeyword finds the earliest investment-type keyword occurrence in s
// (case-insensitive). Returns the canonical type, the byte offset of the
// match, and whether anything matched.
func (m *Mapper) MatchTypeKeyword(s string) (canonical string, pos int, ok bool) {
	lower := strings.ToLower(s)
	pos = -1
	for _, kw := range m.vocab.TypeKeywords {
		i := strings.Index(lower, kw.Match)
		if i < 0 {
			continue
		}
		if pos == -1 || i < pos {
			pos = i
			canonical = kw.Canonical
		}
	}
	return canonical, pos, pos >= 0
}

// MatchIndustryPrefix matches a canonical industry phrase anchored at the
// start of s. Returns the canonical industry and the remainder of the string.
func (m *Mapper) MatchIndustryPrefix(s string) (industry, rest string, ok bool) {
	m.once.Do(func() { m.industryRe = m.vocab.industryPattern() })

	loc := m.industryRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", s, false
	}
	matched := s[loc[2]:loc[3]]
	return m.Industry(matched), strings.TrimSpace(s[loc[3]:]), true
}
