// Package filing scans raw filing markup for investment contexts and tagged
// facts. Both the standard namespaced-tag encoding and the inline-rendered
// (ix:) encoding are understood; the scan is a single streaming pass with a
// tolerant XML token decoder, so a filing that mixes both encodings yields
// one merged view.
package filing

// Context is one discovered holding-identity unit: an identifier string plus
// the time period it is scoped to. Contexts are immutable after the scan.
type Context struct {
	ID            string
	RawIdentifier string
	Instant       string // YYYY-MM-DD as found in the markup, "" if absent
	StartDate     string
	EndDate       string
	IndustryHint  string // humanized industry member label, "" if absent
}

// Fact is one tagged value scoped to a context. Concept carries the
// namespaced tag name ("us-gaap:InvestmentOwnedAtFairValue") or a synthetic
// "derived:" name for values recovered from prose near a rendered fact.
type Fact struct {
	Concept   string
	ContextID string
	Value     string
	Unit      string // unitRef attribute, "" if absent
}
