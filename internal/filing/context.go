package filing

import (
	"encoding/xml"
	"html"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// identifierDimRe matches the dimension attribute of a typed member bound
	// to an investment-identifier axis.
	identifierDimRe = regexp.MustCompile(`(?i)investment.*identifier|identifier.*axis`)

	// industryDimRe matches the dimension attribute of an explicit member
	// bound to an industry/sector classification axis.
	industryDimRe = regexp.MustCompile(`(?i)industry|sector`)

	multiWSRe = regexp.MustCompile(`\s+`)
)

// ResolveContexts scans raw markup for context blocks and returns every
// context that carries a resolvable investment identifier. Contexts without
// one are skipped: most contexts in a filing scope unrelated corporate facts.
func ResolveContexts(markup string) []Context {
	dec := newDecoder(markup)

	var out []Context
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		el, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(el.Name.Local, "context") {
			continue
		}

		ctx := parseContextBlock(dec, attrValue(el, "id"))
		if ctx.RawIdentifier == "" {
			continue
		}
		out = append(out, ctx)
	}
	return out
}

// parseContextBlock walks the tokens of one <context> block, collecting the
// typed identifier member, an optional industry member, and the period tags.
func parseContextBlock(dec *xml.Decoder, id string) Context {
	ctx := Context{ID: id}
	depth := 1

	// capture marks which element's character data is being collected.
	var capture string
	var buf strings.Builder

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			local := el.Name.Local
			switch {
			case strings.EqualFold(local, "typedMember"):
				if identifierDimRe.MatchString(attrValue(el, "dimension")) {
					capture, buf = "identifier", strings.Builder{}
				}
			case strings.EqualFold(local, "explicitMember"):
				if industryDimRe.MatchString(attrValue(el, "dimension")) {
					capture, buf = "industry", strings.Builder{}
				}
			case strings.EqualFold(local, "instant"):
				capture, buf = "instant", strings.Builder{}
			case strings.EqualFold(local, "startDate"):
				capture, buf = "start", strings.Builder{}
			case strings.EqualFold(local, "endDate"):
				capture, buf = "end", strings.Builder{}
			}
		case xml.EndElement:
			depth--
			local := el.Name.Local
			done := strings.EqualFold(local, "typedMember") ||
				strings.EqualFold(local, "explicitMember") ||
				strings.EqualFold(local, "instant") ||
				strings.EqualFold(local, "startDate") ||
				strings.EqualFold(local, "endDate")
			if !done || capture == "" {
				continue
			}
			text := cleanText(buf.String())
			switch capture {
			case "identifier":
				if text != "" {
					ctx.RawIdentifier = text
				}
			case "industry":
				if label := HumanizeMember(text); label != "" {
					ctx.IndustryHint = label
				}
			case "instant":
				ctx.Instant = text
			case "start":
				ctx.StartDate = text
			case "end":
				ctx.EndDate = text
			}
			capture = ""
		case xml.CharData:
			if capture != "" {
				buf.Write(el)
			}
		}
	}
	return ctx
}

// NoLower keeps acronym tokens ("IT", "USA") intact after splitting.
var titleCaser = cases.Title(language.AmericanEnglish, cases.NoLower)

var (
	camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymRe       = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// HumanizeMember converts a machine-readable member name like
// "us-gaap:HealthCareProvidersAndServicesMember" into a human label
// ("Health Care Providers And Services"): the namespace prefix and a
// trailing "Member"/"Sector" suffix are stripped, camel-case tokens are
// split into words and the result is title-cased.
func HumanizeMember(member string) string {
	member = strings.TrimSpace(member)
	if i := strings.LastIndex(member, ":"); i >= 0 {
		member = member[i+1:]
	}
	member = strings.TrimSuffix(member, "Member")
	member = strings.TrimSuffix(member, "Sector")
	if member == "" {
		return ""
	}

	member = acronymRe.ReplaceAllString(member, "$1 $2")
	member = camelBoundaryRe.ReplaceAllString(member, "$1 $2")
	return titleCaser.String(strings.TrimSpace(member))
}

// newDecoder builds a tolerant XML token decoder for filing markup: inline
// XBRL lives inside XHTML that is frequently not strict XML.
func newDecoder(markup string) *xml.Decoder {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	return dec
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

// cleanText decodes entities, collapses whitespace and trims the result.
func cleanText(s string) string {
	s = html.UnescapeString(s)
	s = multiWSRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
