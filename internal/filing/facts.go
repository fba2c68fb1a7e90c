package filing

import (
	"encoding/xml"
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/holdings-extract/internal/rate"
)

// DefaultWindow is the number of raw-markup bytes scanned on each side of a
// rendered fact for supplementary prose (rates, floors, PIK, dates).
const DefaultWindow = 600

var (
	tagRe  = regexp.MustCompile(`<[^>]*>`)
	dateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)

	// acquisitionHintRe flags prose that marks a lone date as an acquisition
	// date rather than a maturity date.
	acquisitionHintRe = regexp.MustCompile(`(?i)acquisition|origination|investment date|purchase|initial`)
)

// AggregateFacts scans raw markup and returns all tagged facts grouped by
// context id, in document order, duplicates preserved. Both the standard
// namespaced-tag encoding and inline (ix:) facts are collected; each inline
// fact additionally spawns "derived:" facts from the prose window around it.
// window <= 0 uses DefaultWindow.
func AggregateFacts(markup string, window int) map[string][]Fact {
	if window <= 0 {
		window = DefaultWindow
	}

	dec := newDecoder(markup)
	facts := make(map[string][]Fact)

	// A fact element can nest another fact (inline continuations), so open
	// facts are kept on a stack and character data feeds every open frame.
	type frame struct {
		concept string
		ctxID   string
		unit    string
		offset  int64
		inline  bool
		depth   int
		buf     strings.Builder
	}
	var stack []*frame
	depth := 0

	// Track which (context, window-slice) pairs already produced derived
	// facts, so a context tagged many times in one table row does not emit
	// the same prose fragments repeatedly.
	seenWindows := make(map[string]bool)

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			ctxRef := attrValue(el, "contextRef")
			if ctxRef == "" {
				continue
			}
			f := &frame{
				ctxID:  ctxRef,
				unit:   attrValue(el, "unitRef"),
				offset: dec.InputOffset(),
				depth:  depth,
			}
			local := el.Name.Local
			if strings.EqualFold(local, "nonFraction") || strings.EqualFold(local, "nonNumeric") {
				f.inline = true
				f.concept = attrValue(el, "name")
			} else {
				f.concept = conceptName(el.Name)
			}
			if f.concept != "" {
				stack = append(stack, f)
			}
		case xml.EndElement:
			if n := len(stack); n > 0 && stack[n-1].depth == depth {
				f := stack[n-1]
				stack = stack[:n-1]

				facts[f.ctxID] = append(facts[f.ctxID], Fact{
					Concept:   f.concept,
					ContextID: f.ctxID,
					Value:     cleanText(f.buf.String()),
					Unit:      f.unit,
				})
				if f.inline {
					key := f.ctxID + "@" + windowKey(f.offset, int64(window))
					if !seenWindows[key] {
						seenWindows[key] = true
						derived := scanWindow(windowText(markup, f.offset, window), f.ctxID)
						facts[f.ctxID] = append(facts[f.ctxID], derived...)
					}
				}
			}
			depth--
		case xml.CharData:
			for _, f := range stack {
				f.buf.Write(el)
			}
		}
	}
	return facts
}

// conceptName renders a namespaced element name as "prefix:Local". The token
// decoder resolves declared namespaces to their URI, so a URI is reduced back
// to a short prefix; undeclared prefixes pass through as-is.
func conceptName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return nsPrefix(name.Space) + ":" + name.Local
}

// nsPrefix reduces a namespace URI to a conventional prefix. Concept
// classification downstream is substring-based, so a best-effort guess is
// sufficient.
func nsPrefix(space string) string {
	if !strings.Contains(space, "://") {
		return space
	}
	lower := strings.ToLower(space)
	for _, known := range []string{"us-gaap", "dei", "srt", "ifrs"} {
		if strings.Contains(lower, known) {
			return known
		}
	}
	trimmed := strings.TrimRight(space, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		return trimmed[i+1:]
	}
	return space
}

// windowKey buckets a byte offset so facts rendered close together share one
// prose window.
func windowKey(offset, window int64) string {
	return strconv.FormatInt(offset/window, 10)
}

// windowText slices the raw markup around offset, strips tags and collapses
// the remainder into plain prose.
func windowText(markup string, offset int64, window int) string {
	start := int(offset) - window
	if start < 0 {
		start = 0
	}
	end := int(offset) + window
	if end > len(markup) {
		end = len(markup)
	}
	text := tagRe.ReplaceAllString(markup[start:end], " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(multiWSRe.ReplaceAllString(text, " "))
}

// scanWindow extracts supplementary unstructured tokens from the prose
// around a rendered fact: a reference+spread combination, floor and PIK
// percentages, and date-like substrings classified as acquisition/maturity.
func scanWindow(text, ctxID string) []Fact {
	var out []Fact
	emit := func(concept, value string) {
		out = append(out, Fact{Concept: concept, ContextID: ctxID, Value: value})
	}

	c := rate.Decompose(text)
	if c.Reference != "" && c.Spread != "" {
		// The compound match captures prose greedily to the left, so only
		// the token nearest the "+" is trusted as the reference.
		fields := strings.Fields(c.Reference)
		ref := fields[len(fields)-1]
		if c.Term != "" {
			ref += " " + c.Term
		}
		emit("derived:reference_rate", ref)
		emit("derived:spread", c.Spread)
	}
	if c.Floor != "" {
		emit("derived:floor_rate", c.Floor)
	}
	if c.PIK != "" {
		emit("derived:pik_rate", c.PIK)
	}

	locs := dateRe.FindAllStringIndex(text, -1)
	switch len(locs) {
	case 0:
	case 1:
		d := NormalizeDate(text[locs[0][0]:locs[0][1]])
		if d == "" {
			break
		}
		// Inspect the prose immediately before the date to decide which
		// date this is. Best effort: with no hint it is taken as maturity,
		// the more commonly tagged of the two.
		lead := text[max(0, locs[0][0]-48):locs[0][0]]
		if acquisitionHintRe.MatchString(lead) {
			emit("derived:acquisition_date", d)
		} else {
			emit("derived:maturity_date", d)
		}
	default:
		// Two or more dates: earliest is assumed acquisition, latest
		// maturity. Anything in between is ignored.
		var dates []time.Time
		for _, loc := range locs {
			if t, ok := parseDate(text[loc[0]:loc[1]]); ok {
				dates = append(dates, t)
			}
		}
		if len(dates) == 0 {
			break
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		emit("derived:acquisition_date", dates[0].Format("01/02/2006"))
		if last := dates[len(dates)-1]; !last.Equal(dates[0]) {
			emit("derived:maturity_date", last.Format("01/02/2006"))
		}
	}
	return out
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// parseDate accepts the date shapes seen in filings.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate renders any accepted date shape as MM/DD/YYYY text, or ""
// when the input is not a recognizable date.
func NormalizeDate(s string) string {
	t, ok := parseDate(strings.TrimSpace(s))
	if !ok {
		return ""
	}
	return t.Format("01/02/2006")
}
