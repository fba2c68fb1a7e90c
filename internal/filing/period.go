package filing

import "time"

// CurrentInstant returns the reporting-period instant to treat as current:
// the maximum among all context instants that parse as strict YYYY-MM-DD
// calendar dates. Returns "" when no context carries a parseable instant
// (duration-only filings).
func CurrentInstant(ctxs []Context) string {
	var latest time.Time
	var found bool
	for _, c := range ctxs {
		t, err := time.Parse("2006-01-02", c.Instant)
		if err != nil {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	if !found {
		return ""
	}
	return latest.Format("2006-01-02")
}

// FilterCurrent narrows contexts to the current instant. A filing typically
// carries the current and a prior comparative period; only the most recent
// point-in-time snapshot is the schedule being reported. With no parseable
// instant anywhere, all contexts are retained.
func FilterCurrent(ctxs []Context) []Context {
	current := CurrentInstant(ctxs)
	if current == "" {
		return ctxs
	}
	out := ctxs[:0:0]
	for _, c := range ctxs {
		if c.Instant == current {
			out = append(out, c)
		}
	}
	return out
}
