// Package rate parses percentage and rate fragments from filing text into
// canonical "N.NN%" strings and decomposes compound rate expressions like
// "SOFR (3-month) + 5.25%, 1.00% Floor" into their components.
package rate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
	bpRe     = regexp.MustCompile(`(?i)\b(?:bps?|basis\s+points?)\b`)

	compoundRe = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z /]{0,20}?)\s*(\([^)]{1,20}\))?\s*(?:\+|plus)\s*(\d+(?:\.\d+)?)\s*%`)
	floorRe    = regexp.MustCompile(`(?i)(?:floor[^%\d]{0,12}(\d+(?:\.\d+)?)\s*%|(\d+(?:\.\d+)?)\s*%\s*floor)`)
	pikRe      = regexp.MustCompile(`(?i)(?:(\d+(?:\.\d+)?)\s*%\s*PIK\b|\bPIK[^%\d]{0,12}(\d+(?:\.\d+)?)\s*%)`)
)

// Normalize converts a raw percentage-like string into canonical "N.NN%"
// form. Values with magnitude <= 1 and no explicit percent sign are treated
// as fractions and scaled by 100 ("0.065" -> "6.50%"). Returns "" when no
// number can be found.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	hadPercent := strings.Contains(raw, "%")

	match := numberRe.FindString(raw)
	if match == "" {
		return ""
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return ""
	}

	if !hadPercent && math.Abs(val) <= 1 {
		val *= 100
	}
	return format(val)
}

// NormalizeSpread is Normalize with basis-point handling: a "bp"/"bps"
// suffix, or a magnitude above 1000, indicates the value is in basis points
// and is divided by 100 ("550 bps" -> "5.50%").
func NormalizeSpread(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	match := numberRe.FindString(raw)
	if match == "" {
		return ""
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return ""
	}

	switch {
	case bpRe.MatchString(raw):
		val /= 100
	case math.Abs(val) > 1000:
		val /= 100
	case !strings.Contains(raw, "%") && math.Abs(val) <= 1:
		val *= 100
	}
	return format(val)
}

func format(val float64) string {
	return fmt.Sprintf("%.2f%%", val)
}

// Components is the decomposition of a compound rate expression.
type Components struct {
	Reference string // raw reference-rate token, e.g. "SOFR" or "SF"
	Term      string // optional parenthetical term, e.g. "(3-month)"
	Spread    string // normalized spread, e.g. "5.25%"
	Floor     string // normalized floor, e.g. "1.00%"
	PIK       string // normalized PIK rate, e.g. "2.00%"
}

// Decompose parses a compound rate expression ("SOFR (3-month) + 5.25%,
// 1.00% Floor, 2.00% PIK") into its components. Floor and PIK fragments are
// extracted independently of the reference+spread match, so they are found
// even when the reference part is absent.
func Decompose(expr string) Components {
	var c Components

	if m := compoundRe.FindStringSubmatch(expr); m != nil {
		ref := strings.TrimSpace(m[1])
		// A floor/PIK qualifier captured as the "reference" is a false hit.
		lower := strings.ToLower(ref)
		if !strings.Contains(lower, "floor") && !strings.Contains(lower, "pik") {
			c.Reference = ref
			c.Term = m[2]
			c.Spread = Normalize(m[3] + "%")
		}
	}
	if m := floorRe.FindStringSubmatch(expr); m != nil {
		c.Floor = Normalize(firstNonEmpty(m[1], m[2]) + "%")
	}
	if m := pikRe.FindStringSubmatch(expr); m != nil {
		c.PIK = Normalize(firstNonEmpty(m[1], m[2]) + "%")
	}
	return c
}

// Summary composes a human-readable rate summary of the form
// "SOFR + 5.25%, Floor 1.00%, PIK 2.00%", omitting absent parts. Used when a
// filing does not carry an explicit interest-rate summary of its own.
func (c Components) Summary() string {
	var parts []string
	if c.Reference != "" && c.Spread != "" {
		ref := c.Reference
		if c.Term != "" {
			ref += " " + c.Term
		}
		parts = append(parts, ref+" + "+c.Spread)
	} else if c.Spread != "" {
		parts = append(parts, c.Spread)
	}
	if c.Floor != "" {
		parts = append(parts, "Floor "+c.Floor)
	}
	if c.PIK != "" {
		parts = append(parts, "PIK "+c.PIK)
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
