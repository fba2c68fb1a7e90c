// Package schedule parses the rendered schedule-of-investments table of a
// filing and backfills record fields the tagged-data pass left empty.
package schedule

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Row is one holding row of the rendered table.
type Row struct {
	Company         string
	InvestmentType  string
	AcquisitionDate string
	MaturityDate    string
	InterestRate    string
}

var (
	dateRe     = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)
	subtotalRe = regexp.MustCompile(`(?i)^\s*(?:total|subtotal|net assets|liabilities)\b`)
)

// columns holds the detected cell index per semantic column; -1 means the
// table does not carry that column.
type columns struct {
	company     int
	invType     int
	acquisition int
	maturity    int
	rate        int
	headerRow   int
}

// ParseTable extracts holding rows from rendered filing HTML. Column meaning
// is inferred from header-cell keywords; tables without a recognizable
// company column are skipped entirely.
func ParseTable(html string) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "schedule: parse rendered html")
	}

	var rows []Row
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		cols, ok := detectColumns(table)
		if !ok {
			return
		}
		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i <= cols.headerRow {
				return
			}
			if row, ok := parseRow(tr, cols); ok {
				rows = append(rows, row)
			}
		})
	})
	return rows, nil
}

// detectColumns scans the leading rows for a header row naming a company
// column.
func detectColumns(table *goquery.Selection) (columns, bool) {
	cols := columns{company: -1, invType: -1, acquisition: -1, maturity: -1, rate: -1}
	found := false

	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		if i > 5 {
			return false
		}
		c := columns{company: -1, invType: -1, acquisition: -1, maturity: -1, rate: -1, headerRow: i}
		tr.Find("td, th").Each(func(j int, cell *goquery.Selection) {
			text := strings.ToLower(strings.TrimSpace(cell.Text()))
			switch {
			case c.company < 0 && (strings.Contains(text, "company") ||
				strings.Contains(text, "portfolio") || strings.Contains(text, "issuer")):
				c.company = j
			case c.invType < 0 && strings.Contains(text, "investment"):
				c.invType = j
			case c.acquisition < 0 && strings.Contains(text, "acquisition"):
				c.acquisition = j
			case c.maturity < 0 && strings.Contains(text, "maturity"):
				c.maturity = j
			case c.rate < 0 && strings.Contains(text, "rate"):
				c.rate = j
			}
		})
		if c.company >= 0 {
			cols = c
			found = true
			return false
		}
		return true
	})
	return cols, found
}

// parseRow extracts one data row. Subtotal/total rows and rows with an empty
// company cell are skipped.
func parseRow(tr *goquery.Selection, cols columns) (Row, bool) {
	var cells []string
	tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	at := func(i int) string {
		if i >= 0 && i < len(cells) {
			return cells[i]
		}
		return ""
	}

	company := at(cols.company)
	if company == "" || subtotalRe.MatchString(company) {
		return Row{}, false
	}

	return Row{
		Company:         company,
		InvestmentType:  at(cols.invType),
		AcquisitionDate: normalizeDate(at(cols.acquisition)),
		MaturityDate:    normalizeDate(at(cols.maturity)),
		InterestRate:    at(cols.rate),
	}, true
}

var dateLayouts = []string{"01/02/2006", "1/2/2006", "2006-01-02"}

// normalizeDate pulls the first date-like substring from a cell and renders
// it as MM/DD/YYYY.
func normalizeDate(s string) string {
	match := dateRe.FindString(s)
	if match == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, match); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return ""
}
