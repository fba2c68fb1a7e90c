// Package pipeline runs the per-filing extraction: raw markup (and an
// optional rendered HTML document) in, deduplicated investment records out.
// The whole pass is a pure function of its inputs; no stage aborts the run,
// each degrades to partial output.
package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/holdings-extract/internal/filing"
	"github.com/sells-group/holdings-extract/internal/holdings"
	"github.com/sells-group/holdings-extract/internal/identifier"
	"github.com/sells-group/holdings-extract/internal/schedule"
	"github.com/sells-group/holdings-extract/internal/standardize"
)

// Options tunes the extraction without touching control flow.
type Options struct {
	// Window is the derived-fact prose window in bytes; <= 0 uses
	// filing.DefaultWindow.
	Window int

	// FuzzyThreshold is the rendered-table fuzzy-match ratio; <= 0 uses
	// schedule.DefaultFuzzyThreshold.
	FuzzyThreshold float64

	// DefaultIndustry fills records whose identifier carries no industry.
	DefaultIndustry string

	// Vocabulary overrides the standardization tables; nil uses defaults.
	Vocabulary *standardize.Vocabulary
}

// Coverage counts what the extraction saw versus what it produced, the
// confidence signal for callers.
type Coverage struct {
	Contexts        int `json:"contexts"`
	CurrentContexts int `json:"current_contexts"`
	Discarded       int `json:"discarded"`
	Investments     int `json:"investments"`
	OrphanFacts     int `json:"orphan_facts"`
}

// Extractor is the per-filing engine. Safe for concurrent use across
// filings; each Extract call allocates its own state.
type Extractor struct {
	opts    Options
	mapper  *standardize.Mapper
	builder *holdings.Builder
	log     *zap.Logger
}

// New builds an extractor from options.
func New(opts Options) *Extractor {
	mapper := standardize.NewMapper(opts.Vocabulary)
	parser := identifier.NewParser(mapper, opts.DefaultIndustry)
	return &Extractor{
		opts:    opts,
		mapper:  mapper,
		builder: holdings.NewBuilder(parser, mapper),
		log:     zap.L().With(zap.String("component", "pipeline")),
	}
}

// Extract runs the full pass over one filing. renderedHTML may be empty, in
// which case the table-fallback stage is skipped.
func (e *Extractor) Extract(markup, renderedHTML string) ([]*holdings.Investment, Coverage, error) {
	var cov Coverage
	if strings.TrimSpace(markup) == "" {
		return nil, cov, eris.New("pipeline: empty filing markup")
	}

	ctxs := filing.ResolveContexts(markup)
	facts := filing.AggregateFacts(markup, e.opts.Window)
	cov.Contexts = len(ctxs)

	known := make(map[string]bool, len(ctxs))
	for _, c := range ctxs {
		known[c.ID] = true
	}
	for id, fs := range facts {
		if !known[id] {
			cov.OrphanFacts += len(fs)
		}
	}

	current := filing.FilterCurrent(ctxs)
	cov.CurrentContexts = len(current)

	var list []*holdings.Investment
	for _, ctx := range current {
		inv := e.builder.Build(ctx, facts[ctx.ID])
		if inv == nil {
			cov.Discarded++
			continue
		}
		list = append(list, inv)
	}
	list = holdings.Dedupe(list)

	if strings.TrimSpace(renderedHTML) != "" {
		rows, err := schedule.ParseTable(renderedHTML)
		if err != nil {
			e.log.Warn("rendered table unparseable, skipping fallback", zap.Error(err))
		} else if filled := schedule.NewMerger(rows, e.opts.FuzzyThreshold).Fill(list); filled > 0 {
			e.log.Debug("rendered table backfill", zap.Int("fields", filled))
		}
	}

	for _, inv := range list {
		inv.InvestmentType = e.mapper.InvestmentType(inv.InvestmentType)
		inv.Industry = e.mapper.Industry(inv.Industry)
		inv.ReferenceRate = e.mapper.ReferenceRate(inv.ReferenceRate)
	}
	cov.Investments = len(list)

	e.log.Info("filing extracted",
		zap.Int("contexts", cov.Contexts),
		zap.Int("current_contexts", cov.CurrentContexts),
		zap.Int("discarded", cov.Discarded),
		zap.Int("investments", cov.Investments),
		zap.Int("orphan_facts", cov.OrphanFacts))

	return list, cov, nil
}
