package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/holdings-extract/internal/pipeline"
	"github.com/sells-group/holdings-extract/internal/standardize"
)

var (
	extractFilingPath   string
	extractSchedulePath string
	extractOutputPath   string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract investment records from one filing",
	Long:  "Reads a filing's raw markup (and optionally its rendered schedule HTML) from disk, runs the extraction pipeline and prints the records as JSON.",
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFilingPath, "filing", "", "path to the raw filing markup (required)")
	extractCmd.Flags().StringVar(&extractSchedulePath, "schedule", "", "path to the rendered schedule-of-investments HTML")
	extractCmd.Flags().StringVar(&extractOutputPath, "output", "", "write JSON here instead of stdout")
	_ = extractCmd.MarkFlagRequired("filing")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	markup, err := os.ReadFile(extractFilingPath)
	if err != nil {
		return eris.Wrap(err, "extract: read filing")
	}

	var rendered []byte
	if extractSchedulePath != "" {
		rendered, err = os.ReadFile(extractSchedulePath)
		if err != nil {
			return eris.Wrap(err, "extract: read rendered schedule")
		}
	}

	vocab, err := standardize.Load(cfg.Extract.VocabularyPath)
	if err != nil {
		return err
	}

	extractor := pipeline.New(pipeline.Options{
		Window:          cfg.Extract.WindowBytes,
		FuzzyThreshold:  cfg.Extract.FuzzyThreshold,
		DefaultIndustry: cfg.Extract.DefaultIndustry,
		Vocabulary:      vocab,
	})

	investments, coverage, err := extractor.Extract(string(markup), string(rendered))
	if err != nil {
		return err
	}
	zap.L().Info("extraction finished",
		zap.Int("investments", coverage.Investments),
		zap.Int("contexts", coverage.Contexts),
		zap.Int("discarded", coverage.Discarded))

	payload := struct {
		Investments interface{}       `json:"investments"`
		Coverage    pipeline.Coverage `json:"coverage"`
	}{Investments: investments, Coverage: coverage}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return eris.Wrap(err, "extract: marshal output")
	}

	if extractOutputPath != "" {
		return os.WriteFile(extractOutputPath, append(out, '\n'), 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
