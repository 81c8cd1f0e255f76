package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/btraven00/taripaq/internal/pipeline"
	"github.com/btraven00/taripaq/internal/tabular"
	"github.com/btraven00/taripaq/pkg/analyze"
	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/lookup"
	"github.com/btraven00/taripaq/pkg/resolve"
)

var (
	backendFlag     string
	domainRulesFlag string
	prefixRulesFlag string
	overridesFlag   string
	correctionsFlag string
	subtypeFlag     string
	examplesKFlag   int
	workersFlag     int
	outputDirFlag   string
	summaryFields   []string
)

// labelCmd represents the label command
var labelCmd = &cobra.Command{
	Use:   "label <batch.csv>",
	Short: "Resolve a repository identity for every record in a provider batch",
	Long: `Label maps one provider's harvested metadata (CSV) into the canonical
record schema, joins the domain and DOI-prefix lookup tables, runs the rule
cascade, applies the curated name corrections, and writes the labeled batch
plus the manual-review subset and per-field diagnostic summaries.

Examples:
  taripaq label crossref_2024.csv --backend crossref \
      --domain-rules domains.csv --prefix-rules prefixes.csv
  taripaq label datacite.csv --backend datacite --subtype preprint \
      --out-dir labeled/ --summarize validated_server_name`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

func runLabel(cmd *cobra.Command, args []string) error {
	batchPath := args[0]

	if verbose {
		fmt.Printf("Labeling: %s\n", batchPath)
		fmt.Printf("Backend: %s\n", backendFlag)
		fmt.Printf("Workers: %d\n", workersFlag)
	}

	rows, err := tabular.ReadRowsFile(batchPath)
	if err != nil {
		return err
	}

	domains, err := lookup.LoadDomainTableFile(domainRulesFlag)
	if err != nil {
		return err
	}

	prefixes, err := lookup.LoadPrefixTableFile(prefixRulesFlag)
	if err != nil {
		return err
	}

	overrides := resolve.DefaultOverrides()
	if overridesFlag != "" {
		if overrides, err = resolve.LoadOverrides(overridesFlag); err != nil {
			return err
		}
	}

	corrections := resolve.DefaultCorrections()
	if correctionsFlag != "" {
		if corrections, err = resolve.LoadCorrections(correctionsFlag); err != nil {
			return err
		}
	}

	config := pipeline.Config{
		OutputFormat:  output,
		SubtypeFilter: subtypeFlag,
		Workers:       workersFlag,
		Verbose:       verbose,
	}

	p := pipeline.New(config, overrides, corrections, domains, prefixes)

	result, err := p.Label(rows, canonical.Backend(backendFlag))
	if err != nil {
		return fmt.Errorf("failed to label %s: %w", batchPath, err)
	}

	if err := writeLabelOutputs(batchPath, result); err != nil {
		return err
	}

	return p.OutputStats(&result.Stats)
}

// writeLabelOutputs writes the labeled parquet, the manual-review subset,
// the clean CSV export, and any requested diagnostic summaries next to each
// other under the output directory.
func writeLabelOutputs(batchPath string, result *pipeline.Result) error {
	if err := os.MkdirAll(outputDirFlag, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	stem := strippedStem(batchPath)

	labeledPath := filepath.Join(outputDirFlag, stem+"_labeled.parquet")
	if err := tabular.WriteRecords(labeledPath, result.Records); err != nil {
		return err
	}

	if len(result.ManualReview) > 0 {
		manualPath := filepath.Join(outputDirFlag, stem+"_manual_review.parquet")
		if err := tabular.WriteRecords(manualPath, result.ManualReview); err != nil {
			return err
		}
	}

	cleanPath := filepath.Join(outputDirFlag, stem+"_labeled.csv")
	if err := writeCleanFile(cleanPath, result.Records); err != nil {
		return err
	}

	for _, field := range summaryFields {
		rows, err := analyze.Summarize(result.Records, field, analyze.Options{ExamplesK: examplesKFlag})
		if err != nil {
			return err
		}

		summaryPath := filepath.Join(outputDirFlag, fmt.Sprintf("%s_summary_%s.csv", stem, field))
		if err := writeSummaryFile(summaryPath, field, rows); err != nil {
			return err
		}

		if verbose {
			fmt.Printf("Wrote summary: %s (%d groups)\n", summaryPath, len(rows))
		}
	}

	return nil
}

func writeCleanFile(path string, records []canonical.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := tabular.WriteCleanCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}

func writeSummaryFile(path, field string, rows []analyze.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := analyze.WriteCSV(f, field, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}

// strippedStem is the batch filename without directory or extension.
func strippedStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func init() {
	rootCmd.AddCommand(labelCmd)

	labelCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "provider backend (crossref, datacite, openalex)")
	labelCmd.Flags().StringVar(&domainRulesFlag, "domain-rules", "", "CSV lookup table mapping primary domains to server names")
	labelCmd.Flags().StringVar(&prefixRulesFlag, "prefix-rules", "", "CSV lookup table mapping DOI prefix tokens to server names")
	labelCmd.Flags().StringVar(&overridesFlag, "overrides", "", "YAML override lists for the R5 rules (defaults to curated lists)")
	labelCmd.Flags().StringVar(&correctionsFlag, "corrections", "", "YAML name correction table (defaults to curated table)")
	labelCmd.Flags().StringVar(&subtypeFlag, "subtype", "preprint", "keep only records with this subtype (empty disables the filter)")
	labelCmd.Flags().IntVar(&examplesKFlag, "examples-k", 10, "example URLs/DOIs kept per summary group")
	labelCmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "resolver workers (0 = number of CPUs)")
	labelCmd.Flags().StringVar(&outputDirFlag, "out-dir", ".", "directory for labeled outputs")
	labelCmd.Flags().StringSliceVar(&summaryFields, "summarize", nil, "write a diagnostic summary grouped by this field (repeatable)")

	cobra.CheckErr(labelCmd.MarkFlagRequired("backend"))
	cobra.CheckErr(labelCmd.MarkFlagRequired("domain-rules"))
	cobra.CheckErr(labelCmd.MarkFlagRequired("prefix-rules"))
}
