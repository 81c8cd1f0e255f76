package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/taripaq/internal/tabular"
	"github.com/btraven00/taripaq/pkg/analyze"
)

var (
	sumFields    []string
	sumExamplesK int
	sumTopK      int
	sumOutDir    string
)

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize <labeled.parquet>",
	Short: "Build per-field diagnostic summaries over a labeled batch",
	Long: `Summarize groups a labeled batch by one or more record fields and
reports, per group, the frequency breakdowns of the descriptive signals,
bounded example URLs and DOIs, and which other resolved identities share
each signal dimension with the group. The sharing columns are the main
input for spotting lookup-table rows that conflate two repositories.

Examples:
  taripaq summarize merged.parquet --field validated_server_name
  taripaq summarize merged.parquet --field primary_domain --field prefix \
      --examples-k 5 --out-dir summaries/`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	records, err := tabular.ReadRecords(args[0])
	if err != nil {
		return err
	}

	if verbose {
		fmt.Printf("Read %d records from %s\n", len(records), args[0])
	}

	opts := analyze.Options{ExamplesK: sumExamplesK, TopK: sumTopK}

	for _, field := range sumFields {
		rows, err := analyze.Summarize(records, field, opts)
		if err != nil {
			return fmt.Errorf("%w (known fields: %s)", err, strings.Join(analyze.SummaryFields(), ", "))
		}

		if err := emitSummary(field, rows); err != nil {
			return err
		}
	}

	return nil
}

func emitSummary(field string, rows []analyze.Row) error {
	if sumOutDir != "" {
		if err := os.MkdirAll(sumOutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		path := fmt.Sprintf("%s/summary_%s.csv", sumOutDir, field)
		if err := writeSummaryFile(path, field, rows); err != nil {
			return err
		}

		fmt.Printf("Wrote %s (%d groups)\n", path, len(rows))

		return nil
	}

	if output == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(struct {
			Field  string        `json:"field"`
			Groups []analyze.Row `json:"groups"`
		}{Field: field, Groups: rows})
	}

	return analyze.WriteCSV(os.Stdout, field, rows)
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().StringSliceVar(&sumFields, "field", []string{"validated_server_name"}, "record field to group by (repeatable)")
	summarizeCmd.Flags().IntVar(&sumExamplesK, "examples-k", 10, "example URLs/DOIs kept per group")
	summarizeCmd.Flags().IntVar(&sumTopK, "top-k", 0, "cap breakdown lists at this many values (0 = all)")
	summarizeCmd.Flags().StringVar(&sumOutDir, "out-dir", "", "write summaries as CSV files here instead of stdout")
}
