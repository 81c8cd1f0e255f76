package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/btraven00/taripaq/internal/tabular"
	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/unify"
)

var (
	mergeParquetOut string
	mergeCSVOut     string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <labeled.parquet>...",
	Short: "Unify labeled batches from several providers into one set",
	Long: `Merge deduplicates labeled batches across providers by normalized DOI.
When the same DOI appears in more than one backend the record from the
highest-ranked provider wins: crossref over datacite over openalex. Records
without a usable DOI are dropped. Output order is deterministic, so two
runs over the same inputs produce identical files.

Examples:
  taripaq merge crossref_labeled.parquet datacite_labeled.parquet \
      openalex_labeled.parquet --parquet merged.parquet --csv merged.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	batches := make([][]canonical.Record, 0, len(args))

	for _, path := range args {
		records, err := tabular.ReadRecords(path)
		if err != nil {
			return err
		}

		if verbose {
			fmt.Printf("Read %d records from %s\n", len(records), path)
		}

		batches = append(batches, records)
	}

	merged, stats := unify.ByDOI(batches...)

	if mergeParquetOut != "" {
		if err := tabular.WriteRecords(mergeParquetOut, merged); err != nil {
			return err
		}
	}

	if mergeCSVOut != "" {
		if err := writeCleanFile(mergeCSVOut, merged); err != nil {
			return err
		}
	}

	return outputMergeStats(&stats)
}

func outputMergeStats(stats *unify.Stats) error {
	if output == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(stats)
	}

	fmt.Printf("📥 Input records: %d\n", stats.Input)
	fmt.Printf("🔀 Unified: %d\n", stats.Output)
	fmt.Printf("♻️  Duplicate DOIs dropped: %d\n", stats.Duplicates)
	fmt.Printf("🚫 Missing DOI: %d\n", stats.NoDOI)

	for _, backend := range []canonical.Backend{canonical.BackendCrossref, canonical.BackendDataCite, canonical.BackendOpenAlex} {
		if n := stats.ByBackend[string(backend)]; n > 0 {
			fmt.Printf("   %-10s %d\n", backend, n)
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeParquetOut, "parquet", "", "write the unified set to this parquet file")
	mergeCmd.Flags().StringVar(&mergeCSVOut, "csv", "", "write the unified set to this CSV file")
}
