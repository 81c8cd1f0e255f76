// Package pipeline orchestrates a full labeling run: map raw provider rows
// into canonical records, attach lookup candidates, run the rule cascade,
// apply curated corrections, and collect run statistics.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/lookup"
	"github.com/btraven00/taripaq/pkg/normalize"
	"github.com/btraven00/taripaq/pkg/resolve"
)

// Config holds configuration for a labeling run.
type Config struct {
	OutputFormat  string
	SubtypeFilter string
	NumericKeep   int
	Workers       int
	Verbose       bool
}

// Stats summarizes a labeling run.
type Stats struct {
	ByRule     map[string]int `json:"by_rule"`
	ByStatus   map[string]int `json:"by_status"`
	Backend    string         `json:"backend"`
	Input      int            `json:"input"`
	Filtered   int            `json:"filtered"`
	Labeled    int            `json:"labeled"`
	Resolved   int            `json:"resolved"`
	Manual     int            `json:"manual"`
	Corrected  int            `json:"corrected"`
	ElapsedMS  int64          `json:"elapsed_ms"`
}

// Result is the outcome of labeling one provider batch.
type Result struct {
	Records      []canonical.Record
	ManualReview []canonical.Record
	Stats        Stats
}

// Pipeline runs the labeling stages for a provider batch.
type Pipeline struct {
	config      Config
	resolver    *resolve.Resolver
	corrections resolve.Corrections
	domains     lookup.Table
	prefixes    lookup.Table
}

// New creates a pipeline from the given configuration, override sets, and
// lookup tables. Nil corrections fall back to the curated defaults.
func New(config Config, overrides resolve.Overrides, corrections resolve.Corrections, domains, prefixes lookup.Table) *Pipeline {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.NumericKeep <= 0 {
		config.NumericKeep = normalize.DefaultNumericKeep
	}
	if corrections == nil {
		corrections = resolve.DefaultCorrections()
	}

	return &Pipeline{
		config:      config,
		resolver:    resolve.New(overrides),
		corrections: corrections,
		domains:     domains,
		prefixes:    prefixes,
	}
}

// Label maps raw rows from one provider into canonical records and resolves
// a repository name for each.
func (p *Pipeline) Label(rows []canonical.Row, backend canonical.Backend) (*Result, error) {
	start := time.Now()

	mapping, err := canonical.MappingFor(string(backend))
	if err != nil {
		return nil, err
	}

	records, err := mapping.ApplyAll(rows, p.config.NumericKeep)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s rows: %w", backend, err)
	}

	stats := Stats{
		Backend:  string(backend),
		Input:    len(rows),
		ByRule:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	if p.config.SubtypeFilter != "" {
		// Strict match: records with no subtype at all are dropped too,
		// since there is no evidence they are the kind being labeled.
		kept := records[:0]
		for i := range records {
			if records[i].Subtype == p.config.SubtypeFilter {
				kept = append(kept, records[i])
			} else {
				stats.Filtered++
			}
		}
		records = kept
	}

	lookup.Attach(records, p.domains, p.prefixes)
	p.resolveParallel(records)

	stats.Corrected = p.corrections.ApplyAll(records)

	manual := make([]canonical.Record, 0)
	for i := range records {
		rec := &records[i]
		stats.ByRule[rec.RuleID]++
		stats.ByStatus[rec.ValidationStatus]++

		if rec.Resolved() {
			stats.Resolved++
		} else {
			stats.Manual++
			manual = append(manual, *rec)
		}
	}

	stats.Labeled = len(records)
	stats.ElapsedMS = time.Since(start).Milliseconds()

	if p.config.Verbose {
		fmt.Printf("labeled %d/%d %s records in %dms (%d filtered, %d corrected)\n",
			stats.Resolved, stats.Labeled, backend, stats.ElapsedMS, stats.Filtered, stats.Corrected)
	}

	return &Result{
		Records:      records,
		ManualReview: manual,
		Stats:        stats,
	}, nil
}

// resolveParallel partitions the batch across workers. The resolver is
// pure per record, so each worker owns a disjoint slice and no locking
// is needed.
func (p *Pipeline) resolveParallel(records []canonical.Record) {
	workers := p.config.Workers
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		p.resolver.ResolveAll(records)
		return
	}

	var wg sync.WaitGroup

	chunk := (len(records) + workers - 1) / workers
	for lo := 0; lo < len(records); lo += chunk {
		hi := lo + chunk
		if hi > len(records) {
			hi = len(records)
		}

		wg.Add(1)

		go func(part []canonical.Record) {
			defer wg.Done()
			p.resolver.ResolveAll(part)
		}(records[lo:hi])
	}

	wg.Wait()
}

// OutputStats writes run statistics in the configured format.
func (p *Pipeline) OutputStats(stats *Stats) error {
	switch strings.ToLower(p.config.OutputFormat) {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(stats)
	case "human", "":
		return p.outputHuman(stats)
	default:
		return fmt.Errorf("unsupported output format: %s", p.config.OutputFormat)
	}
}

func (p *Pipeline) outputHuman(stats *Stats) error {
	fmt.Printf("Backend: %s\n", stats.Backend)
	fmt.Printf("📥 Input rows: %d", stats.Input)

	if stats.Filtered > 0 {
		fmt.Printf(" (%d filtered by subtype)", stats.Filtered)
	}

	fmt.Printf("\n")
	fmt.Printf("🏷️  Labeled: %d\n", stats.Labeled)
	fmt.Printf("✅ Resolved: %d\n", stats.Resolved)
	fmt.Printf("📝 Manual review: %d\n", stats.Manual)

	if stats.Corrected > 0 {
		fmt.Printf("✏️  Corrected names: %d\n", stats.Corrected)
	}

	fmt.Printf("⏱️  Elapsed: %dms\n", stats.ElapsedMS)

	fmt.Printf("📊 By rule:\n")
	for _, rule := range sortedKeys(stats.ByRule) {
		fmt.Printf("   %-28s %d\n", rule, stats.ByRule[rule])
	}

	if p.config.Verbose {
		fmt.Printf("📊 By status:\n")
		for _, status := range sortedKeys(stats.ByStatus) {
			fmt.Printf("   %-28s %d\n", status, stats.ByStatus[status])
		}
	}

	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
