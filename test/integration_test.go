package test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/btraven00/taripaq/internal/pipeline"
	"github.com/btraven00/taripaq/internal/tabular"
	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/lookup"
	"github.com/btraven00/taripaq/pkg/resolve"
	"github.com/btraven00/taripaq/pkg/unify"
)

func loadFixtureTables(t *testing.T) (lookup.Table, lookup.Table) {
	t.Helper()

	domains, err := lookup.LoadDomainTable(strings.NewReader(DomainRulesCSV))
	if err != nil {
		t.Fatalf("failed to load domain rules: %v", err)
	}

	prefixes, err := lookup.LoadPrefixTable(strings.NewReader(PrefixRulesCSV))
	if err != nil {
		t.Fatalf("failed to load prefix rules: %v", err)
	}

	return domains, prefixes
}

func labelFixture(t *testing.T, config pipeline.Config, batchCSV string, backend canonical.Backend) *pipeline.Result {
	t.Helper()

	rows, err := tabular.ReadRows(strings.NewReader(batchCSV))
	if err != nil {
		t.Fatalf("failed to read %s batch: %v", backend, err)
	}

	domains, prefixes := loadFixtureTables(t)
	p := pipeline.New(config, resolve.DefaultOverrides(), nil, domains, prefixes)

	result, err := p.Label(rows, backend)
	if err != nil {
		t.Fatalf("failed to label %s batch: %v", backend, err)
	}

	return result
}

// TestIntegration_CrossrefLabeling walks one Crossref harvest through the
// whole labeling flow and checks each cascade path lands where expected.
func TestIntegration_CrossrefLabeling(t *testing.T) {
	result := labelFixture(t, pipeline.Config{Workers: 1, SubtypeFilter: "preprint"},
		CrossrefBatchCSV, canonical.BackendCrossref)

	stats := result.Stats
	if stats.Input != 4 || stats.Filtered != 1 || stats.Labeled != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Resolved != 2 || stats.Manual != 1 {
		t.Errorf("resolved/manual = %d/%d, want 2/1", stats.Resolved, stats.Manual)
	}

	byDOI := make(map[string]canonical.Record)
	for _, rec := range result.Records {
		byDOI[rec.DOI] = rec
	}

	strong := byDOI["10.1101/2024.01.12.575796"]
	if strong.ServerName != "bioRxiv" || strong.RuleID != resolve.RuleMatchStrong {
		t.Errorf("strong match = (%q, %q)", strong.ServerName, strong.RuleID)
	}
	if strong.ConfidenceScore != resolve.ConfidenceStrong {
		t.Errorf("strong confidence = %v", strong.ConfidenceScore)
	}

	// The OSF record first resolves through the prefix table, then the
	// group-title override replaces that outcome.
	platform := byDOI["10.31234/osf.io/abcde"]
	if platform.ServerName != "PsyArXiv" || platform.RuleID != resolve.RuleGroupTitle {
		t.Errorf("platform record = (%q, %q)", platform.ServerName, platform.RuleID)
	}

	conflicted := byDOI["10.4444/beta.7"]
	if conflicted.ServerName != "" {
		t.Errorf("conflicted record resolved to %q", conflicted.ServerName)
	}
	if conflicted.ValidationStatus != string(resolve.StatusLowConfidenceManual) {
		t.Errorf("conflicted status = %q", conflicted.ValidationStatus)
	}
	if len(result.ManualReview) != 1 || result.ManualReview[0].DOI != "10.4444/beta.7" {
		t.Errorf("manual review subset = %+v", result.ManualReview)
	}
}

// TestIntegration_DataCiteLabeling checks the provider adapter differences:
// client_id as server id and the weak-match path.
func TestIntegration_DataCiteLabeling(t *testing.T) {
	result := labelFixture(t, pipeline.Config{Workers: 1},
		DataCiteBatchCSV, canonical.BackendDataCite)

	if result.Stats.Labeled != 2 || result.Stats.Resolved != 2 {
		t.Fatalf("stats = %+v", result.Stats)
	}

	byDOI := make(map[string]canonical.Record)
	for _, rec := range result.Records {
		byDOI[rec.DOI] = rec
	}

	earth := byDOI["10.31223/x5abc1"]
	if earth.ServerName != "EarthArXiv" {
		t.Errorf("eartharxiv record resolved to %q", earth.ServerName)
	}
	// Both tables agree but no free text corroborates, so this stays a
	// weak match; the domain-trust override must not replace it.
	if earth.RuleID != resolve.RuleMatchWeak {
		t.Errorf("eartharxiv rule = %q, want %q", earth.RuleID, resolve.RuleMatchWeak)
	}
	if earth.ServerID != "caltech.eartharxiv" {
		t.Errorf("server id = %q, want the client id", earth.ServerID)
	}
}

// TestIntegration_MergeAcrossProviders labels all three harvests, writes
// them to parquet, reads them back and unifies by DOI.
func TestIntegration_MergeAcrossProviders(t *testing.T) {
	dir := t.TempDir()

	batches := []struct {
		backend canonical.Backend
		csv     string
	}{
		{canonical.BackendCrossref, CrossrefBatchCSV},
		{canonical.BackendDataCite, DataCiteBatchCSV},
		{canonical.BackendOpenAlex, OpenAlexBatchCSV},
	}

	paths := make([]string, 0, len(batches))
	for _, b := range batches {
		result := labelFixture(t, pipeline.Config{Workers: 1}, b.csv, b.backend)

		path := filepath.Join(dir, string(b.backend)+".parquet")
		if err := tabular.WriteRecords(path, result.Records); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}

		paths = append(paths, path)
	}

	loaded := make([][]canonical.Record, 0, len(paths))
	for _, path := range paths {
		records, err := tabular.ReadRecords(path)
		if err != nil {
			t.Fatalf("failed to read %s back: %v", path, err)
		}

		loaded = append(loaded, records)
	}

	merged, stats := unify.ByDOI(loaded...)

	if stats.NoDOI != 1 {
		t.Errorf("NoDOI = %d, want 1 (the orphan openalex work)", stats.NoDOI)
	}
	if stats.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", stats.Duplicates)
	}
	if len(merged) != 5 {
		t.Fatalf("merged %d records, want 5", len(merged))
	}

	byDOI := make(map[string]canonical.Record)
	for _, rec := range merged {
		byDOI[rec.DOI] = rec
	}

	// Crossref outranks DataCite for the shared bioRxiv DOI and OpenAlex
	// for the shared OSF DOI.
	if rec := byDOI["10.1101/2024.01.12.575796"]; rec.Backend != canonical.BackendCrossref {
		t.Errorf("shared biorxiv DOI kept backend %q", rec.Backend)
	}
	if rec := byDOI["10.31234/osf.io/abcde"]; rec.Backend != canonical.BackendCrossref {
		t.Errorf("shared osf DOI kept backend %q", rec.Backend)
	}
	if rec := byDOI["10.31223/x5abc1"]; rec.Backend != canonical.BackendDataCite {
		t.Errorf("datacite-only DOI kept backend %q", rec.Backend)
	}

	for i := 1; i < len(merged); i++ {
		if merged[i].DOI < merged[i-1].DOI {
			t.Errorf("merged output not sorted at %d", i)
		}
	}
}
