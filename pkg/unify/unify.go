// Package unify deduplicates canonical records across providers: one row
// per normalized DOI, kept from the highest-ranked backend that carries it.
package unify

import (
	"sort"

	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/normalize"
)

// Stats reports what the unifier dropped and merged.
type Stats struct {
	Input      int            `json:"input"`
	NoDOI      int            `json:"no_doi"`
	Duplicates int            `json:"duplicates"`
	Output     int            `json:"output"`
	ByBackend  map[string]int `json:"by_backend"`
}

// ByDOI merges any number of provider batches into one deduplicated set.
// Records without a usable DOI are dropped; when the same DOI appears in
// several backends, provider rank decides (crossref before datacite before
// openalex before anything unrecognized) and ties within a backend keep the
// earliest record. Output is sorted by DOI, so repeated runs over the same
// input are byte-identical.
func ByDOI(batches ...[]canonical.Record) ([]canonical.Record, Stats) {
	stats := Stats{ByBackend: make(map[string]int)}

	var pool []canonical.Record
	for _, batch := range batches {
		stats.Input += len(batch)
		for i := range batch {
			rec := batch[i]
			rec.DOI = normalize.DOI(rec.DOI)
			if rec.DOI == "" {
				stats.NoDOI++
				continue
			}
			pool = append(pool, rec)
		}
	}

	// Stable sort: DOI ascending, then backend rank. Input order breaks
	// remaining ties deterministically.
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].DOI != pool[j].DOI {
			return pool[i].DOI < pool[j].DOI
		}
		return pool[i].Backend.Rank() < pool[j].Backend.Rank()
	})

	out := pool[:0]
	lastDOI := ""
	for i := range pool {
		if pool[i].DOI == lastDOI {
			stats.Duplicates++
			continue
		}
		lastDOI = pool[i].DOI
		out = append(out, pool[i])
		stats.ByBackend[string(pool[i].Backend)]++
	}
	stats.Output = len(out)

	return out, stats
}
