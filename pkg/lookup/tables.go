// Package lookup loads the two curator-maintained rule tables that supply
// candidate server identities: primary domain to server name, and DOI
// prefix/first-token to server name. The tables arrive as plain CSV exports;
// a missing column is a configuration error and aborts the run before any
// resolution happens.
package lookup

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// Column names as they appear in the curated sheet exports.
const (
	DomainKeyColumn   = "Field_primary_domain_ok"
	DomainValueColumn = "domain_server_name"
	PrefixKeyColumn   = "Field_doi_prefix_first_token"
	PrefixValueColumn = "prefix_server_name"
)

// Table maps an identity signal value to a candidate server name.
type Table map[string]string

// LoadDomainTable reads the primary_domain rule table from CSV.
func LoadDomainTable(r io.Reader) (Table, error) {
	return loadTable(r, DomainKeyColumn, DomainValueColumn)
}

// LoadPrefixTable reads the doi_prefix_first_token rule table from CSV.
func LoadPrefixTable(r io.Reader) (Table, error) {
	return loadTable(r, PrefixKeyColumn, PrefixValueColumn)
}

// LoadDomainTableFile and LoadPrefixTableFile are the path-based variants
// used by the CLI layer.
func LoadDomainTableFile(path string) (Table, error) {
	return loadTableFile(path, LoadDomainTable)
}

func LoadPrefixTableFile(path string) (Table, error) {
	return loadTableFile(path, LoadPrefixTable)
}

func loadTableFile(path string, load func(io.Reader) (Table, error)) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule table: %w", err)
	}
	defer f.Close()

	t, err := load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// loadTable reads a two-column mapping, deduplicated and null-filtered.
// Rows with an empty key or value are dropped; the first occurrence of a
// key wins so reloading the same sheet is deterministic.
func loadTable(r io.Reader, keyCol, valCol string) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table header: %w", err)
	}

	keyIdx, valIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case keyCol:
			keyIdx = i
		case valCol:
			valIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, fmt.Errorf("rule table missing required column %q", keyCol)
	}
	if valIdx < 0 {
		return nil, fmt.Errorf("rule table missing required column %q", valCol)
	}

	table := make(Table)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rule table row: %w", err)
		}
		if keyIdx >= len(rec) || valIdx >= len(rec) {
			continue
		}

		key := strings.TrimSpace(rec[keyIdx])
		val := strings.TrimSpace(rec[valIdx])
		if key == "" || val == "" {
			continue
		}
		if _, ok := table[key]; ok {
			continue
		}
		table[key] = val
	}

	return table, nil
}

// Attach joins the candidate identities onto a canonical batch: the domain
// table by primary_domain, the prefix table by doi_prefix_first_token.
// Records with no table hit keep the absent value.
func Attach(records []canonical.Record, domains, prefixes Table) {
	for i := range records {
		if v, ok := domains[records[i].PrimaryDomain]; ok {
			records[i].DomainServerName = v
		}
		if v, ok := prefixes[records[i].DOIPrefixFirstToken]; ok {
			records[i].PrefixServerName = v
		}
	}
}
