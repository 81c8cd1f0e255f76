package canonical

import (
	"fmt"
	"strings"
)

// Row is one provider-native record in tabular form, column name to raw
// value. It is the only input shape the mapper supports.
type Row map[string]string

// FieldRule projects one canonical field from a provider row: the first
// non-empty source column wins, the optional transform cleans the value.
type FieldRule struct {
	Target    string
	Sources   []string
	Transform func(string) string
}

// Mapping is a provider adapter expressed as data. Adding a provider is a
// new field table, not new branching code.
type Mapping struct {
	Backend Backend
	Fields  []FieldRule
}

// setters binds mapping targets to Record fields. An unknown target is a
// configuration error and aborts the run before any resolution happens.
var setters = map[string]func(*Record, string){
	"source_work_id":   func(r *Record, v string) { r.SourceWorkID = v },
	"doi":              func(r *Record, v string) { r.DOI = v },
	"prefix":           func(r *Record, v string) { r.Prefix = v },
	"member":           func(r *Record, v string) { r.Member = v },
	"client_id":        func(r *Record, v string) { r.ClientID = v },
	"title":            func(r *Record, v string) { r.Title = v },
	"publisher":        func(r *Record, v string) { r.Publisher = v },
	"group_title":      func(r *Record, v string) { r.GroupTitle = v },
	"institution_name": func(r *Record, v string) { r.InstitutionName = v },
	"type":             func(r *Record, v string) { r.Type = v },
	"subtype":          func(r *Record, v string) { r.Subtype = v },
	"primary_url":      func(r *Record, v string) { r.PrimaryURL = v },
	"date_created":     func(r *Record, v string) { r.DateCreated = v },
	"date_posted":      func(r *Record, v string) { r.DatePosted = v },
	"date_registered":  func(r *Record, v string) { r.DateRegistered = v },
	"date_published":   func(r *Record, v string) { r.DatePublished = v },
	"server_name":      func(r *Record, v string) { r.ServerName = v },
	"server_id":        func(r *Record, v string) { r.ServerID = v },
	"oa_status":        func(r *Record, v string) { r.OAStatus = v },
	"is_oa": func(r *Record, v string) {
		switch strings.ToLower(v) {
		case "true", "t", "1", "yes":
			t := true
			r.IsOA = &t
		case "false", "f", "0", "no":
			f := false
			r.IsOA = &f
		}
	},
}

// Validate checks every target against the known canonical fields. Called
// once per run, before any record is mapped.
func (m Mapping) Validate() error {
	if m.Backend == "" {
		return fmt.Errorf("mapping has no backend")
	}

	seen := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		if _, ok := setters[f.Target]; !ok {
			return fmt.Errorf("mapping for %s: unknown target field %q", m.Backend, f.Target)
		}
		if seen[f.Target] {
			return fmt.Errorf("mapping for %s: duplicate target field %q", m.Backend, f.Target)
		}
		seen[f.Target] = true
		if len(f.Sources) == 0 {
			return fmt.Errorf("mapping for %s: target %q has no source columns", m.Backend, f.Target)
		}
	}

	return nil
}

// Apply projects one provider row into a canonical Record. Missing source
// columns degrade to the absent value; a bad row never aborts a batch.
func (m Mapping) Apply(row Row, numericKeep int) Record {
	rec := Record{Backend: m.Backend}

	for _, f := range m.Fields {
		var val string
		for _, src := range f.Sources {
			if v := strings.TrimSpace(row[src]); v != "" {
				val = v
				break
			}
		}
		if val == "" {
			continue
		}
		if f.Transform != nil {
			val = f.Transform(val)
			if val == "" {
				continue
			}
		}
		setters[f.Target](&rec, val)
	}

	rec.Derive(numericKeep)

	return rec
}

// ApplyAll maps a full provider batch, validating the mapping first and
// dropping exact duplicates by record id (first occurrence wins).
func (m Mapping) ApplyAll(rows []Row, numericKeep int) ([]Record, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	for _, row := range rows {
		rec := m.Apply(row, numericKeep)
		if rec.RecordID != "" {
			if seen[rec.RecordID] {
				continue
			}
			seen[rec.RecordID] = true
		}
		records = append(records, rec)
	}

	return records, nil
}

// MappingFor returns the adapter for a backend name.
func MappingFor(backend string) (Mapping, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(backend))) {
	case BackendCrossref:
		return CrossrefMapping(), nil
	case BackendDataCite:
		return DataCiteMapping(), nil
	case BackendOpenAlex:
		return OpenAlexMapping(), nil
	default:
		return Mapping{}, fmt.Errorf("unknown backend %q (expected crossref, datacite or openalex)", backend)
	}
}
