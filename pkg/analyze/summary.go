package analyze

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// MissingToken stands in for absent group values so they stay visible in
// the summaries instead of silently vanishing.
const MissingToken = "MISSING"

// Options bound the summary output. Zero values take the defaults.
type Options struct {
	// ExamplesK caps the example URLs/DOIs stored per group (default 10).
	ExamplesK int
	// TopK caps the value/frequency breakdown lists (0 = unbounded).
	TopK int
	// PreprintSubtype is the subtype counted as a preprint work
	// (default "preprint").
	PreprintSubtype string
}

func (o Options) withDefaults() Options {
	if o.ExamplesK <= 0 {
		o.ExamplesK = 10
	}
	if o.PreprintSubtype == "" {
		o.PreprintSubtype = "preprint"
	}
	return o
}

// Row is one summary line: the frequency breakdowns, bounded examples and
// cross-identity sharing report for a single group value.
type Row struct {
	Key string `json:"key"`

	Publishers           []string `json:"publishers,omitempty"`
	Prefixes             []string `json:"prefixes,omitempty"`
	Members              []string `json:"members,omitempty"`
	InstitutionNames     []string `json:"institution_names,omitempty"`
	GroupTitles          []string `json:"group_titles,omitempty"`
	PrimaryDomains       []string `json:"primary_domains,omitempty"`
	PrimaryDomainExtends []string `json:"primary_domain_extends,omitempty"`
	DOIPrefixFirstTokens []string `json:"doi_prefix_first_tokens,omitempty"`
	ValidationStatuses   []string `json:"validation_statuses,omitempty"`
	RuleIDs              []string `json:"rule_ids,omitempty"`
	Years                []string `json:"years,omitempty"`

	HasInstitution       bool `json:"has_institution"`
	InstitutionNameCount int  `json:"institution_name_count"`
	GroupTitleCount      int  `json:"group_title_count"`

	ExampleURLs []string `json:"example_urls,omitempty"`
	ExampleDOIs []string `json:"example_dois,omitempty"`

	PreprintWorks int `json:"preprint_works"`

	Sharing map[Dimension][]string `json:"sharing"`
}

// SharingCount returns the number of resolved identities sharing the given
// dimension with this group.
func (r *Row) SharingCount(d Dimension) int { return len(r.Sharing[d]) }

// groupFields maps the summarizable field names onto record accessors.
// Asking for an unknown field is a configuration error.
var groupFields = map[string]func(*canonical.Record) string{
	"validated_server_name":     func(r *canonical.Record) string { return r.ValidatedServerName },
	"validated_server_name_old": func(r *canonical.Record) string { return r.ValidatedServerNameOld },
	"server_name":               func(r *canonical.Record) string { return r.ServerName },
	"primary_domain":            func(r *canonical.Record) string { return r.PrimaryDomain },
	"primary_domain_extend":     func(r *canonical.Record) string { return r.PrimaryDomainExtend },
	"doi_prefix_first_token":    func(r *canonical.Record) string { return r.DOIPrefixFirstToken },
	"prefix":                    func(r *canonical.Record) string { return r.Prefix },
	"member":                    func(r *canonical.Record) string { return r.Member },
	"group_title":               func(r *canonical.Record) string { return r.GroupTitle },
	"institution_name":          func(r *canonical.Record) string { return r.InstitutionName },
	"publisher":                 func(r *canonical.Record) string { return r.Publisher },
	"validation_status":         func(r *canonical.Record) string { return r.ValidationStatus },
	"rule_id":                   func(r *canonical.Record) string { return r.RuleID },
	"backend":                   func(r *canonical.Record) string { return string(r.Backend) },
}

// SummaryFields lists the supported group-by fields, sorted.
func SummaryFields() []string {
	fields := make([]string, 0, len(groupFields))
	for f := range groupFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Summarize groups a resolved batch by the chosen field and reports, per
// group, the descriptive breakdowns plus which other resolved identities
// share each signal dimension. Rows are sorted descending by preprint work
// count, then ascending by group key, stable, so reruns diff clean.
func Summarize(records []canonical.Record, field string, opts Options) ([]Row, error) {
	accessor, ok := groupFields[field]
	if !ok {
		return nil, fmt.Errorf("unknown summary field %q", field)
	}
	opts = opts.withDefaults()

	sharing := BuildSharingMaps(records)

	groups := make(map[string][]*canonical.Record)
	var keys []string
	for i := range records {
		key := accessor(&records[i])
		if key == "" {
			key = MissingToken
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], &records[i])
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, summarizeGroup(key, groups[key], sharing, opts))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PreprintWorks != rows[j].PreprintWorks {
			return rows[i].PreprintWorks > rows[j].PreprintWorks
		}
		return rows[i].Key < rows[j].Key
	})

	return rows, nil
}

func summarizeGroup(key string, group []*canonical.Record, sharing SharingMaps, opts Options) Row {
	row := Row{
		Key:     key,
		Sharing: make(map[Dimension][]string, len(Dimensions)),
	}

	row.Publishers = topCounts(group, func(r *canonical.Record) string { return r.Publisher }, opts.TopK)
	row.Prefixes = topCounts(group, func(r *canonical.Record) string { return r.Prefix }, opts.TopK)
	row.Members = topCounts(group, func(r *canonical.Record) string { return r.Member }, opts.TopK)
	row.InstitutionNames = topCounts(group, func(r *canonical.Record) string { return r.InstitutionName }, opts.TopK)
	row.GroupTitles = topCounts(group, func(r *canonical.Record) string { return r.GroupTitle }, opts.TopK)
	row.PrimaryDomains = topCounts(group, func(r *canonical.Record) string { return r.PrimaryDomain }, opts.TopK)
	row.PrimaryDomainExtends = topCounts(group, func(r *canonical.Record) string { return r.PrimaryDomainExtend }, opts.TopK)
	row.DOIPrefixFirstTokens = topCounts(group, func(r *canonical.Record) string { return r.DOIPrefixFirstToken }, opts.TopK)
	row.ValidationStatuses = topCounts(group, func(r *canonical.Record) string { return r.ValidationStatus }, opts.TopK)
	row.RuleIDs = topCounts(group, func(r *canonical.Record) string { return r.RuleID }, opts.TopK)
	row.Years = topCounts(group, func(r *canonical.Record) string {
		if r.PublicationYear == 0 {
			return ""
		}
		return strconv.Itoa(int(r.PublicationYear))
	}, opts.TopK)

	for _, rec := range group {
		if rec.InstitutionName != "" {
			row.HasInstitution = true
		}
		if rec.Subtype == opts.PreprintSubtype {
			row.PreprintWorks++
		}
	}
	row.InstitutionNameCount = distinctCount(group, func(r *canonical.Record) string { return r.InstitutionName })
	row.GroupTitleCount = distinctCount(group, func(r *canonical.Record) string { return r.GroupTitle })

	row.ExampleURLs = sampleUnique(group, func(r *canonical.Record) string { return r.PrimaryURL }, opts.ExamplesK)
	row.ExampleDOIs = sampleUnique(group, func(r *canonical.Record) string { return r.DOI }, opts.ExamplesK)

	for _, d := range Dimensions {
		values := distinctValues(group, d)
		row.Sharing[d] = sharing.ServersSharing(d, values)
	}

	return row
}

// topCounts formats a "value (count)" breakdown, most frequent first,
// value-ascending on ties so output is reproducible. Absent values count
// under the MISSING token.
func topCounts(group []*canonical.Record, get func(*canonical.Record) string, k int) []string {
	counts := make(map[string]int)
	for _, rec := range group {
		v := get(rec)
		if v == "" {
			v = MissingToken
		}
		counts[v]++
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	if k > 0 && len(values) > k {
		values = values[:k]
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%s (%d)", v, counts[v])
	}
	return out
}

func distinctCount(group []*canonical.Record, get func(*canonical.Record) string) int {
	seen := make(map[string]bool)
	for _, rec := range group {
		v := get(rec)
		if v == "" {
			v = MissingToken
		}
		seen[v] = true
	}
	return len(seen)
}

func distinctValues(group []*canonical.Record, d Dimension) []string {
	seen := make(map[string]bool)
	var values []string
	for _, rec := range group {
		v := dimensionValue(rec, d)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

// sampleUnique keeps the first k distinct non-empty values in batch order.
func sampleUnique(group []*canonical.Record, get func(*canonical.Record) string, k int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rec := range group {
		v := get(rec)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) >= k {
			break
		}
	}
	return out
}
