// Package analyze builds the diagnostic views a curator needs to refine the
// rule tables: signal-sharing maps and per-group summary tables over a fully
// resolved record set. The input batch is treated as immutable.
package analyze

import (
	"sort"

	"github.com/btraven00/taripaq/pkg/canonical"
)

// Dimension names an identity-bearing signal that two resolved servers can
// share. Sharing a dimension value across identities is the primary hint
// that a rule-table entry is colliding or two labels are the same server.
type Dimension string

const (
	DimPrefix              Dimension = "prefix"
	DimMember              Dimension = "member"
	DimPrimaryDomain       Dimension = "primary_domain"
	DimGroupTitle          Dimension = "group_title"
	DimInstitutionName     Dimension = "institution_name"
	DimDOIPrefixFirstToken Dimension = "doi_prefix_first_token"
)

// Dimensions lists every sharing dimension in report order.
var Dimensions = []Dimension{
	DimPrefix,
	DimMember,
	DimPrimaryDomain,
	DimGroupTitle,
	DimInstitutionName,
	DimDOIPrefixFirstToken,
}

func dimensionValue(rec *canonical.Record, d Dimension) string {
	switch d {
	case DimPrefix:
		return rec.Prefix
	case DimMember:
		return rec.Member
	case DimPrimaryDomain:
		return rec.PrimaryDomain
	case DimGroupTitle:
		return rec.GroupTitle
	case DimInstitutionName:
		return rec.InstitutionName
	case DimDOIPrefixFirstToken:
		return rec.DOIPrefixFirstToken
	}
	return ""
}

// SharingMaps indexes, per dimension, each observed signal value to the
// sorted set of distinct resolved server names that co-occur with it.
// Built once per analysis run; read-only afterwards.
type SharingMaps map[Dimension]map[string][]string

// BuildSharingMaps scans a resolved batch. Records without a resolved name
// contribute nothing; absent signal values are skipped.
func BuildSharingMaps(records []canonical.Record) SharingMaps {
	sets := make(map[Dimension]map[string]map[string]bool, len(Dimensions))
	for _, d := range Dimensions {
		sets[d] = make(map[string]map[string]bool)
	}

	for i := range records {
		rec := &records[i]
		name := rec.ValidatedServerName
		if name == "" {
			continue
		}
		for _, d := range Dimensions {
			val := dimensionValue(rec, d)
			if val == "" {
				continue
			}
			if sets[d][val] == nil {
				sets[d][val] = make(map[string]bool)
			}
			sets[d][val][name] = true
		}
	}

	maps := make(SharingMaps, len(Dimensions))
	for d, byValue := range sets {
		maps[d] = make(map[string][]string, len(byValue))
		for val, names := range byValue {
			maps[d][val] = sortedKeys(names)
		}
	}

	return maps
}

// ServersSharing returns the sorted union of resolved server names that
// share any of the given signal values along one dimension.
func (m SharingMaps) ServersSharing(d Dimension, values []string) []string {
	union := make(map[string]bool)
	for _, val := range values {
		for _, name := range m[d][val] {
			union[name] = true
		}
	}
	if len(union) == 0 {
		return nil
	}
	return sortedKeys(union)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
