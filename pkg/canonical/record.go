// Package canonical defines the provider-independent record schema and the
// declarative adapters that project each provider's native batch shape into
// it. One Record is one provider-native work.
package canonical

import (
	"strings"

	"github.com/btraven00/taripaq/pkg/normalize"
)

// Backend identifies the upstream metadata provider a record came from.
type Backend string

const (
	BackendCrossref Backend = "crossref"
	BackendDataCite Backend = "datacite"
	BackendOpenAlex Backend = "openalex"
)

// unknownRank sorts unrecognized backends after every known provider.
const unknownRank = 999

// Rank returns the provider-preference position used when the same DOI
// appears in more than one backend. Lower wins.
func (b Backend) Rank() int {
	switch b {
	case BackendCrossref:
		return 0
	case BackendDataCite:
		return 1
	case BackendOpenAlex:
		return 2
	default:
		return unknownRank
	}
}

// Record is the wide canonical row shared by all providers. String fields
// use "" as the absent value; resolution fields stay zero until the rule
// cascade stamps them.
type Record struct {
	RecordID     string  `json:"record_id" parquet:"record_id,optional"`
	Backend      Backend `json:"backend" parquet:"backend"`
	SourceWorkID string  `json:"source_work_id,omitempty" parquet:"source_work_id,optional"`

	DOI    string `json:"doi,omitempty" parquet:"doi,optional"`
	DOIURL string `json:"doi_url,omitempty" parquet:"doi_url,optional"`
	Prefix string `json:"prefix,omitempty" parquet:"prefix,optional"`
	Member string `json:"member,omitempty" parquet:"member,optional"`
	// ClientID is the DataCite repository account; empty elsewhere.
	ClientID string `json:"client_id,omitempty" parquet:"client_id,optional"`

	Title           string `json:"title,omitempty" parquet:"title,optional"`
	Publisher       string `json:"publisher,omitempty" parquet:"publisher,optional"`
	GroupTitle      string `json:"group_title,omitempty" parquet:"group_title,optional"`
	InstitutionName string `json:"institution_name,omitempty" parquet:"institution_name,optional"`
	Type            string `json:"type,omitempty" parquet:"type,optional"`
	Subtype         string `json:"subtype,omitempty" parquet:"subtype,optional"`

	PrimaryURL          string `json:"primary_url,omitempty" parquet:"primary_url,optional"`
	PrimaryDomain       string `json:"primary_domain,omitempty" parquet:"primary_domain,optional"`
	PrimaryDomainExtend string `json:"primary_domain_extend,omitempty" parquet:"primary_domain_extend,optional"`
	DOIPrefixFirstToken string `json:"doi_prefix_first_token,omitempty" parquet:"doi_prefix_first_token,optional"`

	DateCreated     string `json:"date_created,omitempty" parquet:"date_created,optional"`
	DatePosted      string `json:"date_posted,omitempty" parquet:"date_posted,optional"`
	DateRegistered  string `json:"date_registered,omitempty" parquet:"date_registered,optional"`
	DatePublished   string `json:"date_published,omitempty" parquet:"date_published,optional"`
	PublicationYear int32  `json:"publication_year,omitempty" parquet:"publication_year,optional"`

	IsOA     *bool  `json:"is_oa,omitempty" parquet:"is_oa,optional"`
	OAStatus string `json:"oa_status,omitempty" parquet:"oa_status,optional"`

	// Candidate identities joined in from the curated lookup tables. They
	// may disagree; the resolver decides.
	DomainServerName string `json:"domain_server_name,omitempty" parquet:"domain_server_name,optional"`
	PrefixServerName string `json:"prefix_server_name,omitempty" parquet:"prefix_server_name,optional"`

	// Resolution outcome. A record is either untouched (all four zero) or
	// fully stamped by exactly one winning rule; LOW_CONFIDENCE_MANUAL
	// stamps status/confidence/rule but leaves the name absent.
	ValidatedServerName    string  `json:"validated_server_name,omitempty" parquet:"validated_server_name,optional"`
	ValidatedServerNameOld string  `json:"validated_server_name_old,omitempty" parquet:"validated_server_name_old,optional"`
	ValidationStatus       string  `json:"validation_status,omitempty" parquet:"validation_status,optional"`
	ConfidenceScore        float64 `json:"confidence_score,omitempty" parquet:"confidence_score,optional"`
	RuleID                 string  `json:"rule_id,omitempty" parquet:"rule_id,optional"`

	// ServerName/ServerID are the clean export identity: ServerName is the
	// corrected validated name, ServerID the backend-native account key
	// (DOI prefix, client_id, or source id).
	ServerName string `json:"server_name,omitempty" parquet:"server_name,optional"`
	ServerID   string `json:"server_id,omitempty" parquet:"server_id,optional"`
}

// Resolved reports whether the cascade assigned an identity to the record.
func (r *Record) Resolved() bool {
	return r.ValidatedServerName != ""
}

func doiURL(doi string) string {
	if doi == "" {
		return ""
	}
	return "https://doi.org/" + doi
}

func yearFromDate(d string) int32 {
	if len(d) < 4 {
		return 0
	}
	var y int32
	for _, c := range d[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		y = y*10 + int32(c-'0')
	}
	return y
}

// Derive fills the fields computed from other fields: normalized DOI and its
// URL, the registrant prefix fallback, the prefix/first-token grouping key,
// primary domain keys and the publication year. numericKeep <= 0 uses the
// default suffix truncation.
func (r *Record) Derive(numericKeep int) {
	if numericKeep <= 0 {
		numericKeep = normalize.DefaultNumericKeep
	}

	r.DOI = normalize.DOI(r.DOI)
	r.DOIURL = doiURL(r.DOI)

	r.Prefix = strings.ToLower(strings.TrimSpace(r.Prefix))
	if r.Prefix == "" {
		r.Prefix = normalize.DOIPrefix(r.DOI)
	}

	if r.DOI != "" {
		_, suffix := normalize.SplitDOI(r.DOI)
		if seg := normalize.SuffixFirstToken(suffix, numericKeep); seg != "" && r.Prefix != "" {
			r.DOIPrefixFirstToken = r.Prefix + "/" + seg
		}
	}

	if r.PrimaryURL == "" {
		r.PrimaryURL = r.DOIURL
	}
	r.PrimaryDomain = normalize.Domain(r.PrimaryURL)
	r.PrimaryDomainExtend = normalize.DomainExtend(r.PrimaryURL)

	if r.PublicationYear == 0 {
		for _, d := range []string{r.DatePublished, r.DatePosted, r.DateCreated} {
			if r.PublicationYear = yearFromDate(d); r.PublicationYear != 0 {
				break
			}
		}
	}

	r.RecordID = r.recordID()
}

func (r *Record) recordID() string {
	if r.Backend == BackendOpenAlex && r.SourceWorkID != "" {
		id := r.SourceWorkID
		if i := strings.LastIndex(id, "/"); i >= 0 {
			id = id[i+1:]
		}
		return string(r.Backend) + "::" + id
	}
	if r.DOI == "" {
		return ""
	}
	return string(r.Backend) + "::" + r.DOI
}
