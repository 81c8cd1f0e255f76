package canonical

import "github.com/btraven00/taripaq/pkg/normalize"

// The three provider adapters below mirror each backend's native column
// names. Targets absent from a provider's metadata are simply not listed;
// the Derive step fills everything computable afterwards.

// CrossrefMapping adapts Crossref works. Crossref is DOI-centric: the DOI
// doubles as the work id and the registrant prefix as the server id.
func CrossrefMapping() Mapping {
	return Mapping{
		Backend: BackendCrossref,
		Fields: []FieldRule{
			{Target: "doi", Sources: []string{"doi"}, Transform: normalize.DOI},
			{Target: "source_work_id", Sources: []string{"doi"}, Transform: normalize.DOI},
			{Target: "prefix", Sources: []string{"prefix"}},
			{Target: "member", Sources: []string{"member"}},
			{Target: "title", Sources: []string{"title"}},
			{Target: "publisher", Sources: []string{"publisher"}},
			{Target: "group_title", Sources: []string{"group_title"}},
			{Target: "institution_name", Sources: []string{"institution_name"}},
			{Target: "type", Sources: []string{"type"}},
			{Target: "subtype", Sources: []string{"subtype"}},
			{Target: "primary_url", Sources: []string{"primary_url", "url"}},
			{Target: "date_created", Sources: []string{"created_date"}},
			{Target: "date_posted", Sources: []string{"posted_date"}},
			{Target: "date_published", Sources: []string{"published_date", "issued_date"}},
			{Target: "server_id", Sources: []string{"prefix"}},
		},
	}
}

// DataCiteMapping adapts DataCite works. The repository account (client_id)
// is the server id; its display name is filled during labeling from the
// clients catalog.
func DataCiteMapping() Mapping {
	return Mapping{
		Backend: BackendDataCite,
		Fields: []FieldRule{
			{Target: "doi", Sources: []string{"doi"}, Transform: normalize.DOI},
			{Target: "source_work_id", Sources: []string{"doi"}, Transform: normalize.DOI},
			{Target: "prefix", Sources: []string{"prefix"}},
			{Target: "client_id", Sources: []string{"client_id"}},
			{Target: "title", Sources: []string{"title"}},
			{Target: "publisher", Sources: []string{"publisher"}},
			{Target: "type", Sources: []string{"resource_type_general"}},
			{Target: "subtype", Sources: []string{"resource_type"}},
			{Target: "primary_url", Sources: []string{"url"}},
			{Target: "date_created", Sources: []string{"created"}},
			{Target: "date_registered", Sources: []string{"registered"}},
			{Target: "date_published", Sources: []string{"published"}},
			{Target: "server_name", Sources: []string{"server_name"}},
			{Target: "server_id", Sources: []string{"client_id"}},
		},
	}
}

// OpenAlexMapping adapts OpenAlex works. OpenAlex already resolves the
// hosting source, so server identity comes straight from the primary
// location rather than from the rule cascade.
func OpenAlexMapping() Mapping {
	return Mapping{
		Backend: BackendOpenAlex,
		Fields: []FieldRule{
			{Target: "doi", Sources: []string{"doi"}, Transform: normalize.DOI},
			{Target: "source_work_id", Sources: []string{"openalex_id", "id"}},
			{Target: "title", Sources: []string{"title", "display_name"}},
			{Target: "type", Sources: []string{"type"}},
			{Target: "primary_url", Sources: []string{"primary_location_landing_page_url"}},
			{Target: "date_published", Sources: []string{"publication_date"}},
			{Target: "is_oa", Sources: []string{"primary_location_is_oa"}},
			{Target: "oa_status", Sources: []string{"primary_location_oa_status"}},
			{Target: "server_name", Sources: []string{"primary_location_source_display_name"}},
			{Target: "server_id", Sources: []string{"primary_location_source_id"}},
		},
	}
}
