package test

// Shared fixtures for the end-to-end tests: one small harvest per provider
// plus the two curated rule tables, shaped exactly like the real inputs.

// DomainRulesCSV is a minimal primary_domain rule table.
const DomainRulesCSV = `Field_primary_domain_ok,domain_server_name
biorxiv.org,bioRxiv
osf.io,Open Science Framework
eartharxiv.org,EarthArXiv
clash.example.org,Alpha Preprints
`

// PrefixRulesCSV is a minimal doi_prefix_first_token rule table.
const PrefixRulesCSV = `Field_doi_prefix_first_token,prefix_server_name
10.1101/20,bioRxiv
10.31234/osf,PsyArXiv
10.31223/x,EarthArXiv
10.4444/beta,Beta Archive
`

// CrossrefBatchCSV holds one record per interesting cascade path: a strong
// match, an OSF work resolved by group title, a conflicted record bound for
// manual review, and a journal article for the subtype filter.
const CrossrefBatchCSV = `doi,prefix,member,title,publisher,group_title,institution_name,type,subtype,primary_url,posted_date
10.1101/2024.01.12.575796,10.1101,246,Strong match work,bioRxiv,,,posted-content,preprint,https://www.biorxiv.org/content/10.1101/2024.01.12.575796,2024-01-12
10.31234/osf.io/abcde,10.31234,15934,Platform work,Center for Open Science,PsyArXiv,,posted-content,preprint,https://osf.io/abcde,2023-06-01
10.4444/beta.7,10.4444,99,Conflicted work,Unrelated Press,,,posted-content,preprint,https://clash.example.org/papers/7,2022-02-02
10.9999/journal.1,10.9999,1,Journal article,Some Journal,,,journal-article,journal-article,https://journal.example.org/1,2021-01-01
`

// DataCiteBatchCSV overlaps one DOI with the Crossref batch so the merge
// step has a duplicate to drop, and carries a provider-native server name.
const DataCiteBatchCSV = `doi,prefix,client_id,title,publisher,resource_type_general,resource_type,url,published
10.1101/2024.01.12.575796,10.1101,cshl.biorxiv,Strong match work,bioRxiv,Text,Preprint,https://www.biorxiv.org/content/10.1101/2024.01.12.575796,2024-01-12
10.31223/x5abc1,10.31223,caltech.eartharxiv,EarthArXiv work,California Institute of Technology,Text,Preprint,https://eartharxiv.org/repository/view/100/,2023-03-03
`

// OpenAlexBatchCSV contributes one DOI-less record (dropped by the merge)
// and one already carrying a resolved source.
const OpenAlexBatchCSV = `openalex_id,doi,title,publication_date,primary_location_is_oa,primary_location_oa_status,primary_location_source_display_name,primary_location_source_id,primary_location_landing_page_url
https://openalex.org/W1,10.31234/osf.io/abcde,Platform work,2023-06-01,true,green,PsyArXiv,https://openalex.org/S1,https://osf.io/abcde
https://openalex.org/W2,,Orphan work,2020-05-05,false,closed,,,
`
