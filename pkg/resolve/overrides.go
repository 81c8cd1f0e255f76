package resolve

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overrides configures the R5 escape hatches: providers whose metadata
// shape makes the generic domain/prefix signals structurally unreliable.
// The lists are deliberately short and reviewed; they ship as data so they
// can change without touching the cascade.
type Overrides struct {
	// GroupTitleDomains hosts works for many repositories; the group title
	// field carries the real identity (R5a).
	GroupTitleDomains []string `yaml:"group_title_domains"`

	// InstitutionDomains are hosts where the institution field carries the
	// real identity (R5b).
	InstitutionDomains []string `yaml:"institution_domains"`

	// PlatformSuffix marks the multi-tenant publishing platform whose
	// sub-domain segment encodes the identity (R5c); PlatformMarker is
	// appended to the derived label.
	PlatformSuffix string `yaml:"platform_suffix"`
	PlatformMarker string `yaml:"platform_marker"`

	// PrefixOverrideDomains trust the prefix candidate outright (R5d).
	PrefixOverrideDomains []string `yaml:"prefix_override_domains"`

	// DomainOverrideDomains trust the domain candidate outright (R5e).
	DomainOverrideDomains []string `yaml:"domain_override_domains"`

	// PrefixOverrideTokens are doi_prefix_first_token keys whose prefix
	// candidate is trusted outright (R5f).
	PrefixOverrideTokens []string `yaml:"prefix_override_tokens"`
}

// DefaultOverrides returns the curated override lists.
func DefaultOverrides() Overrides {
	return Overrides{
		GroupTitleDomains: []string{"osf.io", "ams.org"},

		InstitutionDomains: []string{"preprints.ibict.br"},

		PlatformSuffix: ".pubpub.org",
		PlatformMarker: "(PubPub)",

		PrefixOverrideDomains: []string{
			"vimeo.com",
			"experience.arcgis.com",
			"researchcatalogue.net",
			"cambridge.org",
			"scholarcommons.usf.edu",
		},

		DomainOverrideDomains: []string{
			"biorxiv.org",
			"engrxiv.org",
			"eartharxiv.org",
			"saemobilus.sae.org",
			"21docs.com",
			"ecoevorxiv.org",
			"datacite.org",
			"protocols.io",
			"jsr.org",
			"crossref.org",
			"ihp-wins-dev.geo-solutions.it",
			"techrxiv.org",
		},

		PrefixOverrideTokens: []string{
			"10.25159/unisarxiv",
			"10.54120/jost",
			"10.22541/21docs",
			"10.5194/hess-",
			"10.5194/amt-",
			"10.14293/11",
			"10.14293/newpsychology",
			"10.35948/crusca",
			"10.47952/gro-publ-",
			"10.15763/11",
			"10.22541/techrxiv",
			"10.1590/scielopreprintstest",
			"10.5555/dspace",
		},
	}
}

// LoadOverrides reads an override configuration from a YAML file. Fields
// left empty fall back to the curated defaults so a partial file only
// replaces the lists it names.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to read overrides: %w", err)
	}

	o := Overrides{}
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overrides{}, fmt.Errorf("failed to parse overrides %s: %w", path, err)
	}

	def := DefaultOverrides()
	if o.GroupTitleDomains == nil {
		o.GroupTitleDomains = def.GroupTitleDomains
	}
	if o.InstitutionDomains == nil {
		o.InstitutionDomains = def.InstitutionDomains
	}
	if o.PlatformSuffix == "" {
		o.PlatformSuffix = def.PlatformSuffix
	}
	if o.PlatformMarker == "" {
		o.PlatformMarker = def.PlatformMarker
	}
	if o.PrefixOverrideDomains == nil {
		o.PrefixOverrideDomains = def.PrefixOverrideDomains
	}
	if o.DomainOverrideDomains == nil {
		o.DomainOverrideDomains = def.DomainOverrideDomains
	}
	if o.PrefixOverrideTokens == nil {
		o.PrefixOverrideTokens = def.PrefixOverrideTokens
	}

	return o, nil
}
