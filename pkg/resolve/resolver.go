// Package resolve implements the precedence-ordered rule cascade that picks
// one authoritative server name for a canonical record from its candidate
// identities and free-text hints, plus the static correction layer applied
// afterwards.
package resolve

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/btraven00/taripaq/pkg/canonical"
	"github.com/btraven00/taripaq/pkg/normalize"
)

// Status is the validation tier attached to a resolved record.
type Status string

const (
	StatusMatchStrong            Status = "MATCH_STRONG"
	StatusMatchWeak              Status = "MATCH_WEAK"
	StatusMatchDomain            Status = "MATCH_DOMAIN"
	StatusMatchPrefix            Status = "MATCH_PREFIX"
	StatusLowConfidenceManual    Status = "LOW_CONFIDENCE_MANUAL"
	StatusRule5GroupTitle        Status = "MATCH_RULE5_GROUP_TITLE"
	StatusRule5Institution       Status = "MATCH_RULE5_INSTITUTION"
	StatusRule5PubPub            Status = "MATCH_RULE5_PUBPUB"
	StatusRule5PrefixOverride    Status = "MATCH_RULE5_PREFIX_OVERRIDE"
	StatusRule5DomainOverride    Status = "MATCH_RULE5_DOMAIN_OVERRIDE"
	StatusRule5DOIPrefixOverride Status = "MATCH_RULE5_DOI_PREFIX_OVERRIDE"
)

// Rule identifiers, in precedence order.
const (
	RuleMatchStrong       = "R1_MATCH_STRONG"
	RuleMatchWeak         = "R2_MATCH_WEAK"
	RuleMatchDomain       = "R3_MATCH_DOMAIN"
	RuleMatchPrefix       = "R3_MATCH_PREFIX"
	RuleLowConfidence     = "R4_LOW_CONFIDENCE"
	RuleGroupTitle        = "R5A_GROUP_TITLE"
	RuleInstitution       = "R5B_INSTITUTION"
	RulePubPub            = "R5C_PUBPUB"
	RulePrefixOverride    = "R5D_PREFIX_OVERRIDE"
	RuleDomainOverride    = "R5E_DOMAIN_OVERRIDE"
	RuleDOIPrefixOverride = "R5F_DOI_PREFIX_OVERRIDE"
)

// Confidence scores per tier. Agreement corroborated by free text beats the
// provider-specific overrides, which beat single-signal corroboration,
// which beats uncorroborated agreement.
const (
	ConfidenceStrong     = 1.0
	ConfidenceOverride   = 0.98
	ConfidenceOverride2  = 0.97
	ConfidenceSingleSide = 0.9
	ConfidenceWeak       = 0.8
	ConfidenceManual     = 0.3
)

// Outcome is the result of running the cascade over one record.
type Outcome struct {
	ServerName string  `json:"server_name,omitempty"`
	Status     Status  `json:"status,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	RuleID     string  `json:"rule_id,omitempty"`
}

// Resolver applies the rule cascade. The override lists are explicit
// configuration so they can be versioned and tested independently of the
// algorithm.
type Resolver struct {
	overrides Overrides

	groupTitleDomains  map[string]bool
	institutionDomains map[string]bool
	prefixDomains      map[string]bool
	domainDomains      map[string]bool
	prefixTokens       map[string]bool
}

// New builds a Resolver from an override configuration.
func New(o Overrides) *Resolver {
	return &Resolver{
		overrides:          o,
		groupTitleDomains:  toSet(o.GroupTitleDomains),
		institutionDomains: toSet(o.InstitutionDomains),
		prefixDomains:      toSet(o.PrefixOverrideDomains),
		domainDomains:      toSet(o.DomainOverrideDomains),
		prefixTokens:       toSet(o.PrefixOverrideTokens),
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = true
		}
	}
	return set
}

// signals holds the ephemeral normalized tokens for one record.
type signals struct {
	domain, prefix string
	hints          [3]string // group title, institution, publisher

	matchDomain, matchPrefix bool
}

func (r *Resolver) signalsFor(rec *canonical.Record) signals {
	s := signals{
		domain: normalize.Name(rec.DomainServerName),
		prefix: normalize.Name(rec.PrefixServerName),
		hints: [3]string{
			normalize.Name(rec.GroupTitle),
			normalize.Name(rec.InstitutionName),
			normalize.Name(rec.Publisher),
		},
	}
	s.matchDomain = corroborated(s.domain, s.hints)
	s.matchPrefix = corroborated(s.prefix, s.hints)
	return s
}

// corroborated reports whether any free-text hint contains the candidate
// identity as a substring.
func corroborated(candidate string, hints [3]string) bool {
	if candidate == "" {
		return false
	}
	for _, h := range hints {
		if h != "" && strings.Contains(h, candidate) {
			return true
		}
	}
	return false
}

// Resolve runs the cascade over one record and stamps the outcome onto it.
// Rules are evaluated in strict precedence order with an unresolved guard:
// whichever rule assigns a name first wins. The platform rules R5a/R5b run
// unconditionally and may overwrite an earlier winner because they encode
// provider-specific ground truth; R5c-R5f only fire while no name is
// assigned, which means R4's manual-review stamp can still be superseded.
func (r *Resolver) Resolve(rec *canonical.Record) Outcome {
	s := r.signalsFor(rec)

	sameCandidates := s.domain != "" && s.prefix != "" && s.domain == s.prefix
	diffCandidates := s.domain != "" && s.prefix != "" && s.domain != s.prefix

	// R1: both candidates agree and free text corroborates.
	if !rec.Resolved() && sameCandidates && (s.matchDomain || s.matchPrefix) {
		stamp(rec, Outcome{rec.DomainServerName, StatusMatchStrong, ConfidenceStrong, RuleMatchStrong})
	}

	// R2: agreement between two independently derived candidates outweighs
	// the lack of textual corroboration.
	if !rec.Resolved() && sameCandidates {
		stamp(rec, Outcome{rec.DomainServerName, StatusMatchWeak, ConfidenceWeak, RuleMatchWeak})
	}

	// R3: candidates differ and exactly one is corroborated.
	if !rec.Resolved() && diffCandidates && s.matchDomain && !s.matchPrefix {
		stamp(rec, Outcome{rec.DomainServerName, StatusMatchDomain, ConfidenceSingleSide, RuleMatchDomain})
	}
	if !rec.Resolved() && diffCandidates && s.matchPrefix && !s.matchDomain {
		stamp(rec, Outcome{rec.PrefixServerName, StatusMatchPrefix, ConfidenceSingleSide, RuleMatchPrefix})
	}

	// R4: true ambiguity is deferred to a human, never guessed. The name
	// stays absent so the record remains eligible for the R5 overrides.
	if !rec.Resolved() && diffCandidates && !s.matchDomain && !s.matchPrefix {
		stamp(rec, Outcome{"", StatusLowConfidenceManual, ConfidenceManual, RuleLowConfidence})
	}

	// R5a: shared platforms where the group title is the true identity.
	// Evaluated regardless of prior resolution state.
	if r.groupTitleDomains[rec.PrimaryDomain] && rec.GroupTitle != "" {
		stamp(rec, Outcome{rec.GroupTitle, StatusRule5GroupTitle, ConfidenceOverride, RuleGroupTitle})
	}

	// R5b: hosts where the institution field is the true identity. Also
	// evaluated unconditionally.
	if r.institutionDomains[rec.PrimaryDomain] && rec.InstitutionName != "" {
		stamp(rec, Outcome{rec.InstitutionName, StatusRule5Institution, ConfidenceOverride, RuleInstitution})
	}

	// R5c: publishing platform where the sub-domain encodes the identity.
	if !rec.Resolved() && r.overrides.PlatformSuffix != "" &&
		strings.HasSuffix(rec.PrimaryDomain, r.overrides.PlatformSuffix) {
		if label := r.platformLabel(rec); label != "" {
			stamp(rec, Outcome{label, StatusRule5PubPub, ConfidenceOverride, RulePubPub})
		}
	}

	// R5d: domains where the prefix candidate is trusted outright.
	if !rec.Resolved() && r.prefixDomains[rec.PrimaryDomain] && rec.PrefixServerName != "" {
		stamp(rec, Outcome{rec.PrefixServerName, StatusRule5PrefixOverride, ConfidenceOverride2, RulePrefixOverride})
	}

	// R5e: domains where the domain candidate is trusted outright.
	if !rec.Resolved() && r.domainDomains[rec.PrimaryDomain] && rec.DomainServerName != "" {
		stamp(rec, Outcome{rec.DomainServerName, StatusRule5DomainOverride, ConfidenceOverride2, RuleDomainOverride})
	}

	// R5f: prefix/first-token keys where the prefix candidate is trusted.
	if !rec.Resolved() && r.prefixTokens[rec.DOIPrefixFirstToken] && rec.PrefixServerName != "" {
		stamp(rec, Outcome{rec.PrefixServerName, StatusRule5DOIPrefixOverride, ConfidenceOverride2, RuleDOIPrefixOverride})
	}

	return Outcome{
		ServerName: rec.ValidatedServerName,
		Status:     Status(rec.ValidationStatus),
		Confidence: rec.ConfidenceScore,
		RuleID:     rec.RuleID,
	}
}

// platformLabel builds the display identity for a platform-hosted record:
// the group title when present, otherwise the title-cased first sub-domain
// segment, suffixed with the platform marker.
func (r *Resolver) platformLabel(rec *canonical.Record) string {
	label := strings.TrimSpace(rec.GroupTitle)
	if label == "" {
		sub := strings.TrimSuffix(rec.PrimaryDomain, r.overrides.PlatformSuffix)
		if i := strings.Index(sub, "."); i >= 0 {
			sub = sub[:i]
		}
		sub = strings.NewReplacer("-", " ", "_", " ").Replace(sub)
		label = strings.TrimSpace(sub)
	}
	if label == "" {
		return ""
	}
	// cases.Caser carries transformer state, so a fresh one per call keeps
	// ResolveAll safe to run from concurrent record partitions.
	return cases.Title(language.English).String(label) + " " + r.overrides.PlatformMarker
}

// stamp writes an outcome onto the record. All four fields move together;
// a record is never left half-stamped.
func stamp(rec *canonical.Record, o Outcome) {
	rec.ValidatedServerName = o.ServerName
	rec.ValidationStatus = string(o.Status)
	rec.ConfidenceScore = o.Confidence
	rec.RuleID = o.RuleID
}

// ResolveAll runs the cascade over a batch sequentially. Rule evaluation
// for a single record is never split across goroutines; callers wanting
// parallelism partition records, not rules.
func (r *Resolver) ResolveAll(records []canonical.Record) {
	for i := range records {
		r.Resolve(&records[i])
	}
}
