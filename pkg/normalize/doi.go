package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// doiCoreRe matches the registrant prefix plus suffix anywhere inside a bare
// DOI, a "doi:" URI, or a resolver URL.
var doiCoreRe = regexp.MustCompile(`10\.\d{4,9}/\S+`)

var (
	doiPartsRe    = regexp.MustCompile(`^(10\.\d{4,9})/(.+)$`)
	letterRunRe   = regexp.MustCompile(`^[a-z-]+`)
	alnumRunRe    = regexp.MustCompile(`^[a-z0-9-]+`)
	numericOnlyRe = regexp.MustCompile(`^\d+$`)
)

// DefaultNumericKeep is the truncation length for purely numeric suffix
// first segments; it keeps registrants that encode sequence numbers in the
// DOI suffix from fragmenting into one token per work.
const DefaultNumericKeep = 2

// DOI extracts and case-folds a DOI from arbitrary input. Accepts bare DOIs,
// "doi:" URIs and resolver URLs; returns "" when nothing DOI-shaped is found.
func DOI(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = strings.ToLower(norm.NFKC.String(s))

	if m := doiCoreRe.FindString(s); m != "" {
		return m
	}
	if strings.HasPrefix(s, "10.") && strings.Contains(s, "/") {
		return s
	}

	return ""
}

// SplitDOI splits a normalized DOI into registrant prefix and suffix.
func SplitDOI(doi string) (prefix, suffix string) {
	m := doiPartsRe.FindStringSubmatch(doi)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// DOIPrefix returns the registrant prefix of a normalized DOI, or "".
func DOIPrefix(doi string) string {
	prefix, _ := SplitDOI(doi)
	return prefix
}

// SuffixFirstToken derives the first segment of a DOI suffix. Suffixes that
// start with a letter contribute their leading alphabetic run; anything else
// contributes the text before the first separator (. - _ / : or whitespace).
// Purely numeric segments are truncated to numericKeep characters
// (numericKeep <= 0 disables truncation).
func SuffixFirstToken(suffix string, numericKeep int) string {
	if suffix == "" {
		return ""
	}

	var seg string

	if suffix[0] >= 'a' && suffix[0] <= 'z' {
		run := letterRunRe.FindString(suffix)
		rest := suffix[len(run):]
		if rest == "" || isDigit(rest[0]) || strings.ContainsRune(".-_/:", rune(rest[0])) {
			seg = run
		}
		// The alphanumeric fallback only applies to letter-initial
		// suffixes; separator-initial ones stay tokenless.
		if seg == "" {
			seg = alnumRunRe.FindString(suffix)
		}
	} else {
		seg = splitFirst(suffix)
	}

	if seg == "" {
		return ""
	}

	if numericKeep > 0 && numericOnlyRe.MatchString(seg) && len(seg) > numericKeep {
		seg = seg[:numericKeep]
	}

	return seg
}

// DOIPrefixFirstToken builds the "prefix/first-token" grouping key used for
// the prefix rule table, e.g. "10.1101/2024" or "10.31234/osf".
func DOIPrefixFirstToken(doi string, numericKeep int) string {
	prefix, suffix := SplitDOI(doi)
	if prefix == "" {
		return ""
	}

	seg := SuffixFirstToken(suffix, numericKeep)
	if seg == "" {
		return ""
	}

	return prefix + "/" + seg
}

func splitFirst(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool {
		switch r {
		case '.', '-', '_', '/', ':', ' ', '\t', '\n', '\v', '\f', '\r':
			return true
		}
		return false
	})
	if i < 0 {
		return s
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
