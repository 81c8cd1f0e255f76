// Package normalize turns free-text identity signals (repository names,
// institution strings, DOIs, landing-page URLs) into comparable tokens.
// Every function here is total: malformed or empty input maps to the empty
// string, never to an error.
package normalize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes compatibility forms and drops combining marks, so
// "Universität" and "Universitat" compare equal after folding.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Name normalizes a free-text identity hint for substring comparison:
// accent-folded, lowercased, punctuation runs collapsed to single spaces,
// whitespace collapsed, trimmed. Idempotent.
func Name(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(asciiFold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case r > unicode.MaxASCII:
			// dropped, like the accent fold's leftovers
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Domain extracts the host portion of a landing-page URL, lowercased and
// with a leading "www." stripped. Returns "" for unparseable input or URLs
// without a host.
func Domain(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(u.Host, "www.")
}

// DomainExtend returns host plus the first path segment ("osf.io/preprints"),
// a finer-grained grouping key for shared hosting platforms. Falls back to
// the bare host when the path is empty.
func DomainExtend(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(strings.ToLower(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.TrimPrefix(u.Host, "www.")

	parts := strings.FieldsFunc(u.Path, func(r rune) bool {
		return r == '/' || r == '='
	})
	if len(parts) == 0 || parts[0] == "" {
		return host
	}

	return host + "/" + parts[0]
}
