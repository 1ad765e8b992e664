// Package identity contains the pure rules for turning member display names
// into contact identifiers. This is part of the Functional Core - no I/O.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// digraphs are replaced before the generic decomposition pass so that German
// umlauts keep their conventional spelling in mail addresses.
var digraphs = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Normalize lower-cases text, spells out umlauts, strips any remaining
// non-ASCII rune after NFKD decomposition and trims surrounding whitespace.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = digraphs.Replace(text)

	// The chain is stateful, build one per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(isNonASCII)))
	out, _, err := transform.String(t, text)
	if err != nil {
		out = strings.Map(func(r rune) rune {
			if isNonASCII(r) {
				return -1
			}
			return r
		}, text)
	}
	return strings.TrimSpace(out)
}

func isNonASCII(r rune) bool {
	return r > unicode.MaxASCII
}

// SplitDisplayName splits a "Last, First" display name on its first comma.
// ok is false when the name has no comma.
func SplitDisplayName(name string) (last, first string, ok bool) {
	last, first, ok = strings.Cut(name, ",")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(last), strings.TrimSpace(first), true
}

// FallbackAddress derives {first}.{last}@{domain} from a "Last, First"
// display name. ok is false when no address can be derived.
func FallbackAddress(name, domain string) (string, bool) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return "", false
	}
	last, first, ok := SplitDisplayName(name)
	if !ok {
		return "", false
	}
	last, first = Normalize(last), Normalize(first)
	if last == "" || first == "" {
		return "", false
	}
	return first + "." + last + "@" + domain, true
}

// FallbackTag is the plain-text name used when a member cannot be mentioned:
// the part after the last comma, or the whole name when there is none.
func FallbackTag(name string) string {
	if i := strings.LastIndex(name, ","); i >= 0 {
		if tag := strings.TrimSpace(name[i+1:]); tag != "" {
			return tag
		}
	}
	return strings.TrimSpace(name)
}
