package roster

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// Canonical normalizes a person's name into the identity key used to match
// the same person across sources. The normalization is idempotent and
// insensitive to case, surrounding whitespace, parenthetical notes, middle
// names and a trailing plural "s".
func Canonical(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ToLower(s)
	s = parenthetical.ReplaceAllString(s, " ")

	tokens := strings.Fields(s)
	if len(tokens) > 2 {
		tokens = []string{tokens[0], tokens[len(tokens)-1]}
	}

	if n := len(tokens); n > 0 {
		if singular := strings.TrimRight(tokens[n-1], "s"); singular != "" {
			tokens[n-1] = singular
		}
	}

	s = strings.Join(tokens, " ")

	// "anne -marie" style spacing around hyphens collapses to a plain
	// hyphenated name.
	s = strings.ReplaceAll(s, " - ", "-")
	s = strings.ReplaceAll(s, " -", "-")

	return s
}
