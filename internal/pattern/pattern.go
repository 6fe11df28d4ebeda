// Package pattern compiles user-supplied URL and word filters.
//
// Filters use regular expression syntax with full-string semantics: the
// pattern "https://example.com/.*\.pdf" matches that whole URL and nothing
// that merely contains it.
package pattern

import (
	"fmt"
	"regexp"
)

// Compile compiles every expression anchored at both ends.
// The error names the first expression that does not compile.
func Compile(exprs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(`^(?:` + expr + `)$`)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", expr, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// MatchAny reports whether s matches any of patterns.
// An empty pattern list matches nothing.
func MatchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
