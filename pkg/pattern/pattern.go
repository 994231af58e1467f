// Package pattern translates glob-style file patterns into match predicates.
//
// A pattern is a literal string in which '*' stands for zero or more of any
// character. Every other character matches itself, including characters that
// carry meaning in regular expressions. Matching is a search, not a full-string
// match: "apk" matches "app.apk" and "apk-tools.zip" alike.
//
//	m, _ := pattern.Compile("*v8a*")
//	m.Match("termux/termux-app/releases/download/v0.118.0/termux-app_arm64-v8a.apk") // true
//
// The empty pattern matches every candidate.
package pattern

import (
	"regexp"
	"strings"
)

// Matcher is a compiled glob pattern.
type Matcher struct {
	glob string
	re   *regexp.Regexp // nil for the empty pattern
}

// Compile translates glob into a Matcher.
func Compile(glob string) (*Matcher, error) {
	if glob == "" {
		return &Matcher{}, nil
	}
	re, err := regexp.Compile(translate(glob))
	if err != nil {
		return nil, err
	}
	return &Matcher{glob: glob, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(glob string) *Matcher {
	m, err := Compile(glob)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether candidate contains a match of the pattern.
func (m *Matcher) Match(candidate string) bool {
	if m.re == nil {
		return true
	}
	return m.re.MatchString(candidate)
}

// String returns the original glob.
func (m *Matcher) String() string { return m.glob }

// Filter returns the candidates that match, preserving order.
func (m *Matcher) Filter(candidates []string) []string {
	var out []string
	for _, c := range candidates {
		if m.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Match reports whether candidate matches glob. Invalid patterns never match.
func Match(glob, candidate string) bool {
	m, err := Compile(glob)
	if err != nil {
		return false
	}
	return m.Match(candidate)
}

// translate escapes every literal run and joins the runs with ".*".
func translate(glob string) string {
	parts := strings.Split(glob, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, ".*")
}
