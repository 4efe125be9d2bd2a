// Package matcher decides which new file names are published, using glob
// or regular-expression patterns.
package matcher

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/shotwatch/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from the pattern itself.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher reports whether a file name matches one pattern.
type Matcher interface {
	Match(name string) bool
	Pattern() string
	Type() PatternType
}

// Options configures matching.
type Options struct {
	// CaseInsensitive folds case before comparing. Screenshot extensions
	// vary in case across tools, so Set uses it by default.
	CaseInsensitive bool
}

type matcher struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
	foldCase    bool
}

// New compiles pattern. Patterns are matched against the base file name only.
func New(patternType PatternType, pattern string, opts *Options) (Matcher, error) {
	if opts == nil {
		opts = &Options{}
	}
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	m := &matcher{pattern: pattern, patternType: patternType, foldCase: opts.CaseInsensitive}

	switch patternType {
	case Glob:
		m.glob = pattern
		if m.foldCase {
			m.glob = strings.ToLower(pattern)
		}
		if _, err := filepath.Match(m.glob, ""); err != nil {
			return nil, errors.NewValidationError("pattern", pattern, "invalid glob: "+err.Error())
		}
	case Regex:
		expr := pattern
		if m.foldCase && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.NewValidationError("pattern", pattern, "invalid regex: "+err.Error())
		}
		m.compiled = compiled
	default:
		return nil, errors.NewValidationError("pattern_type", patternType, "unsupported")
	}
	return m, nil
}

func (m *matcher) Match(name string) bool {
	if m.patternType == Regex {
		return m.compiled.MatchString(name)
	}
	if m.foldCase {
		name = strings.ToLower(name)
	}
	ok, _ := filepath.Match(m.glob, name)
	return ok
}

func (m *matcher) Pattern() string   { return m.pattern }
func (m *matcher) Type() PatternType { return m.patternType }

// detectPatternType treats anything with regex-only syntax as a regex and
// everything else as a glob.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{
		"^", "$", `\d`, `\w`, `\s`, "(?", "{", "}", "+", "|", "(", ")",
	} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Set matches a name if any of its patterns match. An empty Set matches
// every name.
type Set struct {
	matchers []Matcher
}

// NewSet compiles patterns with auto-detected types and case folding.
// Blank patterns are skipped.
func NewSet(patterns []string) (*Set, error) {
	s := &Set{}
	var errs []error
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		m, err := New(Auto, p, &Options{CaseInsensitive: true})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.matchers = append(s.matchers, m)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// Match reports whether name passes the set.
func (s *Set) Match(name string) bool {
	if s == nil || len(s.matchers) == 0 {
		return true
	}
	for _, m := range s.matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the compiled patterns in order.
func (s *Set) Patterns() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.matchers))
	for i, m := range s.matchers {
		out[i] = m.Pattern()
	}
	return out
}

// SplitList splits a separated pattern list from configuration. Commas and
// semicolons both separate entries.
func SplitList(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';'
	})
}
