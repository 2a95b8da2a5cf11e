package classify

import (
	"fmt"
	"regexp"

	"snakewatch/internal/textnorm"
)

// defaultCommonNames covers the common-name spellings (and common misspellings)
// seen in the group feed.
var defaultCommonNames = []string{
	`philippine\s+cobra`,
	`philippines\s+cobra`,
	`phillipine\s+cobra`,
	`ph\s+cobra`,
	`samar\s+cobra`,
	`king\s+cobra`,
	`philippine\s+spitting\s+cobra`,
}

// defaultScientificNames covers binomials plus loose genus-only mentions with
// optional parenthesization ("Naja sp." / "(Naja spp.)").
var defaultScientificNames = []string{
	`naja\s+philippinensis`,
	`naja\s+samarensis`,
	`ophiophagus\s+hannah`,
	`\(?\s*naja\s*sp\.?\s*\)?`,
	`\(?\s*naja\s*spp\.?\s*\)?`,
}

// DefaultTargetExpressions returns the built-in target pattern source strings.
func DefaultTargetExpressions() []string {
	out := make([]string, 0, len(defaultCommonNames)+len(defaultScientificNames))
	out = append(out, defaultCommonNames...)
	out = append(out, defaultScientificNames...)
	return out
}

// Targets is an ordered set of compiled case-insensitive target patterns.
type Targets struct {
	patterns []*regexp.Regexp
}

// CompileTargets compiles the given expressions case-insensitively. Empty
// input falls back to the built-in species list.
func CompileTargets(exprs []string) (Targets, error) {
	if len(exprs) == 0 {
		exprs = DefaultTargetExpressions()
	}
	patterns := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(`(?i)` + expr)
		if err != nil {
			return Targets{}, fmt.Errorf("compile target pattern %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return Targets{patterns: patterns}, nil
}

// MustCompileTargets is CompileTargets for known-good expressions.
func MustCompileTargets(exprs []string) Targets {
	t, err := CompileTargets(exprs)
	if err != nil {
		panic(err)
	}
	return t
}

// Match reports whether any pattern matches anywhere in the normalized text.
func (t Targets) Match(text string) bool {
	if text == "" {
		return false
	}
	normalized := textnorm.Normalize(text)
	for _, re := range t.patterns {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Empty reports whether no patterns are configured.
func (t Targets) Empty() bool {
	return len(t.patterns) == 0
}
