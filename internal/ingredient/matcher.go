// Package ingredient matches user ingredient terms against raw recipe ingredient lines.
//
// Matching is substring containment over normalized text: both the line and the
// term are lowercased, every non-alphanumeric rune becomes a space and runs of
// whitespace collapse to one. Lines are never tokenized, so "avocado" matches
// "1 ripe avocado, peeled".
package ingredient

import (
	"strings"
	"unicode"
)

// NormalizeTerm lowercases s, replaces non-alphanumerics with spaces and collapses whitespace.
func NormalizeTerm(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, strings.ToLower(s))
	return strings.Join(strings.Fields(mapped), " ")
}

// Lines is the normalized ingredient line store of one recipe.
type Lines []string

// NormalizeLines normalizes every raw line. Order is preserved.
func NormalizeLines(raw []string) Lines {
	lines := make(Lines, len(raw))
	for i, l := range raw {
		lines[i] = NormalizeTerm(l)
	}
	return lines
}

// Contains reports whether any line contains any of the alternatives.
func (l Lines) Contains(alternatives []string) bool {
	for _, line := range l {
		for _, alt := range alternatives {
			if strings.Contains(line, alt) {
				return true
			}
		}
	}
	return false
}

// TermSet is a deduplicated set of user terms, each expanded to its alternatives.
type TermSet struct {
	terms  []string
	groups [][]string
}

// Len returns the number of distinct terms.
func (s TermSet) Len() int { return len(s.terms) }

// IsEmpty reports whether the set has no terms.
func (s TermSet) IsEmpty() bool { return len(s.terms) == 0 }

// Terms returns the distinct normalized terms in first-seen order.
func (s TermSet) Terms() []string { return s.terms }

// Matcher expands user terms into TermSets.
type Matcher struct {
	aliases bool
}

// NewMatcher creates a Matcher. When aliases is true every term also matches
// the other members of its synonym group.
func NewMatcher(aliases bool) *Matcher {
	return &Matcher{aliases: aliases}
}

// Expand returns the normalized alternatives of a single term. Empty terms yield nil.
func (m *Matcher) Expand(term string) []string {
	n := NormalizeTerm(term)
	if n == "" {
		return nil
	}
	if m.aliases {
		if group, ok := aliasLookup[n]; ok {
			return group
		}
	}
	return []string{n}
}

// TermSet normalizes, deduplicates and expands raw terms.
func (m *Matcher) TermSet(raw []string) TermSet {
	var s TermSet
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		n := NormalizeTerm(r)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		s.terms = append(s.terms, n)
		s.groups = append(s.groups, m.Expand(n))
	}
	return s
}

// Score returns the fraction of include terms found in at least one line.
// An empty include set scores 0.
func Score(lines Lines, include TermSet) float64 {
	if include.IsEmpty() {
		return 0
	}
	matched := 0
	for _, alts := range include.groups {
		if lines.Contains(alts) {
			matched++
		}
	}
	return float64(matched) / float64(include.Len())
}

// Excluded reports whether any exclude term occurs in any line.
func Excluded(lines Lines, exclude TermSet) bool {
	for _, alts := range exclude.groups {
		if lines.Contains(alts) {
			return true
		}
	}
	return false
}
