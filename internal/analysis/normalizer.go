// Package analysis turns free text into the token sequence used by the lexical index.
// The same Normalizer must be used at build time and at query time.
package analysis

import (
	"fmt"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// Mode selects how surviving tokens are reduced to a base form.
type Mode string

// Analyzer modes.
const (
	// ModeLemma reduces tokens with the English lemma dictionary.
	ModeLemma Mode = "lemma"
	// ModeStem reduces tokens with the Snowball (Porter2) English stemmer.
	ModeStem Mode = "stem"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == ModeLemma || m == ModeStem
}

// Normalizer lowercases, splits, drops stop words and reduces tokens.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	mode  Mode
	lemma *lemmatizer
}

// New creates a Normalizer. Empty mode defaults to lemma.
func New(m Mode) (*Normalizer, error) {
	if m == "" {
		m = ModeLemma
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("unknown analyzer mode %q", m)
	}
	n := &Normalizer{mode: m}
	if m == ModeLemma {
		l, err := newLemmatizer()
		if err != nil {
			return nil, err
		}
		n.lemma = l
	}
	return n, nil
}

// Mode returns the reduction mode.
func (n *Normalizer) Mode() Mode { return n.mode }

// Normalize returns the ordered token sequence for text. Duplicates are kept.
func (n *Normalizer) Normalize(text string) []string {
	if text == "" {
		return []string{}
	}

	fields := strings.Fields(strings.Map(keepAlnum, strings.ToLower(text)))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopWord(f) {
			continue
		}
		base := n.reduce(f)
		// a reduced form can land on a stop word ("ares" -> "are")
		if base == "" || IsStopWord(base) {
			continue
		}
		tokens = append(tokens, base)
	}
	return tokens
}

// NormalizeAll normalizes each text and concatenates the results in order.
func (n *Normalizer) NormalizeAll(texts ...string) []string {
	var out []string
	for _, t := range texts {
		out = append(out, n.Normalize(t)...)
	}
	if out == nil {
		return []string{}
	}
	return out
}

func (n *Normalizer) reduce(token string) string {
	if n.mode == ModeStem {
		return snowballeng.Stem(token, false)
	}
	return n.lemma.Lemma(token)
}

// keepAlnum maps every rune outside letters, digits and whitespace to a space.
func keepAlnum(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
		return r
	}
	return ' '
}
