package analysis

import snowballeng "github.com/kljensen/snowball/english"

// extraStopWords complements the Snowball English list with filler words
// that carry no signal in recipe titles and ingredient lists.
var extraStopWords = map[string]struct{}{
	"also":  {},
	"could": {},
	"may":   {},
	"might": {},
	"must":  {},
	"per":   {},
	"shall": {},
	"us":    {},
	"via":   {},
	"would": {},
}

// IsStopWord reports whether a lowercase token is dropped during normalization.
func IsStopWord(token string) bool {
	if snowballeng.IsStopWord(token) {
		return true
	}
	_, ok := extraStopWords[token]
	return ok
}
