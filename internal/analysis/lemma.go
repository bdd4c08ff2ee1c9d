package analysis

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// overrides pins kitchen vocabulary the English dictionary reduces badly or does not know.
// Consulted before the dictionary at every step of the lemma chain.
var overrides = map[string]string{
	"leaves":    "leaf",
	"loaves":    "loaf",
	"halves":    "half",
	"calves":    "calf",
	"cookies":   "cookie",
	"brownies":  "brownie",
	"smoothies": "smoothie",
	"veggies":   "veggie",
	"quiches":   "quiche",
	"ganaches":  "ganache",
	"brioches":  "brioche",
	"molasses":  "molasses",
	"greens":    "green",
	"fries":     "fry",
	"sauteed":   "saute",
	"sauteing":  "saute",
	"frozen":    "freeze",
	"dried":     "dry",
	"candied":   "candy",
}

// loadDict decompresses the embedded English dictionary once per process.
var loadDict = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// lemmatizer reduces lowercase tokens with the overrides and the golem English dictionary.
type lemmatizer struct {
	dict *golem.Lemmatizer
}

func newLemmatizer() (*lemmatizer, error) {
	dict, err := loadDict()
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &lemmatizer{dict: dict}, nil
}

func (l *lemmatizer) step(w string) string {
	if base, ok := overrides[w]; ok {
		return base
	}
	return l.dict.Lemma(w)
}

// Lemma follows the lemma chain of word until it reaches a fixed point.
// A chain that loops resolves to the smallest word of the loop, and a lemma
// that would split into several tokens is not taken. Unknown tokens pass
// through unchanged. Lemma(Lemma(w)) == Lemma(w).
func (l *lemmatizer) Lemma(word string) string {
	chain := []string{word}
	cur := word
	for {
		next := strings.ToLower(l.step(cur))
		if next == cur || next == "" || strings.IndexFunc(next, isSeparator) >= 0 {
			return cur
		}
		if i := slices.Index(chain, next); i >= 0 {
			return slices.Min(chain[i:])
		}
		chain = append(chain, next)
		cur = next
	}
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}
