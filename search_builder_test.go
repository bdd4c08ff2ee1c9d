package recipedex

import (
	"context"
	"testing"
)

func TestSearchBuilder(t *testing.T) {
	c := newKitchenClient(t)

	hits, err := c.Find().
		Text("rice").
		With("rice", "milk").
		Without("egg").
		Weights(0.5, 0.5).
		Limit(3).
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got := hitIDs(hits); len(got) != 1 || got[0] != "C" {
		t.Fatalf("hits = %v, want [C]", got)
	}
	if hits[0].Score != 1 || hits[0].LexicalNormalized != 1 {
		t.Errorf("scores = %+v", hits[0])
	}
}

func TestSearchBuilder_Accumulates(t *testing.T) {
	c := newKitchenClient(t)
	b := c.Find().With("rice").With("milk").Without("egg").Without("nuts")

	if len(b.opts.Include) != 2 || len(b.opts.Exclude) != 2 {
		t.Errorf("opts = %+v", b.opts)
	}
	if b.opts.Weights {
		t.Error("Weights set without calling Weights()")
	}
}
