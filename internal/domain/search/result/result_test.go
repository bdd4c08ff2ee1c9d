package result

import (
	"testing"

	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
)

func TestNew(t *testing.T) {
	rec, err := recipe.New("r-1", 0, "Avocado Toast", "github", []string{"1 avocado"}, nil)
	if err != nil {
		t.Fatalf("recipe.New: %v", err)
	}

	r := New(rec, 2.5, 1, 0.5, 0.85)

	if r.Recipe().ID() != "r-1" {
		t.Errorf("Recipe().ID() = %q", r.Recipe().ID())
	}
	if r.Lexical() != 2.5 {
		t.Errorf("Lexical() = %f", r.Lexical())
	}
	if r.LexicalNormalized() != 1 {
		t.Errorf("LexicalNormalized() = %f", r.LexicalNormalized())
	}
	if r.Ingredient() != 0.5 {
		t.Errorf("Ingredient() = %f", r.Ingredient())
	}
	if r.Combined() != 0.85 {
		t.Errorf("Combined() = %f", r.Combined())
	}
}

func TestRound3(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.12345, 0.123},
		{0.6666666, 0.667},
		{0.0004, 0},
	}
	for _, tc := range tests {
		if got := Round3(tc.in); got != tc.want {
			t.Errorf("Round3(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDisplayScore(t *testing.T) {
	r := New(recipe.Recipe{}, 0, 0, 0, 0.7+0.3*(2.0/3.0))
	if got := r.DisplayScore(); got != 0.9 {
		t.Errorf("DisplayScore() = %v, want 0.9", got)
	}
}
