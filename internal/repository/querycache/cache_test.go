package querycache

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/recipedex/internal/domain/recipe"
	"github.com/kailas-cloud/recipedex/internal/domain/search/request"
	"github.com/kailas-cloud/recipedex/internal/domain/search/result"
)

func testRequest(t *testing.T, text string, include ...string) *request.Request {
	t.Helper()
	r, err := request.New(request.Params{Text: text, Include: include}, request.StandardDefaults())
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func testResults(t *testing.T) []result.Result {
	t.Helper()
	rec, err := recipe.New("B", 1, "Egg Fried Rice", "recipenlg", []string{"1 cup rice", "2 eggs"}, []string{"Fry."})
	if err != nil {
		t.Fatalf("recipe.New: %v", err)
	}
	return []result.Result{result.New(rec, 3.2, 1, 0.5, 0.85)}
}

func TestPutThenGet(t *testing.T) {
	c, ms, counter := newTestCache(t, "abc123")
	ctx := context.Background()
	req := testRequest(t, "fried rice", "egg")

	stored := map[string][]byte{}
	var gotTTL time.Duration
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		stored[key] = value
		gotTTL = ttl
		return nil
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		return stored[key], nil
	}

	c.Put(ctx, req, testResults(t))
	if gotTTL != time.Minute {
		t.Errorf("ttl = %v, want 1m", gotTTL)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d keys, want 1", len(stored))
	}
	for k := range stored {
		if !strings.HasPrefix(k, KeyPrefix+"abc123:") {
			t.Errorf("key %q lacks prefix and fingerprint", k)
		}
	}

	got, ok := c.Get(ctx, req)
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 1 {
		t.Fatalf("got %d results", len(got))
	}
	r := &got[0]
	if r.Recipe().ID() != "B" || r.Recipe().Ordinal() != 1 || r.Recipe().Title() != "Egg Fried Rice" {
		t.Errorf("recipe = %q/%d/%q", r.Recipe().ID(), r.Recipe().Ordinal(), r.Recipe().Title())
	}
	if !reflect.DeepEqual(r.Recipe().Ingredients(), []string{"1 cup rice", "2 eggs"}) {
		t.Errorf("ingredients = %v", r.Recipe().Ingredients())
	}
	if r.Combined() != 0.85 || r.Lexical() != 3.2 || r.Ingredient() != 0.5 {
		t.Errorf("scores = %v/%v/%v", r.Combined(), r.Lexical(), r.Ingredient())
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("hit count = %v", v)
	}
}

func TestGet_Miss(t *testing.T) {
	c, _, counter := newTestCache(t, "fp")
	if _, ok := c.Get(context.Background(), testRequest(t, "soup")); ok {
		t.Fatal("expected miss")
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss count = %v", v)
	}
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	c, ms, counter := newTestCache(t, "fp")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	if _, ok := c.Get(context.Background(), testRequest(t, "soup")); ok {
		t.Fatal("expected miss on store error")
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("error")); v != 1 {
		t.Errorf("error count = %v", v)
	}
}

func TestGet_CorruptValue(t *testing.T) {
	c, ms, _ := newTestCache(t, "fp")
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not json"), nil
	}
	var deleted []string
	ms.delFn = func(_ context.Context, keys ...string) (int64, error) {
		deleted = append(deleted, keys...)
		return 1, nil
	}

	req := testRequest(t, "soup")
	if _, ok := c.Get(context.Background(), req); ok {
		t.Fatal("expected miss on corrupt value")
	}
	if len(deleted) != 1 || deleted[0] != c.key(req) {
		t.Errorf("deleted = %v, want [%s]", deleted, c.key(req))
	}
}

func TestPut_StoreErrorIgnored(t *testing.T) {
	c, ms, counter := newTestCache(t, "fp")
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("OOM")
	}
	c.Put(context.Background(), testRequest(t, "soup"), testResults(t))
	if v := testutil.ToFloat64(counter.WithLabelValues("error")); v != 1 {
		t.Errorf("error count = %v", v)
	}
}

func TestKey_DependsOnFingerprintAndRequest(t *testing.T) {
	a, _, _ := newTestCache(t, "corpus-a")
	b, _, _ := newTestCache(t, "corpus-b")
	req := testRequest(t, "rice", "egg", "milk")
	same := testRequest(t, "rice", "milk", "EGG")
	other := testRequest(t, "rice", "egg")

	if a.key(req) == b.key(req) {
		t.Error("key ignores corpus fingerprint")
	}
	if a.key(req) != a.key(same) {
		t.Error("key depends on ingredient order or case")
	}
	if a.key(req) == a.key(other) {
		t.Error("key ignores ingredients")
	}
}
