package store

import (
	"errors"
	"testing"

	"market-mention-bot/internal/types"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenKV(t.TempDir())
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestPutGetRoundtrip(t *testing.T) {
	kv := openTestKV(t)

	in := map[string]float64{"Apple Inc": 4.2, "Tesla Inc": 7.1}
	if err := kv.Put(KeyPoliticalRisk, in); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	out := make(map[string]float64)
	if err := kv.Get(KeyPoliticalRisk, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(out) != 2 || out["Apple Inc"] != 4.2 || out["Tesla Inc"] != 7.1 {
		t.Errorf("Got %v, want the stored map back", out)
	}
}

func TestPutReplacesWholeDocument(t *testing.T) {
	kv := openTestKV(t)

	if err := kv.Put(KeyCompanies, map[string]string{"Apple Inc": "AAPL", "Tesla Inc": "TSLA"}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := kv.Put(KeyCompanies, map[string]string{"Apple Inc": "AAPL"}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	out := make(map[string]string)
	if err := kv.Get(KeyCompanies, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("Expected the second document to replace the first, got %v", out)
	}
}

func TestGetMissingKey(t *testing.T) {
	kv := openTestKV(t)

	var out map[string]string
	err := kv.Get("never-written", &out)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on a missing key = %v, want ErrNotFound", err)
	}
}

func TestPutRefusesEmptyDocuments(t *testing.T) {
	kv := openTestKV(t)

	cases := []struct {
		name string
		doc  any
	}{
		{"nil", nil},
		{"empty map", map[string]string{}},
		{"empty slice", []string{}},
		{"empty string", ""},
		{"empty article set", types.NewArticleSet()},
	}
	for _, c := range cases {
		if err := kv.Put("key", c.doc); !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("%s: Put = %v, want ErrEmptyDocument", c.name, err)
		}
	}
	if kv.Has("key") {
		t.Error("Refused puts must not create the key")
	}
}

func TestPutEmptyDoesNotWipeExisting(t *testing.T) {
	kv := openTestKV(t)

	set := types.NewArticleSet()
	set.Add("a1", types.RawArticle{Title: "Apple beats estimates", Provider: "Yahoo"})
	key := NewsKey(types.SourceFinance, "Apple Inc")
	if err := kv.Put(key, set); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := kv.Put(key, types.NewArticleSet()); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("Empty put = %v, want ErrEmptyDocument", err)
	}

	var out types.ArticleSet
	if err := kv.Get(key, &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out.Len() != 1 {
		t.Errorf("Existing document was modified, got %d articles", out.Len())
	}
}

func TestHas(t *testing.T) {
	kv := openTestKV(t)

	if kv.Has(KeyCombinedSentiment) {
		t.Error("Has on a fresh store should be false")
	}
	if err := kv.Put(KeyCombinedSentiment, map[string]types.CombinedSentiment{
		"Apple Inc": {Positive: 0.6, Negative: 0.4},
	}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !kv.Has(KeyCombinedSentiment) {
		t.Error("Has after Put should be true")
	}
}

func TestNewsKey(t *testing.T) {
	got := NewsKey(types.SourceMicroblog, "Apple Inc")
	if got != "news/microblog/Apple Inc" {
		t.Errorf("NewsKey = %q", got)
	}
}
