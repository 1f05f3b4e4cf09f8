package catalog

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestResponseCacheRoundTrip(t *testing.T) {
	cache := newResponseCache(afero.NewMemMapFs(), "/cache", 24)
	key := cacheKey("trending", "movie")

	var miss []string
	if ok, err := cache.get(key, &miss); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := cache.set(key, []string{"a", "b"}); err != nil {
		t.Fatalf("set: %v", err)
	}

	var hit []string
	ok, err := cache.get(key, &hit)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(hit) != 2 || hit[0] != "a" {
		t.Errorf("hit = %v", hit)
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := newResponseCache(fs, "/cache", 24)
	key := cacheKey("trending", "tv")

	if err := cache.set(key, "row"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Age the entry past TTL plus maximum jitter.
	past := time.Now().Add(-31 * time.Hour)
	if err := fs.Chtimes("/cache/"+key+".json", past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	var got string
	if ok, _ := cache.get(key, &got); ok {
		t.Error("expected expired entry to miss")
	}
	if exists, _ := afero.Exists(fs, "/cache/"+key+".json"); exists {
		t.Error("expected expired entry to be removed")
	}
}

func TestResponseCacheClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	cache := newResponseCache(fs, "/cache", 24)

	for _, k := range []string{"a", "b"} {
		if err := cache.set(cacheKey(k), k); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if err := cache.clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	var got string
	if ok, _ := cache.get(cacheKey("a"), &got); ok {
		t.Error("expected cache to be empty after clear")
	}
}

func TestCacheKeyIsStable(t *testing.T) {
	if cacheKey("trending", "movie") != cacheKey("trending", "movie") {
		t.Error("same parts should produce same key")
	}
	if cacheKey("trending", "movie") == cacheKey("trending", "tv") {
		t.Error("different parts should produce different keys")
	}
}
