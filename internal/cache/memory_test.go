package cache

import (
	"testing"
	"time"

	"github.com/ppiankov/knowledgeweb/internal/model"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("news-feeds", "acme", 10, 0)

	if _, found := c.Get(key); found {
		t.Error("expected miss before Set")
	}

	want := &model.QueryResult{Query: "acme", ProducerName: "news-feeds"}
	c.Set(key, want, time.Minute)

	got, found := c.Get(key)
	if !found {
		t.Fatal("expected hit after Set")
	}
	if got.Query != "acme" || got.ProducerName != "news-feeds" {
		t.Errorf("unexpected cached value: %+v", got)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(20*time.Millisecond, time.Minute)
	key := Key("news-feeds", "acme", 0, 0)

	c.Set(key, &model.QueryResult{Query: "acme"}, 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("expected expired entry to be treated as absent")
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	key := Key("financial-data", "acme", 5, 0)

	c.Set(key, &model.QueryResult{Query: "old"}, time.Minute)
	c.Set(key, &model.QueryResult{Query: "new"}, time.Minute)

	got, found := c.Get(key)
	if !found || got.Query != "new" {
		t.Errorf("expected latest value to win, got %+v", got)
	}
}

func TestKey_Distinct(t *testing.T) {
	a := Key("news-feeds", "acme", 10, 0)
	b := Key("news-feeds", "acme", 20, 0)
	c := Key("financial-data", "acme", 10, 0)
	if a == b || a == c {
		t.Error("expected distinct keys for distinct inputs")
	}
}
