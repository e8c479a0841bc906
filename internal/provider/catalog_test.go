package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
)

func TestModelCacheHardcodedList(t *testing.T) {
	p := NewAPIKeyProvider(IDOpenAI, DialectOpenAI, "http://unused", "k")
	p.ModelIDs = ModelListSource{Models: []string{"gpt-a", "gpt-b"}}

	cache := NewModelCache(nil)
	got, err := cache.Models(context.Background(), p)
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if want := []string{"gpt-a", "gpt-b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Models = %v, want %v", got, want)
	}
}

func TestModelCacheReadThrough(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"data":[{"id":"m1"},{"id":"m2"}]}`)
	}))
	defer srv.Close()

	p := NewAPIKeyProvider(IDOpenAI, DialectOpenAI, srv.URL, "secret")
	p.ModelIDs = ModelListSource{URL: srv.URL + "/v1/models"}
	cache := NewModelCache(srv.Client())

	// Concurrent misses for the same provider must resolve to one fetch.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := cache.Models(context.Background(), p)
			if err != nil {
				t.Errorf("Models: %v", err)
				return
			}
			if len(got) != 2 || got[0] != "m1" {
				t.Errorf("Models = %v", got)
			}
		}()
	}
	wg.Wait()
	if n := hits.Load(); n != 1 {
		t.Fatalf("fetched %d times, want 1", n)
	}

	// No TTL: a second read never re-fetches.
	if _, err := cache.Models(context.Background(), p); err != nil {
		t.Fatalf("Models: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("read-through refetched, hits = %d", n)
	}
}

func TestModelCacheRefreshIsExplicit(t *testing.T) {
	payload := `{"data":[{"id":"old"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	p := NewAPIKeyProvider(IDAnthropic, DialectAnthropic, srv.URL, "k")
	p.ModelIDs = ModelListSource{URL: srv.URL + "/v1/models"}
	cache := NewModelCache(srv.Client())

	if _, err := cache.Models(context.Background(), p); err != nil {
		t.Fatalf("Models: %v", err)
	}

	payload = `{"data":[{"id":"new"}]}`
	got, err := cache.Models(context.Background(), p)
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if got[0] != "old" {
		t.Fatalf("cache refreshed implicitly: %v", got)
	}

	got, err = cache.Refresh(context.Background(), p)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(got) != 1 || got[0] != "new" {
		t.Fatalf("Refresh = %v, want [new]", got)
	}
	got, _ = cache.Models(context.Background(), p)
	if got[0] != "new" {
		t.Fatalf("Models after Refresh = %v, want [new]", got)
	}
}

func TestModelCacheNoSource(t *testing.T) {
	p := NewAPIKeyProvider(IDOpenAI, DialectOpenAI, "http://unused", "k")
	cache := NewModelCache(nil)
	if _, err := cache.Models(context.Background(), p); err == nil {
		t.Fatal("expected error for provider with no model list source")
	}
}
