package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"krishimitra/krishimitra/utils/logging"
)

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	data, ok := f.entries[key]
	return data, ok
}

func (f *fakeCache) Set(_ context.Context, key string, data []byte) {
	f.entries[key] = data
}

func TestPricesRelaysQueryParams(t *testing.T) {
	logging.InitLogger()

	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"commodity": "wheat", "modal_price": 2275}`))
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, nil) // nil cache: every call hits upstream
	payload, err := c.Prices(context.Background(), "punjab", "wheat", "hi")
	if err != nil {
		t.Fatalf("prices failed: %v", err)
	}
	if !strings.Contains(string(payload), `"wheat"`) {
		t.Errorf("unexpected payload %s", payload)
	}
	for _, want := range []string{"state=punjab", "commodity=wheat", "language=hi"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestPricesServesRepeatFromCache(t *testing.T) {
	logging.InitLogger()

	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"modal_price": 2275}`))
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, newFakeCache())
	for i := 0; i < 2; i++ {
		payload, err := c.Prices(context.Background(), "punjab", "wheat", "en")
		if err != nil {
			t.Fatalf("prices %d failed: %v", i, err)
		}
		if !strings.Contains(string(payload), `"modal_price"`) {
			t.Errorf("prices %d: unexpected payload %s", i, payload)
		}
	}
	if hits != 1 {
		t.Errorf("expected a single upstream hit, got %d", hits)
	}
}

func TestPricesUpstreamFailure(t *testing.T) {
	logging.InitLogger()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	c := NewClient(upstream.URL, nil)
	if _, err := c.Prices(context.Background(), "punjab", "wheat", "en"); err == nil {
		t.Fatal("expected error on upstream 500")
	}
}
