// krishimitra/services/market/client.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	httputils "krishimitra/krishimitra/utils/http"
	"krishimitra/krishimitra/utils/logging"
)

// Cache is the subset of the response cache the relay needs. The redis-backed
// sources/cache.Cache satisfies it; a wrapped nil pointer disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// Client relays the mandi price table. Prices update at most a few times a
// day upstream, so the cache TTL is generous.
type Client struct {
	url   string
	cache Cache
}

func NewClient(url string, c Cache) *Client {
	return &Client{url: url, cache: c}
}

func (c *Client) Prices(ctx context.Context, state, commodity, language string) (json.RawMessage, error) {
	defer logging.LogDuration(ctx, "market_prices")()

	key := fmt.Sprintf("market:%s:%s:%s", state, commodity, language)
	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, key); ok {
			return data, nil
		}
	}

	q := url.Values{}
	q.Set("state", state)
	q.Set("commodity", commodity)
	q.Set("language", language)

	var payload json.RawMessage
	if err := httputils.GetJSON(ctx, c.url+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, payload)
	}
	return payload, nil
}
