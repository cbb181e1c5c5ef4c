// krishimitra/services/weather/client.go
package weather

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

// Client relays the weather widget's lookups. Responses are cached keyed by
// rounded coordinates and language so nearby reloads don't hammer the
// upstream provider.
type Client struct {
	url   string
	cache Cache
}

func NewClient(url string, c Cache) *Client {
	return &Client{url: url, cache: c}
}

func (c *Client) Lookup(ctx context.Context, lat, lon, language string) (json.RawMessage, error) {
	defer logging.LogDuration(ctx, "weather_lookup")()

	key := fmt.Sprintf("weather:%s:%s:%s", lat, lon, language)
	if c.cache != nil {
		if data, ok := c.cache.Get(ctx, key); ok {
			return data, nil
		}
	}

	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("language", language)

	var payload json.RawMessage
	if err := httputils.GetJSON(ctx, c.url+"?"+q.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, payload)
	}
	return payload, nil
}
