// krishimitra/controllers/widgets.go
package controllers

import (
	"context"
	"encoding/json"

	"krishimitra/krishimitra/services/detection"
	"krishimitra/krishimitra/services/market"
	"krishimitra/krishimitra/services/tts"
	"krishimitra/krishimitra/services/weather"
	"krishimitra/krishimitra/types"
)

// WidgetsController fronts the display-only widgets: weather card, mandi
// price table, pest photo diagnosis and the speaker button. Each is one
// relay call with no session state.
type WidgetsController struct {
	weather   *weather.Client
	market    *market.Client
	detection *detection.Client
	tts       *tts.Client
}

func NewWidgetsController(w *weather.Client, m *market.Client, d *detection.Client, t *tts.Client) *WidgetsController {
	return &WidgetsController{weather: w, market: m, detection: d, tts: t}
}

func (c *WidgetsController) Weather(ctx context.Context, lat, lon, language string) (json.RawMessage, error) {
	return c.weather.Lookup(ctx, lat, lon, language)
}

func (c *WidgetsController) MarketPrices(ctx context.Context, state, commodity, language string) (json.RawMessage, error) {
	return c.market.Prices(ctx, state, commodity, language)
}

func (c *WidgetsController) Detect(ctx context.Context, filename, contentType, language string, image []byte) (json.RawMessage, error) {
	return c.detection.Detect(ctx, filename, contentType, language, image)
}

func (c *WidgetsController) Speak(ctx context.Context, req types.SpeakRequest) ([]byte, string, error) {
	return c.tts.Speak(ctx, req)
}
