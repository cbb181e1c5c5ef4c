// krishimitra/services/tts/client.go
package tts

import (
	"context"
	"fmt"

	"krishimitra/krishimitra/types"
	httputils "krishimitra/krishimitra/utils/http"
	"krishimitra/krishimitra/utils/logging"
)

// Client relays bot replies to the text-to-speech backend and passes the
// audio straight back to the widget's speaker button.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

func (c *Client) Speak(ctx context.Context, req types.SpeakRequest) ([]byte, string, error) {
	defer logging.LogDuration(ctx, "tts_speak")()

	audio, contentType, err := httputils.PostRaw(ctx, c.url, req)
	if err != nil {
		return nil, "", fmt.Errorf("tts request failed: %w", err)
	}
	return audio, contentType, nil
}
