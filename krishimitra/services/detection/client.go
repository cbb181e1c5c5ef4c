// krishimitra/services/detection/client.go
package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"krishimitra/krishimitra/sources/storage"
	httputils "krishimitra/krishimitra/utils/http"
	"krishimitra/krishimitra/utils/logging"
)

// Client relays crop photos to the pest/disease detection backend. The
// original image is archived first; archive failures are logged but never
// block the diagnosis.
type Client struct {
	url   string
	store *storage.ImageStore
}

func NewClient(url string, store *storage.ImageStore) *Client {
	return &Client{url: url, store: store}
}

func (c *Client) Detect(ctx context.Context, filename, contentType, language string, image []byte) (json.RawMessage, error) {
	defer logging.LogDuration(ctx, "detection_detect")()

	if key, err := c.store.SaveUpload(ctx, filename, contentType, image); err != nil {
		logging.ErrorLogger.Error("image archive failed", zap.Error(err))
	} else if key != "" {
		logging.RelayLogger.Info("image archived", zap.String("key", key))
	}

	var payload json.RawMessage
	err := httputils.PostFile(ctx, c.url, "image", filename, bytes.NewReader(image),
		map[string]string{"language": language}, &payload)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	return payload, nil
}
