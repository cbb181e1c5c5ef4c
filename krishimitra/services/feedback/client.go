// krishimitra/services/feedback/client.go
package feedback

import (
	"context"
	"fmt"

	"krishimitra/krishimitra/types"
	httputils "krishimitra/krishimitra/utils/http"
	"krishimitra/krishimitra/utils/logging"
)

// Client posts prediction feedback to the backend. Success is plain HTTP
// 200; the response body carries nothing we need.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

func (c *Client) Submit(ctx context.Context, req types.FeedbackRequest) error {
	defer logging.LogDuration(ctx, "feedback_submit")()

	if err := httputils.PostJSON(ctx, c.url, req, nil); err != nil {
		return fmt.Errorf("feedback request failed: %w", err)
	}
	return nil
}
