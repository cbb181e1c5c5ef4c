// krishimitra/services/advisory/client.go
package advisory

import (
	"context"
	"fmt"

	"krishimitra/krishimitra/types"
	httputils "krishimitra/krishimitra/utils/http"
	"krishimitra/krishimitra/utils/logging"
)

// Client relays farmer queries to the advisory backend. The backend does
// all the NLU and recommendation work; this side only carries the wire
// contract.
type Client struct {
	url string
}

func NewClient(url string) *Client {
	return &Client{url: url}
}

func (c *Client) Ask(ctx context.Context, req types.AdvisoryRequest) (types.AdvisoryResponse, error) {
	defer logging.LogDuration(ctx, "advisory_ask")()

	var resp types.AdvisoryResponse
	if err := httputils.PostJSON(ctx, c.url, req, &resp); err != nil {
		return types.AdvisoryResponse{}, fmt.Errorf("advisory request failed: %w", err)
	}
	return resp, nil
}
