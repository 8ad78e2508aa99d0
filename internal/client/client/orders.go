package client

import (
	"context"
	"net/http"
)

// PushResult is the backend's report of an order push.
type PushResult struct {
	Message string   `json:"message"`
	Pushed  int      `json:"pushed"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// ForceSync asks the backend to push its outstanding local orders to the
// remote store. A disabled or unreachable remote matches ErrUnavailable.
func (c *HTTPClient) ForceSync(ctx context.Context) (*PushResult, error) {
	var out PushResult
	if err := c.do(ctx, http.MethodPost, pathForceSync, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
