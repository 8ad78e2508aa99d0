package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/posync/internal/models"
)

// Count asks the local store how many records of class are in status.
// An empty status counts every record.
func (c *HTTPClient) Count(ctx context.Context, class models.Class, status models.SyncStatus) (int64, error) {
	base, err := LocalPath(class)
	if err != nil {
		return 0, err
	}
	path := base + "/count"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return 0, err
	}
	return NormalizeCount(raw)
}

// NormalizeCount accepts either a bare integer or {"count": n}.
func NormalizeCount(raw []byte) (int64, error) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var wrapped struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Count != nil {
		return *wrapped.Count, nil
	}
	return 0, fmt.Errorf("%w: unexpected count body %s", ErrDecode, string(raw))
}
