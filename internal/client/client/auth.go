package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/posync/internal/models"
)

// AuthResponse is the body of a successful authenticate call.
type AuthResponse struct {
	Token      string            `json:"token"`
	Username   string            `json:"username"`
	Permission models.Permission `json:"permission"`
	UserID     int64             `json:"userId"`
	Message    string            `json:"message"`
}

// Authenticate exchanges credentials for a signed session token.
// Rejected credentials come back as a *ProtocolError matching ErrUnauthorized.
func (c *HTTPClient) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)

	var out AuthResponse
	if err := c.do(ctx, http.MethodGet, pathAuthenticate+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
