package gymapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Login exchanges username and password for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	respBytes, err := c.postForm(ctx, "/auth/login", form)
	if err != nil {
		return nil, err
	}

	var tokens TokenPair
	if err := json.Unmarshal(respBytes, &tokens); err != nil {
		return nil, fmt.Errorf("unmarshal login response: %w", err)
	}
	return &tokens, nil
}

// ProbeAdmin reports whether token may list users. The remote API only
// allows that for admins, so it doubles as the admin role hint.
func (c *Client) ProbeAdmin(ctx context.Context, token string) (bool, error) {
	_, err := c.Get(ctx, token, "/users/")
	if err == nil {
		return true, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		return false, nil
	}
	return false, err
}
