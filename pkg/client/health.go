package client

import "context"

// Health checks the liveness of the API
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, "GET", "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}

// Me returns the profile of the signed-in user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doRequest(ctx, "GET", "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
