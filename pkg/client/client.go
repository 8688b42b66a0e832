package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the SiteVoice API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string // Clerk session token for authenticated requests
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // API base URL (e.g., "http://localhost:3001")
	Token      string        // Optional Clerk session token
	Timeout    time.Duration // HTTP client timeout (default: 90s)
	HTTPClient *http.Client  // Optional custom HTTP client
}

// envelope is the wire shape of every API response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *APIError       `json:"error"`
}

// NewClient creates a new SiteVoice API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		token:      cfg.Token,
	}
}

// SetToken sets the session token for authenticated requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetToken returns the current session token
func (c *Client) GetToken() string {
	return c.token
}

// doRequest sends a JSON body and decodes the data of the response into result
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do performs req with authentication and decodes the response envelope
func (c *Client) do(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}

	return nil
}

// Voice returns the voice extraction service
func (c *Client) Voice() *VoiceService {
	return &VoiceService{client: c}
}

// Billing returns the billing service
func (c *Client) Billing() *BillingService {
	return &BillingService{client: c}
}
