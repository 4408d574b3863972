// Package push provides a simple client for a push notification gateway.
//
// The gateway accepts one JSON message per POST and answers 2xx on acceptance.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Client represents a push gateway client.
type Client struct {
	url    string       // gateway endpoint
	token  string       // bearer token for authentication
	client *http.Client // HTTP client used to make requests
}

// NewClient creates a new Client posting to gatewayURL.
func NewClient(gatewayURL, token string) *Client {
	return &Client{
		url:    strings.TrimRight(gatewayURL, "/") + "/messages",
		token:  token,
		client: &http.Client{},
	}
}

// Message is the payload of the gateway's message API.
type Message struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Link     string `json:"link,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Send posts msg to the gateway and returns an error on transport failure or a non-2xx status.
func (c *Client) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway error: %s", resp.Status)
	}

	return nil
}
