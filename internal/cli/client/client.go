package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tenantgate/tenantgate/internal/auth"
	"github.com/tenantgate/tenantgate/internal/models"
)

// Client represents an HTTP client for the Tenantgate API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// AuthContext returns the identity a session resolves to
func (c *Client) AuthContext(sessionID string) (*auth.Context, error) {
	var authCtx auth.Context
	if err := c.get(sessionID, "/api/auth/context", &authCtx); err != nil {
		return nil, err
	}
	return &authCtx, nil
}

// UserProducts lists the products reachable by the session's user
func (c *Client) UserProducts(sessionID string) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(sessionID, "/api/user-products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) get(sessionID, path string, into any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(env.Data, into); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
