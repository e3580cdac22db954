// Package api implements the HTTP client for the Product Siksha backend.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/productsiksha/pmsiksha/internal/errors"
)

// httpDoer is the slice of tls_client.HttpClient the client depends on.
// Tests substitute a scripted implementation.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Product Siksha backend. All methods are safe for
// concurrent use.
type Client struct {
	httpClient httpDoer
	baseURL    string

	mu    sync.RWMutex
	token string
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithToken sets the bearer token for authenticated endpoints
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client (used by tests)
func WithHTTPClient(d httpDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = d
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// TLS client with a Chrome profile so the hosted backend's edge
		// does not reject the Go default handshake
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(120),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a JSON request to path and returns the response body.
// When authed is set the bearer token is attached; an empty token fails
// fast with ErrNotLoggedIn instead of a round trip.
func (c *Client) do(method, path string, payload any, authed bool) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = strings.NewReader(string(data))
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed {
		token := c.Token()
		if token == "" {
			return nil, apierrors.ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, apierrors.NewTimeoutError(path)
		}
		return nil, apierrors.NewNetworkError(path, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("reading response from "+path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apierrors.NewAuthError(errorMessage(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, apierrors.NewAPIError(resp.StatusCode, path, msg)
	}

	return body, nil
}

// get issues an authenticated-or-not GET
func (c *Client) get(path string, authed bool) ([]byte, error) {
	return c.do(http.MethodGet, path, nil, authed)
}

// post issues a JSON POST
func (c *Client) post(path string, payload any, authed bool) ([]byte, error) {
	return c.do(http.MethodPost, path, payload, authed)
}

// errorMessage extracts the backend's error field from a response body
func errorMessage(body []byte) string {
	return gjson.GetBytes(body, "error").String()
}
