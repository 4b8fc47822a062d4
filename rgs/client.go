// Package rgs provides a Go client for a remote gaming server (RGS) HTTP API.
//
// The client is a thin, typed layer over the wire protocol: it resolves call
// parameters, builds one JSON request per operation, and decodes the response
// into a typed result. There is no retry, no caching, and no protocol state:
// every operation is a single round trip, and every call re-resolves its
// parameters from scratch.
//
// # Parameter resolution
//
// Each operation resolves sessionID, server host, language, and currency from
// three sources, highest priority first: the explicit per-call option, the
// ambient ContextProvider configured on the client, and a fixed default
// (language "en", currency "USD"). sessionID and the server host have no
// default; operations that need them fail with *MissingSessionError or
// *MissingServerError before any network call.
//
// # Usage
//
//	client := rgs.NewClient(rgs.Config{
//	    Provider: &rgs.StaticProvider{
//	        SessionID:  "player-session",
//	        ServerHost: "rgs.example.com",
//	    },
//	})
//
//	result, err := client.Authenticate(ctx, rgs.AuthenticateRequest{})
package rgs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Config holds configuration for the RGS client.
type Config struct {
	// Provider supplies ambient parameter values (e.g. a parsed launch URL
	// or static host configuration). Optional; without it every call must
	// carry explicit options.
	Provider ContextProvider

	// HTTPClient allows injecting a custom HTTP client (useful for testing
	// and for callers that want timeouts or cancellation). Defaults to a
	// client with no timeout: this layer never cancels a call on its own.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string
}

// Client is an RGS API client. It is safe for concurrent use: calls share no
// mutable state beyond the underlying *http.Client.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a new RGS client with the given configuration.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		config: cfg,
		http:   httpClient,
	}
}

// baseURL normalizes a server host into a URL prefix. Hosts without a scheme
// get https.
func baseURL(host string) string {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

// post sends a single JSON POST request and decodes the 200 body into out.
// Exactly one attempt is made; any non-200 status yields an *HTTPError.
func (c *Client) post(ctx context.Context, host, path string, body any, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rgs: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", baseURL(host), strings.TrimPrefix(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("rgs: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	return c.send(req, out)
}

// get sends a single GET request (no body, no query string) and decodes the
// 200 body into out.
func (c *Client) get(ctx context.Context, host, path string, out any) error {
	url := fmt.Sprintf("%s/%s", baseURL(host), strings.TrimPrefix(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("rgs: create request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rgs: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rgs: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return newHTTPError(resp.StatusCode, resp.Status, respBody)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("rgs: decode response: %w", err)
	}
	return nil
}
