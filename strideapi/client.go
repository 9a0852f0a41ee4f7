package strideapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Open Bus Stride API.
const DefaultBaseURL = "https://open-bus-stride-api.hasadna.org.il"

// Transport is the capability the pipelines use to reach the API. path is an
// endpoint path like "/gtfs_routes/list"; params are the query parameters.
type Transport interface {
	Fetch(ctx context.Context, path string, params url.Values) ([]byte, error)
}

// TransportError wraps any failure of a single outbound call: network error,
// non-200 status or an unreadable body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is the HTTP implementation of Transport.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL. An empty baseURL
// selects the public instance; a zero timeout leaves the http.Client default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch issues a single GET and returns the response body.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{URL: u, Err: fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	return body, nil
}

// FetchList fetches an endpoint that returns a JSON array of objects and
// decodes it. Numbers are kept as json.Number so integer identifiers survive
// intact. A body that is not an array is an error.
func FetchList(ctx context.Context, t Transport, path string, params url.Values) ([]map[string]any, error) {
	body, err := t.Fetch(ctx, path, params)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, &TransportError{URL: path, Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}
	return rows, nil
}
