package socrata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRequestTimeout = 60 * time.Second

// Client upserts rows to Socrata datasets.
//
// An upsert is a POST of a JSON row array to /resource/{dataset}.json; rows
// whose ":id"-mapped key matches an existing row update it, others insert.
// Requests authenticate with basic auth plus an application token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appToken   string
	username   string
	password   string
}

// NewClient creates a Socrata [Client] for one portal host
// (e.g. "data.austintexas.gov").
func NewClient(host, appToken, username, password string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    "https://" + host,
		appToken:   appToken,
		username:   username,
		password:   password,
	}
}

// Upsert publishes rows to the given dataset.
//
// Returns an error on any non-2xx portal response; the portal error body is
// included (truncated) for diagnosis. Upload failures are never swallowed.
func (c *Client) Upsert(ctx context.Context, datasetID string, rows []map[string]any) error {
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	reqURL := fmt.Sprintf("%s/resource/%s.json", c.baseURL, datasetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-App-Token", c.appToken)
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upsert request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upsert to %s returned %d: %s", datasetID, resp.StatusCode, detail)
	}
	return nil
}
