package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const maxResponseBodySize = 32 << 20 // 32MB; device containers run to thousands of rows

// connection pooling limits to prevent resource exhaustion
const (
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 60 * time.Second
	defaultRequestTimeout  = 30 * time.Second
)

// Client fetches device records from a PostgREST endpoint.
//
// The client is read-only: it selects raw records from the mirrored "knack"
// resource, filtered by app id and container id, ordered by update time for
// a stable batch order.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	appID      string
}

// NewClient creates an inventory [Client].
//
// Parameters:
//   - endpoint: base URL of the PostgREST instance
//   - token: JWT bearer token
//   - appID: source application id used to filter the mirrored records
func NewClient(endpoint, token, appID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    defaultMaxIdleConns,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
		endpoint: endpoint,
		token:    token,
		appID:    appID,
	}
}

// DeviceRecords fetches the raw device records for one container.
//
// The returned maps use the source system's raw field names. An HTTP or
// decoding failure is an external-collaborator error and is returned as-is;
// it is never masked as an empty batch.
func (c *Client) DeviceRecords(ctx context.Context, container string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("select", "record")
	params.Set("app_id", "eq."+c.appID)
	params.Set("container_id", "eq."+container)
	params.Set("order", "updated_at")

	reqURL := fmt.Sprintf("%s/knack?%s", c.endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory request returned %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var rows []struct {
		Record map[string]any `json:"record"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode inventory response: %w", err)
	}

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row.Record != nil {
			records = append(records, row.Record)
		}
	}
	return records, nil
}

// truncate shortens an error body for inclusion in an error message.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
