// internal/hubspot/client.go
// Package hubspot talks to the HubSpot REST API and shapes its payloads into
// serialization-safe records.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwiater/hublink/internal/appconfig"
)

// APIError reports a non-2xx response from the HubSpot API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Client is an authenticated HubSpot REST client. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a Client from the supplied credential; an empty token
// falls back to the HUBSPOT_ACCESS_TOKEN environment variable via the config
// layer. A missing credential is a configuration error.
func NewClient(token, baseURL string, timeout time.Duration) (*Client, error) {
	cfg := appconfig.Config{AccessToken: token, BaseURL: baseURL}
	resolved, err := cfg.ResolveAccessToken("")
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: cfg.BaseURLValue(),
		token:   resolved,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Call performs an authenticated request against an arbitrary API path and
// decodes the JSON response. body may be nil for GET-style calls.
func (c *Client) Call(ctx context.Context, method, path string, params url.Values, body any) (map[string]any, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}

// SearchSort orders search results by a single property.
type SearchSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

// Filter is one exact-match condition inside a filter group.
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// FilterGroup ANDs its filters together.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest is the body of a CRM object search.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Sorts        []SearchSort  `json:"sorts,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
}

// SearchResponse carries one page of CRM search hits.
type SearchResponse struct {
	Total   int              `json:"total"`
	Results []map[string]any `json:"results"`
}

// Search runs a CRM object search for the given object type.
func (c *Client) Search(ctx context.Context, objectType string, req SearchRequest) (*SearchResponse, error) {
	raw, err := c.Call(ctx, http.MethodPost, "/crm/v3/objects/"+objectType+"/search", nil, req)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode search response: %w", err)
	}
	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &resp, nil
}

// Create inserts a CRM object of the given type and returns the created record.
func (c *Client) Create(ctx context.Context, objectType string, properties map[string]any) (map[string]any, error) {
	return c.Call(ctx, http.MethodPost, "/crm/v3/objects/"+objectType, nil, map[string]any{"properties": properties})
}

// Association is one edge returned by the v4 associations API.
type Association struct {
	ToObjectID int64 `json:"toObjectId"`
}

// Associations fetches a single page of associations from objectID to the
// target object type.
func (c *Client) Associations(ctx context.Context, objectType, objectID, toObjectType string, limit int) ([]Association, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s", objectType, objectID, toObjectType)
	raw, err := c.Call(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}

	var out []Association
	for _, item := range asList(raw["results"]) {
		entry := asMap(item)
		switch id := entry["toObjectId"].(type) {
		case float64:
			out = append(out, Association{ToObjectID: int64(id)})
		case string:
			var parsed int64
			if _, err := fmt.Sscanf(id, "%d", &parsed); err == nil {
				out = append(out, Association{ToObjectID: parsed})
			}
		}
	}
	return out, nil
}
