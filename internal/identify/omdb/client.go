package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Enrichment is the subset of OMDB fields the pipeline merges into candidates.
type Enrichment struct {
	Director string
	Rating   string
}

// API defines the OMDB operation the resolution pipeline uses.
type API interface {
	ByIMDBID(ctx context.Context, imdbID string) (*Enrichment, error)
}

// Client provides access to the OMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an OMDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type payload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Director string `json:"Director"`
	Rated    string `json:"Rated"`
}

// ByIMDBID fetches director and rating for an IMDB identifier.
func (c *Client) ByIMDBID(ctx context.Context, imdbID string) (*Enrichment, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}

	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parse omdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", imdbID)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}
	// OMDB reports errors in-band with a 200 status.
	if strings.EqualFold(body.Response, "False") {
		return nil, fmt.Errorf("omdb lookup failed: %s", body.Error)
	}

	return &Enrichment{
		Director: cleanField(body.Director),
		Rating:   cleanField(body.Rated),
	}, nil
}

// cleanField drops OMDB's "N/A" placeholder so callers can apply their own defaults.
func cleanField(value string) string {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}
