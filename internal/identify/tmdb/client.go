package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result represents a single TMDB search or find match.
type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int64   `json:"vote_count"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// FindResponse models the TMDB /find response for external-ID lookups.
type FindResponse struct {
	MovieResults []Result `json:"movie_results"`
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is one billed cast entry from the credits payload.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Credits carries the billed cast, ordered by billing.
type Credits struct {
	Cast []CastMember `json:"cast"`
}

// Details is the full movie payload with credits appended.
type Details struct {
	ID           int64   `json:"id"`
	IMDBID       string  `json:"imdb_id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Runtime      int     `json:"runtime"`
	Genres       []Genre `json:"genres"`
	Credits      Credits `json:"credits"`
}

// API defines the TMDB operations the resolution pipeline uses.
type API interface {
	FindByExternalID(ctx context.Context, code string) (*FindResponse, error)
	SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*Details, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
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

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FindByExternalID looks up a scanned UPC/EAN code via the /find endpoint.
func (c *Client) FindByExternalID(ctx context.Context, code string) (*FindResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("code must not be empty")
	}
	params := url.Values{}
	params.Set("external_source", "upc_ean")

	var payload FindResponse
	if err := c.get(ctx, "/find/"+url.PathEscape(code), params, &payload, "tmdb find"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SearchMovie performs a TMDB movie title search, optionally year-filtered.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var payload SearchResponse
	if err := c.get(ctx, "/search/movie", params, &payload, "tmdb search"); err != nil {
		return nil, err
	}
	return &payload, nil
}

// MovieDetails fetches movie details by TMDB ID with credits appended.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Details, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var payload Details
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload, "tmdb movie details"); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any, operation string) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Operation: operation, StatusCode: resp.StatusCode, Latency: latency}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

// StatusError reports a non-success HTTP status from TMDB.
type StatusError struct {
	Operation  string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d (latency=%v)", e.Operation, e.StatusCode, e.Latency)
}
