package identify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"shelfscan/internal/catalog"
	"shelfscan/internal/config"
	"shelfscan/internal/identify/omdb"
	"shelfscan/internal/identify/tmdb"
	"shelfscan/internal/logging"
)

// Defaults applied when enrichment is unavailable.
const (
	UnknownDirector = "Unknown"
	UnknownRating   = "Not Rated"
)

// maxBilledCast bounds how many cast members a candidate carries.
const maxBilledCast = 10

// Outcome is the tri-state result of one resolver strategy.
type Outcome int

const (
	// OutcomeFound means the strategy produced a candidate.
	OutcomeFound Outcome = iota
	// OutcomeDefer means the strategy has nothing for this code; try the next tier.
	OutcomeDefer
	// OutcomeFailed means the strategy hit an error that ends the chain.
	OutcomeFailed
)

// Resolver is the interface the scan workflow consumes.
type Resolver interface {
	ResolveByCode(ctx context.Context, code string) (*catalog.Record, error)
}

// Client resolves scanned codes and titles against TMDB with OMDB enrichment.
type Client struct {
	tmdb         tmdb.API
	omdb         omdb.API // nil when enrichment is not configured
	imageBaseURL string
	logger       *slog.Logger
}

var _ Resolver = (*Client)(nil)

// New builds a Client with real TMDB and OMDB clients from config. The OMDB
// client is optional; without an API key, enrichment is skipped entirely.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	tmdbClient, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, fmt.Errorf("build tmdb client: %w", err)
	}

	var omdbClient omdb.API
	if strings.TrimSpace(cfg.OMDB.APIKey) != "" {
		client, err := omdb.New(cfg.OMDB.APIKey, cfg.OMDB.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("build omdb client: %w", err)
		}
		omdbClient = client
	}

	return NewWithAPIs(tmdbClient, omdbClient, cfg.TMDB.ImageBaseURL, logger), nil
}

// NewWithAPIs wires a Client from pre-built API implementations. Tests and
// callers with custom transports use this directly.
func NewWithAPIs(tmdbAPI tmdb.API, omdbAPI omdb.API, imageBaseURL string, logger *slog.Logger) *Client {
	return &Client{
		tmdb:         tmdbAPI,
		omdb:         omdbAPI,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		logger:       logging.NewComponentLogger(logger, "identify"),
	}
}

type strategy struct {
	name    string
	resolve func(ctx context.Context, code string) (*catalog.Record, Outcome, error)
}

// ResolveByCode resolves a scanned code through the strategy chain. The
// returned candidate always carries the original code in ScanCode.
func (c *Client) ResolveByCode(ctx context.Context, code string) (*catalog.Record, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, wrap(ErrNotFound, "resolve code", "empty code", nil)
	}

	chain := []strategy{
		{name: "external-id", resolve: c.resolveViaExternalID},
		{name: "seed-table", resolve: c.resolveViaSeed},
	}

	for _, tier := range chain {
		candidate, outcome, err := tier.resolve(ctx, code)
		switch outcome {
		case OutcomeFound:
			candidate.ScanCode = code
			c.logger.Info("code resolved",
				logging.String(logging.FieldScanCode, code),
				logging.String("strategy", tier.name),
				logging.String("title", candidate.Title),
			)
			return candidate, nil
		case OutcomeFailed:
			return nil, err
		case OutcomeDefer:
			c.logger.Debug("strategy deferred",
				logging.String(logging.FieldScanCode, code),
				logging.String("strategy", tier.name),
			)
		}
	}

	return nil, wrap(ErrNotFound, "resolve code", fmt.Sprintf("no source matched code %s", code), nil)
}

func (c *Client) resolveViaExternalID(ctx context.Context, code string) (*catalog.Record, Outcome, error) {
	response, err := c.tmdb.FindByExternalID(ctx, code)
	if err != nil {
		return nil, OutcomeFailed, classifyRemote("external id lookup", err)
	}
	if len(response.MovieResults) == 0 {
		return nil, OutcomeDefer, nil
	}
	candidate, err := c.fetchCandidate(ctx, response.MovieResults[0].ID)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	return candidate, OutcomeFound, nil
}

func (c *Client) resolveViaSeed(ctx context.Context, code string) (*catalog.Record, Outcome, error) {
	entry, ok := lookupSeed(code)
	if !ok {
		return nil, OutcomeDefer, nil
	}
	candidate, err := c.ResolveByTitle(ctx, entry.Title, entry.Year)
	if err != nil {
		return nil, OutcomeFailed, err
	}
	return candidate, OutcomeFound, nil
}

// ResolveByTitle searches TMDB for a title, takes the first ranked result,
// fetches full details, and merges best-effort enrichment.
func (c *Client) ResolveByTitle(ctx context.Context, title string, year int) (*catalog.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, wrap(ErrNotFound, "resolve title", "empty title", nil)
	}

	response, err := c.tmdb.SearchMovie(ctx, title, year)
	if err != nil {
		return nil, classifyRemote("title search", err)
	}
	if len(response.Results) == 0 {
		return nil, wrap(ErrNotFound, "resolve title", fmt.Sprintf("no movies found for %q", title), nil)
	}

	return c.fetchCandidate(ctx, response.Results[0].ID)
}

func (c *Client) fetchCandidate(ctx context.Context, movieID int64) (*catalog.Record, error) {
	details, err := c.tmdb.MovieDetails(ctx, movieID)
	if err != nil {
		return nil, classifyRemote("detail fetch", err)
	}

	candidate := c.candidateFromDetails(details)
	c.enrich(ctx, details.IMDBID, candidate)
	return candidate, nil
}

func (c *Client) candidateFromDetails(details *tmdb.Details) *catalog.Record {
	cast := append([]tmdb.CastMember(nil), details.Credits.Cast...)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })

	names := make([]string, 0, maxBilledCast)
	for _, member := range cast {
		name := strings.TrimSpace(member.Name)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == maxBilledCast {
			break
		}
	}

	genres := make([]string, 0, len(details.Genres))
	for _, genre := range details.Genres {
		if genre.Name != "" {
			genres = append(genres, genre.Name)
		}
	}

	return &catalog.Record{
		Title:          details.Title,
		ReleaseDate:    details.ReleaseDate,
		Overview:       details.Overview,
		PosterURL:      c.imageURL("w500", details.PosterPath),
		BackdropURL:    c.imageURL("original", details.BackdropPath),
		RuntimeMinutes: details.Runtime,
		Genres:         genres,
		Cast:           names,
		Director:       UnknownDirector,
		Rating:         UnknownRating,
	}
}

// enrich merges OMDB director/rating into the candidate. Enrichment is
// best-effort: failures are logged and the placeholder values stand.
func (c *Client) enrich(ctx context.Context, imdbID string, candidate *catalog.Record) {
	if c.omdb == nil || strings.TrimSpace(imdbID) == "" {
		return
	}
	enrichment, err := c.omdb.ByIMDBID(ctx, imdbID)
	if err != nil {
		c.logger.Warn("enrichment lookup failed; keeping placeholders",
			logging.Error(err),
			logging.String("imdb_id", imdbID),
			logging.String(logging.FieldEventType, "enrichment_failed"),
		)
		return
	}
	if enrichment.Director != "" {
		candidate.Director = enrichment.Director
	}
	if enrichment.Rating != "" {
		candidate.Rating = enrichment.Rating
	}
}

func (c *Client) imageURL(size, path string) string {
	if strings.TrimSpace(path) == "" || c.imageBaseURL == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + path
}

// classifyRemote maps a raw client error to the transport/upstream taxonomy.
func classifyRemote(operation string, err error) error {
	var statusErr *tmdb.StatusError
	if errors.As(err, &statusErr) {
		return wrap(ErrUpstream, operation, "status "+strconv.Itoa(statusErr.StatusCode), err)
	}
	return wrap(ErrTransport, operation, "", err)
}
