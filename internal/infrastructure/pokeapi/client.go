// Package pokeapi implements the remote catalog gateway against the public
// PokeAPI. The client is a plain boundary adapter: no retries, no caching.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/rydwan10/pokecodex/internal/core/domain"
	"github.com/rydwan10/pokecodex/internal/core/ports"
)

const (
	// DefaultBaseURL is the public PokeAPI v2 endpoint.
	DefaultBaseURL = "https://pokeapi.co/api/v2"
	defaultTimeout = 10 * time.Second
)

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.PokemonGateway = (*Client)(nil)

// NewClient creates a gateway client. Requests time out after the given
// duration; expiry surfaces to callers as a transport failure.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type listResponse struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []listEntry `json:"results"`
}

type listEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (c *Client) ListPokemon(ctx context.Context, offset, limit int) (*domain.PokemonPage, error) {
	endpoint := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", c.baseURL, offset, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list pokemon: unexpected status %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	results := make([]domain.PokemonSummary, 0, len(body.Results))
	for _, entry := range body.Results {
		summary, parsed := domain.NewPokemonSummary(entry.Name, entry.URL)
		if !parsed {
			// Known upstream quirk: some refs carry no numeric segment.
			// The summary falls back to a deterministic hash of the name.
			c.log.Warn().Str("name", entry.Name).Str("url", entry.URL).Msg("resource URL missing numeric id, using hashed fallback")
		}
		results = append(results, summary)
	}

	return &domain.PokemonPage{
		Results:    results,
		TotalCount: body.Count,
		HasNext:    body.Next != nil,
	}, nil
}

// GetPokemon fetches one entry by exact name. The caller is responsible for
// case-normalizing the name; a 404 maps to domain.ErrPokemonNotFound.
func (c *Client) GetPokemon(ctx context.Context, name string) (*domain.Pokemon, error) {
	// Escaped so a term with path metacharacters cannot rewrite the request.
	endpoint := fmt.Sprintf("%s/pokemon/%s", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get pokemon %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrPokemonNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get pokemon %q: unexpected status %d", name, resp.StatusCode)
	}

	var p domain.Pokemon
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pokemon %q: %w", name, err)
	}
	return &p, nil
}
