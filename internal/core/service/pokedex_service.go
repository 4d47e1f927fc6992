package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rydwan10/pokecodex/internal/core/domain"
	"github.com/rydwan10/pokecodex/internal/core/ports"
	"github.com/rydwan10/pokecodex/internal/pkg/metrics"
)

// PokedexMode distinguishes the paginated listing from an exact-name search.
type PokedexMode string

const (
	ModeListing   PokedexMode = "listing"
	ModeSearching PokedexMode = "searching"
)

const defaultPageLimit = 20

// PokedexState is the read-only snapshot rendered by the presentation layer.
// Items keep server-returned order; there is no client-side re-sort.
type PokedexState struct {
	Items      []domain.PokemonSummary `json:"items"`
	Offset     int                     `json:"offset"`
	Limit      int                     `json:"limit"`
	Mode       PokedexMode             `json:"mode"`
	Loading    bool                    `json:"loading"`
	HasMore    bool                    `json:"has_more"`
	Error      string                  `json:"error,omitempty"`
	TotalCount int                     `json:"total_count"`
}

// PokedexService owns the catalog workflow: pagination cursor, listing vs
// searching mode, and the single authoritative in-flight fetch. All state
// mutations happen under one mutex; async completions re-acquire it and are
// discarded when a newer same-kind intent has superseded them.
type PokedexService struct {
	repo ports.PokemonRepository
	log  zerolog.Logger

	mu         sync.Mutex
	state      PokedexState
	generation uint64
	cancel     context.CancelFunc // cancels the current fetch family

	root     context.Context
	shutdown context.CancelFunc
	inflight sync.WaitGroup
}

func NewPokedexService(repo ports.PokemonRepository, limit int, log zerolog.Logger) *PokedexService {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	root, shutdown := context.WithCancel(context.Background())
	return &PokedexService{
		repo: repo,
		log:  log,
		state: PokedexState{
			Limit:   limit,
			Mode:    ModeListing,
			HasMore: true,
		},
		root:     root,
		shutdown: shutdown,
	}
}

// Snapshot returns a copy of the current state. The items slice is cloned so
// callers can never observe a partially applied mutation.
func (s *PokedexService) Snapshot() PokedexState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.Items = append([]domain.PokemonSummary(nil), s.state.Items...)
	return snap
}

// LoadInitial fetches the first page. It is a no-op unless the list is empty
// and no fetch is in flight: a second call while loading is neither queued
// nor an error.
func (s *PokedexService) LoadInitial() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.state.Items) > 0 || s.state.Loading {
		return
	}
	s.beginListFetch(0, true)
}

// LoadMore appends the next page to the tail. Valid only in listing mode,
// when idle, and while the server reports more data.
func (s *PokedexService) LoadMore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Mode != ModeListing || s.state.Loading || !s.state.HasMore {
		return
	}
	s.beginListFetch(s.state.Offset, false)
}

// Refresh unconditionally resets the cursor and reloads from offset 0. Any
// in-flight fetch is cancelled and its late completion discarded.
func (s *PokedexService) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLocked()
}

func (s *PokedexService) refreshLocked() {
	s.state.Items = nil
	s.state.Offset = 0
	s.state.HasMore = true
	s.beginListFetch(0, true)
}

// Search issues an exact-name detail lookup. An empty term falls back to
// Refresh. A newer Search or Refresh always wins over a pending one.
func (s *PokedexService) Search(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	term = strings.TrimSpace(term)
	if term == "" {
		s.refreshLocked()
		return
	}

	gen, ctx := s.supersedeLocked()
	s.state.Mode = ModeSearching
	s.state.Loading = true
	s.state.Error = ""

	s.inflight.Add(1)
	go s.fetchSearch(ctx, gen, term)
}

// Close cancels all in-flight work and waits for completions to drain.
func (s *PokedexService) Close() {
	s.shutdown()
	s.inflight.Wait()
}

// beginListFetch starts a list request for the given offset. List fetches
// always belong to the listing mode, so a reload after a cleared search
// restores pagination. Caller holds mu.
func (s *PokedexService) beginListFetch(offset int, replace bool) {
	gen, ctx := s.supersedeLocked()
	s.state.Mode = ModeListing
	s.state.Loading = true
	s.state.Error = ""

	s.inflight.Add(1)
	go s.fetchList(ctx, gen, offset, s.state.Limit, replace)
}

// supersedeLocked cancels the current fetch family and advances the request
// generation so any late completion from the old family is discarded.
// Caller holds mu.
func (s *PokedexService) supersedeLocked() (uint64, context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.root)
	s.cancel = cancel
	s.generation++
	return s.generation, ctx
}

func (s *PokedexService) fetchList(ctx context.Context, gen uint64, offset, limit int, replace bool) {
	defer s.inflight.Done()

	start := time.Now()
	page, err := s.repo.GetPokemonList(ctx, offset, limit)
	metrics.CatalogFetchDuration.WithLabelValues("list").Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.CatalogFetchesTotal.WithLabelValues("list", "stale").Inc()
		s.log.Debug().Uint64("generation", gen).Msg("discarding stale list response")
		return
	}
	s.state.Loading = false

	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues("list", "error").Inc()
		// Partial-failure tolerant: the visible list is never rolled back.
		if replace {
			s.state.Error = "failed to load pokemon: " + err.Error()
		} else {
			s.state.Error = "failed to load more pokemon: " + err.Error()
		}
		s.log.Error().Err(err).Int("offset", offset).Msg("list fetch failed")
		return
	}

	metrics.CatalogFetchesTotal.WithLabelValues("list", "success").Inc()
	if replace {
		s.state.Items = page.Results
	} else {
		s.state.Items = append(s.state.Items, page.Results...)
	}
	s.state.Offset = len(s.state.Items)
	s.state.HasMore = page.HasNext
	s.state.TotalCount = page.TotalCount
	s.log.Info().Int("count", len(page.Results)).Int("offset", s.state.Offset).Bool("has_more", s.state.HasMore).Msg("page loaded")
}

func (s *PokedexService) fetchSearch(ctx context.Context, gen uint64, term string) {
	defer s.inflight.Done()

	start := time.Now()
	p, err := s.repo.SearchPokemon(ctx, term)
	metrics.CatalogFetchDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		metrics.CatalogFetchesTotal.WithLabelValues("search", "stale").Inc()
		s.log.Debug().Str("term", term).Msg("discarding stale search response")
		return
	}
	s.state.Loading = false

	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues("search", "error").Inc()
		// Lookup misses and transport failures both render as a miss; the
		// raw transport error is not propagated to the list.
		s.state.Items = nil
		s.state.HasMore = false
		s.state.Error = "pokemon not found"
		if !errors.Is(err, domain.ErrPokemonNotFound) {
			s.log.Warn().Err(err).Str("term", term).Msg("search failed")
		}
		return
	}

	metrics.CatalogFetchesTotal.WithLabelValues("search", "success").Inc()
	s.state.Items = []domain.PokemonSummary{{ID: p.ID, Name: p.Name}}
	s.state.HasMore = false
	s.state.Error = ""
}

// Await blocks until every dispatched completion has been applied or
// discarded. The presentation layer uses it to render terminal state after
// forwarding an intent; tests use it to join on quiescence.
func (s *PokedexService) Await() {
	s.inflight.Wait()
}
