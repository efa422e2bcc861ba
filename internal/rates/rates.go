// Package rates fetches and caches currency exchange rates for the unit
// converter. Rates are cached in memory and in the store with a 24-hour
// freshness window; when a fetch fails the last cached table is used and the
// caller is told it is looking at offline data.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/errs"
	"github.com/konnekonnekonne/Little-Helpers/internal/models"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
)

const (
	// DefaultURL serves {"base": ..., "rates": {...}, "date": ...}.
	DefaultURL = "https://api.exchangerate.host/latest?base=USD"

	// DefaultTTL is the freshness window for a fetched table.
	DefaultTTL = 24 * time.Hour
)

// ErrSuperseded is returned by a refresh whose in-flight request was
// cancelled because a newer refresh started.
var ErrSuperseded = errors.New("rates: refresh superseded by a newer one")

// response is the wire shape of the rate endpoint.
type response struct {
	Rates map[string]float64 `json:"rates"`
	Base  string             `json:"base"`
	Date  string             `json:"date"`
}

// Service caches exchange rates with a TTL.
type Service struct {
	store  storage.Store
	clock  clock.Clock
	client *http.Client
	url    string
	ttl    time.Duration

	mu       sync.Mutex
	cached   *models.RateTable
	inflight context.CancelFunc
	gen      uint64
}

// Option configures a Service.
type Option func(*Service)

// WithURL overrides the rate endpoint.
func WithURL(url string) Option { return func(s *Service) { s.url = url } }

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option { return func(s *Service) { s.ttl = ttl } }

// WithClient overrides the HTTP client.
func WithClient(c *http.Client) Option { return func(s *Service) { s.client = c } }

// New creates a Service, warming the in-memory cache from the store if a
// table was persisted earlier.
func New(store storage.Store, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		store:  store,
		clock:  clk,
		client: &http.Client{Timeout: 10 * time.Second},
		url:    DefaultURL,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	var table models.RateTable
	err := store.Load(context.Background(), storage.KeyRates, &table)
	switch {
	case err == nil:
		s.cached = &table
	case !errors.Is(err, storage.ErrNotFound):
		slog.Warn("Failed to load cached rates", "error", err)
	}
	return s
}

// Current returns a rate table, fetching only when the cache is older than
// the TTL. The second return value reports offline mode: the fetch failed
// and the table is stale cached data. A NetworkError is returned only when
// there is nothing cached to fall back to.
func (s *Service) Current(ctx context.Context) (models.RateTable, bool, error) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if cached != nil && s.clock.Now().Sub(cached.FetchedAt) < s.ttl {
		return *cached, false, nil
	}
	return s.refresh(ctx)
}

// Refresh forces a fetch regardless of cache age. Starting a refresh cancels
// any refresh still in flight; the older call returns ErrSuperseded.
func (s *Service) Refresh(ctx context.Context) (models.RateTable, bool, error) {
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (models.RateTable, bool, error) {
	fetchCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight() // supersede the older request
	}
	s.inflight = cancel
	s.gen++
	myGen := s.gen
	s.mu.Unlock()

	table, fetchErr := s.fetch(fetchCtx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != myGen {
		// A newer refresh started while we were in flight; its result wins.
		return models.RateTable{}, false, ErrSuperseded
	}
	s.inflight = nil

	if fetchErr != nil {
		if s.cached != nil {
			slog.Warn("Rate fetch failed, using cached table",
				"error", fetchErr,
				"fetched_at", s.cached.FetchedAt,
			)
			return *s.cached, true, nil
		}
		return models.RateTable{}, true, &errs.NetworkError{Op: "fetch rates", Err: fetchErr}
	}

	s.cached = &table
	if err := s.store.Save(context.WithoutCancel(ctx), storage.KeyRates, table); err != nil {
		slog.Warn("Failed to persist rates", "error", err)
	}
	slog.Info("Rates refreshed", "base", table.Base, "currencies", len(table.Rates))
	return table, false, nil
}

func (s *Service) fetch(ctx context.Context) (models.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.RateTable{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.RateTable{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RateTable{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.RateTable{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Rates) == 0 {
		return models.RateTable{}, fmt.Errorf("response carried no rates")
	}

	return models.RateTable{
		Base:      body.Base,
		Rates:     body.Rates,
		FetchedAt: s.clock.Now(),
	}, nil
}
