package oui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/netauto/configlet-builder/pkg/configlets"
)

const (
	// ConfigletName is where the parsed database is cached, so it
	// survives restarts and is visible like any other configlet.
	ConfigletName = "oui.json"

	// DefaultManufURL is the upstream registration list.
	DefaultManufURL = "https://gitlab.com/wireshark/wireshark/-/raw/master/manuf"

	defaultMaxAge       = 24 * time.Hour
	defaultFetchTimeout = 5 * time.Minute
)

// Store is the slice of configlet storage the cache needs.
type Store interface {
	LookupConfigletByName(name string) (configlets.Configlet, error)
	SaveConfiglet(id uuid.UUID, c configlets.Configlet) error
}

// Fetcher retrieves the raw manuf list.
type Fetcher func(ctx context.Context) (io.ReadCloser, error)

// HTTPFetcher downloads the manuf list from the given URL.
func HTTPFetcher(url string, timeout time.Duration) Fetcher {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching manuf list: %s", resp.Status)
		}
		return resp.Body, nil
	}
}

// Cache keeps a parsed Database in configlet storage and refreshes it
// from upstream when the stored copy is older than a day.
type Cache struct {
	store  Store
	fetch  Fetcher
	maxAge time.Duration
	now    func() time.Time
}

type CacheOption func(*Cache)

func WithFetcher(f Fetcher) CacheOption {
	return func(c *Cache) { c.fetch = f }
}

func WithMaxAge(age time.Duration) CacheOption {
	return func(c *Cache) { c.maxAge = age }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store:  store,
		fetch:  HTTPFetcher(DefaultManufURL, defaultFetchTimeout),
		maxAge: defaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database returns the cached database, refreshing it first when the
// stored copy is missing or stale. A failed refresh falls back to the
// stale copy when one exists.
func (c *Cache) Database(ctx context.Context) (Database, error) {
	cached, err := c.store.LookupConfigletByName(ConfigletName)
	haveCached := err == nil

	if haveCached && c.now().Sub(cached.Updated) < c.maxAge {
		return decode(cached.Config)
	}

	db, fetchErr := c.refresh(ctx, cached, haveCached)
	if fetchErr != nil {
		if haveCached {
			log.Warn().Err(fetchErr).Msg("OUI refresh failed, using stale cache")
			return decode(cached.Config)
		}
		return nil, fetchErr
	}
	return db, nil
}

func (c *Cache) refresh(ctx context.Context, cached configlets.Configlet, haveCached bool) (Database, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	db, err := ParseManuf(body)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(db)
	if err != nil {
		return nil, err
	}

	now := c.now()
	entry := configlets.Configlet{
		ID:      uuid.New(),
		Name:    ConfigletName,
		Config:  string(data),
		Note:    "cached OUI registration list",
		Created: now,
		Updated: now,
	}
	if haveCached {
		entry.ID = cached.ID
		entry.Created = cached.Created
	}
	if err := c.store.SaveConfiglet(entry.ID, entry); err != nil {
		log.Error().Err(err).Msg("Error caching OUI database")
	}
	log.Info().Int("entries", len(db)).Msg("OUI database refreshed")
	return db, nil
}

func decode(config string) (Database, error) {
	var db Database
	if err := json.Unmarshal([]byte(config), &db); err != nil {
		return nil, fmt.Errorf("decoding cached OUI database: %w", err)
	}
	return db, nil
}
