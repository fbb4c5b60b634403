package opgg

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/sync/semaphore"

	"ghostscout/internal/lol"
	"ghostscout/internal/valuetree"
)

const (
	DefaultBaseURL       = "https://www.op.gg"
	DefaultMaxConcurrent = 10
	DefaultRetryDelay    = 500 * time.Millisecond

	catalogPath = "/zh-cn/lol/champions?position=all&region=global"
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// ErrEmptyCatalog is returned when the champion list page yields no entries
var ErrEmptyCatalog = fmt.Errorf("%w: champion list is empty", lol.ErrNotFound)

// ProgressFunc receives (done, total, label) after every harvested entry and
// once more with label "done" at the end. Calls never overlap.
type ProgressFunc func(done, total int, label string)

// Saver persists a finished harvest
type Saver interface {
	Save(cache *CounterCache) error
}

// HarvesterOptions configures a Harvester. Zero values use the defaults.
type HarvesterOptions struct {
	HTTPClient    *http.Client
	BaseURL       string
	MaxConcurrent int64
	RetryDelay    time.Duration
	Saver         Saver
}

// Harvester scrapes OP.GG counter statistics for every champion and lane
type Harvester struct {
	client        *http.Client
	baseURL       string
	maxConcurrent int64
	retryDelay    time.Duration
	saver         Saver
}

// NewHarvester creates a harvester
func NewHarvester(opts HarvesterOptions) *Harvester {
	h := &Harvester{
		client:        opts.HTTPClient,
		baseURL:       opts.BaseURL,
		maxConcurrent: opts.MaxConcurrent,
		retryDelay:    opts.RetryDelay,
		saver:         opts.Saver,
	}
	if h.client == nil {
		h.client = &http.Client{Timeout: 10 * time.Second}
	}
	if h.baseURL == "" {
		h.baseURL = DefaultBaseURL
	}
	if h.maxConcurrent <= 0 {
		h.maxConcurrent = DefaultMaxConcurrent
	}
	if h.retryDelay <= 0 {
		h.retryDelay = DefaultRetryDelay
	}
	return h
}

// CatalogEntry is one champion/lane combination from the champion list
type CatalogEntry struct {
	Key      string
	Name     string
	Position string
}

// Label is the progress label, e.g. "安妮(MID)"
func (e CatalogEntry) Label() string {
	return fmt.Sprintf("%s(%s)", e.Name, e.Position)
}

// FetchAll harvests every champion/lane counter page and returns the new
// cache. Only a failed champion list is fatal; pages without data are
// simply absent from the result. The cache is saved before returning and a
// save failure is logged, not returned.
func (h *Harvester) FetchAll(ctx context.Context, progress ProgressFunc) (*CounterCache, error) {
	entries, names, err := h.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	total := len(entries)
	log.Printf("[Harvest] Fetching counters for %d champion/lane entries", total)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		done     int
		counters = make(map[string][]CounterEntry)
	)
	sem := semaphore.NewWeighted(h.maxConcurrent)

	for _, entry := range entries {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(entry CatalogEntry) {
			defer wg.Done()
			data, err := h.FetchCounters(ctx, entry.Key, entry.Position)
			sem.Release(1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("[Harvest] %s: %v", entry.Label(), err)
			} else if len(data) > 0 {
				counters[CounterKey(entry.Key, entry.Position)] = data
			}
			done++
			if progress != nil {
				progress(done, total, entry.Label())
			}
		}(entry)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cache := &CounterCache{
		Champions:    names,
		Counters:     counters,
		UpdatedAt:    float64(time.Now().UnixMilli()) / 1000,
		TotalEntries: total,
	}

	if h.saver != nil {
		if err := h.saver.Save(cache); err != nil {
			log.Printf("[Harvest] Failed to save counter cache: %v", err)
		}
	}
	if progress != nil {
		progress(total, total, "done")
	}

	log.Printf("[Harvest] Done: %d/%d entries have counter data", len(counters), total)
	return cache, nil
}

// FetchCatalog fetches the champion list page and returns its
// champion/lane entries plus a key to display name map.
func (h *Harvester) FetchCatalog(ctx context.Context) ([]CatalogEntry, map[string]string, error) {
	html, err := h.get(ctx, h.baseURL+catalogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch champion list: %w", err)
	}

	items, ok := extractRSC(html, valuetree.HasFields("key", "name", "positionName"))
	if !ok {
		return nil, nil, ErrEmptyCatalog
	}

	seen := bloom.NewWithEstimates(4096, 0.001)
	names := make(map[string]string)
	var entries []CatalogEntry

	for _, item := range items {
		key := item.Get("key").Str()
		name := item.Get("name").Str()
		position := item.Get("positionName").Str()
		if key == "" || name == "" || position == "" {
			continue
		}
		if canonical := lol.CanonicalPosition(position); canonical != "" {
			position = canonical
		}

		id := CounterKey(key, position)
		if seen.TestString(id) {
			continue
		}
		seen.AddString(id)

		entries = append(entries, CatalogEntry{Key: key, Name: name, Position: position})
		if _, ok := names[key]; !ok {
			names[key] = name
		}
	}

	if len(entries) == 0 {
		return nil, nil, ErrEmptyCatalog
	}
	return entries, names, nil
}

// FetchCounters fetches one counter page, trying twice, and extracts its
// matchup rows. A page without a dataset yields no rows and no error.
func (h *Harvester) FetchCounters(ctx context.Context, slug, position string) ([]CounterEntry, error) {
	url := fmt.Sprintf("%s/champions/%s/counters?region=global&tier=emerald_plus", h.baseURL, slug)
	if pos := lol.PositionSlug(position); pos != "" {
		url = fmt.Sprintf("%s/champions/%s/counters/%s?region=global&tier=emerald_plus", h.baseURL, slug, pos)
	}

	var html string
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(h.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		html, err = h.get(ctx, url)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	items, ok := extractRSC(html, valuetree.HasFields("win_rate", "champion"))
	if !ok {
		return nil, nil
	}

	entries := make([]CounterEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, CounterEntry{
			Key:     item.Get("champion", "key").Str(),
			WinRate: item.Get("win_rate").Float(),
			Games:   item.Get("play").Int(),
		})
	}
	return entries, nil
}

func (h *Harvester) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", lol.ErrRemoteFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", lol.ErrRemoteFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", lol.ErrRemoteFailure, err)
	}
	return string(body), nil
}
