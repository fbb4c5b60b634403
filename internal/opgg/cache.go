package opgg

import (
	"sort"
	"strings"

	"ghostscout/internal/lol"
)

// CounterEntry is one matchup row: how a champion fares against key
type CounterEntry struct {
	Key     string  `json:"key"`
	WinRate float64 `json:"win_rate"`
	Games   int64   `json:"games"`
}

// CounterCache is the harvested counter dataset. A harvest replaces it
// wholesale; readers treat it as an immutable snapshot.
type CounterCache struct {
	Champions    map[string]string         `json:"champions"`
	Counters     map[string][]CounterEntry `json:"counters"`
	UpdatedAt    float64                   `json:"updated_at"`
	TotalEntries int                       `json:"total_entries"`
}

// NewCounterCache returns an empty cache
func NewCounterCache() *CounterCache {
	return &CounterCache{
		Champions: make(map[string]string),
		Counters:  make(map[string][]CounterEntry),
	}
}

// CounterKey builds the cache key for a champion slug and position:
// the bare slug when position is empty, otherwise "slug:POSITION".
func CounterKey(slug, position string) string {
	if position == "" {
		return slug
	}
	return slug + ":" + position
}

// CounterView is a counter entry ready for display
type CounterView struct {
	Name    string
	Key     string
	WinRate float64
	Games   int64
}

// Lookup returns the counters for a champion in the given lane. The lane
// may be a raw client position. When that lane has no data, any lane of
// the same champion is used, picking the first key in sorted order.
func (c *CounterCache) Lookup(slug, position string) []CounterView {
	if c == nil || slug == "" {
		return nil
	}

	entries, ok := c.Counters[CounterKey(slug, lol.CanonicalPosition(position))]
	if !ok {
		keys := make([]string, 0, len(c.Counters))
		for k := range c.Counters {
			if k == slug || strings.HasPrefix(k, slug+":") {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			return nil
		}
		sort.Strings(keys)
		entries = c.Counters[keys[0]]
	}

	views := make([]CounterView, 0, len(entries))
	for _, e := range entries {
		name, ok := c.Champions[e.Key]
		if !ok {
			name = e.Key
		}
		views = append(views, CounterView{Name: name, Key: e.Key, WinRate: e.WinRate, Games: e.Games})
	}
	return views
}

// WinRateAgainst returns the recorded win rate of slug against enemyKey in
// position, reporting false when the matchup was never harvested.
func (c *CounterCache) WinRateAgainst(slug, position, enemyKey string) (float64, bool) {
	for _, v := range c.Lookup(slug, position) {
		if v.Key == enemyKey {
			return v.WinRate, true
		}
	}
	return 0, false
}

// IsEmpty reports whether nothing has been harvested yet
func (c *CounterCache) IsEmpty() bool {
	return c == nil || len(c.Counters) == 0
}
