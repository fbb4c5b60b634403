package lcu

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"ghostscout/internal/lol"
)

// Locale tags reported alongside the catalog
const (
	LocaleSimplified    = "zh_CN"
	LocaleTraditional   = "zh_TW"
	LocaleNonChinese    = "non_zh"
	LocaleClientDefault = "client_default"
	LocaleUnknown       = "unknown"
)

const championSummaryPath = "/lol-game-data/assets/v1/champion-summary.json"

// ChampionSummary is one entry of the client's champion summary
type ChampionSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// Catalog maps champion id to its summary
type Catalog map[int64]ChampionSummary

// Name returns the display name, or fallback when the id is unknown
func (c Catalog) Name(id int64, fallback string) string {
	if champ, ok := c[id]; ok {
		return champ.Name
	}
	return fallback
}

// Slug returns the OP.GG slug, or "" when the id is unknown
func (c Catalog) Slug(id int64) string {
	if champ, ok := c[id]; ok {
		return lol.Slug(champ.Alias, champ.Name)
	}
	return ""
}

// sampleName returns the name of the lowest positive id, so locale
// detection does not depend on map iteration order.
func (c Catalog) sampleName() string {
	var best int64
	for id := range c {
		if id > 0 && (best == 0 || id < best) {
			best = id
		}
	}
	return c[best].Name
}

// ChampionSummary fetches the champion summary, localized when locale is non-empty
func (c *Client) ChampionSummary(ctx context.Context, locale string) (Catalog, error) {
	var query url.Values
	if locale != "" {
		query = url.Values{"locale": {locale}}
	}

	var items []ChampionSummary
	if err := c.GetJSON(ctx, championSummaryPath, query, &items); err != nil {
		return nil, err
	}

	catalog := make(Catalog, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}
	return catalog, nil
}

// LoadCatalog loads the champion catalog, preferring Simplified Chinese names,
// then Traditional Chinese, then the client's own language. The returned tag
// tells which variant was obtained.
func LoadCatalog(ctx context.Context, c *Client) (Catalog, string, error) {
	catalog, err := c.ChampionSummary(ctx, LocaleSimplified)
	if err == nil && len(catalog) > 0 {
		if lol.LooksLikeChinese(catalog.sampleName()) {
			return catalog, LocaleSimplified, nil
		}

		// zh_CN came back untranslated; a Traditional Chinese client may still localize
		if tw, err := c.ChampionSummary(ctx, LocaleTraditional); err == nil && len(tw) > 0 {
			if lol.LooksLikeChinese(tw.sampleName()) {
				return tw, LocaleTraditional, nil
			}
			return tw, LocaleNonChinese, nil
		}
	}

	catalog, err = c.ChampionSummary(ctx, "")
	if err != nil {
		return nil, LocaleUnknown, fmt.Errorf("failed to load champion catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, LocaleUnknown, fmt.Errorf("%w: empty champion catalog", lol.ErrMalformedInput)
	}
	return catalog, LocaleClientDefault, nil
}

// Icon is a decoded champion icon in RGBA
type Icon struct {
	Pix    []byte
	Width  int
	Height int
}

// CatalogDelta is the one-time catalog payload handed to the consumer
type CatalogDelta struct {
	Icons    map[int64]Icon
	SlugToID map[string]int64
	NameToID map[string]int64
	IDToName map[int64]string
}

// ChampionIcon downloads and decodes one champion icon
func (c *Client) ChampionIcon(ctx context.Context, id int64) (Icon, error) {
	body, err := c.GetBytes(ctx, fmt.Sprintf("/lol-game-data/assets/v1/champion-icons/%d.png", id))
	if err != nil {
		return Icon{}, err
	}
	return DecodeIcon(body)
}

// DecodeIcon decodes PNG/JPEG bytes into tightly packed RGBA
func DecodeIcon(data []byte) (Icon, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Icon{}, fmt.Errorf("%w: %v", lol.ErrMalformedInput, err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return Icon{Pix: rgba.Pix, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// BuildCatalogDelta builds name/slug indexes and fetches every icon
// concurrently. Icons that fail to download or decode are left out.
func BuildCatalogDelta(ctx context.Context, c *Client, catalog Catalog) *CatalogDelta {
	delta := &CatalogDelta{
		Icons:    make(map[int64]Icon),
		SlugToID: make(map[string]int64),
		NameToID: make(map[string]int64),
		IDToName: make(map[int64]string),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for id, champ := range catalog {
		if id <= 0 {
			continue
		}
		delta.SlugToID[lol.Slug(champ.Alias, champ.Name)] = id
		delta.NameToID[champ.Name] = id
		delta.IDToName[id] = champ.Name

		id := id
		g.Go(func() error {
			icon, err := c.ChampionIcon(ctx, id)
			if err != nil {
				return nil
			}
			mu.Lock()
			delta.Icons[id] = icon
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	log.Printf("[LCU] Loaded %d/%d champion icons", len(delta.Icons), len(delta.IDToName))
	return delta
}
