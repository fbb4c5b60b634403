package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ghostscout/internal/config"
	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
	"ghostscout/internal/openai"
	"ghostscout/internal/opgg"
	"ghostscout/internal/session"
	"ghostscout/internal/store"
)

// tickInterval is how often the UI loop drains its channels
const tickInterval = 100 * time.Millisecond

// App owns every piece of displayed state. Only the Run loop touches it;
// background work reports back over channels.
type App struct {
	cfg    *config.Config
	engine config.Engine

	poller    *session.Poller
	watcher   *lcu.Watcher
	harvester *opgg.Harvester
	history   *opgg.HistoryClient
	ai        *openai.Client

	cacheFile *store.CacheFile
	historyDB *store.HistoryDB
	mirror    *store.PgMirror

	snapshots  chan session.Snapshot
	progress   chan progressUpdate
	harvested  chan harvestResult
	histories  chan historyResult
	streams    map[string]*aiStream
	ctx        context.Context
	counters   *opgg.CounterCache
	updating   bool
	lastStatus string

	view matchView
}

// matchView is what the overlay currently shows
type matchView struct {
	connected    bool
	err          string
	enemies      []lol.Enemy
	players      []lol.Player
	myPosition   string
	laneOpponent *lol.Enemy
	locale       string
	idToSlug     map[int64]string
	icons        int
	matchupKey   string
}

// NewApp wires the poller, harvester, history client and AI client from cfg
// and loads the counter cache from disk.
func NewApp(ctx context.Context, cfg *config.Config, engineName string) (*App, error) {
	cachePath := cfg.CachePath
	if cachePath == "" {
		cachePath = store.DefaultCachePath()
	}

	a := &App{
		cfg:       cfg,
		engine:    cfg.Engine(engineName),
		watcher:   lcu.NewWatcher(),
		ai:        openai.NewClient(nil),
		cacheFile: &store.CacheFile{Path: cachePath},
		snapshots: make(chan session.Snapshot, 4),
		progress:  make(chan progressUpdate, 64),
		harvested: make(chan harvestResult, 1),
		histories: make(chan historyResult, 4),
		streams:   make(map[string]*aiStream),
		ctx:       ctx,
		view:      matchView{idToSlug: make(map[int64]string)},
	}

	if cfg.DatabaseURL != "" {
		mirror, err := store.OpenPgMirror(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("[Store] Postgres mirror disabled: %v", err)
		} else {
			a.mirror = mirror
		}
	}

	historyDB, err := store.OpenHistoryDB(cfg.HistoryDBPath)
	if err != nil {
		log.Printf("[Store] History cache disabled: %v", err)
	} else {
		a.historyDB = historyDB
		if n, err := historyDB.Prune(cfg.HistoryTTL); err == nil && n > 0 {
			log.Printf("[Store] Pruned %d stale histories", n)
		}
	}

	a.poller = session.NewPoller(session.Options{
		Locator:            lcu.NewLocator(cfg.LockfileDir),
		Watcher:            a.watcher,
		ActiveInterval:     cfg.Poll.ActiveInterval,
		IdleBackoff:        cfg.Poll.IdleBackoff,
		UnavailableBackoff: cfg.Poll.UnavailableBackoff,
	})
	a.harvester = opgg.NewHarvester(opgg.HarvesterOptions{
		Saver: &store.CacheSaver{File: a.cacheFile, Mirror: a.mirror},
	})

	var historyCache opgg.HistoryCache
	if a.historyDB != nil {
		historyCache = a.historyDB
	}
	a.history = opgg.NewHistoryClient(nil, "", historyCache, cfg.HistoryTTL)

	a.loadCounters()
	go a.poller.Run(ctx, a.snapshots)

	return a, nil
}

// loadCounters reads the counter cache; a bad file leaves an empty cache
func (a *App) loadCounters() {
	cache, err := a.cacheFile.Load()
	if err != nil {
		log.Printf("[Store] %v", err)
	}
	a.counters = cache
	if cache.IsEmpty() {
		fmt.Println("No counter data yet. Run with -update to fetch it from OP.GG.")
		return
	}
	updated := time.Unix(int64(cache.UpdatedAt), 0).Format("2006-01-02 15:04")
	fmt.Printf("Loaded counter data: %d lanes, %d entries (updated %s)\n", len(cache.Counters), cache.TotalEntries, updated)
}

// Run is the UI loop. Each tick drains every channel without blocking, so
// no background task can stall the display.
func (a *App) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

func (a *App) tick() {
	a.drainSnapshots()
	a.drainProgress()
	a.drainHistories()
	a.drainStreams()
}

func (a *App) drainSnapshots() {
	for {
		select {
		case snap := <-a.snapshots:
			a.onSnapshot(snap)
		default:
			return
		}
	}
}

// shutdown releases the watcher, databases and any running streams
func (a *App) shutdown() {
	for _, s := range a.streams {
		s.cancel()
	}
	a.watcher.Close()
	if a.historyDB != nil {
		a.historyDB.Close()
	}
	if a.mirror != nil {
		a.mirror.Close()
	}
}
