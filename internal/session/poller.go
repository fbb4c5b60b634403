package session

import (
	"context"
	"log"
	"net/http"
	"time"

	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
)

// Default poll timings
const (
	DefaultActiveInterval     = 900 * time.Millisecond
	DefaultIdleBackoff        = 1200 * time.Millisecond
	DefaultUnavailableBackoff = 2 * time.Second
	DefaultWatchRetryInterval = 10 * time.Second
)

// Options configures a Poller. Zero durations fall back to the defaults.
type Options struct {
	// Locator finds the lockfile; required
	Locator lcu.Locator

	// HTTPClient is shared by every cycle; nil means lcu.NewHTTPClient(0)
	HTTPClient *http.Client

	// Watcher, when set, is (re)connected each cycle and cuts sleeps short
	// whenever the client reports a champion select or gameflow change.
	Watcher *lcu.Watcher

	ActiveInterval     time.Duration
	IdleBackoff        time.Duration
	UnavailableBackoff time.Duration

	// WatchRetryInterval spaces out reconnect attempts to the same port
	WatchRetryInterval time.Duration
}

// Poller rebuilds the match state from the League Client on every cycle.
// Its catalog and identity cache persist across cycles and are owned by the
// poll loop alone.
type Poller struct {
	opts       Options
	httpClient *http.Client

	catalog     lcu.Catalog
	locale      string
	iconsLoaded bool
	delta       *lcu.CatalogDelta
	summonerID  int64
	identities  IdentityCache

	lastState    string
	watchPort    uint16
	watchAttempt time.Time
}

// NewPoller creates a poller
func NewPoller(opts Options) *Poller {
	if opts.ActiveInterval <= 0 {
		opts.ActiveInterval = DefaultActiveInterval
	}
	if opts.IdleBackoff <= 0 {
		opts.IdleBackoff = DefaultIdleBackoff
	}
	if opts.UnavailableBackoff <= 0 {
		opts.UnavailableBackoff = DefaultUnavailableBackoff
	}
	if opts.WatchRetryInterval <= 0 {
		opts.WatchRetryInterval = DefaultWatchRetryInterval
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = lcu.NewHTTPClient(0)
	}

	return &Poller{
		opts:       opts,
		httpClient: httpClient,
		locale:     lcu.LocaleUnknown,
		identities: make(IdentityCache),
	}
}

// Run polls until ctx is cancelled, sending one snapshot per cycle. With
// context.Background() it runs for the life of the process.
func (p *Poller) Run(ctx context.Context, out chan<- Snapshot) {
	log.Println("[Poller] Started")
	defer log.Println("[Poller] Stopped")

	for {
		snap, wait := p.Poll(ctx)

		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}

		if !p.sleep(ctx, wait) {
			return
		}
	}
}

// sleep waits for d, an LCU event, or cancellation. It returns false when
// the context is done.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	var wake <-chan struct{}
	if p.opts.Watcher != nil {
		wake = p.opts.Watcher.Wake()
	}

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	case <-wake:
	}
	return true
}

// Poll runs a single cycle and returns its snapshot along with how long to
// wait before the next one. Failures never escape; they become the
// snapshot's diagnostic.
func (p *Poller) Poll(ctx context.Context) (Snapshot, time.Duration) {
	path, ok := p.opts.Locator()
	if !ok {
		p.transition("unavailable", "League client not found")
		return Snapshot{
			Error:  "lockfile not found (set lockfile_dir in the config)",
			Locale: p.locale,
		}, p.opts.UnavailableBackoff
	}

	cred, err := lcu.ReadCredential(path)
	if err != nil {
		p.transition("malformed", err.Error())
		return Snapshot{
			Error:  lol.Truncate(err.Error(), DiagnosticLimit),
			Locale: p.locale,
		}, p.opts.UnavailableBackoff
	}

	client := lcu.NewClient(p.httpClient, cred)
	p.ensureWatcher(cred)
	p.loadStatic(ctx, client)

	snap := Snapshot{
		Connected:  true,
		Locale:     p.locale,
		Catalog:    p.delta,
		Credential: cred,
	}
	p.delta = nil

	session, err := client.ChampSelectSession(ctx)
	if err == nil {
		p.transition("champselect", "Champion select")
		p.fillChampSelect(ctx, client, session, &snap)
		return snap, p.opts.ActiveInterval
	}

	if p.summonerID > 0 && p.fillGame(ctx, client, &snap) {
		p.transition("ingame", "In game")
		return snap, p.opts.ActiveInterval
	}

	p.transition("idle", "Connected, not in champion select")
	snap.Error = idleDiagnostic(err)
	return snap, p.opts.IdleBackoff
}

// idleDiagnostic explains why a connected client has no roster
func idleDiagnostic(cause error) string {
	return lol.Truncate("not in champion select: "+cause.Error(), DiagnosticLimit)
}

// loadStatic loads what only needs fetching once per process: the catalog,
// then the icons, then the local summoner id. Each step is retried on the
// next cycle until it succeeds.
func (p *Poller) loadStatic(ctx context.Context, client *lcu.Client) {
	if p.catalog == nil {
		catalog, locale, err := lcu.LoadCatalog(ctx, client)
		if err != nil {
			log.Printf("[Poller] Champion catalog not available yet: %v", err)
		} else {
			p.catalog = catalog
			p.locale = locale
			log.Printf("[Poller] Loaded %d champions (%s)", len(catalog), locale)
		}
	}

	if p.catalog != nil && !p.iconsLoaded {
		p.delta = lcu.BuildCatalogDelta(ctx, client, p.catalog)
		p.iconsLoaded = true
	}

	if p.summonerID == 0 {
		if id, err := client.CurrentSummonerID(ctx); err == nil {
			p.summonerID = id
		}
	}
}

func (p *Poller) fillChampSelect(ctx context.Context, client *lcu.Client, session *lcu.ChampSelectSession, snap *Snapshot) {
	if me, ok := session.LocalPlayer(); ok {
		snap.MyPosition = lol.CanonicalPosition(me.AssignedPosition)
	}

	mine := champSelectSlots(session.MyTeam, true)
	theirs := champSelectSlots(session.TheirTeam, false)
	snap.Enemies, snap.Players = p.buildRoster(ctx, client, mine, theirs)
	snap.LaneOpponentID = laneOpponent(snap.Enemies, snap.MyPosition)
}

// fillGame fills snap from the gameflow session, reporting false when no
// game is in progress.
func (p *Poller) fillGame(ctx context.Context, client *lcu.Client, snap *Snapshot) bool {
	gameflow, err := client.GameflowSession(ctx)
	if err != nil || !gameflow.InGame() {
		return false
	}

	myTeam, theirTeam := gameflow.Teams(p.summonerID)
	for _, player := range myTeam {
		if player.SummonerID == p.summonerID {
			snap.MyPosition = lol.CanonicalPosition(player.SelectedPosition)
		}
	}

	snap.Enemies, snap.Players = p.buildRoster(ctx, client, gameSlots(myTeam, true), gameSlots(theirTeam, false))
	snap.LaneOpponentID = laneOpponent(snap.Enemies, snap.MyPosition)
	return true
}

// ensureWatcher keeps the event socket pointed at the current client. A
// failed dial is not retried on the same port until WatchRetryInterval has
// passed, so a stalled handshake cannot slow every cycle.
func (p *Poller) ensureWatcher(cred *lcu.Credential) {
	w := p.opts.Watcher
	if w == nil {
		return
	}
	if !w.IsConnected() && p.watchPort == cred.Port && time.Since(p.watchAttempt) < p.opts.WatchRetryInterval {
		return
	}

	if err := w.Ensure(cred); err != nil {
		if p.watchPort != cred.Port {
			log.Printf("[Poller] Event watcher unavailable: %v", err)
		}
		p.watchPort = cred.Port
		p.watchAttempt = time.Now()
		return
	}
	p.watchPort = 0
	p.watchAttempt = time.Time{}
}

// transition logs state changes once instead of every cycle
func (p *Poller) transition(state, detail string) {
	if p.lastState == state {
		return
	}
	p.lastState = state
	log.Printf("[Poller] %s", detail)
}

// Identities returns a copy of the identity cache
func (p *Poller) Identities() IdentityCache {
	out := make(IdentityCache, len(p.identities))
	for k, v := range p.identities {
		out[k] = v
	}
	return out
}
