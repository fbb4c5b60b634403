package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
	"ghostscout/internal/opgg"
	"ghostscout/internal/session"
)

func newTestApp() *App {
	return &App{
		counters: opgg.NewCounterCache(),
		streams:  make(map[string]*aiStream),
		view:     matchView{idToSlug: make(map[int64]string)},
	}
}

func matchSnapshot() session.Snapshot {
	opponent := int64(238)
	return session.Snapshot{
		Connected:  true,
		MyPosition: "middle",
		Enemies: []lol.Enemy{
			{ChampionID: 238, Name: "劫", Slug: "zed", Position: "MID"},
			{ChampionID: 11, Name: "易", Slug: "masteryi", Position: "JUNGLE"},
		},
		Players: []lol.Player{
			{SummonerID: 1, ChampionID: 1, ChampionName: "安妮", Position: "MID", IsAlly: true},
			{SummonerID: 2, ChampionID: 238, ChampionName: "劫", Position: "MID"},
		},
		LaneOpponentID: &opponent,
	}
}

func TestOnSnapshot_EmptyConnectedKeepsView(t *testing.T) {
	a := newTestApp()
	a.onSnapshot(matchSnapshot())

	if a.view.laneOpponent == nil || a.view.laneOpponent.Slug != "zed" {
		t.Fatalf("laneOpponent = %+v", a.view.laneOpponent)
	}

	a.onSnapshot(session.Snapshot{Connected: true})
	if len(a.view.enemies) != 2 || len(a.view.players) != 2 {
		t.Errorf("empty snapshot cleared the view: %+v", a.view)
	}

	a.onSnapshot(session.Snapshot{Connected: true, Error: "not in champion select: 404"})
	if len(a.view.enemies) != 0 || a.view.laneOpponent != nil {
		t.Errorf("idle snapshot should clear the roster: %+v", a.view)
	}
	if a.view.err == "" {
		t.Error("idle error not recorded")
	}
}

func TestOnSnapshot_Disconnect(t *testing.T) {
	a := newTestApp()
	a.onCatalog(&lcu.CatalogDelta{
		Icons:    map[int64]lcu.Icon{1: {Width: 1, Height: 1, Pix: make([]byte, 4)}},
		SlugToID: map[string]int64{"annie": 1},
		IDToName: map[int64]string{1: "安妮"},
	}, lcu.LocaleSimplified)
	a.onSnapshot(matchSnapshot())

	a.onSnapshot(session.Snapshot{Error: "lockfile not found"})
	if a.view.connected || len(a.view.players) != 0 {
		t.Errorf("disconnect should reset the view: %+v", a.view)
	}
	if a.view.idToSlug[1] != "annie" || a.view.icons != 1 {
		t.Error("catalog data must survive a disconnect")
	}
}

func TestMyPlayer(t *testing.T) {
	a := newTestApp()
	a.onSnapshot(matchSnapshot())

	me, ok := a.myPlayer()
	if !ok || me.ChampionName != "安妮" {
		t.Errorf("myPlayer = %+v, %v", me, ok)
	}

	a.view.myPosition = ""
	if _, ok := a.myPlayer(); ok {
		t.Error("no position should mean no player")
	}
}

func TestBestCounters(t *testing.T) {
	views := []opgg.CounterView{
		{Key: "a", WinRate: 55},
		{Key: "b", WinRate: 42},
		{Key: "c", WinRate: 48},
		{Key: "d", WinRate: 42},
	}

	got := bestCounters(views, 3)
	want := []string{"b", "d", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %d views, want %d", len(got), len(want))
	}
	for i, key := range want {
		if got[i].Key != key {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Key, key)
		}
	}
	if views[0].Key != "a" {
		t.Error("input slice was reordered")
	}
}

func TestSameRoster(t *testing.T) {
	base := matchSnapshot().Players
	swapped := matchSnapshot().Players
	swapped[0].ChampionID = 103

	if !sameRoster(base, matchSnapshot().Players) {
		t.Error("identical rosters should match")
	}
	if sameRoster(base, swapped) {
		t.Error("a changed pick should not match")
	}
	if sameRoster(base, base[:1]) {
		t.Error("different lengths should not match")
	}
}

// championListPage renders an OP.GG champion list with n mid laners inside
// a Next.js RSC frame
func championListPage(t *testing.T, n int) string {
	t.Helper()
	data := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		data = append(data, map[string]any{"key": fmt.Sprintf("champ%d", i), "name": fmt.Sprintf("英雄%d", i), "positionName": "MID"})
	}
	payload, err := json.Marshal(map[string]any{"data": data, "padding": strings.Repeat("x", 600)})
	if err != nil {
		t.Fatal(err)
	}
	frame, err := json.Marshal([]any{1, "2:" + string(payload)})
	if err != nil {
		t.Fatal(err)
	}
	return "<html><script>self.__next_f.push(" + string(frame) + ")</script></html>"
}

func TestStartUpdate_DeliversEveryProgressReport(t *testing.T) {
	const champions = 20
	page := championListPage(t, champions)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/zh-cn/lol/champions" {
			fmt.Fprint(w, page)
			return
		}
		fmt.Fprint(w, "<html>no data</html>")
	}))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a := newTestApp()
	a.ctx = ctx
	a.progress = make(chan progressUpdate, 1)
	a.harvested = make(chan harvestResult, 1)
	a.harvester = opgg.NewHarvester(opgg.HarvesterOptions{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
	})

	a.StartUpdate()
	if !a.updating {
		t.Fatal("updating flag not set")
	}

	var updates []progressUpdate
	var res harvestResult
	timeout := time.After(10 * time.Second)
wait:
	for {
		select {
		case u := <-a.progress:
			// Slow consumer: the harvest must wait rather than drop reports
			time.Sleep(time.Millisecond)
			updates = append(updates, u)
		case res = <-a.harvested:
			break wait
		case <-timeout:
			t.Fatal("harvest did not finish")
		}
	}
	for {
		select {
		case u := <-a.progress:
			updates = append(updates, u)
			continue
		default:
		}
		break
	}

	if res.err != nil {
		t.Fatalf("harvest failed: %v", res.err)
	}
	if len(updates) != champions+1 {
		t.Fatalf("got %d progress reports, want %d", len(updates), champions+1)
	}
	last := updates[len(updates)-1]
	if last.label != "done" || last.done != champions || last.total != champions {
		t.Errorf("final report = %+v", last)
	}

	a.onHarvested(res)
	if a.updating {
		t.Error("updating flag not cleared")
	}
}
