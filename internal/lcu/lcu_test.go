package lcu

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"ghostscout/internal/lol"
)

// newFakeClient starts a TLS server standing in for the League Client and
// returns an lcu Client bound to it.
func newFakeClient(t *testing.T, handler http.Handler) (*Client, *Credential) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	cred := &Credential{
		Port:     uint16(server.Listener.Addr().(*net.TCPAddr).Port),
		Password: "secret",
	}
	return NewClient(NewHTTPClient(time.Second), cred), cred
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestParseCredential(t *testing.T) {
	cred, err := ParseCredential("name:1234:2999:abcDEF:https")
	if err != nil {
		t.Fatalf("ParseCredential failed: %v", err)
	}
	if cred.Port != 2999 {
		t.Errorf("Port = %d, want 2999", cred.Port)
	}
	if cred.Password != "abcDEF" {
		t.Errorf("Password = %q, want abcDEF", cred.Password)
	}
	if cred.ProcessName != "name" || cred.PID != "1234" || cred.Protocol != "https" {
		t.Errorf("unexpected fields: %+v", cred)
	}
}

func TestParseCredential_TrimsWhitespace(t *testing.T) {
	cred, err := ParseCredential("  LeagueClient:1:54321:pw:https\r\n")
	if err != nil {
		t.Fatalf("ParseCredential failed: %v", err)
	}
	if cred.Port != 54321 || cred.Protocol != "https" {
		t.Errorf("unexpected credential: %+v", cred)
	}
}

func TestParseCredential_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"four fields", "name:1234:2999:abcDEF"},
		{"six fields", "name:1234:2999:abc:https:extra"},
		{"non-numeric port", "name:1234:port:abcDEF:https"},
		{"port out of range", "name:1234:70000:abcDEF:https"},
		{"negative port", "name:1234:-1:abcDEF:https"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCredential(tt.content)
			if !errors.Is(err, lol.ErrMalformedInput) {
				t.Errorf("ParseCredential(%q) error = %v, want ErrMalformedInput", tt.content, err)
			}
		})
	}
}

func TestFindLockfile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOL_LOCKFILE_DIR", "")

	if _, err := FindLockfile(dir); !errors.Is(err, ErrLockfileNotFound) {
		t.Fatalf("FindLockfile on empty dir = %v, want ErrLockfileNotFound", err)
	}

	path := filepath.Join(dir, "lockfile")
	if err := os.WriteFile(path, []byte("LeagueClient:1:2999:pw:https"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindLockfile(dir)
	if err != nil {
		t.Fatalf("FindLockfile failed: %v", err)
	}
	if got != path {
		t.Errorf("FindLockfile = %q, want %q", got, path)
	}

	found, ok := NewLocator(dir)()
	if !ok || found != path {
		t.Errorf("Locator = (%q, %v), want (%q, true)", found, ok, path)
	}

	cred, err := ReadCredential(found)
	if err != nil {
		t.Fatalf("ReadCredential failed: %v", err)
	}
	if cred.Port != 2999 {
		t.Errorf("Port = %d, want 2999", cred.Port)
	}
}

func TestLockfileNotFoundIsUnavailable(t *testing.T) {
	if !errors.Is(ErrLockfileNotFound, lol.ErrUnavailable) {
		t.Error("ErrLockfileNotFound should wrap ErrUnavailable")
	}
	_, err := ReadCredential(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, lol.ErrUnavailable) {
		t.Errorf("ReadCredential on missing file: %v, want ErrUnavailable", err)
	}
}

func TestClient_BasicAuthAndStatus(t *testing.T) {
	auths := make(chan string, 4)
	client, _ := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
		if r.URL.Path == "/lol-champ-select/v1/session" {
			http.Error(w, `{"message":"No active delegate"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"summonerId": 42})
	}))

	id, err := client.CurrentSummonerID(context.Background())
	if err != nil {
		t.Fatalf("CurrentSummonerID failed: %v", err)
	}
	if id != 42 {
		t.Errorf("summoner id = %d, want 42", id)
	}
	// base64("riot:secret")
	if gotAuth := <-auths; gotAuth != "Basic cmlvdDpzZWNyZXQ=" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	_, err = client.ChampSelectSession(context.Background())
	if !errors.Is(err, lol.ErrRemoteFailure) {
		t.Errorf("ChampSelectSession error = %v, want ErrRemoteFailure", err)
	}
	if err != nil && !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestClient_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	port := uint16(server.Listener.Addr().(*net.TCPAddr).Port)
	server.Close()

	client := NewClient(NewHTTPClient(time.Second), &Credential{Port: port, Password: "pw"})
	_, err := client.CurrentSummonerID(context.Background())
	if !errors.Is(err, lol.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestSoloQueueRank(t *testing.T) {
	client, _ := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lol-ranked/v1/ranked-stats/ranked-puuid":
			writeJSON(w, map[string]any{"queueMap": map[string]any{
				"RANKED_SOLO_5x5": map[string]any{"tier": "GOLD", "division": "II", "leaguePoints": 45},
				"RANKED_FLEX_SR":  map[string]any{"tier": "SILVER", "division": "I", "leaguePoints": 0},
			}})
		default:
			writeJSON(w, map[string]any{"queueMap": map[string]any{}})
		}
	}))

	rank, err := client.SoloQueueRank(context.Background(), "ranked-puuid")
	if err != nil {
		t.Fatalf("SoloQueueRank failed: %v", err)
	}
	if rank.Tier != "GOLD" || rank.Division != "II" || rank.LeaguePoints != 45 {
		t.Errorf("rank = %+v", rank)
	}

	rank, err = client.SoloQueueRank(context.Background(), "unranked-puuid")
	if err != nil {
		t.Fatalf("SoloQueueRank failed: %v", err)
	}
	if *rank != (RankedQueue{}) {
		t.Errorf("unranked player should have empty rank, got %+v", rank)
	}
}

func TestLoadCatalog_LocaleFallback(t *testing.T) {
	english := []ChampionSummary{{ID: -1, Name: "None"}, {ID: 1, Name: "Annie", Alias: "Annie"}, {ID: 64, Name: "Lee Sin", Alias: "LeeSin"}}
	simplified := []ChampionSummary{{ID: 1, Name: "安妮", Alias: "Annie"}}
	traditional := []ChampionSummary{{ID: 1, Name: "安妮", Alias: "Annie"}}

	tests := []struct {
		name       string
		responses  map[string]any // locale query -> body, nil = HTTP 500
		wantLocale string
		wantName   string
		wantErr    bool
	}{
		{
			name:       "simplified chinese",
			responses:  map[string]any{"zh_CN": simplified, "zh_TW": traditional, "": english},
			wantLocale: LocaleSimplified,
			wantName:   "安妮",
		},
		{
			name:       "untranslated zh_CN falls to zh_TW",
			responses:  map[string]any{"zh_CN": english, "zh_TW": traditional, "": english},
			wantLocale: LocaleTraditional,
			wantName:   "安妮",
		},
		{
			name:       "both untranslated reports non_zh",
			responses:  map[string]any{"zh_CN": english, "zh_TW": english, "": english},
			wantLocale: LocaleNonChinese,
			wantName:   "Annie",
		},
		{
			name:       "localized requests fail",
			responses:  map[string]any{"": english},
			wantLocale: LocaleClientDefault,
			wantName:   "Annie",
		},
		{
			name:       "zh_TW fails after untranslated zh_CN",
			responses:  map[string]any{"zh_CN": english, "": english},
			wantLocale: LocaleClientDefault,
			wantName:   "Annie",
		},
		{
			name:      "everything fails",
			responses: map[string]any{},
			wantErr:   true,
		},
		{
			name:      "empty default catalog",
			responses: map[string]any{"": []ChampionSummary{}},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, ok := tt.responses[r.URL.Query().Get("locale")]
				if !ok {
					http.Error(w, "boom", http.StatusInternalServerError)
					return
				}
				writeJSON(w, body)
			}))

			catalog, locale, err := LoadCatalog(context.Background(), client)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadCatalog failed: %v", err)
			}
			if locale != tt.wantLocale {
				t.Errorf("locale = %q, want %q", locale, tt.wantLocale)
			}
			if got := catalog.Name(1, "?"); got != tt.wantName {
				t.Errorf("Name(1) = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestCatalog_NameAndSlug(t *testing.T) {
	catalog := Catalog{
		64: {ID: 64, Name: "李青", Alias: "LeeSin"},
		7:  {ID: 7, Name: "Le Blanc"},
	}
	if got := catalog.Name(999, "Champion999"); got != "Champion999" {
		t.Errorf("fallback name = %q", got)
	}
	if got := catalog.Slug(64); got != "leesin" {
		t.Errorf("Slug(64) = %q, want leesin", got)
	}
	if got := catalog.Slug(7); got != "le-blanc" {
		t.Errorf("Slug(7) = %q, want le-blanc", got)
	}
	if got := catalog.Slug(999); got != "" {
		t.Errorf("Slug(unknown) = %q, want empty", got)
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeIcon(t *testing.T) {
	icon, err := DecodeIcon(encodePNG(t, 3, 2))
	if err != nil {
		t.Fatalf("DecodeIcon failed: %v", err)
	}
	if icon.Width != 3 || icon.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", icon.Width, icon.Height)
	}
	if len(icon.Pix) != 3*2*4 {
		t.Errorf("len(Pix) = %d, want %d", len(icon.Pix), 3*2*4)
	}
	if icon.Pix[0] != 255 || icon.Pix[1] != 0 || icon.Pix[3] != 255 {
		t.Errorf("first pixel = %v, want opaque red", icon.Pix[:4])
	}

	if _, err := DecodeIcon([]byte("not an image")); !errors.Is(err, lol.ErrMalformedInput) {
		t.Errorf("garbage decode error = %v, want ErrMalformedInput", err)
	}
}

func TestBuildCatalogDelta_DropsFailedIcons(t *testing.T) {
	pngBytes := encodePNG(t, 2, 2)
	client, _ := newFakeClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lol-game-data/assets/v1/champion-icons/1.png":
			w.Write(pngBytes)
		case "/lol-game-data/assets/v1/champion-icons/2.png":
			w.Write([]byte("corrupt"))
		default:
			http.NotFound(w, r)
		}
	}))

	catalog := Catalog{
		-1: {ID: -1, Name: "None"},
		1:  {ID: 1, Name: "安妮", Alias: "Annie"},
		2:  {ID: 2, Name: "奥拉夫", Alias: "Olaf"},
		3:  {ID: 3, Name: "加里奥", Alias: "Galio"},
	}

	delta := BuildCatalogDelta(context.Background(), client, catalog)
	if len(delta.Icons) != 1 {
		t.Errorf("icons = %d, want 1", len(delta.Icons))
	}
	if _, ok := delta.Icons[1]; !ok {
		t.Error("icon 1 missing")
	}
	if len(delta.IDToName) != 3 {
		t.Errorf("IDToName has %d entries, want 3 (placeholder id excluded)", len(delta.IDToName))
	}
	if delta.SlugToID["olaf"] != 2 || delta.NameToID["加里奥"] != 3 {
		t.Errorf("indexes wrong: %v %v", delta.SlugToID, delta.NameToID)
	}
}

func TestGameflowSession_Teams(t *testing.T) {
	var s GameflowSession
	s.Phase = "InProgress"
	s.GameData.TeamOne = []GamePlayer{{SummonerID: 1}, {SummonerID: 2}}
	s.GameData.TeamTwo = []GamePlayer{{SummonerID: 3}}

	if !s.InGame() {
		t.Error("InProgress should be in game")
	}
	mine, theirs := s.Teams(2)
	if len(mine) != 2 || len(theirs) != 1 {
		t.Errorf("Teams(2) = %d/%d, want 2/1", len(mine), len(theirs))
	}
	mine, theirs = s.Teams(3)
	if len(mine) != 1 || len(theirs) != 2 {
		t.Errorf("Teams(3) = %d/%d, want 1/2", len(mine), len(theirs))
	}

	s.Phase = "Lobby"
	if s.InGame() {
		t.Error("Lobby should not be in game")
	}
}

func TestChampSelectSession_LocalPlayer(t *testing.T) {
	s := ChampSelectSession{
		LocalPlayerCellID: 2,
		MyTeam: []ChampSelectPlayer{
			{CellID: 1, AssignedPosition: "top"},
			{CellID: 2, AssignedPosition: "utility"},
		},
	}
	p, ok := s.LocalPlayer()
	if !ok || p.AssignedPosition != "utility" {
		t.Errorf("LocalPlayer = %+v, %v", p, ok)
	}

	s.LocalPlayerCellID = -1
	if _, ok := s.LocalPlayer(); ok {
		t.Error("no local player expected for cell -1")
	}
}

func TestWatcher_WakesOnSubscribedEvent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 4)

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != BasicAuth("pw") {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 2; i++ {
			var msg []any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if len(msg) == 2 {
				if name, ok := msg[1].(string); ok {
					subscribed <- name
				}
			}
		}

		// Unsubscribed event first, then a real one
		conn.WriteMessage(websocket.TextMessage, []byte(`[8,"OnJsonApiEvent_lol-lobby_v2_lobby",{}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`[8,"OnJsonApiEvent_lol-champ-select_v1_session",{"eventType":"Update","uri":"/lol-champ-select/v1/session","data":{}}]`))

		// Hold the connection until the client goes away
		conn.ReadMessage()
	}))
	defer server.Close()

	cred := &Credential{Port: uint16(server.Listener.Addr().(*net.TCPAddr).Port), Password: "pw"}
	w := NewWatcher()
	defer w.Close()

	if err := w.Ensure(cred); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if !w.IsConnected() {
		t.Error("watcher should report connected")
	}
	// Same port is a no-op
	if err := w.Ensure(cred); err != nil {
		t.Fatalf("second Ensure failed: %v", err)
	}

	select {
	case <-w.Wake():
	case <-time.After(3 * time.Second):
		t.Fatal("no wake-up after champ select event")
	}

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		got[<-subscribed] = true
	}
	if !got[EventChampSelectSession] || !got[EventGameflowPhase] {
		t.Errorf("subscriptions = %v", got)
	}
}

func TestWatcher_IgnoresOtherFrames(t *testing.T) {
	w := NewWatcher()
	frames := []string{
		`[8,"OnJsonApiEvent_lol-lobby_v2_lobby",{}]`,
		`[5,"OnJsonApiEvent_lol-champ-select_v1_session"]`,
		`not json`,
		`[8]`,
		`{"type":8}`,
	}
	for _, f := range frames {
		if w.isSubscribedEvent([]byte(f)) {
			t.Errorf("frame %s should not wake", f)
		}
	}
	if !w.isSubscribedEvent([]byte(`[8,"OnJsonApiEvent_lol-gameflow_v1_gameflow-phase","InProgress"]`)) {
		t.Error("gameflow phase event should wake")
	}
}

func TestWatcher_DialFailure(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	port := uint16(server.Listener.Addr().(*net.TCPAddr).Port)
	server.Close()

	w := NewWatcher()
	if err := w.Ensure(&Credential{Port: port, Password: "pw"}); err == nil {
		t.Error("expected dial error")
	}
	if w.IsConnected() {
		t.Error("watcher should not report connected after failed dial")
	}
}
