package opgg

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"ghostscout/internal/lol"
)

// DefaultAPIBase is the OP.GG summoner API
const DefaultAPIBase = "https://lol-api-summoner.op.gg"

// MatchEntry is one recent game of a player
type MatchEntry struct {
	ChampionID   int64  `json:"champion_id"`
	Win          bool   `json:"win"`
	Kills        int64  `json:"kills"`
	Deaths       int64  `json:"deaths"`
	Assists      int64  `json:"assists"`
	DurationSecs int64  `json:"duration_secs"`
	TimestampMs  int64  `json:"timestamp_ms"`
	QueueID      int64  `json:"queue_id"`
	GameType     string `json:"game_type"`
}

// KDA renders "k/d/a"
func (m MatchEntry) KDA() string {
	return fmt.Sprintf("%d/%d/%d", m.Kills, m.Deaths, m.Assists)
}

// HistoryCache stores fetched histories keyed by region and Riot ID
type HistoryCache interface {
	Get(region, riotID string, maxAge time.Duration) ([]MatchEntry, bool)
	Put(region, riotID string, entries []MatchEntry) error
}

// HistoryClient fetches recent games from the OP.GG summoner API
type HistoryClient struct {
	client  *http.Client
	apiBase string
	cache   HistoryCache
	ttl     time.Duration
}

// NewHistoryClient creates a client. cache may be nil; ttl is how long a
// cached history stays fresh.
func NewHistoryClient(httpClient *http.Client, apiBase string, cache HistoryCache, ttl time.Duration) *HistoryClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &HistoryClient{client: httpClient, apiBase: apiBase, cache: cache, ttl: ttl}
}

type summonerSearchResponse struct {
	Data []struct {
		SummonerID string `json:"summoner_id"`
	} `json:"data"`
}

type gamesResponse struct {
	Data []struct {
		GameLengthSecond int64  `json:"game_length_second"`
		GameType         string `json:"game_type"`
		QueueID          int64  `json:"queue_id"`
		CreatedAt        string `json:"created_at"`
		Participants     []struct {
			ChampionID int64 `json:"champion_id"`
			Summoner   struct {
				GameName string `json:"game_name"`
			} `json:"summoner"`
			Stats struct {
				Result string `json:"result"`
				Kill   int64  `json:"kill"`
				Death  int64  `json:"death"`
				Assist int64  `json:"assist"`
			} `json:"stats"`
		} `json:"participants"`
	} `json:"data"`
}

// FetchMatchHistory returns the player's last 20 games, served from the
// cache while fresh.
func (c *HistoryClient) FetchMatchHistory(ctx context.Context, region, gameName, tagLine string) ([]MatchEntry, error) {
	riotID := gameName + "#" + tagLine
	if c.cache != nil {
		if entries, ok := c.cache.Get(region, riotID, c.ttl); ok {
			return entries, nil
		}
	}

	summonerID, err := c.lookupSummoner(ctx, region, riotID)
	if err != nil {
		return nil, err
	}

	var games gamesResponse
	url := fmt.Sprintf("%s/api/%s/summoners/%s/games?limit=20&game_type=total&hl=zh_CN&ended_at=", c.apiBase, region, summonerID)
	if err := c.getJSON(ctx, url, &games); err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}

	target := strings.ToLower(gameName)
	entries := make([]MatchEntry, 0, len(games.Data))
	for _, game := range games.Data {
		for _, p := range game.Participants {
			if strings.ToLower(p.Summoner.GameName) != target {
				continue
			}
			var ts int64
			if t, err := time.Parse(time.RFC3339, game.CreatedAt); err == nil {
				ts = t.UnixMilli()
			}
			entries = append(entries, MatchEntry{
				ChampionID:   p.ChampionID,
				Win:          p.Stats.Result == "WIN",
				Kills:        p.Stats.Kill,
				Deaths:       p.Stats.Death,
				Assists:      p.Stats.Assist,
				DurationSecs: game.GameLengthSecond,
				TimestampMs:  ts,
				QueueID:      game.QueueID,
				GameType:     game.GameType,
			})
			break
		}
	}

	if c.cache != nil {
		if err := c.cache.Put(region, riotID, entries); err != nil {
			log.Printf("[History] Failed to cache %s: %v", riotID, err)
		}
	}
	return entries, nil
}

func (c *HistoryClient) lookupSummoner(ctx context.Context, region, riotID string) (string, error) {
	var search summonerSearchResponse
	url := fmt.Sprintf("%s/api/v3/%s/summoners?riot_id=%s&hl=zh_CN", c.apiBase, region, percentEncode(riotID))
	if err := c.getJSON(ctx, url, &search); err != nil {
		return "", fmt.Errorf("failed to look up summoner: %w", err)
	}
	if len(search.Data) == 0 || search.Data[0].SummonerID == "" {
		return "", fmt.Errorf("%w: summoner %s", lol.ErrNotFound, riotID)
	}
	return search.Data[0].SummonerID, nil
}

func (c *HistoryClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", lol.ErrRemoteFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", lol.ErrRemoteFailure, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", lol.ErrMalformedInput, err)
	}
	return nil
}

// MatchHistoryURL returns the OP.GG profile page for a Riot ID
func MatchHistoryURL(region, gameName, tagLine string) string {
	return fmt.Sprintf("https://www.op.gg/zh-cn/lol/summoners/%s/%s", region, percentEncode(gameName+"-"+tagLine))
}

// percentEncode escapes everything except RFC 3986 unreserved characters
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
