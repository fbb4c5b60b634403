package lcu

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"

	"ghostscout/internal/lol"
)

// Username is the fixed Basic auth user of the local client API
const Username = "riot"

// NewHTTPClient creates the HTTP client used for every LCU request.
// It is safe to share across cycles; only the credential changes.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // LCU uses self-signed cert
			},
		},
		Timeout: timeout,
	}
}

// Client talks to the League Client API for one credential
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
}

// NewClient binds an HTTP client to a credential
func NewClient(httpClient *http.Client, cred *Credential) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    fmt.Sprintf("https://127.0.0.1:%d", cred.Port),
		authHeader: BasicAuth(cred.Password),
	}
}

// BasicAuth builds the Authorization header value for a lockfile password
func BasicAuth(password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(Username+":"+password))
}

// BaseURL returns the https://127.0.0.1:<port> root this client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request to the LCU API
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lol.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d for %s", lol.ErrRemoteFailure, resp.StatusCode, endpoint)
	}
	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON body into out
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	resp, err := c.Get(ctx, endpoint, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", lol.ErrMalformedInput, endpoint, err)
	}
	return nil
}

// GetBytes performs a GET request and returns the raw body (images etc.)
func (c *Client) GetBytes(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lol.ErrRemoteFailure, err)
	}
	return body, nil
}

// CurrentSummonerID returns the local player's summoner id
func (c *Client) CurrentSummonerID(ctx context.Context) (int64, error) {
	var summoner struct {
		SummonerID int64 `json:"summonerId"`
	}
	if err := c.GetJSON(ctx, "/lol-summoner/v1/current-summoner", nil, &summoner); err != nil {
		return 0, err
	}
	return summoner.SummonerID, nil
}

// ChampSelectSession returns the current champion select session.
// It fails with a remote failure (HTTP 404) outside champion select.
func (c *Client) ChampSelectSession(ctx context.Context) (*ChampSelectSession, error) {
	session := ChampSelectSession{LocalPlayerCellID: -1}
	if err := c.GetJSON(ctx, "/lol-champ-select/v1/session", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GameflowSession returns the current gameflow session
func (c *Client) GameflowSession(ctx context.Context) (*GameflowSession, error) {
	var session GameflowSession
	if err := c.GetJSON(ctx, "/lol-gameflow/v1/session", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Summoner returns the profile of a summoner by id
func (c *Client) Summoner(ctx context.Context, summonerID int64) (*Summoner, error) {
	var s Summoner
	if err := c.GetJSON(ctx, fmt.Sprintf("/lol-summoner/v1/summoners/%d", summonerID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SoloQueueRank returns the ranked solo/duo entry for a player
func (c *Client) SoloQueueRank(ctx context.Context, puuid string) (*RankedQueue, error) {
	var stats struct {
		QueueMap map[string]RankedQueue `json:"queueMap"`
	}
	if err := c.GetJSON(ctx, "/lol-ranked/v1/ranked-stats/"+url.PathEscape(puuid), nil, &stats); err != nil {
		return nil, err
	}
	solo, ok := stats.QueueMap["RANKED_SOLO_5x5"]
	if !ok {
		return &RankedQueue{}, nil
	}
	return &solo, nil
}
