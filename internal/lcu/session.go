package lcu

// ChampSelectSession represents the champion select session data
type ChampSelectSession struct {
	LocalPlayerCellID int64               `json:"localPlayerCellId"`
	MyTeam            []ChampSelectPlayer `json:"myTeam"`
	TheirTeam         []ChampSelectPlayer `json:"theirTeam"`
	Timer             ChampSelectTimer    `json:"timer"`
}

type ChampSelectTimer struct {
	Phase           string `json:"phase"`
	TimeLeftInPhase int64  `json:"timeLeftInPhase"`
}

type ChampSelectPlayer struct {
	CellID           int64  `json:"cellId"`
	ChampionID       int64  `json:"championId"`
	SummonerID       int64  `json:"summonerId"`
	AssignedPosition string `json:"assignedPosition"`
	Team             int    `json:"team"`
}

// LocalPlayer returns the local player's entry in myTeam
func (s *ChampSelectSession) LocalPlayer() (ChampSelectPlayer, bool) {
	if s.LocalPlayerCellID < 0 {
		return ChampSelectPlayer{}, false
	}
	for _, p := range s.MyTeam {
		if p.CellID == s.LocalPlayerCellID {
			return p, true
		}
	}
	return ChampSelectPlayer{}, false
}

// Gameflow phases during which the in-game roster is meaningful
var activeGamePhases = map[string]bool{
	"GameStart":       true,
	"InProgress":      true,
	"Reconnect":       true,
	"WaitingForStats": true,
}

// GameflowSession represents the current gameflow session
type GameflowSession struct {
	Phase    string `json:"phase"`
	GameData struct {
		GameID  int64        `json:"gameId"`
		TeamOne []GamePlayer `json:"teamOne"`
		TeamTwo []GamePlayer `json:"teamTwo"`
	} `json:"gameData"`
}

// GamePlayer represents a player in the in-game roster
type GamePlayer struct {
	SummonerID       int64  `json:"summonerId"`
	SummonerName     string `json:"summonerName"`
	ChampionID       int64  `json:"championId"`
	PUUID            string `json:"puuid"`
	SelectedPosition string `json:"selectedPosition"`
}

// InGame reports whether the phase indicates an active game
func (s *GameflowSession) InGame() bool {
	return activeGamePhases[s.Phase]
}

// Teams splits the roster into (mine, theirs) by locating summonerID.
// When the local player is on neither team, teamTwo is treated as mine.
func (s *GameflowSession) Teams(summonerID int64) (mine, theirs []GamePlayer) {
	for _, p := range s.GameData.TeamOne {
		if p.SummonerID == summonerID {
			return s.GameData.TeamOne, s.GameData.TeamTwo
		}
	}
	return s.GameData.TeamTwo, s.GameData.TeamOne
}

// Summoner is a summoner profile
type Summoner struct {
	SummonerID  int64  `json:"summonerId"`
	GameName    string `json:"gameName"`
	DisplayName string `json:"displayName"`
	TagLine     string `json:"tagLine"`
	PUUID       string `json:"puuid"`
	AccountID   int64  `json:"accountId"`
}

// Name returns the Riot ID game name, falling back to the legacy display name
func (s *Summoner) Name() string {
	if s.GameName != "" {
		return s.GameName
	}
	return s.DisplayName
}

// RankedQueue is one entry of the ranked-stats queue map
type RankedQueue struct {
	Tier         string `json:"tier"`
	Division     string `json:"division"`
	LeaguePoints int    `json:"leaguePoints"`
}
