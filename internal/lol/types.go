package lol

// Enemy is an opposing champion as seen during champion select or in game
type Enemy struct {
	ChampionID int64
	Name       string
	Slug       string
	Position   string
}

// Player is one of the ten players in the current match, enriched with
// identity and solo queue rank.
type Player struct {
	SummonerID   int64
	GameName     string
	TagLine      string
	PUUID        string
	AccountID    int64
	ChampionID   int64
	ChampionName string
	Position     string
	RankTier     string
	RankDivision string
	RankLP       int
	IsAlly       bool
}

// RiotID returns "name#tag", or just the name when the tag is unknown
func (p Player) RiotID() string {
	if p.TagLine == "" {
		return p.GameName
	}
	return p.GameName + "#" + p.TagLine
}
