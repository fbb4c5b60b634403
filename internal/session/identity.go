package session

import (
	"context"
	"fmt"
	"sync"

	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
)

// Identity is what enrichment learns about a summoner: Riot ID, account
// identifiers and solo queue rank.
type Identity struct {
	GameName     string
	TagLine      string
	PUUID        string
	AccountID    int64
	RankTier     string
	RankDivision string
	RankLP       int
}

// IdentityCache maps summoner id to a resolved identity. It lives as long as
// the poller that owns it and is only touched from the poll loop.
type IdentityCache map[int64]Identity

// profileSource is the part of the LCU client enrichment needs
type profileSource interface {
	Summoner(ctx context.Context, summonerID int64) (*lcu.Summoner, error)
	SoloQueueRank(ctx context.Context, puuid string) (*lcu.RankedQueue, error)
}

// enrichJob is a roster slot whose summoner is not in the cache yet
type enrichJob struct {
	SummonerID int64
	ChampionID int64
	Position   string
	NameHint   string
	IsAlly     bool
}

// placeholderName is shown when the profile lookup fails and no hint exists
func placeholderName(summonerID int64) string {
	return fmt.Sprintf("Player%d", summonerID)
}

// enrich resolves every job concurrently, one goroutine per job, and waits
// for all of them. Results are index-aligned with jobs. A failed lookup
// degrades its own result and never affects the others.
func enrich(ctx context.Context, src profileSource, jobs []enrichJob) []Identity {
	results := make([]Identity, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job enrichJob) {
			defer wg.Done()
			results[i] = resolveIdentity(ctx, src, job)
		}(i, job)
	}
	wg.Wait()

	return results
}

// resolveIdentity looks up the profile, then the rank by puuid
func resolveIdentity(ctx context.Context, src profileSource, job enrichJob) Identity {
	var id Identity

	summoner, err := src.Summoner(ctx, job.SummonerID)
	if err != nil {
		id.GameName = job.NameHint
		if id.GameName == "" {
			id.GameName = placeholderName(job.SummonerID)
		}
		return id
	}

	id.GameName = job.NameHint
	if id.GameName == "" {
		id.GameName = summoner.Name()
	}
	id.TagLine = summoner.TagLine
	id.PUUID = summoner.PUUID
	id.AccountID = summoner.AccountID

	if id.PUUID == "" {
		return id
	}
	rank, err := src.SoloQueueRank(ctx, id.PUUID)
	if err != nil {
		return id
	}
	id.RankTier = rank.Tier
	id.RankDivision = rank.Division
	id.RankLP = rank.LeaguePoints
	return id
}

// player combines a roster slot with a resolved identity
func (s rosterSlot) player(id Identity, championName string) lol.Player {
	return lol.Player{
		SummonerID:   s.SummonerID,
		GameName:     id.GameName,
		TagLine:      id.TagLine,
		PUUID:        id.PUUID,
		AccountID:    id.AccountID,
		ChampionID:   s.ChampionID,
		ChampionName: championName,
		Position:     s.Position,
		RankTier:     id.RankTier,
		RankDivision: id.RankDivision,
		RankLP:       id.RankLP,
		IsAlly:       s.IsAlly,
	}
}
