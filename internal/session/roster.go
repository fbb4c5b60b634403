package session

import (
	"context"

	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
)

// UnknownChampion names an enemy whose champion is not in the catalog
const UnknownChampion = "Unknown"

// rosterSlot is one player as reported by either the champion select or
// the in-game roster, with the position already canonical.
type rosterSlot struct {
	SummonerID int64
	ChampionID int64
	Position   string
	Name       string
	IsAlly     bool
}

func champSelectSlots(players []lcu.ChampSelectPlayer, ally bool) []rosterSlot {
	slots := make([]rosterSlot, 0, len(players))
	for _, p := range players {
		slots = append(slots, rosterSlot{
			SummonerID: p.SummonerID,
			ChampionID: p.ChampionID,
			Position:   lol.CanonicalPosition(p.AssignedPosition),
			IsAlly:     ally,
		})
	}
	return slots
}

func gameSlots(players []lcu.GamePlayer, ally bool) []rosterSlot {
	slots := make([]rosterSlot, 0, len(players))
	for _, p := range players {
		slots = append(slots, rosterSlot{
			SummonerID: p.SummonerID,
			ChampionID: p.ChampionID,
			Position:   lol.CanonicalPosition(p.SelectedPosition),
			Name:       p.SummonerName,
			IsAlly:     ally,
		})
	}
	return slots
}

// buildRoster turns both teams into the enemy list and the full player list.
// Cached identities are used as is; the rest go through enrichment and the
// results are merged back into the cache before returning.
func (p *Poller) buildRoster(ctx context.Context, src profileSource, mine, theirs []rosterSlot) ([]lol.Enemy, []lol.Player) {
	enemies := make([]lol.Enemy, 0, len(theirs))
	for _, s := range theirs {
		enemies = append(enemies, lol.Enemy{
			ChampionID: s.ChampionID,
			Name:       p.catalog.Name(s.ChampionID, UnknownChampion),
			Slug:       p.catalog.Slug(s.ChampionID),
			Position:   s.Position,
		})
	}

	var (
		players []lol.Player
		jobs    []enrichJob
		pending []int
	)
	for _, team := range [][]rosterSlot{mine, theirs} {
		for _, s := range team {
			if s.SummonerID <= 0 {
				continue
			}
			championName := p.catalog.Name(s.ChampionID, "")

			if id, ok := p.identities[s.SummonerID]; ok {
				if s.Name != "" {
					id.GameName = s.Name
				}
				players = append(players, s.player(id, championName))
				continue
			}

			pending = append(pending, len(players))
			players = append(players, s.player(Identity{}, championName))
			jobs = append(jobs, enrichJob{
				SummonerID: s.SummonerID,
				ChampionID: s.ChampionID,
				Position:   s.Position,
				NameHint:   s.Name,
				IsAlly:     s.IsAlly,
			})
		}
	}

	if len(jobs) == 0 {
		return enemies, players
	}

	for i, id := range enrich(ctx, src, jobs) {
		job := jobs[i]
		p.identities[job.SummonerID] = id

		slot := rosterSlot{
			SummonerID: job.SummonerID,
			ChampionID: job.ChampionID,
			Position:   job.Position,
			IsAlly:     job.IsAlly,
		}
		players[pending[i]] = slot.player(id, p.catalog.Name(job.ChampionID, ""))
	}
	return enemies, players
}
