package main

import (
	"fmt"

	"ghostscout/internal/openai"
)

// laneCounterLimit caps how many counters are printed for the lane opponent
const laneCounterLimit = 5

// showLaneCounters prints how the lane opponent fares against its most
// common matchups and, when my champion is known, asks for matchup advice
func (a *App) showLaneCounters() {
	enemy := a.view.laneOpponent
	if enemy == nil {
		return
	}
	if a.counters.IsEmpty() {
		fmt.Printf("Lane opponent: %s (no counter data, run with -update)\n", enemy.Name)
		return
	}

	views := a.counters.Lookup(enemy.Slug, enemy.Position)
	fmt.Printf("Lane opponent: %s, %d known matchups\n", enemy.Name, len(views))
	emitCounters(enemy.Name, bestCounters(views, laneCounterLimit))

	me, ok := a.myPlayer()
	if !ok || me.ChampionID == 0 {
		return
	}
	mySlug := a.view.idToSlug[me.ChampionID]
	key := fmt.Sprintf("%d:%d:%s", me.ChampionID, enemy.ChampionID, a.view.myPosition)
	if key == a.view.matchupKey {
		return
	}
	a.view.matchupKey = key

	winRate, _ := a.counters.WinRateAgainst(mySlug, a.view.myPosition, enemy.Slug)
	system, user := openai.BuildMatchupPrompts(me.ChampionName, enemy.Name, a.view.myPosition, winRate)
	a.startStream(streamMatchup, system, user)
}
