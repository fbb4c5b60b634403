package main

import (
	"fmt"
	"sort"
	"strings"

	"ghostscout/internal/lol"
	"ghostscout/internal/opgg"
)

// emitRoster prints both teams with their solo queue ranks
func (a *App) emitRoster() {
	if len(a.view.players) == 0 {
		for _, e := range a.view.enemies {
			fmt.Printf("  Enemy  %-8s %s\n", positionOrUnknown(e.Position), e.Name)
		}
		return
	}

	for _, p := range a.view.players {
		side := "Enemy"
		if p.IsAlly {
			side = "Ally "
		}
		fmt.Printf("  %s  %-8s %-14s %-24s %s\n",
			side,
			positionOrUnknown(lol.CanonicalPosition(p.Position)),
			p.ChampionName,
			p.RiotID(),
			lol.FormatRank(p.RankTier, p.RankDivision, p.RankLP),
		)
	}
}

// bestCounters returns the matchups the champion loses most, lowest win rate first
func bestCounters(views []opgg.CounterView, limit int) []opgg.CounterView {
	sorted := make([]opgg.CounterView, len(views))
	copy(sorted, views)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WinRate < sorted[j].WinRate
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func emitCounters(champion string, views []opgg.CounterView) {
	if len(views) == 0 {
		return
	}
	fmt.Printf("  Picks that beat %s:\n", champion)
	for _, v := range views {
		fmt.Printf("    %-14s %5.1f%% (%d games)\n", v.Name, 100-v.WinRate, v.Games)
	}
}

func emitProgress(u progressUpdate) {
	if u.total == 0 {
		return
	}
	fmt.Printf("\r[%3d%%] %d/%d %s", u.done*100/u.total, u.done, u.total, padLabel(u.label))
}

func padLabel(label string) string {
	const width = 24
	if n := len([]rune(label)); n < width {
		return label + strings.Repeat(" ", width-n)
	}
	return label
}

func emitHistory(riotID string, entries []opgg.MatchEntry) {
	fmt.Printf("Recent games for %s:\n", riotID)
	if len(entries) == 0 {
		fmt.Println("  (none)")
		return
	}
	wins := 0
	for _, m := range entries {
		result := "L"
		if m.Win {
			result = "W"
			wins++
		}
		fmt.Printf("  %s  %-15s %-10s %2dm  champ %d\n", result, lol.QueueName(m.QueueID), m.KDA(), m.DurationSecs/60, m.ChampionID)
	}
	fmt.Printf("  %d-%d (%.0f%% win rate)\n", wins, len(entries)-wins, float64(wins)*100/float64(len(entries)))
}
