package main

import (
	"fmt"
	"strings"

	"ghostscout/internal/opgg"
)

// historyResult is the outcome of one match history lookup
type historyResult struct {
	riotID  string
	entries []opgg.MatchEntry
	err     error
}

// LookupHistory fetches recent games for "name#tag" in the background
func (a *App) LookupHistory(riotID string) {
	name, tag, ok := strings.Cut(riotID, "#")
	if !ok || name == "" || tag == "" {
		fmt.Printf("Invalid Riot ID %q, expected Name#TAG\n", riotID)
		return
	}

	go func() {
		entries, err := a.history.FetchMatchHistory(a.ctx, a.cfg.Region, name, tag)
		a.histories <- historyResult{riotID: riotID, entries: entries, err: err}
	}()
}

func (a *App) drainHistories() {
	for {
		select {
		case res := <-a.histories:
			if res.err != nil {
				fmt.Printf("Match history for %s failed: %v\n", res.riotID, res.err)
				continue
			}
			name, tag, _ := strings.Cut(res.riotID, "#")
			emitHistory(res.riotID, res.entries)
			fmt.Println("  " + opgg.MatchHistoryURL(a.cfg.Region, name, tag))
		default:
			return
		}
	}
}
