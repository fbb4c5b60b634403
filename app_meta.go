package main

import (
	"fmt"
	"log"

	"ghostscout/internal/opgg"
)

// progressUpdate is one harvester progress report
type progressUpdate struct {
	done, total int
	label       string
}

// harvestResult is the outcome of one FetchAll run
type harvestResult struct {
	cache *opgg.CounterCache
	err   error
}

// StartUpdate refreshes the counter data in the background. A second
// request while one is running is ignored. Every progress report reaches the
// UI loop; the harvest waits for it when the channel is full.
func (a *App) StartUpdate() {
	if a.updating {
		fmt.Println("Update already running")
		return
	}
	a.updating = true
	fmt.Println("Updating counter data from OP.GG...")

	go func() {
		cache, err := a.harvester.FetchAll(a.ctx, func(done, total int, label string) {
			select {
			case a.progress <- progressUpdate{done: done, total: total, label: label}:
			case <-a.ctx.Done():
			}
		})
		a.harvested <- harvestResult{cache: cache, err: err}
	}()
}

func (a *App) drainProgress() {
	for {
		select {
		case u := <-a.progress:
			emitProgress(u)
		case res := <-a.harvested:
			a.onHarvested(res)
		default:
			return
		}
	}
}

// onHarvested swaps in the new cache; readers only ever see whole caches
func (a *App) onHarvested(res harvestResult) {
	a.updating = false
	fmt.Println()
	if res.err != nil {
		log.Printf("[Harvest] Update failed: %v", res.err)
		fmt.Printf("Update failed: %v\n", res.err)
		return
	}
	a.counters = res.cache
	fmt.Printf("Update complete: %d lanes, %d entries\n", len(res.cache.Counters), res.cache.TotalEntries)

	a.view.matchupKey = ""
	a.showLaneCounters()
}
