package main

import (
	"fmt"
	"log"

	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
	"ghostscout/internal/session"
)

// onSnapshot applies one poll result to the view
func (a *App) onSnapshot(snap session.Snapshot) {
	if snap.Catalog != nil {
		a.onCatalog(snap.Catalog, snap.Locale)
	}

	if !snap.Connected {
		if a.view.connected || a.view.err != snap.Error {
			a.view = matchView{idToSlug: a.view.idToSlug, icons: a.view.icons, locale: a.view.locale, err: snap.Error}
			a.setStatus("Waiting for League... (" + snap.Error + ")")
		}
		return
	}

	if !a.view.connected {
		log.Printf("[LCU] Connected on port %d", credentialPort(snap.Credential))
	}
	a.view.connected = true

	// A connected snapshot with no roster and no error changes nothing
	if len(snap.Enemies) == 0 && len(snap.Players) == 0 && snap.Error == "" {
		return
	}

	if snap.Error != "" {
		a.view.err = snap.Error
		a.view.enemies = nil
		a.view.players = nil
		a.view.laneOpponent = nil
		a.view.matchupKey = ""
		a.setStatus("League Connected! " + snap.Error)
		return
	}

	changed := !sameRoster(a.view.players, snap.Players) || a.view.myPosition != snap.MyPosition
	a.view.err = ""
	a.view.enemies = snap.Enemies
	a.view.players = snap.Players
	a.view.myPosition = snap.MyPosition
	a.view.laneOpponent = nil
	if enemy, ok := snap.LaneOpponent(); ok {
		a.view.laneOpponent = &enemy
	}

	if changed {
		a.setStatus(fmt.Sprintf("In match: %d enemies, position %s", len(snap.Enemies), positionOrUnknown(snap.MyPosition)))
		a.emitRoster()
		a.showLaneCounters()
	}
}

// onCatalog records the one-time catalog delta
func (a *App) onCatalog(delta *lcu.CatalogDelta, locale string) {
	for slug, id := range delta.SlugToID {
		a.view.idToSlug[id] = slug
	}
	a.view.icons = len(delta.Icons)
	a.view.locale = locale
	log.Printf("[LCU] Catalog ready: %d champions, %d icons, locale %s", len(delta.IDToName), len(delta.Icons), locale)
}

// setStatus prints a status line when it differs from the last one
func (a *App) setStatus(status string) {
	if status == a.lastStatus {
		return
	}
	a.lastStatus = status
	fmt.Println(status)
}

// myPlayer returns the ally in my position
func (a *App) myPlayer() (lol.Player, bool) {
	if a.view.myPosition == "" {
		return lol.Player{}, false
	}
	for _, p := range a.view.players {
		if p.IsAlly && lol.SamePosition(p.Position, a.view.myPosition) {
			return p, true
		}
	}
	return lol.Player{}, false
}

// sameRoster compares champion picks and identities, which is all the view shows
func sameRoster(a, b []lol.Player) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SummonerID != b[i].SummonerID || a[i].ChampionID != b[i].ChampionID || a[i].Position != b[i].Position {
			return false
		}
	}
	return true
}

func credentialPort(cred *lcu.Credential) uint16 {
	if cred == nil {
		return 0
	}
	return cred.Port
}

func positionOrUnknown(position string) string {
	if position == "" {
		return "unknown"
	}
	return position
}
