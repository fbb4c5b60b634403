package session

import (
	"ghostscout/internal/lcu"
	"ghostscout/internal/lol"
)

// DiagnosticLimit bounds the length of error text carried on a snapshot
const DiagnosticLimit = 140

// Snapshot is the match state produced by one poll cycle. Ownership moves to
// the receiver on send; the poller never touches a sent snapshot again.
//
// A connected snapshot with no roster and no Error carries no news: the
// consumer keeps whatever lists it already shows.
type Snapshot struct {
	Connected      bool
	Error          string
	Enemies        []lol.Enemy
	Players        []lol.Player
	MyPosition     string
	LaneOpponentID *int64
	Locale         string

	// Catalog is set on exactly one snapshot per process, the first one
	// sent after the champion icons were loaded.
	Catalog    *lcu.CatalogDelta
	Credential *lcu.Credential
}

// Allies returns the players on the local player's team
func (s *Snapshot) Allies() []lol.Player {
	var out []lol.Player
	for _, p := range s.Players {
		if p.IsAlly {
			out = append(out, p)
		}
	}
	return out
}

// LaneOpponent returns the enemy in the local player's lane, if known
func (s *Snapshot) LaneOpponent() (lol.Enemy, bool) {
	if s.LaneOpponentID == nil {
		return lol.Enemy{}, false
	}
	for _, e := range s.Enemies {
		if e.ChampionID == *s.LaneOpponentID {
			return e, true
		}
	}
	return lol.Enemy{}, false
}

// laneOpponent picks the first enemy sharing myPosition. Positions are
// compared in canonical form so "BOTTOM" and "ADC" meet.
func laneOpponent(enemies []lol.Enemy, myPosition string) *int64 {
	if myPosition == "" {
		return nil
	}
	for _, e := range enemies {
		if lol.SamePosition(e.Position, myPosition) {
			id := e.ChampionID
			return &id
		}
	}
	return nil
}
