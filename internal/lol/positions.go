package lol

import "strings"

// Canonical positions, as OP.GG names them.
const (
	PositionTop     = "TOP"
	PositionJungle  = "JUNGLE"
	PositionMid     = "MID"
	PositionADC     = "ADC"
	PositionSupport = "SUPPORT"
)

// Positions lists the canonical positions in lane order
var Positions = []string{PositionTop, PositionJungle, PositionMid, PositionADC, PositionSupport}

// CanonicalPosition maps a raw position string from either the League Client
// ("middle", "BOTTOM", "utility") or OP.GG ("MID", "ADC") to its canonical form.
// Canonical values map to themselves; anything unknown maps to "".
func CanonicalPosition(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TOP":
		return PositionTop
	case "JUNGLE":
		return PositionJungle
	case "MIDDLE", "MID":
		return PositionMid
	case "BOTTOM", "BOT", "ADC":
		return PositionADC
	case "UTILITY", "SUPPORT":
		return PositionSupport
	default:
		return ""
	}
}

// PositionSlug returns the URL path segment OP.GG uses for a position
func PositionSlug(position string) string {
	return strings.ToLower(CanonicalPosition(position))
}

// SamePosition reports whether two raw positions refer to the same lane.
// Unknown or empty positions never match.
func SamePosition(a, b string) bool {
	ca := CanonicalPosition(a)
	return ca != "" && ca == CanonicalPosition(b)
}

// PositionLabel returns a human-readable lane name
func PositionLabel(position string) string {
	switch CanonicalPosition(position) {
	case PositionTop:
		return "top lane"
	case PositionJungle:
		return "jungle"
	case PositionMid:
		return "mid lane"
	case PositionADC:
		return "bot lane"
	case PositionSupport:
		return "support"
	}
	return ""
}
