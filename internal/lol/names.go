package lol

import (
	"fmt"
	"strings"
)

// Slug builds the OP.GG champion slug from the client alias, falling back to
// the display name when the alias is empty.
func Slug(alias, name string) string {
	s := alias
	if s == "" {
		s = name
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// LooksLikeChinese reports whether s contains a CJK unified ideograph
func LooksLikeChinese(s string) bool {
	for _, r := range s {
		if r >= '\u4e00' && r <= '\u9fff' {
			return true
		}
	}
	return false
}

// TierOrder maps ranked tiers to their ordering (higher is better)
var TierOrder = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"EMERALD":     6,
	"DIAMOND":     7,
	"MASTER":      8,
	"GRANDMASTER": 9,
	"CHALLENGER":  10,
}

// FormatRank renders a solo queue rank, e.g. "GOLD II 45 LP".
// Apex tiers have no division. Unranked players render as "Unranked".
func FormatRank(tier, division string, lp int) string {
	if _, ok := TierOrder[tier]; !ok {
		return "Unranked"
	}
	switch tier {
	case "MASTER", "GRANDMASTER", "CHALLENGER":
		return fmt.Sprintf("%s %d LP", tier, lp)
	}
	if division == "" || division == "NA" {
		return tier
	}
	return fmt.Sprintf("%s %s %d LP", tier, division, lp)
}

// QueueName returns a short label for a queue id
func QueueName(queueID int64) string {
	switch queueID {
	case 420:
		return "Ranked Solo/Duo"
	case 440:
		return "Ranked Flex"
	case 400, 430:
		return "Normal"
	case 450:
		return "ARAM"
	case 900, 1010:
		return "URF"
	case 1700:
		return "Arena"
	default:
		return "Other"
	}
}
