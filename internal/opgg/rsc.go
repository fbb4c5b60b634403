package opgg

import (
	"strings"

	json "github.com/goccy/go-json"

	"ghostscout/internal/valuetree"
)

const (
	rscMarker = "self.__next_f.push(["
	rscClose  = "])</script>"

	// Fragments shorter than this are framework noise, never a dataset
	minFragmentLen = 500
)

// extractRSC scans the React Server Component frames pushed by a Next.js
// page and returns the first "data" array whose first element matches pred.
//
// Each frame looks like self.__next_f.push([1,"<id>:<json>"])</script>; the
// JSON after the first colon of every string element is searched.
func extractRSC(html string, pred valuetree.Predicate) ([]valuetree.Value, bool) {
	rest := html
	for {
		i := strings.Index(rest, rscMarker)
		if i < 0 {
			return nil, false
		}
		rest = rest[i+len(rscMarker):]

		end := strings.Index(rest, rscClose)
		if end < 0 {
			continue
		}
		fragment := rest[:end+1]
		if len(fragment) < minFragmentLen {
			continue
		}

		var elems []any
		if err := json.Unmarshal([]byte("["+fragment), &elems); err != nil {
			continue
		}

		for _, elem := range elems {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			colon := strings.IndexByte(s, ':')
			if colon < 0 {
				continue
			}
			inner, err := valuetree.Parse([]byte(s[colon+1:]))
			if err != nil {
				continue
			}
			if found, ok := valuetree.FindDataArray(inner, pred, valuetree.DefaultMaxDepth); ok {
				return found, true
			}
		}
	}
}
