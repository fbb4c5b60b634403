package lol

import "errors"

// Error taxonomy shared by every data source. Packages wrap these with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	ErrUnavailable    = errors.New("unavailable")
	ErrMalformedInput = errors.New("malformed input")
	ErrRemoteFailure  = errors.New("remote failure")
	ErrNotFound       = errors.New("not found")
	ErrStreamFailure  = errors.New("stream failure")
)

// Truncate shortens a diagnostic to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
