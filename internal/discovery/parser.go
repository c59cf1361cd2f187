package discovery

import "strings"

// contestSeparators in match order. The dotted forms come first so the
// plain " vs " does not split "vs." mid-token.
var contestSeparators = []string{" vs. ", " vs ", " v. "}

// ParseContest splits a two-party contest title into its competitor
// names. It returns ok=false when the title has no recognized separator
// or either side is empty.
func ParseContest(title string) (home, away string, ok bool) {
	for _, sep := range contestSeparators {
		idx := strings.Index(strings.ToLower(title), sep)
		if idx < 0 {
			continue
		}
		home = strings.TrimSpace(title[:idx])
		away = strings.TrimSpace(title[idx+len(sep):])
		if home == "" || away == "" {
			return "", "", false
		}
		return home, away, true
	}
	return "", "", false
}
