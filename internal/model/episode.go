package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// EpisodePrefix is the display prefix used by episode selectors
const EpisodePrefix = "Episode "

// EpisodeNumber identifies an episode. Catalogs publish recap and special
// episodes with fractional numbers such as 12.5.
type EpisodeNumber float64

// String formats the number without trailing zeros: 3, 12.5
func (e EpisodeNumber) String() string {
	return strconv.FormatFloat(float64(e), 'f', -1, 64)
}

// Label returns the selector label, e.g. "Episode 3"
func (e EpisodeNumber) Label() string {
	return EpisodePrefix + e.String()
}

// ParseEpisodeNumber accepts either a bare number or a selector label
// ("Episode 3"); the last whitespace separated field is parsed.
func ParseEpisodeNumber(s string) (EpisodeNumber, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("episode is empty")
	}
	n, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid episode %q: %w", s, err)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("invalid episode %q: not a finite number", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid episode %q: negative", s)
	}
	return EpisodeNumber(n), nil
}

// SortEpisodes sorts ascending and drops duplicates
func SortEpisodes(eps []EpisodeNumber) []EpisodeNumber {
	sorted := append([]EpisodeNumber(nil), eps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:0]
	for i, e := range sorted {
		if i > 0 && e == sorted[i-1] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EpisodeLabels returns selector labels for the episodes
func EpisodeLabels(eps []EpisodeNumber) []string {
	out := make([]string, len(eps))
	for i, e := range eps {
		out[i] = e.Label()
	}
	return out
}
