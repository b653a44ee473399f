package radar

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseReleaseDate normalizes a Spotify release date to a calendar date.
// Missing month and day default to 01, so "2024" is 2024-01-01 and
// "2024-06" is 2024-06-01.
func ParseReleaseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) > 3 || parts[0] == "" {
		return time.Time{}, fmt.Errorf("invalid release date %q", s)
	}

	nums := [3]int{0, 1, 1}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid release date %q: %w", s, err)
		}
		nums[i] = n
	}

	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid release date %q", s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid release date %q", s)
	}
	return t, nil
}

// Within reports whether a release date falls on or after the cutoff.
func Within(release, cutoff time.Time) bool {
	return !release.Before(cutoff)
}

// Cutoff returns the earliest release date kept for weeksBack weeks,
// truncated to the calendar day of now.
func Cutoff(now time.Time, weeksBack int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -7*weeksBack)
}

// Candidate is a track collected for the playlist, tagged with where it
// came from.
type Candidate struct {
	ID           string `json:"id"`
	URI          string `json:"uri"`
	Name         string `json:"name"`
	Artist       string `json:"artist"`
	Album        string `json:"album"`
	ReleaseDate  string `json:"release_date"`
	SourceArtist string `json:"source_artist"`
	Feature      bool   `json:"feature,omitempty"`

	primaryArtist string
}

// Dedupe drops candidates whose track id was already seen. The first
// occurrence wins and order is preserved.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]bool, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// SortByRelease orders candidates newest first. ReleaseDate is always
// YYYY-MM-DD, so string order is date order; ties keep collection order.
func SortByRelease(cands []Candidate) {
	slices.SortStableFunc(cands, func(a, b Candidate) int {
		return strings.Compare(b.ReleaseDate, a.ReleaseDate)
	})
}
