// Package leaderboard ranks volunteers by cumulative hours.
//
// It is a read model: the participation service records a user's new total
// after each committed hour change, and the board never feeds back into
// hour or badge decisions.
package leaderboard

import (
	"cmp"
	"slices"

	id "volunteerhub/pkg/domain"
)

// DefaultLimit is used when callers ask for a non-positive number of entries.
const DefaultLimit = 10

// MaxLimit bounds a single Top request.
const MaxLimit = 100

// Entry is one ranked volunteer. Rank starts at 1.
type Entry struct {
	Rank       int       `json:"rank"`
	UserID     id.UserID `json:"user_id"`
	TotalHours float64   `json:"total_hours"`
}

// NormalizeLimit clamps n to [1, MaxLimit], defaulting to DefaultLimit.
func NormalizeLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// rank orders entries by hours descending, then user id for stable ties,
// and assigns ranks.
func rank(entries []Entry) []Entry {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.TotalHours, a.TotalHours); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID.String(), b.UserID.String())
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
