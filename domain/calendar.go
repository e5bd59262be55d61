package domain

import "time"

// SameDay compares calendar dates in the location of b.
func SameDay(a, b time.Time) bool {
	if a.IsZero() {
		return false
	}
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsDayBefore reports whether a falls on the calendar day preceding ref.
func IsDayBefore(a, ref time.Time) bool {
	return SameDay(a, ref.AddDate(0, 0, -1))
}
