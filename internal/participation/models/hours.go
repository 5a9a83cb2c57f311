package models

import (
	"math"
	"time"
)

// MaxSessionHours is the default ceiling on hours credited for one session.
const MaxSessionHours = 12.0

// SessionHours is the fractional hours between checkIn and checkOut clamped
// to [0, limit]. Clock skew that puts checkOut first yields zero.
func SessionHours(checkIn, checkOut time.Time, limit float64) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	if hours < 0 || math.IsNaN(hours) {
		return 0
	}
	if limit > 0 && hours > limit {
		return limit
	}
	return hours
}

// ScheduledHours is the whole number of hours an event is scheduled for.
func ScheduledHours(start, end time.Time) float64 {
	hours := math.Floor(end.Sub(start).Hours())
	if hours < 0 {
		return 0
	}
	return hours
}

// RoundHours rounds to two decimal places, half away from zero.
func RoundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}
