// Package week computes Monday-aligned weekly windows.
//
// A window is identified by the calendar date of its Monday. Dates carry no
// time-of-day, so two instants in the same Monday-to-Sunday week always map to
// equal values regardless of the hour they were taken at:
//
//	start := week.Start(time.Now())
//	if usage.WeekStart != start {
//		// the stored counter belongs to an earlier week
//	}
//
// Date values are comparable with == and marshal as YYYY-MM-DD, which makes them
// safe to persist and compare after a round trip through storage.
package week
