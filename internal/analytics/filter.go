// Package analytics is the aggregation and segmentation engine behind the dashboard.
//
// Every function here is a pure transformation over an immutable slice of
// observations: the date range filter selects a window, the aggregators reduce it
// by month, hour, weather and day type, and the RFM engine scores each customer key
// against the most recent day present in its input.
//
// Timestamps are compared as UTC calendar days. Nothing is cached between calls,
// so a new window always yields freshly derived results.
package analytics

import (
	"time"

	"github.com/rewired-gh/bikepulse/internal/models"
)

// DateRange is an inclusive window of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Bounds returns the earliest and latest calendar day present in records.
// ok is false when records is empty.
func Bounds(records []models.Observation) (first, last time.Time, ok bool) {
	for i, r := range records {
		d := models.Day(r.Timestamp)
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, len(records) > 0
}

// FullRange returns the window spanning the whole dataset.
func FullRange(records []models.Observation) DateRange {
	first, last, _ := Bounds(records)
	return DateRange{Start: first, End: last}
}

// FilterByDateRange returns the records whose day falls within window, both ends
// inclusive, in their original order. An empty result is not an error.
func FilterByDateRange(records []models.Observation, window DateRange) ([]models.Observation, error) {
	start := models.Day(window.Start)
	end := models.Day(window.End)

	if start.After(end) {
		return nil, &InvalidRangeError{Start: start, End: end, Reason: "start is after end"}
	}
	if first, last, ok := Bounds(records); ok {
		if start.Before(first) || end.After(last) {
			return nil, &InvalidRangeError{
				Start:  start,
				End:    end,
				Min:    first,
				Max:    last,
				Reason: "window outside dataset bounds",
			}
		}
	}

	filtered := make([]models.Observation, 0)
	for _, r := range records {
		d := models.Day(r.Timestamp)
		if d.Before(start) || d.After(end) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}
