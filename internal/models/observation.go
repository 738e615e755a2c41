// Package models defines the core domain entities for the bikepulse application.
// These models represent rental observations and the aggregate rows derived from them.
// All input models include built-in validation so the analytics core can assume clean data.
//
// Terminology:
//   - Observation: one row of the rental dataset (a day or an hour bucket).
//   - Customer: for RFM purposes the observation ID is the customer key.
package models

import (
	"errors"
	"time"
)

// Observation represents a single rental-period row from the dataset.
// Timestamp is held at day granularity in UTC; Hour carries the intra-day bucket
// for hourly datasets and is 0 for daily ones.
type Observation struct {
	ID         int64           `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Hour       int             `json:"hour"`
	Weekday    int             `json:"weekday"` // 0 = Sunday, as in the source dataset
	Holiday    bool            `json:"holiday"`
	WorkingDay bool            `json:"working_day"`
	Weather    WeatherCategory `json:"weather"`
	Count      int64           `json:"count"`
}

// Validate checks that all observation fields are valid.
func (o *Observation) Validate() error {
	if o.Timestamp.IsZero() {
		return errors.New("timestamp must not be empty")
	}
	if o.Month < 1 || o.Month > 12 {
		return errors.New("month must be between 1 and 12")
	}
	if o.Hour < 0 || o.Hour > 23 {
		return errors.New("hour must be between 0 and 23")
	}
	if o.Weekday < 0 || o.Weekday > 6 {
		return errors.New("weekday must be between 0 and 6")
	}
	if !o.Weather.Valid() {
		return errors.New("weather category must be between 1 and 4")
	}
	if o.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
