package models

import (
	"testing"
	"time"
)

func TestObservationValidate(t *testing.T) {
	day := time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		observation Observation
		wantErr     bool
	}{
		{
			name: "valid observation",
			observation: Observation{
				ID:         1,
				Timestamp:  day,
				Year:       2012,
				Month:      6,
				Hour:       8,
				Weekday:    5,
				WorkingDay: true,
				Weather:    WeatherClear,
				Count:      120,
			},
			wantErr: false,
		},
		{
			name: "zero timestamp",
			observation: Observation{
				ID:      1,
				Month:   6,
				Weather: WeatherClear,
			},
			wantErr: true,
		},
		{
			name: "month out of range",
			observation: Observation{
				ID:        1,
				Timestamp: day,
				Month:     13,
				Weather:   WeatherClear,
			},
			wantErr: true,
		},
		{
			name: "hour out of range",
			observation: Observation{
				ID:        1,
				Timestamp: day,
				Month:     6,
				Hour:      24,
				Weather:   WeatherClear,
			},
			wantErr: true,
		},
		{
			name: "weekday out of range",
			observation: Observation{
				ID:        1,
				Timestamp: day,
				Month:     6,
				Weekday:   7,
				Weather:   WeatherClear,
			},
			wantErr: true,
		},
		{
			name: "unknown weather",
			observation: Observation{
				ID:        1,
				Timestamp: day,
				Month:     6,
				Weather:   5,
			},
			wantErr: true,
		},
		{
			name: "negative count",
			observation: Observation{
				ID:        1,
				Timestamp: day,
				Month:     6,
				Weather:   WeatherMist,
				Count:     -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.observation.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Observation.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	in := time.Date(2011, 3, 13, 23, 45, 0, 0, loc)

	got := Day(in)
	want := time.Date(2011, 3, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Day(%v) = %v, expected %v", in, got, want)
	}

	if !Day(time.Time{}).IsZero() {
		t.Error("Day of zero time should stay zero")
	}
}

func TestWeatherCategoryString(t *testing.T) {
	tests := []struct {
		category WeatherCategory
		expected string
	}{
		{WeatherClear, "Clear"},
		{WeatherMist, "Mist"},
		{WeatherLightPrecipitation, "Light Snow/Rain"},
		{WeatherHeavyPrecipitation, "Heavy Rain/Snow"},
		{WeatherCategory(9), "Weather(9)"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("WeatherCategory(%d).String() = %s, expected %s", int(tt.category), got, tt.expected)
		}
	}
}
