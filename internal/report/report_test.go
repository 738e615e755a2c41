package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/bikepulse/internal/analytics"
	"github.com/rewired-gh/bikepulse/internal/models"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(dateLayout, value)
	require.NoError(t, err)
	return d
}

func fixture(t *testing.T) []models.Observation {
	t.Helper()
	mk := func(id int64, day string, hour int, weather models.WeatherCategory, count int64, holiday, working bool) models.Observation {
		ts := date(t, day)
		return models.Observation{
			ID:         id,
			Timestamp:  ts,
			Year:       ts.Year(),
			Month:      int(ts.Month()),
			Hour:       hour,
			Weekday:    int(ts.Weekday()),
			Holiday:    holiday,
			WorkingDay: working,
			Weather:    weather,
			Count:      count,
		}
	}
	return []models.Observation{
		mk(1, "2011-01-01", 8, models.WeatherClear, 10, false, false),
		mk(2, "2011-01-03", 8, models.WeatherMist, 5, false, true),
		mk(3, "2011-01-17", 9, models.WeatherClear, 7, true, false),
		mk(4, "2011-02-01", 17, models.WeatherLightPrecipitation, 1200, false, true),
	}
}

func fullWindow(t *testing.T, records []models.Observation) analytics.DateRange {
	t.Helper()
	first, last, ok := analytics.Bounds(records)
	require.True(t, ok)
	return Window(first, last, time.Time{}, time.Time{})
}

func TestWindow_DefaultsToDatasetBounds(t *testing.T) {
	first, last := date(t, "2011-01-01"), date(t, "2011-02-01")

	w := Window(first, last, time.Time{}, time.Time{})
	assert.Equal(t, date(t, "2011-01-01"), w.Start)
	assert.Equal(t, date(t, "2011-02-01"), w.End)

	w = Window(first, last, date(t, "2011-01-03"), time.Time{})
	assert.Equal(t, date(t, "2011-01-03"), w.Start)
	assert.Equal(t, date(t, "2011-02-01"), w.End)
}

func TestBuild_FullWindow(t *testing.T) {
	records := fixture(t)

	dash, err := Build(records, fullWindow(t, records), 2)
	require.NoError(t, err)

	_, err = uuid.Parse(dash.ID)
	assert.NoError(t, err)
	assert.Equal(t, "2011-01-01", dash.Start)
	assert.Equal(t, "2011-02-01", dash.End)
	assert.Equal(t, 4, dash.Records)
	assert.False(t, dash.Empty)

	require.Len(t, dash.Monthly, 2)
	assert.InDelta(t, 22.0/3.0, dash.Monthly[0].Mean, 1e-9)

	require.Len(t, dash.Weather, 3)
	assert.Equal(t, models.WeatherLightPrecipitation, dash.Weather[0].Weather)

	require.NotNil(t, dash.RFM)
	assert.Len(t, dash.RFM.Rows, 4)
	assert.Len(t, dash.RFM.TopRecency, 2)
	assert.Equal(t, int64(4), dash.RFM.TopRecency[0].ID)
	assert.Equal(t, int64(4), dash.RFM.TopMonetary[0].ID)
	assert.Equal(t, 4, dash.RFM.Summary.Customers)
}

func TestBuild_EmptyWindowSkipsRFM(t *testing.T) {
	records := fixture(t)

	dash, err := Build(records, analytics.DateRange{Start: date(t, "2011-01-20"), End: date(t, "2011-01-25")}, 5)
	require.NoError(t, err)
	assert.True(t, dash.Empty)
	assert.Nil(t, dash.RFM)
	assert.Empty(t, dash.Monthly)
	assert.Empty(t, dash.Hourly)
	assert.Empty(t, dash.Weather)
}

func TestBuild_InvalidWindow(t *testing.T) {
	records := fixture(t)

	_, err := Build(records, analytics.DateRange{Start: date(t, "2011-02-01"), End: date(t, "2011-01-01")}, 5)
	var rangeErr *analytics.InvalidRangeError
	assert.True(t, errors.As(err, &rangeErr))
}

func TestBuild_FreshResultPerCall(t *testing.T) {
	records := fixture(t)
	window := fullWindow(t, records)

	first, err := Build(records, window, 5)
	require.NoError(t, err)
	second, err := Build(records, window, 5)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Monthly, second.Monthly)
	assert.Equal(t, first.RFM.Rows, second.RFM.Rows)
}

func TestWriteText(t *testing.T) {
	records := fixture(t)
	dash, err := Build(records, fullWindow(t, records), 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, dash))

	out := buf.String()
	assert.Contains(t, out, "Window:   2011-01-01 to 2011-02-01")
	assert.Contains(t, out, "Average Rentals by Month")
	assert.Contains(t, out, "Jan")
	assert.Contains(t, out, "Light Snow/Rain")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "Most Valuable Users (RFM)")
	assert.Contains(t, out, "1. user 4: 0 days")
}

func TestWriteText_Empty(t *testing.T) {
	records := fixture(t)
	dash, err := Build(records, analytics.DateRange{Start: date(t, "2011-01-20"), End: date(t, "2011-01-25")}, 5)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, dash))
	assert.Contains(t, buf.String(), "No observations in this window.")
	assert.NotContains(t, buf.String(), "RFM")
}

func TestWriteJSON(t *testing.T) {
	records := fixture(t)
	dash, err := Build(records, fullWindow(t, records), 3)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, dash))

	var decoded Dashboard
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, dash.ID, decoded.ID)
	assert.Equal(t, dash.Monthly, decoded.Monthly)
	require.NotNil(t, decoded.RFM)
	assert.Equal(t, dash.RFM.Rows, decoded.RFM.Rows)
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		in       int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{3292679, "3,292,679"},
		{-45000, "-45,000"},
	}

	for _, tt := range tests {
		if got := FormatInt(tt.in); got != tt.expected {
			t.Errorf("FormatInt(%d) = %s, expected %s", tt.in, got, tt.expected)
		}
	}
}
