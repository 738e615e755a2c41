// Package report runs the analytics pipeline for one date window and renders
// the resulting dashboard as text or JSON.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/bikepulse/internal/analytics"
	"github.com/rewired-gh/bikepulse/internal/logger"
	"github.com/rewired-gh/bikepulse/internal/models"
)

const dateLayout = "2006-01-02"

// Dashboard is every view derived from one filter window.
type Dashboard struct {
	ID          string                `json:"id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Start       string                `json:"start"`
	End         string                `json:"end"`
	Records     int                   `json:"records"`
	Empty       bool                  `json:"empty"`
	Monthly     []models.MonthlyMean  `json:"monthly"`
	Hourly      []models.HourlyMean   `json:"hourly"`
	Weather     []models.WeatherTotal `json:"weather"` // ranked by total
	DayType     models.DayTypeUsage   `json:"day_type"`
	RFM         *RFMSection           `json:"rfm,omitempty"`
}

// RFMSection holds the customer scores and their rankings.
type RFMSection struct {
	Summary      models.RFMSummary `json:"summary"`
	TopRecency   []models.RFMRow   `json:"top_recency"`
	TopFrequency []models.RFMRow   `json:"top_frequency"`
	TopMonetary  []models.RFMRow   `json:"top_monetary"`
	Rows         []models.RFMRow   `json:"rows"`
}

// Window resolves the requested dates against the dataset bounds first and last,
// substituting them for an unset (zero) start or end.
func Window(first, last, start, end time.Time) analytics.DateRange {
	window := analytics.DateRange{Start: first, End: last}
	if !start.IsZero() {
		window.Start = start
	}
	if !end.IsZero() {
		window.End = end
	}
	return window
}

// Build filters records to window and derives every dashboard view.
// An empty window yields a Dashboard with Empty set and no RFM section.
func Build(records []models.Observation, window analytics.DateRange, topN int) (*Dashboard, error) {
	filtered, err := analytics.FilterByDateRange(records, window)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		ID:          uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Start:       models.Day(window.Start).Format(dateLayout),
		End:         models.Day(window.End).Format(dateLayout),
		Records:     len(filtered),
		Monthly:     analytics.AggregateByMonth(filtered),
		Hourly:      analytics.AggregateByHour(filtered),
		Weather:     analytics.SortWeatherByTotal(analytics.AggregateByWeather(filtered)),
		DayType:     analytics.DayTypeUsage(filtered),
	}

	if len(filtered) == 0 {
		logger.Warn("No observations between %s and %s", dash.Start, dash.End)
		dash.Empty = true
		return dash, nil
	}

	rows, err := analytics.ComputeRFM(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rfm: %w", err)
	}
	dash.RFM = &RFMSection{
		Summary:      analytics.SummarizeRFM(rows),
		TopRecency:   analytics.TopByRecency(rows, topN),
		TopFrequency: analytics.TopByFrequency(rows, topN),
		TopMonetary:  analytics.TopByMonetary(rows, topN),
		Rows:         rows,
	}

	logger.Debug("Built dashboard %s: %d records, %d months, %d customers",
		dash.ID, dash.Records, len(dash.Monthly), len(rows))
	return dash, nil
}
