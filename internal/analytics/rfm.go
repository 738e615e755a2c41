package analytics

import (
	"sort"
	"time"

	"github.com/rewired-gh/bikepulse/internal/models"
)

type customerStats struct {
	lastDay   time.Time
	frequency int
	monetary  int64
}

// ComputeRFM scores every customer key in records.
//
// Recency is measured in whole days against the latest day present in records,
// so it shifts whenever the input window changes. Rows are ordered by ID.
// An empty input has no reference day and yields an *EmptyInputError.
func ComputeRFM(records []models.Observation) ([]models.RFMRow, error) {
	if len(records) == 0 {
		return nil, &EmptyInputError{Stage: "rfm"}
	}

	stats := make(map[int64]*customerStats)
	var reference time.Time

	for _, r := range records {
		d := models.Day(r.Timestamp)

		customer, exists := stats[r.ID]
		if !exists {
			customer = &customerStats{lastDay: d}
			stats[r.ID] = customer
		}
		if d.After(customer.lastDay) {
			customer.lastDay = d
		}
		customer.frequency++
		customer.monetary += r.Count

		if reference.IsZero() || d.After(reference) {
			reference = d
		}
	}

	rows := make([]models.RFMRow, 0, len(stats))
	for id, customer := range stats {
		rows = append(rows, models.RFMRow{
			ID:        id,
			Recency:   daysBetween(customer.lastDay, reference),
			Frequency: customer.frequency,
			Monetary:  customer.monetary,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

// daysBetween returns the whole days from earlier to later, never negative.
func daysBetween(earlier, later time.Time) int {
	if !later.After(earlier) {
		return 0
	}
	return int(later.Sub(earlier).Hours() / 24)
}

// TopByRecency returns up to n rows with the smallest recency.
func TopByRecency(rows []models.RFMRow, n int) []models.RFMRow {
	return topN(rows, n, func(a, b models.RFMRow) bool { return a.Recency < b.Recency })
}

// TopByFrequency returns up to n rows with the highest frequency.
func TopByFrequency(rows []models.RFMRow, n int) []models.RFMRow {
	return topN(rows, n, func(a, b models.RFMRow) bool { return a.Frequency > b.Frequency })
}

// TopByMonetary returns up to n rows with the highest monetary value.
func TopByMonetary(rows []models.RFMRow, n int) []models.RFMRow {
	return topN(rows, n, func(a, b models.RFMRow) bool { return a.Monetary > b.Monetary })
}

// topN sorts a copy of rows by better, breaking ties by ascending ID.
// n <= 0 returns every row.
func topN(rows []models.RFMRow, n int, better func(a, b models.RFMRow) bool) []models.RFMRow {
	sorted := make([]models.RFMRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		if better(sorted[i], sorted[j]) {
			return true
		}
		if better(sorted[j], sorted[i]) {
			return false
		}
		return sorted[i].ID < sorted[j].ID
	})

	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// SummarizeRFM averages recency, frequency and monetary across rows.
func SummarizeRFM(rows []models.RFMRow) models.RFMSummary {
	if len(rows) == 0 {
		return models.RFMSummary{}
	}

	var recency, frequency, monetary int64
	for _, row := range rows {
		recency += int64(row.Recency)
		frequency += int64(row.Frequency)
		monetary += row.Monetary
	}

	n := float64(len(rows))
	return models.RFMSummary{
		Customers:    len(rows),
		AvgRecency:   float64(recency) / n,
		AvgFrequency: float64(frequency) / n,
		AvgMonetary:  float64(monetary) / n,
	}
}
