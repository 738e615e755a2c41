package analytics

import (
	"sort"
	"time"

	"github.com/rewired-gh/bikepulse/internal/models"
)

// accumulator collects a running integer sum and row count for one group.
type accumulator struct {
	sum int64
	n   int
}

func (a *accumulator) add(v int64) {
	a.sum += v
	a.n++
}

func (a accumulator) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.n)
}

type yearBucket struct {
	year   int
	bucket int
}

// groupMeans groups records by (year, key(record)) and returns the groups in
// ascending (year, key) order.
func groupMeans(records []models.Observation, key func(models.Observation) int) ([]yearBucket, map[yearBucket]*accumulator) {
	groups := make(map[yearBucket]*accumulator)
	keys := make([]yearBucket, 0)

	for _, r := range records {
		k := yearBucket{year: r.Year, bucket: key(r)}
		acc, exists := groups[k]
		if !exists {
			acc = &accumulator{}
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(r.Count)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].bucket < keys[j].bucket
	})
	return keys, groups
}

// AggregateByMonth returns the mean count per (year, month), ordered chronologically.
func AggregateByMonth(records []models.Observation) []models.MonthlyMean {
	keys, groups := groupMeans(records, func(r models.Observation) int { return r.Month })

	result := make([]models.MonthlyMean, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		result = append(result, models.MonthlyMean{
			Year:    k.year,
			Month:   k.bucket,
			Mean:    acc.mean(),
			Records: acc.n,
		})
	}
	return result
}

// AggregateByHour returns the mean count per (year, hour), ordered by year then hour.
func AggregateByHour(records []models.Observation) []models.HourlyMean {
	keys, groups := groupMeans(records, func(r models.Observation) int { return r.Hour })

	result := make([]models.HourlyMean, 0, len(keys))
	for _, k := range keys {
		acc := groups[k]
		result = append(result, models.HourlyMean{
			Year:    k.year,
			Hour:    k.bucket,
			Mean:    acc.mean(),
			Records: acc.n,
		})
	}
	return result
}

// AggregateByWeather returns the total count per weather category.
// Rows come back in ascending category order; use SortWeatherByTotal for ranking.
func AggregateByWeather(records []models.Observation) []models.WeatherTotal {
	totals := make(map[models.WeatherCategory]int64)
	for _, r := range records {
		totals[r.Weather] += r.Count
	}

	result := make([]models.WeatherTotal, 0, len(totals))
	for category, total := range totals {
		result = append(result, models.WeatherTotal{Weather: category, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Weather < result[j].Weather
	})
	return result
}

// SortWeatherByTotal returns a copy of rows ordered by total descending.
func SortWeatherByTotal(rows []models.WeatherTotal) []models.WeatherTotal {
	sorted := make([]models.WeatherTotal, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Weather < sorted[j].Weather
	})
	return sorted
}

type dayTotal struct {
	total      int64
	holiday    bool
	workingDay bool
	weekday    int
}

// DayTypeUsage rolls records up to daily totals and averages them over holidays,
// working days and weekdays (weekday < 5).
func DayTypeUsage(records []models.Observation) models.DayTypeUsage {
	days := make(map[time.Time]*dayTotal)
	for _, r := range records {
		d := models.Day(r.Timestamp)
		day, exists := days[d]
		if !exists {
			day = &dayTotal{weekday: r.Weekday}
			days[d] = day
		}
		day.total += r.Count
		day.holiday = day.holiday || r.Holiday
		day.workingDay = day.workingDay || r.WorkingDay
	}

	var holiday, working, weekday accumulator
	for _, day := range days {
		if day.holiday {
			holiday.add(day.total)
		}
		if day.workingDay {
			working.add(day.total)
		}
		if day.weekday < 5 {
			weekday.add(day.total)
		}
	}

	return models.DayTypeUsage{
		HolidayMean:    holiday.mean(),
		HolidayDays:    holiday.n,
		WorkingDayMean: working.mean(),
		WorkingDays:    working.n,
		WeekdayMean:    weekday.mean(),
		WeekdayDays:    weekday.n,
	}
}
