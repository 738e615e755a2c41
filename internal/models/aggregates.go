package models

// MonthlyMean is the average rental count for one (year, month) group.
type MonthlyMean struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Mean    float64 `json:"mean"`
	Records int     `json:"records"`
}

// HourlyMean is the average rental count for one (year, hour) group.
type HourlyMean struct {
	Year    int     `json:"year"`
	Hour    int     `json:"hour"`
	Mean    float64 `json:"mean"`
	Records int     `json:"records"`
}

// WeatherTotal is the summed rental count for one weather category.
type WeatherTotal struct {
	Weather WeatherCategory `json:"weather"`
	Total   int64           `json:"total"`
}

// DayTypeUsage compares average daily rentals on holidays, working days and weekdays.
// A mean is only meaningful when its day count is non-zero.
type DayTypeUsage struct {
	HolidayMean    float64 `json:"holiday_mean"`
	HolidayDays    int     `json:"holiday_days"`
	WorkingDayMean float64 `json:"working_day_mean"`
	WorkingDays    int     `json:"working_days"`
	WeekdayMean    float64 `json:"weekday_mean"`
	WeekdayDays    int     `json:"weekday_days"`
}

// RFMRow holds the recency, frequency and monetary values for one customer key.
type RFMRow struct {
	ID        int64 `json:"id"`
	Recency   int   `json:"recency"` // whole days before the reference date
	Frequency int   `json:"frequency"`
	Monetary  int64 `json:"monetary"`
}

// RFMSummary holds the mean RFM values across all rows.
type RFMSummary struct {
	Customers    int     `json:"customers"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}
