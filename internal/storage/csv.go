package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/bikepulse/internal/models"
)

// CSVSource reads observations from a CSV export of the rental dataset.
// Columns are matched by header name, accepting the UCI bike-sharing names
// (instant, dteday, yr, mnth, hr, weathersit, cnt) as well as their long forms.
type CSVSource struct {
	Path string
}

var (
	idColumns         = []string{"instant", "id", "record_id"}
	dateColumns       = []string{"dateday", "dteday", "date", "timestamp"}
	yearColumns       = []string{"year", "yr"}
	monthColumns      = []string{"month", "mnth"}
	hourColumns       = []string{"hour", "hr"}
	weekdayColumns    = []string{"weekday", "day_of_week"}
	holidayColumns    = []string{"holiday", "is_holiday"}
	workingDayColumns = []string{"workingday", "is_workingday"}
	weatherColumns    = []string{"weather", "weathersit", "weather_category"}
	countColumns      = []string{"count", "cnt", "total"}
)

// Load reads and parses every data row of the file.
func (s CSVSource) Load(ctx context.Context) ([]models.Observation, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer file.Close()

	return parseCSV(ctx, file)
}

type csvColumns struct {
	id, date, year, month, hour, weekday, holiday, workingDay, weather, count int
}

func parseCSV(ctx context.Context, r io.Reader) ([]models.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	colMap := normalizeHeaders(headers)
	var cols csvColumns
	var ok bool
	if cols.id, ok = findColumn(colMap, idColumns); !ok {
		return nil, errors.New("missing id column")
	}
	if cols.date, ok = findColumn(colMap, dateColumns); !ok {
		return nil, errors.New("missing date column")
	}
	if cols.weather, ok = findColumn(colMap, weatherColumns); !ok {
		return nil, errors.New("missing weather column")
	}
	if cols.count, ok = findColumn(colMap, countColumns); !ok {
		return nil, errors.New("missing count column")
	}
	cols.year, _ = findColumn(colMap, yearColumns)
	cols.month, _ = findColumn(colMap, monthColumns)
	cols.hour, _ = findColumn(colMap, hourColumns)
	cols.weekday, _ = findColumn(colMap, weekdayColumns)
	cols.holiday, _ = findColumn(colMap, holidayColumns)
	cols.workingDay, _ = findColumn(colMap, workingDayColumns)

	var (
		observations []models.Observation
		rows         int
		invalid      int
		firstErr     error
	)
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		rows++
		if len(record) == 0 {
			continue
		}
		if rows%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		o, err := parseRow(record, cols)
		if err != nil {
			invalid++
			if firstErr == nil {
				line, _ := reader.FieldPos(0)
				firstErr = fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}
		observations = append(observations, o)
	}

	if invalid > 0 {
		return nil, fmt.Errorf("%d invalid rows, first at %w", invalid, firstErr)
	}
	return observations, nil
}

func parseRow(record []string, cols csvColumns) (models.Observation, error) {
	var o models.Observation

	id, err := strconv.ParseInt(getValue(record, cols.id), 10, 64)
	if err != nil {
		return o, fmt.Errorf("invalid id: %w", err)
	}
	o.ID = id

	ts, err := parseDate(getValue(record, cols.date))
	if err != nil {
		return o, err
	}
	o.Timestamp = models.Day(ts)

	o.Year = ts.Year()
	if v := getValue(record, cols.year); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("invalid year: %w", err)
		}
		// UCI encodes the year as an offset (0 = 2011); the timestamp already has it.
		if year >= 1000 {
			o.Year = year
		}
	}

	o.Month = int(ts.Month())
	if v := getValue(record, cols.month); v != "" {
		if o.Month, err = strconv.Atoi(v); err != nil {
			return o, fmt.Errorf("invalid month: %w", err)
		}
	}

	if v := getValue(record, cols.hour); v != "" {
		if o.Hour, err = strconv.Atoi(v); err != nil {
			return o, fmt.Errorf("invalid hour: %w", err)
		}
	}

	o.Weekday = int(ts.Weekday())
	if v := getValue(record, cols.weekday); v != "" {
		if o.Weekday, err = strconv.Atoi(v); err != nil {
			return o, fmt.Errorf("invalid weekday: %w", err)
		}
	}

	if o.Holiday, err = parseFlag(getValue(record, cols.holiday)); err != nil {
		return o, fmt.Errorf("invalid holiday flag: %w", err)
	}
	if o.WorkingDay, err = parseFlag(getValue(record, cols.workingDay)); err != nil {
		return o, fmt.Errorf("invalid workingday flag: %w", err)
	}

	if o.Weather, err = parseWeather(getValue(record, cols.weather)); err != nil {
		return o, err
	}

	if o.Count, err = strconv.ParseInt(getValue(record, cols.count), 10, 64); err != nil {
		return o, fmt.Errorf("invalid count: %w", err)
	}

	return o, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

func parseFlag(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

// parseWeather accepts the numeric code or the category label.
func parseWeather(value string) (models.WeatherCategory, error) {
	if code, err := strconv.Atoi(value); err == nil {
		return models.WeatherCategory(code), nil
	}
	for c := models.WeatherClear; c <= models.WeatherHeavyPrecipitation; c++ {
		if strings.EqualFold(value, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown weather category: %q", value)
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
