package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/rewired-gh/bikepulse/internal/config"
	"github.com/rewired-gh/bikepulse/internal/models"
)

// Database driver names registered by the imported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLSource reads observations from a table with the columns
// id, dateday, year, month, hour, weekday, holiday, workingday, weather, count.
type SQLSource struct {
	Driver string
	DSN    string
	Table  string
}

// Load queries every row of the table, oldest first.
func (s SQLSource) Load(ctx context.Context) ([]models.Observation, error) {
	if !tableNamePattern.MatchString(s.Table) {
		return nil, fmt.Errorf("invalid table name: %q", s.Table)
	}

	db, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	query := fmt.Sprintf(`SELECT "id", "dateday", "year", "month", "hour", "weekday",
		"holiday", "workingday", "weather", "count"
		FROM %s ORDER BY "dateday", "id"`, s.Table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var (
			o                   models.Observation
			dateday             any
			holiday, workingDay any
			weather             int64
		)
		if err := rows.Scan(&o.ID, &dateday, &o.Year, &o.Month, &o.Hour, &o.Weekday,
			&holiday, &workingDay, &weather, &o.Count); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}

		ts, err := toTime(dateday)
		if err != nil {
			return nil, fmt.Errorf("observation %d: %w", o.ID, err)
		}
		o.Timestamp = models.Day(ts)
		if o.Holiday, err = toBool(holiday); err != nil {
			return nil, fmt.Errorf("observation %d: invalid holiday flag: %w", o.ID, err)
		}
		if o.WorkingDay, err = toBool(workingDay); err != nil {
			return nil, fmt.Errorf("observation %d: invalid workingday flag: %w", o.ID, err)
		}
		o.Weather = models.WeatherCategory(weather)

		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	return observations, nil
}

// toTime accepts native time values as well as textual dates, which is how
// SQLite hands back DATE columns declared as TEXT.
func toTime(v any) (time.Time, error) {
	switch value := v.(type) {
	case time.Time:
		return value, nil
	case string:
		return parseDate(value)
	case []byte:
		return parseDate(string(value))
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %T", v)
	}
}

// toBool accepts boolean columns and the 0/1 integers SQLite uses for them.
func toBool(v any) (bool, error) {
	switch value := v.(type) {
	case nil:
		return false, nil
	case bool:
		return value, nil
	case int64:
		return value != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(value))
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(value)))
	default:
		return false, fmt.Errorf("unsupported flag value %T", v)
	}
}

// NewSource builds the Source selected by cfg.
func NewSource(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "csv":
		return CSVSource{Path: cfg.Path}, nil
	case "http":
		return HTTPSource{
			URL:            cfg.URL,
			Client:         &http.Client{Timeout: cfg.Timeout},
			MaxRetries:     cfg.MaxRetries,
			RetryDelayBase: cfg.RetryDelayBase,
		}, nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = cfg.Path
		}
		return SQLSource{Driver: DriverSQLite, DSN: dsn, Table: cfg.Table}, nil
	case "postgres":
		return SQLSource{Driver: DriverPostgres, DSN: cfg.DSN, Table: cfg.Table}, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}
