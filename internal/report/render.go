package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rewired-gh/bikepulse/internal/models"
)

// WriteJSON writes the dashboard as indented JSON.
func WriteJSON(w io.Writer, dash *Dashboard) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dash); err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	return nil
}

// WriteText writes the dashboard as plain-text tables.
func WriteText(w io.Writer, dash *Dashboard) error {
	b := &strings.Builder{}

	fmt.Fprintln(b, "Bike Sharing Dashboard")
	fmt.Fprintln(b, strings.Repeat("=", 60))
	fmt.Fprintf(b, "Window:   %s to %s\n", dash.Start, dash.End)
	fmt.Fprintf(b, "Records:  %s\n", FormatInt(int64(dash.Records)))

	if dash.Empty {
		fmt.Fprintln(b, "\nNo observations in this window.")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintln(b, "\nAverage Rentals by Month")
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tMonth\tAverage\tRecords\t")
	for _, row := range dash.Monthly {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t\n", row.Year, monthName(row.Month), row.Mean, row.Records)
	}
	tw.Flush()

	fmt.Fprintln(b, "\nAverage Rentals by Hour")
	tw = tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tHour\tAverage\tRecords\t")
	for _, row := range dash.Hourly {
		fmt.Fprintf(tw, "%d\t%02d:00\t%.2f\t%d\t\n", row.Year, row.Hour, row.Mean, row.Records)
	}
	tw.Flush()

	fmt.Fprintln(b, "\nAverage Daily Users by Day Type")
	fmt.Fprintf(b, "  Holiday:     %s\n", formatMean(dash.DayType.HolidayMean, dash.DayType.HolidayDays))
	fmt.Fprintf(b, "  Working day: %s\n", formatMean(dash.DayType.WorkingDayMean, dash.DayType.WorkingDays))
	fmt.Fprintf(b, "  Weekday:     %s\n", formatMean(dash.DayType.WeekdayMean, dash.DayType.WeekdayDays))

	fmt.Fprintln(b, "\nTotal Users by Weather")
	tw = tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	for _, row := range dash.Weather {
		fmt.Fprintf(tw, "  %s\t%s\n", row.Weather, FormatInt(row.Total))
	}
	tw.Flush()

	if dash.RFM != nil {
		writeRFM(b, dash.RFM)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRFM(b *strings.Builder, rfm *RFMSection) {
	fmt.Fprintln(b, "\nMost Valuable Users (RFM)")
	fmt.Fprintf(b, "  Customers:         %s\n", FormatInt(int64(rfm.Summary.Customers)))
	fmt.Fprintf(b, "  Average recency:   %.1f days\n", round(rfm.Summary.AvgRecency, 1))
	fmt.Fprintf(b, "  Average frequency: %.2f\n", round(rfm.Summary.AvgFrequency, 2))
	fmt.Fprintf(b, "  Average monetary:  %.2f\n", round(rfm.Summary.AvgMonetary, 2))

	rank := func(title string, rows []models.RFMRow, value func(models.RFMRow) string) {
		fmt.Fprintf(b, "\n  %s\n", title)
		for i, row := range rows {
			fmt.Fprintf(b, "  %d. user %d: %s\n", i+1, row.ID, value(row))
		}
	}
	rank("By Recency", rfm.TopRecency, func(r models.RFMRow) string {
		return fmt.Sprintf("%d days", r.Recency)
	})
	rank("By Frequency", rfm.TopFrequency, func(r models.RFMRow) string {
		return fmt.Sprintf("%d", r.Frequency)
	})
	rank("By Monetary", rfm.TopMonetary, func(r models.RFMRow) string {
		return FormatInt(r.Monetary)
	})
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("M%d", month)
	}
	return time.Month(month).String()[:3]
}

func formatMean(mean float64, days int) string {
	if days == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f (%d days)", round(mean, 2), days)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}
