package analytics

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// InvalidRangeError is returned when a filter window is inverted or falls outside
// the bounds of the dataset it is applied to.
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Min    time.Time // zero when the dataset has no bounds
	Max    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Min.IsZero() && e.Max.IsZero() {
		return fmt.Sprintf("invalid date range %s..%s: %s",
			e.Start.Format(dateLayout), e.End.Format(dateLayout), e.Reason)
	}
	return fmt.Sprintf("invalid date range %s..%s: %s (dataset covers %s..%s)",
		e.Start.Format(dateLayout), e.End.Format(dateLayout), e.Reason,
		e.Min.Format(dateLayout), e.Max.Format(dateLayout))
}

// EmptyInputError is returned by stages that need at least one record to
// establish a reference point.
type EmptyInputError struct {
	Stage string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("%s: empty input, no reference date can be established", e.Stage)
}
