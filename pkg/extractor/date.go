package extractor

import (
	"fmt"
	"strings"
	"time"
)

const (
	// operatorInputLayout takes one or two digit days and months.
	operatorInputLayout = "2/1/2006"
	operatorDateLayout  = "02/01/2006"
	dueInstantLayout    = "2006-01-02T15:04:05.000Z"

	// DueHour is the fixed time of day (UTC) attached to every due date.
	DueHour = 16
)

// NormalizeDate turns "dd/mm/yyyy" (or "dd-mm-yyyy") into the board's ISO due instant.
func NormalizeDate(raw string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "-", "/"))
	day, err := time.Parse(operatorInputLayout, cleaned)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected dd/mm/yyyy", raw)
	}
	due := time.Date(day.Year(), day.Month(), day.Day(), DueHour, 0, 0, 0, time.UTC)
	return due.Format(dueInstantLayout), nil
}

// ParseDue reads an ISO due instant as produced by NormalizeDate or returned by the board.
func ParseDue(instant string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, instant)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due instant %q: %w", instant, err)
	}
	return t.UTC(), nil
}

// FormatDate renders a due instant back in the operator's dd/mm/yyyy form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(operatorDateLayout)
}
