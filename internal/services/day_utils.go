package services

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/daybook/internal/models"
)

var ErrInvalidDate = errors.New("invalid date")

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DateKey formats a day as YYYY-MM-DD in the given location.
func DateKey(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format(models.DateLayout)
}

func ParseDateKey(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

// NormalizedWeekday maps time.Weekday onto 1=Monday through 7=Sunday.
func NormalizedWeekday(day time.Time) int {
	weekday := int(day.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

func MonthStart(value time.Time, location *time.Location) time.Time {
	day := DateAtLocation(value, location)
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}

// MonthWindow is the inclusive range from the first to the last day of a month.
type MonthWindow struct {
	Start time.Time
	End   time.Time
}

func NewMonthWindow(value time.Time, location *time.Location) MonthWindow {
	start := MonthStart(value, location)
	return MonthWindow{Start: start, End: start.AddDate(0, 1, -1)}
}

func (window MonthWindow) FromKey() string {
	return window.Start.Format(models.DateLayout)
}

func (window MonthWindow) ToKey() string {
	return window.End.Format(models.DateLayout)
}

// Key identifies the month as YYYY-MM.
func (window MonthWindow) Key() string {
	return window.Start.Format("2006-01")
}

func (window MonthWindow) Contains(dateKey string) bool {
	return dateKey >= window.FromKey() && dateKey <= window.ToKey()
}

func ParseMonthKey(raw string, location *time.Location) (MonthWindow, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation("2006-01", strings.TrimSpace(raw), location)
	if err != nil {
		return MonthWindow{}, ErrInvalidDate
	}
	return NewMonthWindow(parsed, location), nil
}
