package assistant

import (
	"fmt"
	"strings"
	"time"
)

// TimeWindow bounds a calendar search. TimeMin is never after TimeMax.
type TimeWindow struct {
	TimeMin time.Time
	TimeMax time.Time
}

// Duration returns the length of the window.
func (w TimeWindow) Duration() time.Duration {
	return w.TimeMax.Sub(w.TimeMin)
}

// WindowStrategy infers a search window from the temporal keywords in a query.
type WindowStrategy interface {
	Name() string
	Resolve(query string, now time.Time) TimeWindow
}

// Strategy names accepted by ParseWindowStrategy.
const (
	StrategyPrecise = "precise"
	StrategyPadded  = "padded"
)

var (
	// PreciseCalendarWindow aligns windows to calendar days, weeks and months.
	PreciseCalendarWindow WindowStrategy = preciseWindow{}

	// PaddedKeywordWindow starts where the calendar-aligned window starts and
	// pads the end generously. Used by the single-keyword search path.
	PaddedKeywordWindow WindowStrategy = paddedWindow{}
)

// ParseWindowStrategy maps a strategy name to its implementation.
// An empty name selects PreciseCalendarWindow.
func ParseWindowStrategy(name string) (WindowStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyPrecise:
		return PreciseCalendarWindow, nil
	case StrategyPadded:
		return PaddedKeywordWindow, nil
	default:
		return nil, fmt.Errorf("unknown window strategy %q (supported: %s, %s)", name, StrategyPrecise, StrategyPadded)
	}
}

// currentMomentKeywords mark queries about what is happening right now.
var currentMomentKeywords = []string{"now", "current time", "current event", "where am i"}

const (
	keywordToday     = "today"
	keywordTomorrow  = "tomorrow"
	keywordYesterday = "yesterday"
	keywordThisWeek  = "this week"
	keywordNextWeek  = "next week"
	keywordLastWeek  = "last week"
	keywordThisMonth = "this month"
	keywordNextMonth = "next month"
)

// calendarKeywords in priority order, first match wins.
var calendarKeywords = []string{
	keywordToday,
	keywordTomorrow,
	keywordYesterday,
	keywordThisWeek,
	keywordNextWeek,
	keywordLastWeek,
	keywordThisMonth,
	keywordNextMonth,
}

const (
	momentBefore   = time.Hour
	momentAfter    = 30 * time.Minute
	fallbackDays  = 15
	keywordDays   = 30
	daysPerWeek   = 7
	endOfDayNanos = 999 * int(time.Millisecond)
)

// IsCurrentMomentQuery reports whether the query asks about the present moment
// ("now", "current time", "current event", "where am I").
func IsCurrentMomentQuery(query string) bool {
	return containsAny(strings.ToLower(query), currentMomentKeywords)
}

// calendarKeyword returns the first calendar keyword found in the query.
func calendarKeyword(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, kw := range calendarKeywords {
		if strings.Contains(q, kw) {
			return kw, true
		}
	}
	return "", false
}

type preciseWindow struct{}

func (preciseWindow) Name() string { return StrategyPrecise }

func (preciseWindow) Resolve(query string, now time.Time) TimeWindow {
	query = strings.TrimSpace(query)
	if IsCurrentMomentQuery(query) {
		return TimeWindow{TimeMin: now.Add(-momentBefore), TimeMax: now.Add(momentAfter)}
	}
	if kw, ok := calendarKeyword(query); ok {
		return keywordWindow(kw, now)
	}
	return TimeWindow{
		TimeMin: now.AddDate(0, 0, -fallbackDays),
		TimeMax: now.AddDate(0, 0, fallbackDays),
	}
}

// keywordWindow returns the calendar-aligned window for a keyword.
func keywordWindow(kw string, now time.Time) TimeWindow {
	switch kw {
	case keywordToday:
		return dayWindow(now)
	case keywordTomorrow:
		return dayWindow(now.AddDate(0, 0, 1))
	case keywordYesterday:
		return dayWindow(now.AddDate(0, 0, -1))
	case keywordThisWeek:
		return weekWindow(weekStart(now))
	case keywordNextWeek:
		return weekWindow(startOfDay(now.AddDate(0, 0, daysPerWeek-int(now.Weekday()))))
	case keywordLastWeek:
		return weekWindow(weekStart(now).AddDate(0, 0, -daysPerWeek))
	case keywordThisMonth:
		return monthWindow(now.Year(), now.Month(), now.Location())
	case keywordNextMonth:
		return monthWindow(now.Year(), now.Month()+1, now.Location())
	}
	return dayWindow(now)
}

type paddedWindow struct{}

func (paddedWindow) Name() string { return StrategyPadded }

func (paddedWindow) Resolve(query string, now time.Time) TimeWindow {
	query = strings.TrimSpace(query)
	if IsCurrentMomentQuery(query) {
		return TimeWindow{TimeMin: now.Add(-momentBefore), TimeMax: now.Add(momentAfter)}
	}
	kw, ok := calendarKeyword(query)
	if !ok {
		if wordCount(query) <= 2 {
			start := startOfDay(now.AddDate(0, 0, -1))
			return TimeWindow{TimeMin: start, TimeMax: start.AddDate(0, 0, keywordDays)}
		}
		return PreciseCalendarWindow.Resolve(query, now)
	}

	start := keywordWindow(kw, now).TimeMin
	return TimeWindow{TimeMin: start, TimeMax: start.AddDate(0, 0, paddingDays(kw))}
}

// paddingDays is the look-ahead the padded strategy adds after the window start.
func paddingDays(kw string) int {
	switch kw {
	case keywordTomorrow:
		return 3
	case keywordThisWeek:
		return 10
	case keywordNextWeek:
		return 14
	case keywordThisMonth, keywordNextMonth:
		return 45
	default:
		return 7
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, endOfDayNanos, t.Location())
}

func dayWindow(t time.Time) TimeWindow {
	return TimeWindow{TimeMin: startOfDay(t), TimeMax: endOfDay(t)}
}

// weekStart returns midnight of the Sunday starting the week containing t.
func weekStart(t time.Time) time.Time {
	return startOfDay(t.AddDate(0, 0, -int(t.Weekday())))
}

func weekWindow(start time.Time) TimeWindow {
	return TimeWindow{TimeMin: start, TimeMax: endOfDay(start.AddDate(0, 0, daysPerWeek-1))}
}

// monthWindow spans the first through the last calendar day of the month.
// time.Date normalizes month overflow, so December+1 is January of the next year.
func monthWindow(year int, month time.Month, loc *time.Location) TimeWindow {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return TimeWindow{TimeMin: first, TimeMax: endOfDay(last)}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
