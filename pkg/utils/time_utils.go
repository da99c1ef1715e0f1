package utils

import "time"

// Trips are planned in China Standard Time; "today" for expenses and budget
// forecasts is computed there.
var appLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*3600)
}()

const DateLayout = "2006-01-02"

func NowUnixSeconds() int64 { return time.Now().Unix() }

// FormatUnixRFC3339 renders epoch seconds; 0 renders as "".
func FormatUnixRFC3339(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return time.Unix(sec, 0).In(appLoc).Format(time.RFC3339)
}

// Today is the current calendar date in the app's time zone.
func Today() string {
	return time.Now().In(appLoc).Format(DateLayout)
}

// DaysUntil counts whole days from today to date, never below zero.
// An unparsable date yields 0.
func DaysUntil(date string, now time.Time) int {
	target, err := time.ParseInLocation(DateLayout, date, appLoc)
	if err != nil {
		return 0
	}
	y, m, d := now.In(appLoc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, appLoc)
	days := int(target.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
