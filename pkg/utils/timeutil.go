package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// ToIST converts a time.Time to IST.
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// MandiOpenTime returns the mandi auction opening time (6:00 AM IST)
// for a given date. Price boards published before this are previous-day
// quotes.
func MandiOpenTime(date time.Time) time.Time {
	d := date.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), 6, 0, 0, 0, IST)
}

// IsSameMandiDay reports whether two timestamps fall in the same mandi
// trading day (6:00 AM IST to 6:00 AM IST next day).
func IsSameMandiDay(a, b time.Time) bool {
	da := a.In(IST).Add(-6 * time.Hour)
	db := b.In(IST).Add(-6 * time.Hour)
	return da.Year() == db.Year() && da.YearDay() == db.YearDay()
}
