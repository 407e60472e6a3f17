package service

import "time"

const (
	minReferenceDate = 10000000
	maxReferenceDate = 99999999
)

// DateKey renders t as a YYYYMMDD integer in t's own location
func DateKey(t time.Time) int {
	year, month, day := t.Date()
	return year*10000 + int(month)*100 + day
}

// IsValidReferenceDate reports whether referenceDate has exactly 8 digits and falls strictly
// before the day of now. The calendar validity of month and day is left to upstream.
func IsValidReferenceDate(referenceDate int, now time.Time) bool {
	if referenceDate < minReferenceDate || referenceDate > maxReferenceDate {
		return false
	}
	return referenceDate < DateKey(now)
}
