package dataset

import (
	"strings"
	"time"
)

// SummitStart is midnight IST on the first summit day.
var SummitStart = time.Date(2026, time.February, 16, 0, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

const SummitDays = 5

var summitDates = map[string]int{
	"2026-02-16": 1,
	"2026-02-17": 2,
	"2026-02-18": 3,
	"2026-02-19": 4,
	"2026-02-20": 5,
}

// DayForDate maps a calendar date ("2026-02-16") to its summit day number.
// Unrecognised dates map to 0.
func DayForDate(date string) int {
	return summitDates[strings.TrimSpace(date)]
}
