package models

import (
	"time"

	"github.com/dmitrijs2005/kakeibo/internal/common"
)

// MonthsAgo returns the first day of the month n months before t.
func MonthsAgo(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// RecentMonthsRange returns the window covering the current month and the
// months-1 months before it, ending today.
func RecentMonthsRange(today time.Time, months int) (start, end string) {
	if months < 1 {
		months = 1
	}
	return MonthsAgo(today, months-1).Format(common.DateLayout), today.Format(common.DateLayout)
}

// MonthRange returns the first and last day of the month containing t.
func MonthRange(t time.Time) (start, end string) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1)
	return first.Format(common.DateLayout), last.Format(common.DateLayout)
}
