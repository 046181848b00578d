package core

import "time"

// EffectiveDate is the single date-resolution rule shared by the windowed
// stats and the most-recent lookup: the user-assigned date when present,
// otherwise the creation timestamp. Records with neither are reported as
// having no effective date and stay out of time-based views, though they
// still count toward category totals.
func EffectiveDate(r ExpenseRecord) (time.Time, bool) {
	if !r.Date.IsZero() {
		return r.Date.Time, true
	}
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt, true
	}
	return time.Time{}, false
}

// MonthStats is the count and sum of records dated within one calendar month.
type MonthStats struct {
	Count int
	Sum   Money
}

// StatsForMonth sums records whose effective date falls in the calendar
// month containing ref. Amounts are coerced the same way CategoryTotals
// coerces them.
func StatsForMonth(records []ExpenseRecord, ref time.Time) MonthStats {
	var s MonthStats
	for _, r := range records {
		d, ok := EffectiveDate(r)
		if !ok {
			continue
		}
		if d.Year() == ref.Year() && d.Month() == ref.Month() {
			s.Count++
			s.Sum = s.Sum.Add(r.AmountMoney())
		}
	}
	return s
}

// MostRecent returns the record with the latest effective date across all
// categories. Ties keep the earliest record in input order so the result
// is deterministic for a given snapshot. ok is false when no record has an
// effective date.
func MostRecent(records []ExpenseRecord) (ExpenseRecord, bool) {
	var (
		best     ExpenseRecord
		bestDate time.Time
		found    bool
	)
	for _, r := range records {
		d, ok := EffectiveDate(r)
		if !ok {
			continue
		}
		if !found || d.After(bestDate) {
			best = r
			bestDate = d
			found = true
		}
	}
	return best, found
}
