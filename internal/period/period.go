// Package period windows batch activity onto calendar dates and named
// reporting periods. Every function is pure; the batch ledger is the single
// source of truth and nothing here consults cached aggregates.
package period

import (
	"time"

	"github.com/PrimeLevo/ActivityX-Manager-sub000/internal/model"
)

// Kind selects which duration field of a batch is being attributed.
type Kind string

const (
	KindActive   Kind = "active"
	KindInactive Kind = "inactive"
	KindTotal    Kind = "total"
)

// ActivityForDate computes the share of one batch's time attributable to
// targetDate (YYYY-MM-DD). Ordinary batches contribute their full field on
// their anchor date and nothing elsewhere. Midnight-spanning batches are
// split proportionally between the two dates they touch, weighted by the
// tracked time on each side of midnight; a zero-total batch contributes
// nothing, which also guards the division.
func ActivityForDate(b model.Batch, targetDate string, kind Kind) float64 {
	if !b.SpansMidnight {
		if b.Date == targetDate {
			return field(b, kind)
		}
		return 0
	}

	if b.TotalSeconds == 0 {
		return 0
	}

	var weight float64
	switch targetDate {
	case b.Date:
		weight = b.TimeBeforeMidnight / b.TotalSeconds
	case b.EndDate:
		weight = b.TimeAfterMidnight / b.TotalSeconds
	default:
		return 0
	}
	// Malformed batches can report before/after slices that disagree with
	// the total; clamp so a bad row never inflates or negates a day.
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return field(b, kind) * weight
}

func field(b model.Batch, kind Kind) float64 {
	switch kind {
	case KindActive:
		return b.ActiveSeconds
	case KindInactive:
		return b.InactiveSeconds
	default:
		return b.TotalSeconds
	}
}

// RangeFor resolves a named period to an inclusive day-granularity window
// anchored at now. Weeks start on Monday. Custom uses the caller-supplied
// bounds verbatim and is the only period that can fail validation.
func RangeFor(p model.Period, now time.Time, custom *model.DateRange) (model.DateRange, error) {
	today := dayOf(now)

	switch p {
	case model.PeriodDaily:
		return model.DateRange{Start: today, End: today}, nil

	case model.PeriodWeekly:
		offset := int(now.Weekday()) - 1
		if now.Weekday() == time.Sunday {
			offset = 6
		}
		start := today.AddDate(0, 0, -offset)
		return model.DateRange{Start: start, End: start.AddDate(0, 0, 6)}, nil

	case model.PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, -1)
		return model.DateRange{Start: start, End: end}, nil

	case model.PeriodAnnual:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())
		return model.DateRange{Start: start, End: end}, nil

	case model.PeriodCustom:
		if custom == nil {
			return model.DateRange{}, model.NewValidationError("period", "custom period requires explicit bounds")
		}
		return model.DateRange{Start: dayOf(custom.Start), End: dayOf(custom.End)}, nil

	default:
		return model.DateRange{}, model.NewValidationError("period", "unknown period "+string(p))
	}
}

// SecondsForPeriod sums a user's batch time inside the window, re-derived
// purely from the ledger. Midnight-spanning batches are evaluated against
// both calendar dates independently so a window edge lands on the right
// side of the split.
func SecondsForPeriod(u *model.User, r model.DateRange, kind Kind) float64 {
	var sum float64
	for i := range u.Batches {
		b := u.Batches[i]
		if b.SpansMidnight {
			if dayInRange(b.Date, r) {
				sum += ActivityForDate(b, b.Date, kind)
			}
			if dayInRange(b.EndDate, r) {
				sum += ActivityForDate(b, b.EndDate, kind)
			}
			continue
		}
		if dayInRange(b.Date, r) {
			sum += field(b, kind)
		}
	}
	return sum
}

// ActiveSecondsForPeriod is the windowed active-time query used by sorting,
// filtering, export, and the dashboard API.
func ActiveSecondsForPeriod(u *model.User, r model.DateRange) float64 {
	return SecondsForPeriod(u, r, KindActive)
}

// dayInRange reports whether the calendar day (YYYY-MM-DD) falls inside the
// inclusive range. Unparseable days are outside every range.
func dayInRange(day string, r model.DateRange) bool {
	d, err := time.ParseInLocation(model.DayFormat, day, r.Start.Location())
	if err != nil {
		return false
	}
	start, end := dayOf(r.Start), dayOf(r.End)
	return !d.Before(start) && !d.After(end)
}

// dayOf strips time-of-day, keeping the location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
