package domain

import (
	"time"

	catalogdomain "github.com/paperplanehq/agencydesk/internal/catalog/domain"
)

// PeriodRange is a half-open-free, inclusive calendar range [DateFrom, DateTo].
type PeriodRange struct {
	DateFrom time.Time
	DateTo   time.Time
}

// Key is the natural-key string for matching against persisted periods.
// Matching is by exact boundaries, not by overlap: drift introduced by a
// manually adjusted period is accepted and never auto-corrected.
func (r PeriodRange) Key() string {
	return r.DateFrom.Format("2006-01-02") + "|" + r.DateTo.Format("2006-01-02")
}

// Intersects reports whether the range touches the inclusive window.
func (r PeriodRange) Intersects(from, to time.Time) bool {
	return !r.DateTo.Before(from) && !r.DateFrom.After(to)
}

// Project derives the ordered billing calendar of a service.
//
// ONE_TIME yields exactly one range [start, start]. Recurring cadences yield
// successive non-overlapping ranges anchored at start, each ending one day
// before the next begins, until the service end or the caller-supplied
// horizon. The projector never reads the clock: identical inputs always
// yield identical output.
//
// Ranges whose exact key appears in existing are skipped; the last generated
// range may extend past the bound, callers filter by intersection.
func Project(start time.Time, cadence catalogdomain.BillingCadence, end *time.Time, horizon time.Time, existing []PeriodRange) ([]PeriodRange, error) {
	if !cadence.Valid() {
		return nil, ErrInvalidCadence
	}

	start = NormalizeDate(start)
	if end != nil {
		e := NormalizeDate(*end)
		if e.Before(start) {
			return nil, ErrInvalidRange
		}
		end = &e
	}

	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[PeriodRange{DateFrom: NormalizeDate(r.DateFrom), DateTo: NormalizeDate(r.DateTo)}.Key()] = struct{}{}
	}

	if cadence == catalogdomain.CadenceOneTime {
		one := PeriodRange{DateFrom: start, DateTo: start}
		if _, ok := seen[one.Key()]; ok {
			return nil, nil
		}
		return []PeriodRange{one}, nil
	}

	bound := time.Time{}
	if end != nil {
		bound = *end
	}
	if !horizon.IsZero() {
		h := NormalizeDate(horizon)
		if bound.IsZero() || h.Before(bound) {
			bound = h
		}
	}
	if bound.IsZero() {
		return nil, ErrUnboundedProjection
	}

	months := cadence.Months()
	var out []PeriodRange
	for i := 0; ; i++ {
		from := addMonths(start, i*months)
		if from.After(bound) {
			break
		}
		to := addDays(addMonths(start, (i+1)*months), -1)

		r := PeriodRange{DateFrom: from, DateTo: to}
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		out = append(out, r)
	}

	return out, nil
}
