// Package specials classifies time-boxed venue offers against a clock
// instant: active right now, starting within a look-ahead window, or
// inactive. Overnight spans (start later than end, e.g. 22:00-02:00) take an
// explicit branch so minutes are never double counted across midnight.
package specials

import (
	"strconv"
	"strings"
	"time"

	"github.com/eventatlas/portalfeed/model"
)

// Offer states, ordered by strength.
const (
	StateActiveNow    = "active_now"
	StateStartingSoon = "starting_soon"
	StateInactive     = "inactive"
)

const minutesPerDay = 24 * 60

// Evaluation is the classification of one special at one instant.
// MinutesUntilStart is set whenever a start bound still lies ahead on the
// evaluation day, MinutesRemaining whenever the active span has a defined
// end.
type Evaluation struct {
	State             string
	MinutesUntilStart *int
	MinutesRemaining  *int
}

// Evaluate classifies sp at now. lookAheadMin bounds how far into the future
// "starting soon" may reach; zero or negative disables the look-ahead.
func Evaluate(sp *model.Special, now time.Time, lookAheadMin int) Evaluation {
	if outsideDateBounds(sp, now) {
		return Evaluation{State: StateInactive}
	}
	if days := sp.DaySet(); len(days) > 0 {
		wd := isoWeekday(now)
		member := false
		for _, d := range days {
			if d == wd {
				member = true
				break
			}
		}
		if !member {
			return Evaluation{State: StateInactive}
		}
	}

	nowMin := now.Hour()*60 + now.Minute()
	start, hasStart := parseClock(sp.StartTime)
	end, hasEnd := parseClock(sp.EndTime)

	switch {
	case !hasStart && !hasEnd:
		// All-day offer.
		return Evaluation{State: StateActiveNow}

	case hasStart && !hasEnd:
		if nowMin >= start {
			return Evaluation{State: StateActiveNow}
		}
		return beforeStart(start-nowMin, lookAheadMin)

	case !hasStart && hasEnd:
		if nowMin <= end {
			return Evaluation{State: StateActiveNow, MinutesRemaining: minutes(end - nowMin)}
		}
		return Evaluation{State: StateInactive}

	case start <= end:
		// Same-day span.
		if nowMin < start {
			return beforeStart(start-nowMin, lookAheadMin)
		}
		if nowMin <= end {
			return Evaluation{State: StateActiveNow, MinutesRemaining: minutes(end - nowMin)}
		}
		return Evaluation{State: StateInactive}

	default:
		// Overnight span. Active either after the start or before the end;
		// the remaining count crosses midnight exactly once.
		if nowMin >= start {
			return Evaluation{State: StateActiveNow, MinutesRemaining: minutes((minutesPerDay - nowMin) + end)}
		}
		if nowMin <= end {
			return Evaluation{State: StateActiveNow, MinutesRemaining: minutes(end - nowMin)}
		}
		return beforeStart(start-nowMin, lookAheadMin)
	}
}

// BestForVenue evaluates every active special of a venue and keeps the
// strongest result: state first (active beats starting-soon beats inactive),
// confidence second. Returns a nil special when nothing is evaluable.
func BestForVenue(venueSpecials []model.Special, now time.Time, lookAheadMin int) (*model.Special, Evaluation) {
	var bestSp *model.Special
	best := Evaluation{State: StateInactive}
	for i := range venueSpecials {
		sp := &venueSpecials[i]
		if !sp.Active {
			continue
		}
		ev := Evaluate(sp, now, lookAheadMin)
		if bestSp == nil || stronger(sp, ev, bestSp, best) {
			bestSp = sp
			best = ev
		}
	}
	return bestSp, best
}

func stronger(sp *model.Special, ev Evaluation, curSp *model.Special, cur Evaluation) bool {
	if statePriority(ev.State) != statePriority(cur.State) {
		return statePriority(ev.State) > statePriority(cur.State)
	}
	return sp.ConfidenceScore() > curSp.ConfidenceScore()
}

func statePriority(state string) int {
	switch state {
	case StateActiveNow:
		return 2
	case StateStartingSoon:
		return 1
	default:
		return 0
	}
}

func beforeStart(until, lookAheadMin int) Evaluation {
	ev := Evaluation{State: StateInactive, MinutesUntilStart: minutes(until)}
	if lookAheadMin > 0 && until <= lookAheadMin {
		ev.State = StateStartingSoon
	}
	return ev
}

func outsideDateBounds(sp *model.Special, now time.Time) bool {
	today := dateOnly(now)
	if sp.StartDate != nil && today.Before(dateOnly(*sp.StartDate)) {
		return true
	}
	if sp.EndDate != nil && today.After(dateOnly(*sp.EndDate)) {
		return true
	}
	return false
}

// dateOnly normalizes to UTC midnight of the wall-clock date, so bounds
// stored in any zone compare by calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isoWeekday maps Go's Sunday-first weekday to ISO 8601, Monday=1..Sunday=7.
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// parseClock reads "HH:MM" or "HH:MM:SS"; seconds are ignored. An
// unparseable value is reported as unset.
func parseClock(s *string) (int, bool) {
	if s == nil || *s == "" {
		return 0, false
	}
	parts := strings.Split(*s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func minutes(m int) *int {
	return &m
}
