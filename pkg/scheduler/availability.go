package scheduler

import (
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// CheckContext carries the per-check policy the oracle needs beyond the
// candidate window itself.
type CheckContext struct {
	// Date is the calendar date of the candidate day.
	Date time.Time
	// MinRest is the effective minimum rest in hours. Base tasks force it
	// to zero regardless.
	MinRest int
	// IsBaseTask marks the candidate as in-base duty.
	IsBaseTask bool
}

// Verdict names which hard constraint disqualified a candidate. Empty means
// available.
type Verdict string

const (
	VerdictAvailable     Verdict = ""
	VerdictOnCourse      Verdict = "on-course"
	VerdictHomeCycle     Verdict = "home-cycle"
	VerdictReturnHalfDay Verdict = "return-half-day"
	VerdictOverlap       Verdict = "overlap"
	VerdictRest          Verdict = "rest"
	VerdictUnavailable   Verdict = "declared-unavailable"
)

// Available answers whether hard constraints permit assigning the person to
// the (day, startHour, length) window. It is total: any disqualifying
// condition yields false, never an error.
func Available(p *models.Person, day, startHour, length int, sched models.Schedule, ctx CheckContext) bool {
	return Explain(p, day, startHour, length, sched, ctx) == VerdictAvailable
}

// Explain is the diagnostic companion of Available: it returns the first
// failing check in the canonical order, for tests and generation reports.
func Explain(p *models.Person, day, startHour, length int, sched models.Schedule, ctx CheckContext) Verdict {
	date := models.DateOnly(ctx.Date)

	if onCourse(p, date) {
		return VerdictOnCourse
	}

	if v := cycleVerdict(p, date, startHour); v != VerdictAvailable {
		return v
	}

	candStart := day*24 + startHour
	candEnd := candStart + length
	for _, e := range sched[p.ID] {
		if e.Overlaps(candStart, candEnd) {
			return VerdictOverlap
		}
	}

	effRest := ctx.MinRest
	if ctx.IsBaseTask {
		effRest = 0
	}
	if effRest > 0 {
		if last, ok := sched.LastEnding(p.ID); ok && !last.IsStandby && !last.IsBase {
			if candStart-last.AbsEnd() < effRest {
				return VerdictRest
			}
		}
	}

	for _, u := range p.Unavailability {
		if u.Contains(date) {
			return VerdictUnavailable
		}
	}

	return VerdictAvailable
}

// onCourse reports whether the person's on-course status covers the date.
// An on-course status with no window is unconditional.
func onCourse(p *models.Person, date time.Time) bool {
	if p.StatusType != models.StatusOnCourse {
		return false
	}
	if p.StatusStart == nil || p.StatusEnd == nil {
		return true
	}
	return !date.Before(models.DateOnly(*p.StatusStart)) && !date.After(models.DateOnly(*p.StatusEnd))
}

// cycleVerdict applies the home-rotation calendar and the return-day
// half-day rule. Cycle membership is an integer modulus on whole-day offsets
// from home_round_date.
func cycleVerdict(p *models.Person, date time.Time, startHour int) Verdict {
	if p.ReturnDate != nil && date.Equal(models.DateOnly(*p.ReturnDate)) && startHour < 12 {
		return VerdictReturnHalfDay
	}

	if p.HomeRoundDate == nil {
		return VerdictAvailable
	}
	offset := models.DaysBetween(*p.HomeRoundDate, date)
	period := p.CycleType.Period()
	cycleDay := ((offset % period) + period) % period

	if cycleDay < p.CycleType.HomeDays() {
		return VerdictHomeCycle
	}
	if cycleDay == p.CycleType.ReturnDay() && startHour < 12 {
		return VerdictReturnHalfDay
	}
	return VerdictAvailable
}
