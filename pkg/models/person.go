package models

import "time"

// Person is a member of the company available for tasking.
type Person struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Role           Role       `json:"role"`
	PlatoonID      string     `json:"platoon_id"`
	SquadID        string     `json:"squad_id,omitempty"`
	Certifications []string   `json:"certifications,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
	RecruitDate    *time.Time `json:"recruit_date,omitempty"`

	// Home-rotation anchors. HomeRoundDate is the zero point of the
	// repeating cycle; when unset the cycle checks are skipped.
	HomeRoundDate *time.Time `json:"home_round_date,omitempty"`
	CycleType     CycleType  `json:"cycle_type"`

	StatusType  StatusType `json:"status_type"`
	StatusStart *time.Time `json:"status_start,omitempty"`
	StatusEnd   *time.Time `json:"status_end,omitempty"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`

	Unavailability []UnavailabilityInterval `json:"unavailability,omitempty"`
}

// HasCertification reports whether the person holds the named certification.
func (p *Person) HasCertification(name string) bool {
	for _, c := range p.Certifications {
		if c == name {
			return true
		}
	}
	return false
}

// IsDriver reports whether the person can fill a driver slot.
func (p *Person) IsDriver() bool {
	return p.Role == RoleDriver || p.HasCertification(CertDriver)
}

// UnavailabilityInterval is a half-open date range [Start, End) during which
// the owner cannot be assigned. Intervals may overlap freely.
type UnavailabilityInterval struct {
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Reason   UnavailabilityReason `json:"reason"`
	Quantity int                  `json:"quantity,omitempty"`
}

// Contains reports whether the given date falls inside the interval.
func (u UnavailabilityInterval) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(u.Start)) && d.Before(DateOnly(u.End))
}

// DateOnly truncates a timestamp to midnight UTC for whole-day comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference to − from.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
