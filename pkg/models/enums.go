package models

import "fmt"

// Role is a person's primary function in the company.
type Role int

const (
	RoleCombatant Role = iota
	RoleDriver
	RoleSquadCommander
	RolePlatoonCommander
	RoleSergeant
)

var roleNames = map[Role]string{
	RoleCombatant:        "combatant",
	RoleDriver:           "driver",
	RoleSquadCommander:   "squad-commander",
	RolePlatoonCommander: "platoon-commander",
	RoleSergeant:         "sergeant",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps the wire name back to a Role.
func ParseRole(s string) (Role, error) {
	for r, n := range roleNames {
		if n == s {
			return r, nil
		}
	}
	return RoleCombatant, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error)  { return []byte(r.String()), nil }
func (r *Role) UnmarshalText(b []byte) error { v, err := ParseRole(string(b)); *r = v; return err }

// IsCommander reports whether the role counts toward a commander slot.
func (r Role) IsCommander() bool {
	return r == RoleSquadCommander || r == RolePlatoonCommander || r == RoleSergeant
}

// IsSeniorCommander reports whether the role may hold the duty-officer post.
func (r Role) IsSeniorCommander() bool {
	return r == RolePlatoonCommander || r == RoleSergeant || r == RoleSquadCommander
}

// Archetype is the task family that selects the dispatch procedure.
type Archetype int

const (
	Patrol Archetype = iota
	Guard
	StandbyA
	StandbyB
	Operations
	Kitchen
	DutyOfficer
)

var archetypeNames = map[Archetype]string{
	Patrol:      "patrol",
	Guard:       "guard",
	StandbyA:    "standby-a",
	StandbyB:    "standby-b",
	Operations:  "operations",
	Kitchen:     "kitchen",
	DutyOfficer: "duty-officer",
}

func (a Archetype) String() string {
	if n, ok := archetypeNames[a]; ok {
		return n
	}
	return fmt.Sprintf("archetype(%d)", int(a))
}

// ParseArchetype maps the wire name back to an Archetype.
func ParseArchetype(s string) (Archetype, error) {
	for a, n := range archetypeNames {
		if n == s {
			return a, nil
		}
	}
	return Patrol, fmt.Errorf("unknown archetype %q", s)
}

func (a Archetype) MarshalText() ([]byte, error) { return []byte(a.String()), nil }
func (a *Archetype) UnmarshalText(b []byte) error {
	v, err := ParseArchetype(string(b))
	*a = v
	return err
}

// CycleType selects a person's home-rotation calendar.
type CycleType int

const (
	// Cycle17_4: 21-day period, days 0-3 at home, day 4 is the return day.
	Cycle17_4 CycleType = iota
	// Cycle11_3: 14-day period, days 0-2 at home, day 3 is the return day.
	Cycle11_3
)

// Period returns the length of the repeating cycle in days.
func (c CycleType) Period() int {
	if c == Cycle11_3 {
		return 14
	}
	return 21
}

// HomeDays returns the count of fully-unavailable days at the start of the cycle.
func (c CycleType) HomeDays() int {
	if c == Cycle11_3 {
		return 3
	}
	return 4
}

// ReturnDay returns the zero-based cycle day on which the half-day rule applies.
func (c CycleType) ReturnDay() int { return c.HomeDays() }

func (c CycleType) String() string {
	if c == Cycle11_3 {
		return "11-3"
	}
	return "17-4"
}

// ParseCycleType maps the wire name back to a CycleType.
func ParseCycleType(s string) (CycleType, error) {
	switch s {
	case "17-4":
		return Cycle17_4, nil
	case "11-3":
		return Cycle11_3, nil
	}
	return Cycle17_4, fmt.Errorf("unknown cycle type %q", s)
}

func (c CycleType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *CycleType) UnmarshalText(b []byte) error {
	v, err := ParseCycleType(string(b))
	*c = v
	return err
}

// StatusType is a person's administrative status.
type StatusType int

const (
	StatusInBase StatusType = iota
	StatusLeaveRequest
	StatusHomeCycle
	StatusRestricted
	StatusOnCourse
)

var statusNames = map[StatusType]string{
	StatusInBase:       "in-base",
	StatusLeaveRequest: "leave-request",
	StatusHomeCycle:    "home-cycle",
	StatusRestricted:   "restricted",
	StatusOnCourse:     "on-course",
}

func (s StatusType) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatusType maps the wire name back to a StatusType.
func ParseStatusType(v string) (StatusType, error) {
	for s, n := range statusNames {
		if n == v {
			return s, nil
		}
	}
	return StatusInBase, fmt.Errorf("unknown status type %q", v)
}

func (s StatusType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *StatusType) UnmarshalText(b []byte) error {
	v, err := ParseStatusType(string(b))
	*s = v
	return err
}

// UnavailabilityReason tags a declared unavailability interval.
type UnavailabilityReason string

const (
	ReasonLeave       UnavailabilityReason = "leave"
	ReasonExitRequest UnavailabilityReason = "exit-request"
	ReasonMedical     UnavailabilityReason = "medical"
	ReasonRestriction UnavailabilityReason = "restriction"
)

// Rating is a user verdict on a generated assignment.
type Rating string

const (
	RatingApproved Rating = "approved"
	RatingRejected Rating = "rejected"
	RatingModified Rating = "modified"
)

// ExemplarRating grades a historical roster used for training.
type ExemplarRating string

const (
	ExemplarExcellent ExemplarRating = "excellent"
	ExemplarGood      ExemplarRating = "good"
	ExemplarBad       ExemplarRating = "bad"
)

// Well-known certification names.
const (
	CertDriver            = "driver"
	CertOperationsRoom    = "operations-room"
	CertOperationsOfficer = "operations-officer"
	CertMedic             = "medic"
)
