package models

import "time"

// Roster (shavzak) is a named collection of task instances over a horizon of
// whole days starting at StartDate.
type Roster struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	DaysCount int       `json:"days_count"`
	PlatoonID string    `json:"platoon_id,omitempty"`

	MinRestHours            int  `json:"min_rest_hours"`
	EmergencyMode           bool `json:"emergency_mode"`
	ReuseSoldiersForStandby bool `json:"reuse_soldiers_for_standby"`

	Instances []*TaskInstance `json:"instances,omitempty"`
}

// DateForDay resolves a zero-based horizon day to its calendar date.
func (r *Roster) DateForDay(day int) time.Time {
	return DateOnly(r.StartDate).AddDate(0, 0, day)
}

// Outcome classifies the result of dispatching one task instance.
type Outcome string

const (
	OutcomeFilled   Outcome = "filled"
	OutcomeUnfilled Outcome = "unfilled"
	OutcomeSkipped  Outcome = "skipped"
)

// FailureKind distinguishes why an instance went unfilled.
type FailureKind string

const (
	// FailureHard: no candidate passed the availability oracle at any
	// relaxation level.
	FailureHard FailureKind = "hard-constraint"
	// FailureSoft: candidates existed but a role class fell short.
	FailureSoft FailureKind = "soft"
)

// InstanceOutcome is the per-instance report line of a generation run.
type InstanceOutcome struct {
	TaskID    string         `json:"task"`
	TaskName  string         `json:"task_name"`
	Day       int            `json:"day"`
	StartHour int            `json:"start_hour"`
	Outcome   Outcome        `json:"outcome"`
	Kind      FailureKind    `json:"kind,omitempty"`
	Missing   map[string]int `json:"missing,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// GenerationReport is the full result of one generation run.
type GenerationReport struct {
	RosterID  string            `json:"roster_id"`
	Outcomes  []InstanceOutcome `json:"outcomes"`
	Warnings  []string          `json:"warnings,omitempty"`
	Schedule  Schedule          `json:"schedule"`
	Workload  PlatoonWorkload   `json:"platoon_workload"`
	Partial   bool              `json:"partial"`
	Emergency bool              `json:"emergency_mode"`
}

// FilledCount returns how many instances were fully dispatched.
func (g *GenerationReport) FilledCount() int {
	n := 0
	for _, o := range g.Outcomes {
		if o.Outcome == OutcomeFilled {
			n++
		}
	}
	return n
}
