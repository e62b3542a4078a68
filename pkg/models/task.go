package models

// TaskTemplate describes a recurring task to be expanded into dated instances.
type TaskTemplate struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Archetype     Archetype `json:"archetype"`
	LengthInHours int       `json:"length_in_hours"`
	// StartHour pins instances to a fixed hour (0-23); -1 distributes
	// TimesPerDay instances evenly across the day.
	StartHour   int `json:"start_hour"`
	TimesPerDay int `json:"times_per_day"`

	CommandersNeeded int `json:"commanders_needed"`
	DriversNeeded    int `json:"drivers_needed"`
	SoldiersNeeded   int `json:"soldiers_needed"`

	SamePlatoonRequired     bool   `json:"same_platoon_required"`
	RequiresSeniorCommander bool   `json:"requires_senior_commander"`
	RequiresSpecialPlatoon  bool   `json:"requires_special_platoon"`
	IsStandbyTask           bool   `json:"is_standby_task"`
	ReuseSoldiersForStandby bool   `json:"reuse_soldiers_for_standby"`
	IsBaseTask              bool   `json:"is_base_task"`
	RequiredCertification   string `json:"required_certification,omitempty"`
}

// TotalHeadcount is the number of slots the template asks for per instance.
func (t *TaskTemplate) TotalHeadcount() int {
	return t.CommandersNeeded + t.DriversNeeded + t.SoldiersNeeded
}

// TaskInstance is a template materialized at a concrete (day, start hour).
type TaskInstance struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Archetype Archetype `json:"archetype"`
	Day       int       `json:"day"`
	StartHour int       `json:"start_hour"`
	Length    int       `json:"length_in_hours"`

	CommandersNeeded int `json:"commanders_needed"`
	DriversNeeded    int `json:"drivers_needed"`
	SoldiersNeeded   int `json:"soldiers_needed"`

	SamePlatoonRequired     bool   `json:"same_platoon_required"`
	RequiresSeniorCommander bool   `json:"requires_senior_commander"`
	RequiresSpecialPlatoon  bool   `json:"requires_special_platoon"`
	IsStandbyTask           bool   `json:"is_standby_task"`
	ReuseSoldiersForStandby bool   `json:"reuse_soldiers_for_standby"`
	IsBaseTask              bool   `json:"is_base_task"`
	RequiredCertification   string `json:"required_certification,omitempty"`

	// Filled by dispatch.
	Commanders []string `json:"commanders,omitempty"`
	Drivers    []string `json:"drivers,omitempty"`
	Soldiers   []string `json:"soldiers,omitempty"`
	PlatoonID  string   `json:"platoon_id,omitempty"`
}

// AbsStart is the instance start in absolute hours from day zero.
func (ti *TaskInstance) AbsStart() int { return ti.Day*24 + ti.StartHour }

// AbsEnd is the instance end in absolute hours; it may cross midnight.
func (ti *TaskInstance) AbsEnd() int { return ti.AbsStart() + ti.Length }

// Block returns the 8-hour block index (0, 1, 2) containing the start hour.
func (ti *TaskInstance) Block() int { return ti.StartHour / 8 }

// SelectedIDs returns every person selected for the instance.
func (ti *TaskInstance) SelectedIDs() []string {
	out := make([]string, 0, len(ti.Commanders)+len(ti.Drivers)+len(ti.Soldiers))
	out = append(out, ti.Commanders...)
	out = append(out, ti.Drivers...)
	out = append(out, ti.Soldiers...)
	return out
}

// DispatchResult is the structured selection a dispatcher returns on success.
type DispatchResult struct {
	Commanders []*Person `json:"commanders"`
	Drivers    []*Person `json:"drivers"`
	Soldiers   []*Person `json:"soldiers"`
	PlatoonID  string    `json:"platoon_id,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
}

// All returns every selected person across the three role classes.
func (r *DispatchResult) All() []*Person {
	out := make([]*Person, 0, len(r.Commanders)+len(r.Drivers)+len(r.Soldiers))
	out = append(out, r.Commanders...)
	out = append(out, r.Drivers...)
	out = append(out, r.Soldiers...)
	return out
}

// Platoon is an organizational unit; special platoons serve tasks flagged
// requires_special_platoon and are excluded from all others.
type Platoon struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsSpecial bool   `json:"is_special"`
}
