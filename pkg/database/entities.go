package database

import "time"

// User represents the users table. The first registered account becomes the
// admin; later registrations go through join_requests.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `gorm:"not null" json:"role"`
	PlatoonID    string    `gorm:"index" json:"platoon_id"`
	SquadID      string    `json:"squad_id"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// JoinRequest represents the join_requests table.
type JoinRequest struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	PlatoonID    string    `json:"platoon_id"`
	SquadID      string    `json:"squad_id"`
	Status       string    `gorm:"default:pending" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// PlatoonRecord represents the platoons table.
type PlatoonRecord struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	IsSpecial bool   `gorm:"default:false" json:"is_special"`
}

// SquadRecord represents the squads table.
type SquadRecord struct {
	ID        string `gorm:"primaryKey" json:"id"`
	PlatoonID string `gorm:"index;not null" json:"platoon_id"`
	Name      string `gorm:"not null" json:"name"`
}

// PersonRecord represents the persons table. Certifications are stored as a
// pipe-separated list.
type PersonRecord struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"not null" json:"name"`
	Role           string     `gorm:"not null" json:"role"`
	PlatoonID      string     `gorm:"index" json:"platoon_id"`
	SquadID        string     `json:"squad_id"`
	Certifications string     `json:"certifications"`
	BirthDate      *time.Time `json:"birth_date"`
	RecruitDate    *time.Time `json:"recruit_date"`
	HomeRoundDate  *time.Time `json:"home_round_date"`
	CycleType      string     `json:"cycle_type"`
	StatusType     string     `json:"status_type"`
	StatusStart    *time.Time `json:"status_start"`
	StatusEnd      *time.Time `json:"status_end"`
	ReturnDate     *time.Time `json:"return_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Unavailability []UnavailabilityRecord `gorm:"foreignKey:PersonID" json:"unavailability,omitempty"`
}

// UnavailabilityRecord represents the unavailability_intervals table.
type UnavailabilityRecord struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PersonID string    `gorm:"index;not null" json:"person_id"`
	Start    time.Time `gorm:"not null" json:"start"`
	End      time.Time `gorm:"not null" json:"end"`
	Reason   string    `json:"reason"`
	Quantity int       `json:"quantity"`
}

// TemplateRecord represents the task_templates table.
type TemplateRecord struct {
	ID                      string `gorm:"primaryKey" json:"id"`
	Name                    string `gorm:"not null" json:"name"`
	Archetype               string `gorm:"not null" json:"archetype"`
	LengthInHours           int    `gorm:"not null" json:"length_in_hours"`
	StartHour               int    `gorm:"default:-1" json:"start_hour"`
	TimesPerDay             int    `gorm:"default:1" json:"times_per_day"`
	CommandersNeeded        int    `json:"commanders_needed"`
	DriversNeeded           int    `json:"drivers_needed"`
	SoldiersNeeded          int    `json:"soldiers_needed"`
	SamePlatoonRequired     bool   `json:"same_platoon_required"`
	RequiresSeniorCommander bool   `json:"requires_senior_commander"`
	RequiresSpecialPlatoon  bool   `json:"requires_special_platoon"`
	IsStandbyTask           bool   `json:"is_standby_task"`
	ReuseSoldiersForStandby bool   `json:"reuse_soldiers_for_standby"`
	IsBaseTask              bool   `json:"is_base_task"`
	RequiredCertification   string `json:"required_certification"`
}

// RosterRecord represents the shavzakim table.
type RosterRecord struct {
	ID                      string    `gorm:"primaryKey" json:"id"`
	Name                    string    `gorm:"not null" json:"name"`
	StartDate               time.Time `gorm:"not null" json:"start_date"`
	DaysCount               int       `gorm:"not null" json:"days_count"`
	PlatoonID               string    `gorm:"index" json:"platoon_id"`
	MinRestHours            int       `json:"min_rest_hours"`
	EmergencyMode           bool      `json:"emergency_mode"`
	ReuseSoldiersForStandby bool      `json:"reuse_soldiers_for_standby"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`

	Instances []InstanceRecord `gorm:"foreignKey:RosterID" json:"instances,omitempty"`
}

// InstanceRecord represents the task_instances table. Selections are stored
// as pipe-separated person-id lists.
type InstanceRecord struct {
	ID                    string `gorm:"primaryKey" json:"id"`
	RosterID              string `gorm:"index;not null" json:"roster_id"`
	Name                  string `json:"name"`
	Archetype             string `json:"archetype"`
	Day                   int    `json:"day"`
	StartHour             int    `json:"start_hour"`
	LengthInHours         int    `json:"length_in_hours"`
	IsBaseTask            bool   `json:"is_base_task"`
	IsStandbyTask         bool   `json:"is_standby_task"`
	RequiredCertification string `json:"required_certification"`
	Commanders            string `json:"commanders"`
	Drivers               string `json:"drivers"`
	Soldiers              string `json:"soldiers"`
	PlatoonID             string `json:"platoon_id"`
	Outcome               string `json:"outcome"`
}

// FeedbackRecord represents the feedback_events table; the learner is the
// system of record for its aggregate effect, this table is the audit trail.
type FeedbackRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InstanceID string    `gorm:"index;not null" json:"instance_id"`
	RosterID   string    `gorm:"index" json:"roster_id"`
	Rating     string    `gorm:"not null" json:"rating"`
	Changes    string    `json:"changes"`
	ReporterID string    `json:"reporter_id"`
	CreatedAt  time.Time `json:"created_at"`
}
