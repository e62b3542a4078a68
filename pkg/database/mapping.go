package database

import (
	"strings"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// ToPerson converts a persisted record into the engine's domain type.
// Unknown enum values fall back to their zero values rather than erroring;
// records are validated on write.
func ToPerson(r *PersonRecord) *models.Person {
	role, _ := models.ParseRole(r.Role)
	cycle, _ := models.ParseCycleType(r.CycleType)
	status, _ := models.ParseStatusType(r.StatusType)

	p := &models.Person{
		ID:            r.ID,
		Name:          r.Name,
		Role:          role,
		PlatoonID:     r.PlatoonID,
		SquadID:       r.SquadID,
		BirthDate:     r.BirthDate,
		RecruitDate:   r.RecruitDate,
		HomeRoundDate: r.HomeRoundDate,
		CycleType:     cycle,
		StatusType:    status,
		StatusStart:   r.StatusStart,
		StatusEnd:     r.StatusEnd,
		ReturnDate:    r.ReturnDate,
	}
	if r.Certifications != "" {
		p.Certifications = strings.Split(r.Certifications, "|")
	}
	for _, u := range r.Unavailability {
		p.Unavailability = append(p.Unavailability, models.UnavailabilityInterval{
			Start:    u.Start,
			End:      u.End,
			Reason:   models.UnavailabilityReason(u.Reason),
			Quantity: u.Quantity,
		})
	}
	return p
}

// FromPerson converts a domain person into its persisted record.
func FromPerson(p *models.Person) *PersonRecord {
	return &PersonRecord{
		ID:             p.ID,
		Name:           p.Name,
		Role:           p.Role.String(),
		PlatoonID:      p.PlatoonID,
		SquadID:        p.SquadID,
		Certifications: strings.Join(p.Certifications, "|"),
		BirthDate:      p.BirthDate,
		RecruitDate:    p.RecruitDate,
		HomeRoundDate:  p.HomeRoundDate,
		CycleType:      p.CycleType.String(),
		StatusType:     p.StatusType.String(),
		StatusStart:    p.StatusStart,
		StatusEnd:      p.StatusEnd,
		ReturnDate:     p.ReturnDate,
	}
}

// ToTemplate converts a persisted template record into the domain type.
func ToTemplate(r *TemplateRecord) *models.TaskTemplate {
	arch, _ := models.ParseArchetype(r.Archetype)
	return &models.TaskTemplate{
		ID:                      r.ID,
		Name:                    r.Name,
		Archetype:               arch,
		LengthInHours:           r.LengthInHours,
		StartHour:               r.StartHour,
		TimesPerDay:             r.TimesPerDay,
		CommandersNeeded:        r.CommandersNeeded,
		DriversNeeded:           r.DriversNeeded,
		SoldiersNeeded:          r.SoldiersNeeded,
		SamePlatoonRequired:     r.SamePlatoonRequired,
		RequiresSeniorCommander: r.RequiresSeniorCommander,
		RequiresSpecialPlatoon:  r.RequiresSpecialPlatoon,
		IsStandbyTask:           r.IsStandbyTask,
		ReuseSoldiersForStandby: r.ReuseSoldiersForStandby,
		IsBaseTask:              r.IsBaseTask,
		RequiredCertification:   r.RequiredCertification,
	}
}

// FromTemplate converts a domain template into its persisted record.
func FromTemplate(t *models.TaskTemplate) *TemplateRecord {
	return &TemplateRecord{
		ID:                      t.ID,
		Name:                    t.Name,
		Archetype:               t.Archetype.String(),
		LengthInHours:           t.LengthInHours,
		StartHour:               t.StartHour,
		TimesPerDay:             t.TimesPerDay,
		CommandersNeeded:        t.CommandersNeeded,
		DriversNeeded:           t.DriversNeeded,
		SoldiersNeeded:          t.SoldiersNeeded,
		SamePlatoonRequired:     t.SamePlatoonRequired,
		RequiresSeniorCommander: t.RequiresSeniorCommander,
		RequiresSpecialPlatoon:  t.RequiresSpecialPlatoon,
		IsStandbyTask:           t.IsStandbyTask,
		ReuseSoldiersForStandby: t.ReuseSoldiersForStandby,
		IsBaseTask:              t.IsBaseTask,
		RequiredCertification:   t.RequiredCertification,
	}
}

// ToRoster converts a persisted roster record (without instances) into the
// domain type.
func ToRoster(r *RosterRecord) *models.Roster {
	roster := &models.Roster{
		ID:                      r.ID,
		Name:                    r.Name,
		StartDate:               r.StartDate,
		DaysCount:               r.DaysCount,
		PlatoonID:               r.PlatoonID,
		MinRestHours:            r.MinRestHours,
		EmergencyMode:           r.EmergencyMode,
		ReuseSoldiersForStandby: r.ReuseSoldiersForStandby,
	}
	for i := range r.Instances {
		roster.Instances = append(roster.Instances, ToInstance(&r.Instances[i]))
	}
	return roster
}

// ToInstance converts a persisted instance record into the domain type.
func ToInstance(r *InstanceRecord) *models.TaskInstance {
	arch, _ := models.ParseArchetype(r.Archetype)
	return &models.TaskInstance{
		ID:                    r.ID,
		Name:                  r.Name,
		Archetype:             arch,
		Day:                   r.Day,
		StartHour:             r.StartHour,
		Length:                r.LengthInHours,
		IsBaseTask:            r.IsBaseTask,
		IsStandbyTask:         r.IsStandbyTask,
		RequiredCertification: r.RequiredCertification,
		Commanders:            splitIDs(r.Commanders),
		Drivers:               splitIDs(r.Drivers),
		Soldiers:              splitIDs(r.Soldiers),
		PlatoonID:             r.PlatoonID,
	}
}

// FromInstance converts a dispatched instance into its persisted record.
func FromInstance(rosterID string, ti *models.TaskInstance, outcome models.Outcome) *InstanceRecord {
	return &InstanceRecord{
		ID:                    ti.ID,
		RosterID:              rosterID,
		Name:                  ti.Name,
		Archetype:             ti.Archetype.String(),
		Day:                   ti.Day,
		StartHour:             ti.StartHour,
		LengthInHours:         ti.Length,
		IsBaseTask:            ti.IsBaseTask,
		IsStandbyTask:         ti.IsStandbyTask,
		RequiredCertification: ti.RequiredCertification,
		Commanders:            strings.Join(ti.Commanders, "|"),
		Drivers:               strings.Join(ti.Drivers, "|"),
		Soldiers:              strings.Join(ti.Soldiers, "|"),
		PlatoonID:             ti.PlatoonID,
		Outcome:               string(outcome),
	}
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}
