package models

import "sort"

// ScheduleEntry is one assigned interval in a person's schedule. Hours are
// relative to the interval's Day; End may exceed 24 when the task crosses
// midnight. Absolute-hour helpers are used for all comparisons.
type ScheduleEntry struct {
	Day       int       `json:"day"`
	Start     int       `json:"start"`
	End       int       `json:"end"`
	TaskName  string    `json:"task_name"`
	Archetype Archetype `json:"archetype"`
	IsBase    bool      `json:"is_base_task"`
	IsStandby bool      `json:"is_standby_task"`
}

// AbsStart is the entry start in absolute hours from day zero.
func (e ScheduleEntry) AbsStart() int { return e.Day*24 + e.Start }

// AbsEnd is the entry end in absolute hours from day zero.
func (e ScheduleEntry) AbsEnd() int { return e.Day*24 + e.End }

// Length is the entry duration in hours.
func (e ScheduleEntry) Length() int { return e.End - e.Start }

// Overlaps reports open-sense intersection with the [absStart, absEnd) window.
func (e ScheduleEntry) Overlaps(absStart, absEnd int) bool {
	return absStart < e.AbsEnd() && absEnd > e.AbsStart()
}

// Schedule maps person IDs to their time-ordered assigned intervals for a
// single generation run.
type Schedule map[string][]ScheduleEntry

// NewSchedule returns an empty schedule.
func NewSchedule() Schedule { return make(Schedule) }

// Add appends an entry to the person's sequence, keeping it start-ordered.
func (s Schedule) Add(personID string, e ScheduleEntry) {
	entries := append(s[personID], e)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AbsStart() < entries[j].AbsStart()
	})
	s[personID] = entries
}

// LastEnding returns the entry with the greatest absolute end, or false when
// the person has no assignments yet.
func (s Schedule) LastEnding(personID string) (ScheduleEntry, bool) {
	entries := s[personID]
	if len(entries) == 0 {
		return ScheduleEntry{}, false
	}
	last := entries[0]
	for _, e := range entries[1:] {
		if e.AbsEnd() > last.AbsEnd() {
			last = e
		}
	}
	return last, true
}

// AssignedHours sums the lengths of all of the person's entries.
func (s Schedule) AssignedHours(personID string) int {
	total := 0
	for _, e := range s[personID] {
		total += e.Length()
	}
	return total
}

// PlatoonWorkload tracks cumulative field-duty hours per platoon within one
// generation run. Base tasks do not count.
type PlatoonWorkload map[string]int

// Add credits hours of field duty to a platoon.
func (w PlatoonWorkload) Add(platoonID string, hours int) {
	w[platoonID] += hours
}
