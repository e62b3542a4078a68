package learner

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Buffer caps enforced on every write.
const (
	MaxFeedbackEvents   = 100
	MaxTrainingExamples = 100
	MaxRejectedEntries  = 50
)

// PatternKey identifies a learned (person, archetype) pattern.
type PatternKey struct {
	PersonID  string
	Archetype models.Archetype
}

// Pattern carries the learned statistics for one (person, archetype) pair.
type Pattern struct {
	Count       int     `json:"count"`
	SuccessRate float64 `json:"success_rate"`
	Approvals   int     `json:"approvals"`
	Rejections  int     `json:"rejections"`
}

// HourKey identifies a learned (person, hour) preference.
type HourKey struct {
	PersonID string
	Hour     int
}

// FeedbackChanges is the optional payload of a "modified" feedback event.
type FeedbackChanges struct {
	NewHour           *int     `json:"new_hour,omitempty"`
	AddedPersons      []string `json:"added_persons,omitempty"`
	RemovedPersons    []string `json:"removed_persons,omitempty"`
	PreferredSoldiers []string `json:"preferred_soldiers,omitempty"`
}

// FeedbackEvent is one user verdict on a generated assignment.
type FeedbackEvent struct {
	InstanceID   string           `json:"instance_id"`
	RosterID     string           `json:"roster_id,omitempty"`
	Archetype    models.Archetype `json:"archetype"`
	PersonIDs    []string         `json:"person_ids"`
	StartHour    int              `json:"start_hour"`
	Rating       models.Rating    `json:"rating"`
	Changes      *FeedbackChanges `json:"changes,omitempty"`
	ReporterRole models.Role      `json:"reporter_role"`
	At           time.Time        `json:"at"`
}

// RejectedAssignment remembers an instance a user turned down.
type RejectedAssignment struct {
	InstanceID string           `json:"instance_id"`
	Archetype  models.Archetype `json:"archetype"`
	PersonIDs  []string         `json:"person_ids"`
	At         time.Time        `json:"at"`
}

// TrainingExample is a prior roster exemplar with a qualitative grade.
type TrainingExample struct {
	Instances []*models.TaskInstance `json:"instances"`
	Rating    models.ExemplarRating  `json:"rating"`
}

// Stats holds the global feedback counters.
type Stats struct {
	Approvals        int `json:"approvals"`
	Rejections       int `json:"rejections"`
	Modifications    int `json:"modifications"`
	TotalAssignments int `json:"total_assignments"`
}

// Model is the full learned state read by scoring and mutated by feedback.
// It is not safe for concurrent use; the Store serializes access.
type Model struct {
	Patterns            map[PatternKey]*Pattern
	HourPreferences     map[HourKey]float64
	CohesionPreferences map[string]float64
	Feedback            []FeedbackEvent
	Rejected            []RejectedAssignment
	Examples            []TrainingExample
	ExamplesSeen        int
	Stats               Stats
}

// NewModel returns an empty model with all tables initialized.
func NewModel() *Model {
	return &Model{
		Patterns:            make(map[PatternKey]*Pattern),
		HourPreferences:     make(map[HourKey]float64),
		CohesionPreferences: make(map[string]float64),
	}
}

// PatternFor returns the pattern for the pair, creating it on first touch.
func (m *Model) PatternFor(personID string, arch models.Archetype) *Pattern {
	k := PatternKey{PersonID: personID, Archetype: arch}
	p, ok := m.Patterns[k]
	if !ok {
		p = &Pattern{}
		m.Patterns[k] = p
	}
	return p
}

// SuccessRate returns the learned rate for the pair, zero when unknown.
func (m *Model) SuccessRate(personID string, arch models.Archetype) float64 {
	if p, ok := m.Patterns[PatternKey{PersonID: personID, Archetype: arch}]; ok {
		return p.SuccessRate
	}
	return 0
}

// HourPreference returns the learned (person, hour) scalar, zero when unknown.
func (m *Model) HourPreference(personID string, hour int) float64 {
	return m.HourPreferences[HourKey{PersonID: personID, Hour: hour}]
}

// Cohesion returns the learned per-person cohesion scalar, zero when unknown.
func (m *Model) Cohesion(personID string) float64 {
	return m.CohesionPreferences[personID]
}

// FeedbackTally returns approvals minus rejections for the pair.
func (m *Model) FeedbackTally(personID string, arch models.Archetype) int {
	if p, ok := m.Patterns[PatternKey{PersonID: personID, Archetype: arch}]; ok {
		return p.Approvals - p.Rejections
	}
	return 0
}

// RecentRatings returns up to n most recent ratings recorded for the pair,
// newest first.
func (m *Model) RecentRatings(personID string, arch models.Archetype, n int) []models.Rating {
	var out []models.Rating
	for i := len(m.Feedback) - 1; i >= 0 && len(out) < n; i-- {
		ev := m.Feedback[i]
		if ev.Archetype != arch {
			continue
		}
		for _, id := range ev.PersonIDs {
			if id == personID {
				out = append(out, ev.Rating)
				break
			}
		}
	}
	return out
}

// LatestFeedbackAt returns the timestamp of the newest event touching the
// pair, or false when none exists.
func (m *Model) LatestFeedbackAt(personID string, arch models.Archetype) (time.Time, bool) {
	for i := len(m.Feedback) - 1; i >= 0; i-- {
		ev := m.Feedback[i]
		if ev.Archetype != arch {
			continue
		}
		for _, id := range ev.PersonIDs {
			if id == personID {
				return ev.At, true
			}
		}
	}
	return time.Time{}, false
}

// Clone returns a deep copy used as a generation-time snapshot.
func (m *Model) Clone() *Model {
	c := NewModel()
	for k, p := range m.Patterns {
		cp := *p
		c.Patterns[k] = &cp
	}
	for k, v := range m.HourPreferences {
		c.HourPreferences[k] = v
	}
	for k, v := range m.CohesionPreferences {
		c.CohesionPreferences[k] = v
	}
	c.Feedback = append(c.Feedback, m.Feedback...)
	c.Rejected = append(c.Rejected, m.Rejected...)
	c.Examples = append(c.Examples, m.Examples...)
	c.ExamplesSeen = m.ExamplesSeen
	c.Stats = m.Stats
	return c
}

// trim enforces the bounded-buffer caps; called after every write.
func (m *Model) trim() {
	if n := len(m.Feedback); n > MaxFeedbackEvents {
		m.Feedback = append([]FeedbackEvent(nil), m.Feedback[n-MaxFeedbackEvents:]...)
	}
	if n := len(m.Examples); n > MaxTrainingExamples {
		m.Examples = append([]TrainingExample(nil), m.Examples[n-MaxTrainingExamples:]...)
	}
	if n := len(m.Rejected); n > MaxRejectedEntries {
		m.Rejected = append([]RejectedAssignment(nil), m.Rejected[n-MaxRejectedEntries:]...)
	}
}

// patternRecord et al. flatten the struct-keyed maps for the snapshot blob.
type patternRecord struct {
	PersonID  string           `json:"person_id"`
	Archetype models.Archetype `json:"archetype"`
	Pattern   Pattern          `json:"pattern"`
}

type hourRecord struct {
	PersonID string  `json:"person_id"`
	Hour     int     `json:"hour"`
	Value    float64 `json:"value"`
}

type cohesionRecord struct {
	PersonID string  `json:"person_id"`
	Value    float64 `json:"value"`
}

type snapshot struct {
	Patterns     []patternRecord      `json:"patterns"`
	Hours        []hourRecord         `json:"hour_preferences"`
	Cohesion     []cohesionRecord     `json:"cohesion_preferences"`
	Feedback     []FeedbackEvent      `json:"user_feedback"`
	Rejected     []RejectedAssignment `json:"rejected"`
	ExamplesSeen int                  `json:"examples_seen"`
	Stats        Stats                `json:"stats"`
}

// MarshalJSON serializes the model deterministically (sorted records).
func (m *Model) MarshalJSON() ([]byte, error) {
	s := snapshot{
		Feedback:     m.Feedback,
		Rejected:     m.Rejected,
		ExamplesSeen: m.ExamplesSeen,
		Stats:        m.Stats,
	}
	for k, p := range m.Patterns {
		s.Patterns = append(s.Patterns, patternRecord{k.PersonID, k.Archetype, *p})
	}
	sort.Slice(s.Patterns, func(i, j int) bool {
		a, b := s.Patterns[i], s.Patterns[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		return a.Archetype < b.Archetype
	})
	for k, v := range m.HourPreferences {
		s.Hours = append(s.Hours, hourRecord{k.PersonID, k.Hour, v})
	}
	sort.Slice(s.Hours, func(i, j int) bool {
		a, b := s.Hours[i], s.Hours[j]
		if a.PersonID != b.PersonID {
			return a.PersonID < b.PersonID
		}
		return a.Hour < b.Hour
	})
	for id, v := range m.CohesionPreferences {
		s.Cohesion = append(s.Cohesion, cohesionRecord{id, v})
	}
	sort.Slice(s.Cohesion, func(i, j int) bool {
		return s.Cohesion[i].PersonID < s.Cohesion[j].PersonID
	})
	return json.Marshal(s)
}

// UnmarshalJSON restores a model from its snapshot blob.
func (m *Model) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = *NewModel()
	for _, r := range s.Patterns {
		p := r.Pattern
		m.Patterns[PatternKey{r.PersonID, r.Archetype}] = &p
	}
	for _, r := range s.Hours {
		m.HourPreferences[HourKey{r.PersonID, r.Hour}] = r.Value
	}
	for _, r := range s.Cohesion {
		m.CohesionPreferences[r.PersonID] = r.Value
	}
	m.Feedback = s.Feedback
	m.Rejected = s.Rejected
	m.ExamplesSeen = s.ExamplesSeen
	m.Stats = s.Stats
	return nil
}
