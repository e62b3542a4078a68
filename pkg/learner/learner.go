package learner

import (
	"math"
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Update magnitudes for the online rules.
const (
	approveDelta       = 0.1
	rejectDelta        = 0.2
	preferredCredit    = 0.2
	modifyPersonDelta  = 0.15
	modifyHourGain     = 0.5
	modifyHourLoss     = 0.3
	modifyHourSideGain = 0.2
	modifyHourSideLoss = 0.2
	cohesionGain       = 0.5
	authorityHalfLife  = 90.0 // days
	consistencyWindow  = 5
)

// roleWeights scales feedback authority by the reporter's role.
var roleWeights = map[models.Role]float64{
	models.RolePlatoonCommander: 1.0,
	models.RoleSquadCommander:   0.8,
	models.RoleSergeant:         0.7,
	models.RoleDriver:           0.4,
	models.RoleCombatant:        0.3,
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// eventWeight is the authority-and-recency weight applied to rating updates:
// roleWeight × exp(−age/90d) × consistency, clamped to [0.1, 1.0].
func (m *Model) eventWeight(ev FeedbackEvent, now time.Time) float64 {
	rw, ok := roleWeights[ev.ReporterRole]
	if !ok {
		rw = 0.3
	}
	ageDays := now.Sub(ev.At).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	recency := math.Exp(-ageDays / authorityHalfLife)
	consistency := m.consistencyFactor(ev)
	return clamp(rw*recency*consistency, 0.1, 1.0)
}

// consistencyFactor is in [0.5, 1.0]: the fraction of the last five ratings
// for the same (person, archetype) agreeing with the incoming rating. A pair
// with no history is fully consistent.
func (m *Model) consistencyFactor(ev FeedbackEvent) float64 {
	if len(ev.PersonIDs) == 0 {
		return 1.0
	}
	recent := m.RecentRatings(ev.PersonIDs[0], ev.Archetype, consistencyWindow)
	if len(recent) == 0 {
		return 1.0
	}
	agree := 0
	for _, r := range recent {
		if r == ev.Rating {
			agree++
		}
	}
	return 0.5 + 0.5*float64(agree)/float64(len(recent))
}

// Apply ingests one feedback event, mutating the learned tables. The event
// is appended to the bounded feedback buffer after its weight is computed so
// it does not count toward its own consistency.
func (m *Model) Apply(ev FeedbackEvent, now time.Time) {
	w := m.eventWeight(ev, now)

	switch ev.Rating {
	case models.RatingApproved:
		for _, id := range ev.PersonIDs {
			p := m.PatternFor(id, ev.Archetype)
			p.SuccessRate = clamp(p.SuccessRate+approveDelta*w, 0, 1)
			p.Count++
			p.Approvals++
		}
		m.Stats.Approvals++

	case models.RatingRejected:
		for _, id := range ev.PersonIDs {
			p := m.PatternFor(id, ev.Archetype)
			p.SuccessRate = clamp(p.SuccessRate-rejectDelta*w, 0, 1)
			p.Count++
			p.Rejections++
		}
		m.Stats.Rejections++
		m.Rejected = append(m.Rejected, RejectedAssignment{
			InstanceID: ev.InstanceID,
			Archetype:  ev.Archetype,
			PersonIDs:  ev.PersonIDs,
			At:         ev.At,
		})
		if ev.Changes != nil {
			for _, id := range ev.Changes.PreferredSoldiers {
				p := m.PatternFor(id, ev.Archetype)
				p.SuccessRate = clamp(p.SuccessRate+preferredCredit, 0, 1)
			}
		}

	case models.RatingModified:
		m.Stats.Modifications++
		if ev.Changes == nil {
			break
		}
		m.applyModification(ev)
	}

	m.Feedback = append(m.Feedback, ev)
	m.Stats.TotalAssignments += len(ev.PersonIDs)
	m.trim()
}

// applyModification handles the hour-change and person-change deltas of a
// "modified" event. The rating itself does not move success rates for the
// retained persons.
func (m *Model) applyModification(ev FeedbackEvent) {
	ch := ev.Changes
	oldHour := ev.StartHour

	removed := make(map[string]bool, len(ch.RemovedPersons))
	for _, id := range ch.RemovedPersons {
		removed[id] = true
	}

	if ch.NewHour != nil && *ch.NewHour != oldHour {
		newHour := *ch.NewHour
		for _, id := range ev.PersonIDs {
			if removed[id] {
				continue
			}
			m.HourPreferences[HourKey{id, newHour}] += modifyHourGain
			m.HourPreferences[HourKey{id, oldHour}] -= modifyHourLoss
			m.CohesionPreferences[id] += cohesionGain
		}
		for _, id := range ch.AddedPersons {
			m.HourPreferences[HourKey{id, newHour}] += modifyHourGain
			m.HourPreferences[HourKey{id, oldHour}] -= modifyHourLoss
			m.CohesionPreferences[id] += cohesionGain
		}
	}

	targetHour := oldHour
	if ch.NewHour != nil {
		targetHour = *ch.NewHour
	}
	for _, id := range ch.RemovedPersons {
		p := m.PatternFor(id, ev.Archetype)
		p.SuccessRate = clamp(p.SuccessRate-modifyPersonDelta, 0, 1)
		m.HourPreferences[HourKey{id, oldHour}] -= modifyHourSideLoss
	}
	for _, id := range ch.AddedPersons {
		p := m.PatternFor(id, ev.Archetype)
		p.SuccessRate = clamp(p.SuccessRate+modifyPersonDelta, 0, 1)
		m.HourPreferences[HourKey{id, targetHour}] += modifyHourSideGain
		m.CohesionPreferences[id] += cohesionGain
	}
}

// exemplarCredit maps a qualitative grade to an approval credit.
func exemplarCredit(r models.ExemplarRating) float64 {
	switch r {
	case models.ExemplarExcellent:
		return 1.0
	case models.ExemplarGood:
		return 0.5
	default:
		return 0
	}
}

// Train folds a batch of roster exemplars into the pattern table. Each
// person in each instance earns the exemplar's credit; rates are normalized
// to accumulated/count after the batch.
func (m *Model) Train(examples []TrainingExample) {
	type acc struct {
		total float64
		n     int
	}
	credits := make(map[PatternKey]*acc)

	for _, ex := range examples {
		credit := exemplarCredit(ex.Rating)
		for _, inst := range ex.Instances {
			for _, id := range inst.SelectedIDs() {
				k := PatternKey{id, inst.Archetype}
				a, ok := credits[k]
				if !ok {
					a = &acc{}
					credits[k] = a
				}
				a.total += credit
				a.n++
			}
		}
	}

	for k, a := range credits {
		p, ok := m.Patterns[k]
		if !ok {
			p = &Pattern{}
			m.Patterns[k] = p
		}
		prior := p.SuccessRate * float64(p.Count)
		p.Count += a.n
		p.SuccessRate = clamp((prior+a.total)/float64(p.Count), 0, 1)
	}

	m.Examples = append(m.Examples, examples...)
	m.ExamplesSeen += len(examples)
	m.trim()
}

// RecentApprovalRate returns approvals/(approvals+rejections) over the whole
// feedback buffer, defaulting to 0.5 with no signal. Used by the adaptive
// scoring weights.
func (m *Model) RecentApprovalRate() float64 {
	total := m.Stats.Approvals + m.Stats.Rejections
	if total == 0 {
		return 0.5
	}
	return float64(m.Stats.Approvals) / float64(total)
}
