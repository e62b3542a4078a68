package scheduler

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/learner"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Weights are the fixed multipliers for the scoring terms.
type Weights struct {
	RoleBonus        float64
	RestSurplus      float64
	WorkloadPenalty  float64
	PatternFit       float64
	HourPreference   float64
	PlatoonFairness  float64
	FeedbackTally    float64
	BlockConsistency float64
}

// DefaultWeights returns the baseline term multipliers.
func DefaultWeights() Weights {
	return Weights{
		RoleBonus:        1,
		RestSurplus:      2,
		WorkloadPenalty:  1.5,
		PatternFit:       3,
		HourPreference:   5,
		PlatoonFairness:  0.5,
		FeedbackTally:    4,
		BlockConsistency: 10,
	}
}

// AdaptWeights adjusts the baseline from the generation context: weekends
// lean harder on learned hour preferences, heavy average workload raises the
// workload penalty, and a poor recent approval rate leans on learned
// patterns over heuristics.
func AdaptWeights(base Weights, day time.Weekday, avgWorkloadHours, approvalRate float64) Weights {
	w := base
	if day == time.Friday || day == time.Saturday {
		w.HourPreference *= 1.5
	}
	if avgWorkloadHours > 12 {
		w.WorkloadPenalty *= 1.5
		w.RestSurplus *= 1.25
	}
	if approvalRate < 0.5 {
		w.PatternFit *= 1.5
		w.FeedbackTally *= 1.25
	}
	return w
}

// roleAffinity is the static role-to-archetype fit added to the pattern term.
var roleAffinity = map[models.Role]map[models.Archetype]float64{
	models.RoleDriver: {
		models.Patrol:   5,
		models.StandbyA: 2,
	},
	models.RoleSquadCommander: {
		models.Patrol:      3,
		models.StandbyA:    3,
		models.StandbyB:    3,
		models.DutyOfficer: 5,
	},
	models.RolePlatoonCommander: {
		models.DutyOfficer: 5,
	},
	models.RoleSergeant: {
		models.DutyOfficer: 4,
	},
	models.RoleCombatant: {
		models.Guard:    3,
		models.Kitchen:  2,
		models.StandbyA: 2,
		models.StandbyB: 2,
	},
}

const (
	squadCommanderBonus = 1000
	blockTermPerTask    = 50
	// restSurplusCap bounds the rest term; a person with no assignments yet
	// scores as a full free day.
	restSurplusCap   = 72
	freshRestSurplus = 24
	confHalfLifeDays = 30
	confCountSat     = 10

	// DefaultEpsilon and DefaultTopK are the exploration parameters used
	// when the caller does not override them.
	DefaultEpsilon = 0.08
	DefaultTopK    = 5
)

// Scorer ranks candidates for one task instance against a model snapshot.
type Scorer struct {
	Model   *learner.Model
	Weights Weights
	Epsilon float64
	TopK    int
	Rand    *rand.Rand
}

// NewScorer builds a scorer over a model snapshot with default exploration
// parameters and the given randomness source.
func NewScorer(model *learner.Model, w Weights, rng *rand.Rand) *Scorer {
	return &Scorer{Model: model, Weights: w, Epsilon: DefaultEpsilon, TopK: DefaultTopK, Rand: rng}
}

// Score computes the weighted fitness of assigning the person to the task.
// Higher is better; the range is unbounded. Deterministic for fixed inputs
// and learned state.
func (s *Scorer) Score(p *models.Person, task *models.TaskInstance, sched models.Schedule, workload models.PlatoonWorkload, persons map[string]*models.Person) float64 {
	w := s.Weights
	total := 0.0

	if p.Role == models.RoleSquadCommander {
		total += w.RoleBonus * squadCommanderBonus
	}

	surplus := float64(freshRestSurplus)
	if last, ok := sched.LastEnding(p.ID); ok {
		surplus = float64(task.AbsStart() - last.AbsEnd())
	}
	surplus = math.Max(0, math.Min(surplus, restSurplusCap))
	total += w.RestSurplus * surplus

	total -= w.WorkloadPenalty * float64(sched.AssignedHours(p.ID))

	pattern := s.Model.SuccessRate(p.ID, task.Archetype) * 10
	pattern += roleAffinity[p.Role][task.Archetype]
	total += w.PatternFit * pattern

	total += w.HourPreference * s.Model.HourPreference(p.ID, task.StartHour)

	total -= w.PlatoonFairness * float64(workload[p.PlatoonID])

	total += w.FeedbackTally * float64(s.Model.FeedbackTally(p.ID, task.Archetype))

	if task.Archetype == models.Patrol || task.Archetype == models.Guard {
		n := blockOccupancy(sched, persons, p.PlatoonID, task.Day, task.Block())
		term := float64(blockTermPerTask*n) * (1 + s.Model.Cohesion(p.ID))
		total += w.BlockConsistency * term
	}

	return total
}

// ScoreWithConfidence also returns a confidence in [0,1] for explain output.
// Confidence blends pattern sample size (saturating at ten observations),
// historical rating consistency, and recency of the latest relevant
// feedback with a 30-day half-life. It never alters selection order.
func (s *Scorer) ScoreWithConfidence(p *models.Person, task *models.TaskInstance, sched models.Schedule, workload models.PlatoonWorkload, persons map[string]*models.Person, now time.Time) (float64, float64) {
	score := s.Score(p, task, sched, workload, persons)

	count := 0
	if pat, ok := s.Model.Patterns[learner.PatternKey{PersonID: p.ID, Archetype: task.Archetype}]; ok {
		count = pat.Count
	}
	sample := math.Min(float64(count)/confCountSat, 1)

	consistency := 0.5
	if recent := s.Model.RecentRatings(p.ID, task.Archetype, 5); len(recent) > 0 {
		counts := map[models.Rating]int{}
		for _, r := range recent {
			counts[r]++
		}
		max := 0
		for _, c := range counts {
			if c > max {
				max = c
			}
		}
		consistency = float64(max) / float64(len(recent))
	}

	recency := 0.0
	if at, ok := s.Model.LatestFeedbackAt(p.ID, task.Archetype); ok {
		ageDays := now.Sub(at).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		recency = math.Exp(-math.Ln2 * ageDays / confHalfLifeDays)
	}

	conf := 0.4*sample + 0.3*consistency + 0.3*recency
	return score, math.Max(0, math.Min(conf, 1))
}

// blockOccupancy counts entries already placed for members of the platoon in
// the 8-hour block of the given day.
func blockOccupancy(sched models.Schedule, persons map[string]*models.Person, platoonID string, day, block int) int {
	n := 0
	for id, entries := range sched {
		p, ok := persons[id]
		if !ok || p.PlatoonID != platoonID {
			continue
		}
		for _, e := range entries {
			if e.Day == day && e.Start/8 == block {
				n++
			}
		}
	}
	return n
}

// Candidate pairs a person with their score for one instance.
type Candidate struct {
	Person *models.Person
	Score  float64
}

// Rank scores the pool and returns candidates sorted best-first. Ties break
// on person ID to keep the order deterministic.
func (s *Scorer) Rank(pool []*models.Person, task *models.TaskInstance, sched models.Schedule, workload models.PlatoonWorkload, persons map[string]*models.Person) []Candidate {
	cands := make([]Candidate, 0, len(pool))
	for _, p := range pool {
		cands = append(cands, Candidate{Person: p, Score: s.Score(p, task, sched, workload, persons)})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Person.ID < cands[j].Person.ID
	})
	return cands
}

// Pick applies the ε-greedy rule to a best-first candidate list: with
// probability ε a uniform draw from the top-k, otherwise the argmax.
func (s *Scorer) Pick(cands []Candidate) *models.Person {
	if len(cands) == 0 {
		return nil
	}
	if s.Rand != nil && s.Rand.Float64() < s.Epsilon {
		k := s.TopK
		if k <= 0 {
			k = 5
		}
		if k > len(cands) {
			k = len(cands)
		}
		return cands[s.Rand.Intn(k)].Person
	}
	return cands[0].Person
}
