package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/galp2508/shavzak-sub000/pkg/learner"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// Generator runs one roster generation: template expansion, instance
// ordering, and the sequential dispatch loop. A Generator is single-use and
// single-threaded; callers wanting concurrency run separate Generators.
type Generator struct {
	Roster    *models.Roster
	Templates []*models.TaskTemplate
	Persons   map[string]*models.Person
	Platoons  map[string]*models.Platoon
	Model     *learner.Model
	Rand      *rand.Rand

	// PrioritizeHeavy places high-headcount archetypes earlier within a
	// day so they are not starved by small tasks.
	PrioritizeHeavy bool

	// Epsilon and TopK govern exploratory picks; zero Epsilon is greedy,
	// zero TopK keeps the scorer default.
	Epsilon float64
	TopK    int
}

// NewGenerator wires a generator over a model snapshot with a seeded
// randomness source so runs can be pinned in tests.
func NewGenerator(roster *models.Roster, templates []*models.TaskTemplate, persons map[string]*models.Person, platoons map[string]*models.Platoon, model *learner.Model, rng *rand.Rand) *Generator {
	return &Generator{
		Roster:          roster,
		Templates:       templates,
		Persons:         persons,
		Platoons:        platoons,
		Model:           model,
		Rand:            rng,
		PrioritizeHeavy: true,
		Epsilon:         DefaultEpsilon,
		TopK:            DefaultTopK,
	}
}

// Expand materializes every template into dated instances across the
// horizon. Templates with a fixed start hour keep it; others distribute
// times_per_day instances evenly across 24 hours.
func (g *Generator) Expand() []*models.TaskInstance {
	var instances []*models.TaskInstance
	for day := 0; day < g.Roster.DaysCount; day++ {
		for _, tpl := range g.Templates {
			times := tpl.TimesPerDay
			if times <= 0 {
				times = 1
			}
			for slot := 0; slot < times; slot++ {
				start := tpl.StartHour
				if start < 0 {
					start = slot * (24 / times)
				}
				inst := &models.TaskInstance{
					ID:                      uuid.NewString(),
					Name:                    tpl.Name,
					Archetype:               tpl.Archetype,
					Day:                     day,
					StartHour:               start,
					Length:                  tpl.LengthInHours,
					CommandersNeeded:        tpl.CommandersNeeded,
					DriversNeeded:           tpl.DriversNeeded,
					SoldiersNeeded:          tpl.SoldiersNeeded,
					SamePlatoonRequired:     tpl.SamePlatoonRequired,
					RequiresSeniorCommander: tpl.RequiresSeniorCommander,
					RequiresSpecialPlatoon:  tpl.RequiresSpecialPlatoon,
					IsStandbyTask:           tpl.IsStandbyTask,
					ReuseSoldiersForStandby: tpl.ReuseSoldiersForStandby,
					IsBaseTask:              tpl.IsBaseTask,
					RequiredCertification:   tpl.RequiredCertification,
				}
				if g.Roster.ReuseSoldiersForStandby && inst.IsStandbyTask {
					inst.ReuseSoldiersForStandby = true
				}
				instances = append(instances, inst)
			}
		}
	}
	g.order(instances)
	return instances
}

// order sorts instances day-ascending then start-hour ascending, with an
// optional stable pass placing high-headcount archetypes earlier within a
// day (standby-A before guard).
func (g *Generator) order(instances []*models.TaskInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].Day != instances[j].Day {
			return instances[i].Day < instances[j].Day
		}
		return instances[i].StartHour < instances[j].StartHour
	})
	if !g.PrioritizeHeavy {
		return
	}
	heavy := func(ti *models.TaskInstance) int {
		if ti.CommandersNeeded+ti.DriversNeeded+ti.SoldiersNeeded >= 5 {
			return 1
		}
		return 0
	}
	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].Day != instances[j].Day {
			return instances[i].Day < instances[j].Day
		}
		return heavy(instances[i]) > heavy(instances[j])
	})
}

// Run executes the full generation. It always runs to completion unless the
// context deadline expires, in which case the current instance is finalized
// and the remaining ones are reported as skipped.
func (g *Generator) Run(ctx context.Context) *models.GenerationReport {
	minRest := g.Roster.MinRestHours
	if g.Roster.EmergencyMode {
		minRest /= 2
	}
	emergencyRest := g.Roster.MinRestHours / 2

	env := &Env{
		Roster:        g.Roster,
		Persons:       g.Persons,
		Platoons:      g.Platoons,
		Schedule:      models.NewSchedule(),
		Workload:      make(models.PlatoonWorkload),
		MinRest:       minRest,
		EmergencyRest: emergencyRest,
		Emergency:     g.Roster.EmergencyMode,
	}

	weights := AdaptWeights(
		DefaultWeights(),
		g.Roster.StartDate.Weekday(),
		g.averageWorkloadHours(),
		g.Model.RecentApprovalRate(),
	)
	env.Scorer = g.newScorer(weights)

	report := &models.GenerationReport{
		RosterID:  g.Roster.ID,
		Schedule:  env.Schedule,
		Workload:  env.Workload,
		Emergency: g.Roster.EmergencyMode,
	}
	if g.Roster.EmergencyMode {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("emergency mode: rest floor halved to %dh", minRest))
	}

	instances := g.Expand()
	g.Roster.Instances = instances

	for i, inst := range instances {
		if ctx.Err() != nil {
			report.Partial = true
			for _, rest := range instances[i:] {
				report.Outcomes = append(report.Outcomes, models.InstanceOutcome{
					TaskID:    rest.ID,
					TaskName:  rest.Name,
					Day:       rest.Day,
					StartHour: rest.StartHour,
					Outcome:   models.OutcomeSkipped,
				})
			}
			break
		}

		outcome := models.InstanceOutcome{
			TaskID:    inst.ID,
			TaskName:  inst.Name,
			Day:       inst.Day,
			StartHour: inst.StartHour,
		}
		res, fail := Dispatch(env, inst)
		if fail != nil {
			outcome.Outcome = models.OutcomeUnfilled
			outcome.Kind = fail.Kind
			outcome.Missing = fail.Missing
		} else {
			outcome.Outcome = models.OutcomeFilled
			outcome.Warnings = res.Warnings
			report.Warnings = append(report.Warnings, res.Warnings...)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// newScorer builds the run's scorer with the generator's exploration
// settings applied over the defaults.
func (g *Generator) newScorer(weights Weights) *Scorer {
	sc := NewScorer(g.Model, weights, g.Rand)
	sc.Epsilon = g.Epsilon
	if g.TopK > 0 {
		sc.TopK = g.TopK
	}
	return sc
}

// averageWorkloadHours estimates daily demand from the template set, used
// by the adaptive weight hook.
func (g *Generator) averageWorkloadHours() float64 {
	if len(g.Persons) == 0 {
		return 0
	}
	totalHours := 0
	for _, tpl := range g.Templates {
		times := tpl.TimesPerDay
		if times <= 0 {
			times = 1
		}
		totalHours += times * tpl.LengthInHours * tpl.TotalHeadcount()
	}
	return float64(totalHours) / float64(len(g.Persons))
}

// RunWithDeadline wraps Run with an explicit timeout.
func (g *Generator) RunWithDeadline(parent context.Context, timeout time.Duration) *models.GenerationReport {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return g.Run(ctx)
}
