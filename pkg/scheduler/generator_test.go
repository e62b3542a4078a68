package scheduler

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/learner"
	"github.com/galp2508/shavzak-sub000/pkg/models"
)

func genRoster(days, minRest int) *models.Roster {
	return &models.Roster{
		ID:           "r1",
		Name:         "week 12",
		StartDate:    time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), // Monday
		DaysCount:    days,
		MinRestHours: minRest,
	}
}

func personMap(persons []*models.Person) map[string]*models.Person {
	m := make(map[string]*models.Person, len(persons))
	for _, p := range persons {
		m[p.ID] = p
	}
	return m
}

func defaultPlatoons() map[string]*models.Platoon {
	return map[string]*models.Platoon{
		"p1": {ID: "p1", Name: "1"},
		"p2": {ID: "p2", Name: "2"},
	}
}

func TestExpand_DistributedInstances(t *testing.T) {
	g := NewGenerator(genRoster(1, 8), []*models.TaskTemplate{
		{ID: "guard", Name: "gate", Archetype: models.Guard,
			LengthInHours: 1, StartHour: -1, TimesPerDay: 24, SoldiersNeeded: 1},
	}, nil, nil, learner.NewModel(), nil)

	instances := g.Expand()
	if len(instances) != 24 {
		t.Fatalf("Expected 24 instances, got %d", len(instances))
	}
	covered := make(map[int]bool)
	for _, inst := range instances {
		if covered[inst.StartHour] {
			t.Errorf("Hour %d covered twice", inst.StartHour)
		}
		covered[inst.StartHour] = true
		if inst.Length != 1 {
			t.Errorf("Expected 1-hour slots, got %d", inst.Length)
		}
	}
	for h := 0; h < 24; h++ {
		if !covered[h] {
			t.Errorf("Hour %d not covered", h)
		}
	}
}

func TestExpand_HeavyTasksFirstWithinDay(t *testing.T) {
	g := NewGenerator(genRoster(2, 8), []*models.TaskTemplate{
		{ID: "guard", Name: "gate", Archetype: models.Guard,
			LengthInHours: 4, StartHour: 0, TimesPerDay: 1, SoldiersNeeded: 1},
		{ID: "standby", Name: "standby", Archetype: models.StandbyA,
			LengthInHours: 8, StartHour: 6, TimesPerDay: 1,
			CommandersNeeded: 1, SoldiersNeeded: 7, IsStandbyTask: true},
	}, nil, nil, learner.NewModel(), nil)

	instances := g.Expand()
	if len(instances) != 4 {
		t.Fatalf("Expected 4 instances, got %d", len(instances))
	}
	for day := 0; day < 2; day++ {
		first := instances[day*2]
		second := instances[day*2+1]
		if first.Day != day || second.Day != day {
			t.Fatalf("Day grouping broken: %d/%d on iteration %d", first.Day, second.Day, day)
		}
		if first.Archetype != models.StandbyA {
			t.Errorf("Day %d: expected the heavy standby first, got %s", day, first.Archetype)
		}
		if second.Archetype != models.Guard {
			t.Errorf("Day %d: expected guard second, got %s", day, second.Archetype)
		}
	}
}

func TestExpand_RosterReuseFlagPropagates(t *testing.T) {
	roster := genRoster(1, 8)
	roster.ReuseSoldiersForStandby = true
	g := NewGenerator(roster, []*models.TaskTemplate{
		{ID: "standby", Name: "standby", Archetype: models.StandbyA,
			LengthInHours: 8, StartHour: 6, TimesPerDay: 1,
			CommandersNeeded: 1, SoldiersNeeded: 7, IsStandbyTask: true},
		{ID: "guard", Name: "gate", Archetype: models.Guard,
			LengthInHours: 4, StartHour: 0, TimesPerDay: 1, SoldiersNeeded: 1},
	}, nil, nil, learner.NewModel(), nil)

	for _, inst := range g.Expand() {
		if inst.IsStandbyTask && !inst.ReuseSoldiersForStandby {
			t.Errorf("Standby instance did not inherit the roster reuse flag")
		}
		if !inst.IsStandbyTask && inst.ReuseSoldiersForStandby {
			t.Errorf("Non-standby instance %s inherited the reuse flag", inst.Name)
		}
	}
}

func guardTemplates() []*models.TaskTemplate {
	return []*models.TaskTemplate{
		{ID: "guard", Name: "gate", Archetype: models.Guard,
			LengthInHours: 4, StartHour: -1, TimesPerDay: 3, SoldiersNeeded: 1},
	}
}

func TestRun_SeededDeterminism(t *testing.T) {
	persons := platoonStaff("p1", 1, 1, 6)

	selections := func(seed int64) [][]string {
		roster := genRoster(2, 4)
		g := NewGenerator(roster, guardTemplates(), personMap(persons),
			defaultPlatoons(), learner.NewModel(), rand.New(rand.NewSource(seed)))
		report := g.Run(context.Background())
		if report.FilledCount() != len(report.Outcomes) {
			t.Fatalf("Expected every guard slot filled, got %d/%d",
				report.FilledCount(), len(report.Outcomes))
		}
		var out [][]string
		for _, inst := range roster.Instances {
			out = append(out, inst.SelectedIDs())
		}
		return out
	}

	first := selections(42)
	second := selections(42)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Same seed produced different selections:\n%v\n%v", first, second)
	}
}

func TestRun_UnfilledOutcomeCarriesShortfall(t *testing.T) {
	// One combatant cannot staff a 4-person kitchen detail.
	persons := platoonStaff("p1", 0, 0, 1)
	roster := genRoster(1, 8)
	g := NewGenerator(roster, []*models.TaskTemplate{
		{ID: "kitchen", Name: "kitchen", Archetype: models.Kitchen,
			LengthInHours: 6, StartHour: 6, TimesPerDay: 1,
			SoldiersNeeded: 4, IsBaseTask: true},
	}, personMap(persons), defaultPlatoons(), learner.NewModel(), nil)

	report := g.Run(context.Background())
	if len(report.Outcomes) != 1 {
		t.Fatalf("Expected one outcome, got %d", len(report.Outcomes))
	}
	o := report.Outcomes[0]
	if o.Outcome != models.OutcomeUnfilled {
		t.Fatalf("Expected unfilled outcome, got %s", o.Outcome)
	}
	if o.Kind != models.FailureSoft || o.Missing["soldiers"] != 3 {
		t.Errorf("Expected soft shortfall of 3 soldiers, got kind=%s missing=%v", o.Kind, o.Missing)
	}
	if report.Partial {
		t.Errorf("An unfilled instance is not a partial run")
	}
}

func TestRun_EmergencyModeHalvesRestFloor(t *testing.T) {
	// Two guards with a 5-hour gap against a 10-hour floor. Normal mode
	// staffs the second only through the reduced-rest fallback and flags it;
	// emergency mode halves the floor outright so the fill is unremarkable.
	persons := platoonStaff("p1", 0, 0, 1)
	templates := []*models.TaskTemplate{
		{ID: "g1", Name: "gate a", Archetype: models.Guard,
			LengthInHours: 3, StartHour: 0, TimesPerDay: 1, SoldiersNeeded: 1},
		{ID: "g2", Name: "gate b", Archetype: models.Guard,
			LengthInHours: 3, StartHour: 8, TimesPerDay: 1, SoldiersNeeded: 1},
	}

	roster := genRoster(1, 10)
	g := NewGenerator(roster, templates, personMap(persons), defaultPlatoons(), learner.NewModel(), nil)
	report := g.Run(context.Background())
	if report.FilledCount() != 2 {
		t.Fatalf("Expected both guards filled via fallback, got %d", report.FilledCount())
	}
	second := report.Outcomes[1]
	if len(second.Warnings) == 0 {
		t.Errorf("Expected a reduced-rest warning on the fallback fill, got %+v", second)
	}

	roster = genRoster(1, 10)
	roster.EmergencyMode = true
	g = NewGenerator(roster, templates, personMap(persons), defaultPlatoons(), learner.NewModel(), nil)
	report = g.Run(context.Background())
	if report.FilledCount() != 2 {
		t.Fatalf("Expected both guards filled in emergency mode, got %d", report.FilledCount())
	}
	if len(report.Outcomes[1].Warnings) != 0 {
		t.Errorf("Expected no per-instance warning once the floor is halved, got %+v",
			report.Outcomes[1].Warnings)
	}
	if !report.Emergency || len(report.Warnings) == 0 {
		t.Errorf("Expected the emergency flag and the halved-rest warning on the report")
	}
}

func TestRun_CancelledContextSkipsEverything(t *testing.T) {
	persons := platoonStaff("p1", 1, 1, 6)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(genRoster(2, 4), guardTemplates(), personMap(persons),
		defaultPlatoons(), learner.NewModel(), nil)
	report := g.Run(ctx)

	if !report.Partial {
		t.Fatalf("Expected a partial report")
	}
	if len(report.Outcomes) != 6 {
		t.Fatalf("Expected all 6 instances reported, got %d", len(report.Outcomes))
	}
	for _, o := range report.Outcomes {
		if o.Outcome != models.OutcomeSkipped {
			t.Errorf("Expected skipped outcome for %s day %d, got %s", o.TaskName, o.Day, o.Outcome)
		}
	}
}

func TestGenerator_ExplorationSettingsReachScorer(t *testing.T) {
	persons := platoonStaff("p1", 1, 1, 3)
	g := NewGenerator(genRoster(1, 8), nil, personMap(persons), defaultPlatoons(), learner.NewModel(), nil)
	if g.Epsilon != DefaultEpsilon || g.TopK != DefaultTopK {
		t.Fatalf("Expected default exploration %v/%d, got %v/%d",
			DefaultEpsilon, DefaultTopK, g.Epsilon, g.TopK)
	}

	g.Epsilon = 0.25
	g.TopK = 3
	sc := g.newScorer(DefaultWeights())
	if sc.Epsilon != 0.25 {
		t.Errorf("Expected epsilon 0.25 on the scorer, got %v", sc.Epsilon)
	}
	if sc.TopK != 3 {
		t.Errorf("Expected top-k 3 on the scorer, got %d", sc.TopK)
	}

	// Zero epsilon is a valid greedy setting; zero top-k keeps the default.
	g.Epsilon = 0
	g.TopK = 0
	sc = g.newScorer(DefaultWeights())
	if sc.Epsilon != 0 {
		t.Errorf("Expected greedy epsilon 0 on the scorer, got %v", sc.Epsilon)
	}
	if sc.TopK != DefaultTopK {
		t.Errorf("Expected default top-k %d on the scorer, got %d", DefaultTopK, sc.TopK)
	}
}

func TestRun_ScheduleAndWorkloadOnReport(t *testing.T) {
	persons := append(platoonStaff("p1", 1, 1, 3), platoonStaff("p2", 1, 1, 3)...)
	roster := genRoster(1, 8)
	g := NewGenerator(roster, []*models.TaskTemplate{
		{ID: "patrol", Name: "patrol", Archetype: models.Patrol,
			LengthInHours: 4, StartHour: 6, TimesPerDay: 1,
			CommandersNeeded: 1, DriversNeeded: 1, SoldiersNeeded: 2,
			SamePlatoonRequired: true},
	}, personMap(persons), defaultPlatoons(), learner.NewModel(), nil)

	report := g.Run(context.Background())
	if report.FilledCount() != 1 {
		t.Fatalf("Expected the patrol filled, got outcomes %+v", report.Outcomes)
	}
	inst := roster.Instances[0]
	if inst.PlatoonID == "" {
		t.Fatalf("Expected the selected platoon recorded on the instance")
	}
	if report.Workload[inst.PlatoonID] != 4 {
		t.Errorf("Expected 4 workload hours on %s, got %d", inst.PlatoonID, report.Workload[inst.PlatoonID])
	}
	for _, id := range inst.SelectedIDs() {
		if len(report.Schedule[id]) != 1 {
			t.Errorf("Expected one schedule entry for %s", id)
		}
	}
}
