package learner

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func approveEvent(personID string, at time.Time) FeedbackEvent {
	return FeedbackEvent{
		InstanceID:   "i1",
		Archetype:    models.Guard,
		PersonIDs:    []string{personID},
		StartHour:    8,
		Rating:       models.RatingApproved,
		ReporterRole: models.RolePlatoonCommander,
		At:           at,
	}
}

func rejectEvent(personID string, at time.Time) FeedbackEvent {
	ev := approveEvent(personID, at)
	ev.Rating = models.RatingRejected
	return ev
}

func TestApply_ApprovedRaisesSuccessRate(t *testing.T) {
	m := NewModel()
	m.Apply(approveEvent("a", testNow), testNow)

	rate := m.SuccessRate("a", models.Guard)
	if !approxEqual(rate, 0.1) {
		t.Errorf("Expected rate 0.1 after a fresh full-authority approval, got %f", rate)
	}
	if m.Stats.Approvals != 1 || m.Stats.TotalAssignments != 1 {
		t.Errorf("Expected counters updated, got %+v", m.Stats)
	}

	// A second consistent approval moves the rate by the same amount.
	m.Apply(approveEvent("a", testNow), testNow)
	rate = m.SuccessRate("a", models.Guard)
	if !approxEqual(rate, 0.2) {
		t.Errorf("Expected rate 0.2 after two approvals, got %f", rate)
	}
}

func TestApply_ApproveThenRejectReturnsToBaseline(t *testing.T) {
	// The rejection delta is twice the approval delta, but the rejection
	// disagrees with the prior approval so its consistency factor is 0.5.
	m := NewModel()
	m.Apply(approveEvent("a", testNow), testNow)
	m.Apply(rejectEvent("a", testNow), testNow)

	rate := m.SuccessRate("a", models.Guard)
	if !approxEqual(rate, 0) {
		t.Errorf("Expected rate back at 0, got %f", rate)
	}
	p := m.PatternFor("a", models.Guard)
	if p.Count != 2 || p.Approvals != 1 || p.Rejections != 1 {
		t.Errorf("Expected count 2 with one approval and one rejection, got %+v", p)
	}
}

func TestApply_SuccessRateClamped(t *testing.T) {
	m := NewModel()
	m.Apply(rejectEvent("a", testNow), testNow)
	if rate := m.SuccessRate("a", models.Guard); rate != 0 {
		t.Errorf("Expected rate clamped at 0, got %f", rate)
	}
}

func TestEventWeight_AuthorityFloor(t *testing.T) {
	// A combatant report half a year old decays below the floor: the weight
	// clamps at 0.1 and a rejection moves the rate by only 0.02.
	m := NewModel()
	p := m.PatternFor("a", models.Guard)
	p.SuccessRate = 0.5

	ev := rejectEvent("a", testNow.AddDate(0, 0, -180))
	ev.ReporterRole = models.RoleCombatant
	m.Apply(ev, testNow)

	rate := m.SuccessRate("a", models.Guard)
	if !approxEqual(rate, 0.48) {
		t.Errorf("Expected floor-weighted rejection 0.5-0.02, got %f", rate)
	}
}

func TestEventWeight_RoleAuthority(t *testing.T) {
	// Same fresh approval, different reporters: the driver's report moves
	// the rate by 0.4 of the platoon commander's.
	pc := NewModel()
	pc.Apply(approveEvent("a", testNow), testNow)

	drv := NewModel()
	ev := approveEvent("a", testNow)
	ev.ReporterRole = models.RoleDriver
	drv.Apply(ev, testNow)

	if !approxEqual(drv.SuccessRate("a", models.Guard), 0.4*pc.SuccessRate("a", models.Guard)) {
		t.Errorf("Expected driver authority 0.4, got %f vs %f",
			drv.SuccessRate("a", models.Guard), pc.SuccessRate("a", models.Guard))
	}
}

func TestApply_RejectedRecordsAssignmentAndPreferred(t *testing.T) {
	m := NewModel()
	ev := rejectEvent("a", testNow)
	ev.Changes = &FeedbackChanges{PreferredSoldiers: []string{"b"}}
	m.Apply(ev, testNow)

	if len(m.Rejected) != 1 || m.Rejected[0].InstanceID != "i1" {
		t.Errorf("Expected the rejected assignment recorded, got %+v", m.Rejected)
	}
	if !approxEqual(m.SuccessRate("b", models.Guard), 0.2) {
		t.Errorf("Expected preferred soldier credited 0.2, got %f", m.SuccessRate("b", models.Guard))
	}
}

func TestApply_ModifiedHourChange(t *testing.T) {
	m := NewModel()
	newHour := 14
	m.Apply(FeedbackEvent{
		InstanceID:   "i1",
		Archetype:    models.Guard,
		PersonIDs:    []string{"a"},
		StartHour:    10,
		Rating:       models.RatingModified,
		Changes:      &FeedbackChanges{NewHour: &newHour},
		ReporterRole: models.RolePlatoonCommander,
		At:           testNow,
	}, testNow)

	if !approxEqual(m.HourPreference("a", 14), 0.5) {
		t.Errorf("Expected +0.5 at the new hour, got %f", m.HourPreference("a", 14))
	}
	if !approxEqual(m.HourPreference("a", 10), -0.3) {
		t.Errorf("Expected -0.3 at the old hour, got %f", m.HourPreference("a", 10))
	}
	if !approxEqual(m.Cohesion("a"), 0.5) {
		t.Errorf("Expected cohesion +0.5 for the kept person, got %f", m.Cohesion("a"))
	}
	if m.Stats.Modifications != 1 {
		t.Errorf("Expected modification counted, got %+v", m.Stats)
	}
	// The rating itself does not move the retained person's success rate.
	if m.SuccessRate("a", models.Guard) != 0 {
		t.Errorf("Expected untouched success rate, got %f", m.SuccessRate("a", models.Guard))
	}
}

func TestApply_ModifiedPersonSwap(t *testing.T) {
	m := NewModel()
	m.Apply(FeedbackEvent{
		InstanceID: "i1",
		Archetype:  models.Patrol,
		PersonIDs:  []string{"a", "b"},
		StartHour:  10,
		Rating:     models.RatingModified,
		Changes: &FeedbackChanges{
			RemovedPersons: []string{"b"},
			AddedPersons:   []string{"c"},
		},
		ReporterRole: models.RoleSquadCommander,
		At:           testNow,
	}, testNow)

	if !approxEqual(m.SuccessRate("b", models.Patrol), 0) {
		t.Errorf("Expected removed person clamped at 0, got %f", m.SuccessRate("b", models.Patrol))
	}
	if !approxEqual(m.HourPreference("b", 10), -0.2) {
		t.Errorf("Expected removed person -0.2 at the task hour, got %f", m.HourPreference("b", 10))
	}
	if !approxEqual(m.SuccessRate("c", models.Patrol), 0.15) {
		t.Errorf("Expected added person +0.15, got %f", m.SuccessRate("c", models.Patrol))
	}
	if !approxEqual(m.HourPreference("c", 10), 0.2) {
		t.Errorf("Expected added person +0.2 at the task hour, got %f", m.HourPreference("c", 10))
	}
	if !approxEqual(m.Cohesion("c"), 0.5) {
		t.Errorf("Expected added person cohesion +0.5, got %f", m.Cohesion("c"))
	}
	// Person a stayed and the hour did not change: nothing recorded for a.
	if m.SuccessRate("a", models.Patrol) != 0 || m.HourPreference("a", 10) != 0 {
		t.Errorf("Expected no updates for the untouched person")
	}
}

func TestTrain_NormalizesCredit(t *testing.T) {
	m := NewModel()
	inst := &models.TaskInstance{ID: "t1", Archetype: models.Guard, Soldiers: []string{"a"}}

	m.Train([]TrainingExample{{Instances: []*models.TaskInstance{inst}, Rating: models.ExemplarExcellent}})
	if !approxEqual(m.SuccessRate("a", models.Guard), 1.0) {
		t.Errorf("Expected rate 1.0 after one excellent exemplar, got %f", m.SuccessRate("a", models.Guard))
	}

	m.Train([]TrainingExample{{Instances: []*models.TaskInstance{inst}, Rating: models.ExemplarBad}})
	if !approxEqual(m.SuccessRate("a", models.Guard), 0.5) {
		t.Errorf("Expected rate (1.0+0)/2 after a bad exemplar, got %f", m.SuccessRate("a", models.Guard))
	}

	m.Train([]TrainingExample{{Instances: []*models.TaskInstance{inst}, Rating: models.ExemplarGood}})
	if !approxEqual(m.SuccessRate("a", models.Guard), 0.5) {
		t.Errorf("Expected rate (1.0+0+0.5)/3 after a good exemplar, got %f", m.SuccessRate("a", models.Guard))
	}
	if m.ExamplesSeen != 3 {
		t.Errorf("Expected 3 examples seen, got %d", m.ExamplesSeen)
	}
}

func TestTrim_BufferCaps(t *testing.T) {
	m := NewModel()
	for i := 0; i < MaxFeedbackEvents+20; i++ {
		ev := rejectEvent(fmt.Sprintf("p%d", i), testNow)
		ev.InstanceID = fmt.Sprintf("i%d", i)
		m.Apply(ev, testNow)
	}
	if len(m.Feedback) != MaxFeedbackEvents {
		t.Errorf("Expected feedback capped at %d, got %d", MaxFeedbackEvents, len(m.Feedback))
	}
	if len(m.Rejected) != MaxRejectedEntries {
		t.Errorf("Expected rejections capped at %d, got %d", MaxRejectedEntries, len(m.Rejected))
	}
	// Oldest entries are dropped, newest kept.
	last := m.Feedback[len(m.Feedback)-1]
	if last.InstanceID != fmt.Sprintf("i%d", MaxFeedbackEvents+19) {
		t.Errorf("Expected the newest event retained, got %s", last.InstanceID)
	}

	inst := &models.TaskInstance{ID: "t1", Archetype: models.Guard, Soldiers: []string{"a"}}
	var examples []TrainingExample
	for i := 0; i < MaxTrainingExamples+5; i++ {
		examples = append(examples, TrainingExample{Instances: []*models.TaskInstance{inst}, Rating: models.ExemplarGood})
	}
	m.Train(examples)
	if len(m.Examples) != MaxTrainingExamples {
		t.Errorf("Expected examples capped at %d, got %d", MaxTrainingExamples, len(m.Examples))
	}
	if m.ExamplesSeen != MaxTrainingExamples+5 {
		t.Errorf("Expected the lifetime counter unbounded, got %d", m.ExamplesSeen)
	}
}

func TestRecentApprovalRate(t *testing.T) {
	m := NewModel()
	if rate := m.RecentApprovalRate(); rate != 0.5 {
		t.Errorf("Expected neutral default 0.5, got %f", rate)
	}
	m.Apply(approveEvent("a", testNow), testNow)
	m.Apply(approveEvent("b", testNow), testNow)
	m.Apply(approveEvent("c", testNow), testNow)
	m.Apply(rejectEvent("d", testNow), testNow)
	if rate := m.RecentApprovalRate(); !approxEqual(rate, 0.75) {
		t.Errorf("Expected 3/4, got %f", rate)
	}
}

func TestRecentRatings_NewestFirstScopedToPair(t *testing.T) {
	m := NewModel()
	m.Apply(approveEvent("a", testNow.Add(-2*time.Hour)), testNow)
	m.Apply(rejectEvent("a", testNow.Add(-time.Hour)), testNow)
	other := approveEvent("a", testNow)
	other.Archetype = models.Patrol
	m.Apply(other, testNow)

	got := m.RecentRatings("a", models.Guard, 5)
	if len(got) != 2 || got[0] != models.RatingRejected || got[1] != models.RatingApproved {
		t.Errorf("Expected [rejected approved] for the guard pair, got %v", got)
	}
}

func TestModelJSON_RoundTrip(t *testing.T) {
	m := NewModel()
	m.Apply(approveEvent("a", testNow), testNow)
	m.Apply(rejectEvent("b", testNow), testNow)
	newHour := 14
	m.Apply(FeedbackEvent{
		InstanceID: "i2", Archetype: models.Guard, PersonIDs: []string{"a"},
		StartHour: 10, Rating: models.RatingModified,
		Changes:      &FeedbackChanges{NewHour: &newHour},
		ReporterRole: models.RoleSergeant, At: testNow,
	}, testNow)

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	restored := NewModel()
	if err := restored.UnmarshalJSON(data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !approxEqual(restored.SuccessRate("a", models.Guard), m.SuccessRate("a", models.Guard)) {
		t.Errorf("Pattern lost in round trip")
	}
	if !approxEqual(restored.HourPreference("a", 14), m.HourPreference("a", 14)) {
		t.Errorf("Hour preference lost in round trip")
	}
	if !approxEqual(restored.Cohesion("a"), m.Cohesion("a")) {
		t.Errorf("Cohesion lost in round trip")
	}
	if restored.Stats != m.Stats {
		t.Errorf("Stats lost in round trip: %+v vs %+v", restored.Stats, m.Stats)
	}
	if len(restored.Feedback) != len(m.Feedback) || len(restored.Rejected) != len(m.Rejected) {
		t.Errorf("Buffers lost in round trip")
	}

	// Serialization is deterministic: a second marshal is byte-identical.
	again, err := restored.MarshalJSON()
	if err != nil {
		t.Fatalf("Second marshal failed: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("Round trip is not a fixed point")
	}
}

func TestClone_Isolation(t *testing.T) {
	m := NewModel()
	m.Apply(approveEvent("a", testNow), testNow)

	c := m.Clone()
	c.Apply(rejectEvent("a", testNow), testNow)
	c.Apply(rejectEvent("a", testNow), testNow)

	if !approxEqual(m.SuccessRate("a", models.Guard), 0.1) {
		t.Errorf("Clone mutation leaked into the source model: %f", m.SuccessRate("a", models.Guard))
	}
	if m.Stats.Rejections != 0 {
		t.Errorf("Clone stats leaked into the source model: %+v", m.Stats)
	}
}
