package scheduler

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/galp2508/shavzak-sub000/pkg/models"
)

// An accepted candidate never overlaps an existing interval and never
// violates the rest floor after a non-standby, non-base task, whatever the
// prior schedule looks like.
func TestAvailable_NeverAcceptsOverlapOrShortRest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := testPerson("v1")
		sched := models.NewSchedule()

		entryCount := rapid.IntRange(0, 6).Draw(t, "entries")
		for i := 0; i < entryCount; i++ {
			day := rapid.IntRange(0, 6).Draw(t, "day")
			start := rapid.IntRange(0, 23).Draw(t, "start")
			length := rapid.IntRange(1, 12).Draw(t, "length")
			sched.Add(p.ID, models.ScheduleEntry{
				Day:       day,
				Start:     start,
				End:       start + length,
				Archetype: models.Guard,
				IsStandby: rapid.Bool().Draw(t, "standby"),
				IsBase:    rapid.Bool().Draw(t, "base"),
			})
		}

		candDay := rapid.IntRange(0, 6).Draw(t, "candDay")
		candStart := rapid.IntRange(0, 23).Draw(t, "candStart")
		candLength := rapid.IntRange(1, 12).Draw(t, "candLength")
		minRest := rapid.IntRange(0, 16).Draw(t, "minRest")

		ctx := CheckContext{Date: date(2025, 6, 1).AddDate(0, 0, candDay), MinRest: minRest}
		if !Available(p, candDay, candStart, candLength, sched, ctx) {
			return
		}

		absStart := candDay*24 + candStart
		absEnd := absStart + candLength
		for _, e := range sched[p.ID] {
			if e.Overlaps(absStart, absEnd) {
				t.Fatalf("accepted candidate [%d,%d) overlaps entry [%d,%d)",
					absStart, absEnd, e.AbsStart(), e.AbsEnd())
			}
		}

		if last, ok := sched.LastEnding(p.ID); ok && minRest > 0 && !last.IsStandby && !last.IsBase {
			if gap := absStart - last.AbsEnd(); gap < minRest {
				t.Fatalf("accepted candidate with gap %d < min rest %d", gap, minRest)
			}
		}
	})
}
