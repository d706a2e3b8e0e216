package specials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventatlas/portalfeed/model"
)

// 2026-03-18 is a Wednesday (ISO weekday 3).
func wednesdayAt(hour, min int) time.Time {
	return time.Date(2026, time.March, 18, hour, min, 0, 0, time.UTC)
}

func clock(s string) *string {
	return &s
}

func onDate(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEvaluateOvernightSpan(t *testing.T) {
	sp := &model.Special{StartTime: clock("22:00"), EndTime: clock("02:00"), Active: true}

	t.Run("past midnight counts only the tail", func(t *testing.T) {
		ev := Evaluate(sp, wednesdayAt(1, 0), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		require.NotNil(t, ev.MinutesRemaining)
		assert.Equal(t, 60, *ev.MinutesRemaining)
	})

	t.Run("before midnight counts across the boundary once", func(t *testing.T) {
		ev := Evaluate(sp, wednesdayAt(23, 0), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		require.NotNil(t, ev.MinutesRemaining)
		assert.Equal(t, 180, *ev.MinutesRemaining)
	})

	t.Run("at the start boundary", func(t *testing.T) {
		ev := Evaluate(sp, wednesdayAt(22, 0), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		require.NotNil(t, ev.MinutesRemaining)
		assert.Equal(t, 240, *ev.MinutesRemaining)
	})

	t.Run("look-ahead before the start", func(t *testing.T) {
		ev := Evaluate(sp, wednesdayAt(21, 30), 60)
		assert.Equal(t, StateStartingSoon, ev.State)
		require.NotNil(t, ev.MinutesUntilStart)
		assert.Equal(t, 30, *ev.MinutesUntilStart)
	})

	t.Run("midday gap is inactive", func(t *testing.T) {
		ev := Evaluate(sp, wednesdayAt(12, 0), 120)
		assert.Equal(t, StateInactive, ev.State)
		require.NotNil(t, ev.MinutesUntilStart)
		assert.Equal(t, 600, *ev.MinutesUntilStart)
	})
}

func TestEvaluateSameDaySpan(t *testing.T) {
	sp := &model.Special{StartTime: clock("16:00"), EndTime: clock("18:30"), Active: true}

	ev := Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateActiveNow, ev.State)
	require.NotNil(t, ev.MinutesRemaining)
	assert.Equal(t, 90, *ev.MinutesRemaining)
	assert.Nil(t, ev.MinutesUntilStart)

	ev = Evaluate(sp, wednesdayAt(15, 0), 120)
	assert.Equal(t, StateStartingSoon, ev.State)
	require.NotNil(t, ev.MinutesUntilStart)
	assert.Equal(t, 60, *ev.MinutesUntilStart)

	ev = Evaluate(sp, wednesdayAt(13, 0), 120)
	assert.Equal(t, StateInactive, ev.State)
	require.NotNil(t, ev.MinutesUntilStart)
	assert.Equal(t, 180, *ev.MinutesUntilStart)

	ev = Evaluate(sp, wednesdayAt(19, 0), 120)
	assert.Equal(t, StateInactive, ev.State)
	assert.Nil(t, ev.MinutesUntilStart)
	assert.Nil(t, ev.MinutesRemaining)
}

func TestEvaluateHalfBoundedSpans(t *testing.T) {
	t.Run("start only", func(t *testing.T) {
		sp := &model.Special{StartTime: clock("20:00"), Active: true}

		ev := Evaluate(sp, wednesdayAt(23, 59), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		assert.Nil(t, ev.MinutesRemaining)

		ev = Evaluate(sp, wednesdayAt(19, 0), 120)
		assert.Equal(t, StateStartingSoon, ev.State)
		require.NotNil(t, ev.MinutesUntilStart)
		assert.Equal(t, 60, *ev.MinutesUntilStart)

		ev = Evaluate(sp, wednesdayAt(19, 0), 0)
		assert.Equal(t, StateInactive, ev.State, "zero look-ahead never promotes")
	})

	t.Run("end only", func(t *testing.T) {
		sp := &model.Special{EndTime: clock("14:00"), Active: true}

		ev := Evaluate(sp, wednesdayAt(13, 15), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		require.NotNil(t, ev.MinutesRemaining)
		assert.Equal(t, 45, *ev.MinutesRemaining)

		ev = Evaluate(sp, wednesdayAt(14, 30), 120)
		assert.Equal(t, StateInactive, ev.State)
	})

	t.Run("all day", func(t *testing.T) {
		sp := &model.Special{Active: true}
		ev := Evaluate(sp, wednesdayAt(3, 0), 120)
		assert.Equal(t, StateActiveNow, ev.State)
		assert.Nil(t, ev.MinutesRemaining)
	})
}

func TestEvaluateDateBounds(t *testing.T) {
	sp := &model.Special{
		StartTime: clock("16:00"),
		EndTime:   clock("18:00"),
		StartDate: onDate(2026, time.March, 1),
		EndDate:   onDate(2026, time.March, 17),
		Active:    true,
	}
	ev := Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateInactive, ev.State, "ended yesterday")

	sp.EndDate = onDate(2026, time.March, 18)
	ev = Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateActiveNow, ev.State, "end date is inclusive")

	sp.StartDate = onDate(2026, time.March, 19)
	sp.EndDate = nil
	ev = Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateInactive, ev.State, "starts tomorrow")
}

func TestEvaluateDayOfWeek(t *testing.T) {
	sp := &model.Special{
		DaysOfWeek: model.JSONInts([]int{3}),
		StartTime:  clock("16:00"),
		EndTime:    clock("18:00"),
		Active:     true,
	}
	ev := Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateActiveNow, ev.State)

	sp.DaysOfWeek = model.JSONInts([]int{1, 2})
	ev = Evaluate(sp, wednesdayAt(17, 0), 120)
	assert.Equal(t, StateInactive, ev.State)

	// Sunday maps to ISO weekday 7, not 0. 2026-03-22 is a Sunday.
	sp.DaysOfWeek = model.JSONInts([]int{7})
	ev = Evaluate(sp, time.Date(2026, time.March, 22, 17, 0, 0, 0, time.UTC), 120)
	assert.Equal(t, StateActiveNow, ev.State)
}

func TestEvaluateOvernightUsesCurrentWeekday(t *testing.T) {
	// A Tuesday-only overnight offer is already inactive at 01:00 Wednesday,
	// even though the span started on the allowed day.
	sp := &model.Special{
		DaysOfWeek: model.JSONInts([]int{2}),
		StartTime:  clock("22:00"),
		EndTime:    clock("02:00"),
		Active:     true,
	}
	ev := Evaluate(sp, wednesdayAt(1, 0), 120)
	assert.Equal(t, StateInactive, ev.State)
}

func TestEvaluateUnparseableClockTreatedAsUnset(t *testing.T) {
	sp := &model.Special{StartTime: clock("around 9"), EndTime: clock("02:00"), Active: true}
	ev := Evaluate(sp, wednesdayAt(1, 0), 120)
	assert.Equal(t, StateActiveNow, ev.State, "behaves as end-only")
	require.NotNil(t, ev.MinutesRemaining)
	assert.Equal(t, 60, *ev.MinutesRemaining)
}

func TestBestForVenue(t *testing.T) {
	now := wednesdayAt(17, 0)

	t.Run("state outranks confidence", func(t *testing.T) {
		active := model.Special{
			Id: "a", StartTime: clock("16:00"), EndTime: clock("18:00"),
			Confidence: model.ConfidenceLow, Active: true,
		}
		soon := model.Special{
			Id: "b", StartTime: clock("18:30"), EndTime: clock("20:00"),
			Confidence: model.ConfidenceHigh, Active: true,
		}
		sp, ev := BestForVenue([]model.Special{soon, active}, now, 120)
		require.NotNil(t, sp)
		assert.Equal(t, "a", sp.Id)
		assert.Equal(t, StateActiveNow, ev.State)
	})

	t.Run("confidence breaks state ties", func(t *testing.T) {
		low := model.Special{
			Id: "low", StartTime: clock("16:00"), EndTime: clock("18:00"),
			Confidence: model.ConfidenceLow, Active: true,
		}
		high := model.Special{
			Id: "high", StartTime: clock("12:00"), EndTime: clock("19:00"),
			Confidence: model.ConfidenceHigh, Active: true,
		}
		sp, _ := BestForVenue([]model.Special{low, high}, now, 120)
		require.NotNil(t, sp)
		assert.Equal(t, "high", sp.Id)
	})

	t.Run("inactive rows are skipped", func(t *testing.T) {
		off := model.Special{
			Id: "off", StartTime: clock("16:00"), EndTime: clock("18:00"),
			Confidence: model.ConfidenceHigh, Active: false,
		}
		sp, ev := BestForVenue([]model.Special{off}, now, 120)
		assert.Nil(t, sp)
		assert.Equal(t, StateInactive, ev.State)
	})

	t.Run("no specials at all", func(t *testing.T) {
		sp, ev := BestForVenue(nil, now, 120)
		assert.Nil(t, sp)
		assert.Equal(t, StateInactive, ev.State)
	})
}
