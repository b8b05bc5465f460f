package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow(t *testing.T) *Availability {
	t.Helper()
	start, err := ParseTimeOfDay("09:00")
	require.NoError(t, err)
	end, err := ParseTimeOfDay("12:00")
	require.NoError(t, err)
	return &Availability{
		DoctorID:  "doctor",
		DayOfWeek: Monday,
		StartTime: start,
		EndTime:   end,
		ValidFrom: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestAppliesOn(t *testing.T) {
	w := testWindow(t)

	assert.True(t, w.AppliesOn(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))  // Monday inside range
	assert.False(t, w.AppliesOn(time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))) // Tuesday

	// Validity bounds are inclusive on both ends.
	assert.True(t, w.AppliesOn(time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)))  // last Monday in range
	assert.False(t, w.AppliesOn(time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)))  // Monday past valid_to
	assert.False(t, w.AppliesOn(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))) // Monday before valid_from

	// The time component of the probe date is irrelevant.
	assert.True(t, w.AppliesOn(time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC)))
}

func TestCoversTime(t *testing.T) {
	w := testWindow(t)

	inside, _ := ParseTimeOfDay("09:00")
	assert.True(t, w.CoversTime(inside))
	lastMinute, _ := ParseTimeOfDay("11:59")
	assert.True(t, w.CoversTime(lastMinute))
	atEnd, _ := ParseTimeOfDay("12:00")
	assert.False(t, w.CoversTime(atEnd))
	before, _ := ParseTimeOfDay("08:59")
	assert.False(t, w.CoversTime(before))
}

func TestConflictsWith(t *testing.T) {
	w := testWindow(t)

	overlapping := *w
	overlapping.StartTime, _ = ParseTimeOfDay("11:00")
	overlapping.EndTime, _ = ParseTimeOfDay("13:00")
	assert.True(t, w.ConflictsWith(&overlapping))
	assert.True(t, overlapping.ConflictsWith(w))

	// Shared endpoints count as a conflict.
	adjacent := *w
	adjacent.StartTime, _ = ParseTimeOfDay("12:00")
	adjacent.EndTime, _ = ParseTimeOfDay("14:00")
	assert.True(t, w.ConflictsWith(&adjacent))

	otherDay := overlapping
	otherDay.DayOfWeek = Friday
	assert.False(t, w.ConflictsWith(&otherDay))

	disjointDates := overlapping
	disjointDates.ValidFrom = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	disjointDates.ValidTo = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	assert.False(t, w.ConflictsWith(&disjointDates))
}
