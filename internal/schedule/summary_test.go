package schedule_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/andymarkow/pandero/internal/domain/members"
	"github.com/andymarkow/pandero/internal/domain/payments"
	"github.com/andymarkow/pandero/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	snap := g1Snapshot(
		payment("m1", "G1", "100", payments.StatusPending),
		payment("m1", "G1", "50", payments.StatusApproved),
		payment("m2", "G2", "100", payments.StatusPending),
	)
	snap.Memberships = append(snap.Memberships, &members.Membership{GroupName: "G1", MemberID: "m2"})

	summary, err := schedule.Summarize("G1", date(2024, time.January, 10), snap)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CurrentWeek)
	assert.Equal(t, 2, summary.Members)
	assert.Equal(t, 1, summary.PendingReview)
	assert.True(t, date(2024, time.January, 29).Equal(summary.EndDate))
	assert.Equal(t, 4, summary.Config.DurationWeeks)
}

func TestSummarize_CurrentWeekIsClamped(t *testing.T) {
	before, err := schedule.Summarize("G1", date(2023, time.December, 1), g1Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 1, before.CurrentWeek)

	after, err := schedule.Summarize("G1", date(2025, time.January, 1), g1Snapshot())
	require.NoError(t, err)
	assert.Equal(t, 4, after.CurrentWeek)
}

func TestSummarize_GroupNotFound(t *testing.T) {
	_, err := schedule.Summarize("nope", time.Now(), g1Snapshot())

	assert.ErrorIs(t, err, schedule.ErrGroupNotFound)
}

func TestSummarize_CurrentWeekAcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	snap := g1Snapshot()
	snap.Groups[0].StartDate = "2024-03-04"

	// Clocks move forward on 2024-03-10; the 11th is still a week later.
	summary, err := schedule.Summarize("G1", time.Date(2024, time.March, 11, 0, 30, 0, 0, loc), snap)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CurrentWeek)

	summary, err = schedule.Summarize("G1", time.Date(2024, time.March, 10, 23, 30, 0, 0, loc), snap)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CurrentWeek)
}
