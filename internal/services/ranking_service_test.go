package services

import (
	"testing"
	"time"

	"github.com/citypulse/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRanking(store *fakeStore) *RankingService {
	s := NewRankingService(store, nil)
	s.now = func() time.Time { return store.clock }
	return s
}

func rankComplaint(store *fakeStore, location string, frequency int, createdAt time.Time) *models.Complaint {
	complaint := seedComplaint(store, models.DepartmentRoad, location, models.StatusOpen, createdAt)
	complaint.Frequency = frequency
	return complaint
}

func TestListDepartmentComplaintsOrdersByScore(t *testing.T) {
	store := newFakeStore()
	now := store.clock

	low := rankComplaint(store, "Quiet Lane", 1, now)                       // score 3
	medium := rankComplaint(store, "Oak Avenue", 3, now)                    // score 5
	high := rankComplaint(store, "Main St", 6, now.Add(-6*24*time.Hour))    // score 9
	ranking := newTestRanking(store)

	ranked, summary, err := ranking.ListDepartmentComplaints(models.DepartmentRoad)

	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, high.ID, ranked[0].ID)
	assert.Equal(t, medium.ID, ranked[1].ID)
	assert.Equal(t, low.ID, ranked[2].ID)
	assert.Equal(t, 9, ranked[0].PriorityScore)
	assert.Equal(t, BucketHigh, ranked[0].PriorityBucket)

	assert.Equal(t, DashboardSummary{Total: 3, High: 1, Medium: 1, Low: 1}, summary)
}

func TestListDepartmentComplaintsTieBreaksOnAge(t *testing.T) {
	store := newFakeStore()
	now := store.clock

	newer := rankComplaint(store, "Elm Road", 1, now)
	older := rankComplaint(store, "Birch Street", 1, now.Add(-12*time.Hour))
	ranking := newTestRanking(store)

	ranked, _, err := ranking.ListDepartmentComplaints(models.DepartmentRoad)

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].PriorityScore, ranked[1].PriorityScore)
	assert.Equal(t, older.ID, ranked[0].ID)
	assert.Equal(t, newer.ID, ranked[1].ID)
}

func TestListDepartmentComplaintsIncludesResolved(t *testing.T) {
	store := newFakeStore()
	seedComplaint(store, models.DepartmentRoad, "Main St", models.StatusResolved, store.clock)
	seedComplaint(store, models.DepartmentRoad, "Oak Avenue", models.StatusOpen, store.clock)
	ranking := newTestRanking(store)

	ranked, summary, err := ranking.ListDepartmentComplaints(models.DepartmentRoad)

	require.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, 2, summary.Total)
}

func TestListDepartmentComplaintsScopedToDepartment(t *testing.T) {
	store := newFakeStore()
	seedComplaint(store, models.DepartmentRoad, "Main St", models.StatusOpen, store.clock)
	seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock)
	ranking := newTestRanking(store)

	ranked, summary, err := ranking.ListDepartmentComplaints(models.DepartmentWater)

	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, models.DepartmentWater, ranked[0].Department)
	assert.Equal(t, 1, summary.Total)
}
