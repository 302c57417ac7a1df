package services

import (
	"testing"
	"time"

	"github.com/citypulse/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedComplaint(store *fakeStore, department models.Department, location string, status models.ComplaintStatus, createdAt time.Time) *models.Complaint {
	complaint := &models.Complaint{
		Title:       "Seeded complaint",
		Description: "seed",
		Department:  department,
		Location:    location,
		LocationKey: models.NormalizeLocation(location),
		Status:      status,
		Frequency:   1,
		CreatedByID: 1,
		CreatedAt:   createdAt,
		Voters:      []models.ComplaintVoter{{CitizenID: 1}},
	}
	activity := &models.ActivityLog{Action: models.ActionCreated, ActorID: 1, ActorRole: models.RoleCitizen}
	if err := store.Create(complaint, activity); err != nil {
		panic(err)
	}
	return complaint
}

func TestFindActiveDuplicateNormalizesLocation(t *testing.T) {
	store := newFakeStore()
	created := seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentWater, "  MAIN st ")

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, created.ID, match.ID)
}

func TestFindActiveDuplicateExactMatchOnly(t *testing.T) {
	store := newFakeStore()
	seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentWater, "Main Street")

	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindActiveDuplicateDepartmentScoped(t *testing.T) {
	store := newFakeStore()
	seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentRoad, "Main St")

	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindActiveDuplicateIgnoresResolved(t *testing.T) {
	store := newFakeStore()
	seedComplaint(store, models.DepartmentRoad, "5th Avenue", models.StatusResolved, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentRoad, "5th Avenue")

	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindActiveDuplicateOnHoldStillBlocks(t *testing.T) {
	store := newFakeStore()
	created := seedComplaint(store, models.DepartmentSanitation, "Park Lane", models.StatusOnHold, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentSanitation, "park lane")

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, created.ID, match.ID)
}

func TestFindActiveDuplicatePicksOldest(t *testing.T) {
	store := newFakeStore()
	oldest := seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock.Add(-48*time.Hour))
	seedComplaint(store, models.DepartmentWater, "Main St", models.StatusOpen, store.clock)
	resolver := NewDuplicateResolver(store)

	match, err := resolver.FindActiveDuplicate(models.DepartmentWater, "Main St")

	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, oldest.ID, match.ID)
}
