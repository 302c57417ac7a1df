package services

import (
	"time"

	"github.com/citypulse/backend/internal/apperrors"
	"github.com/citypulse/backend/internal/models"
)

// fakeStore is an in-memory repository.Store used to exercise the service
// layer without a database. Mutations mirror the transactional behavior of
// the gorm store: composite updates either fully apply or not at all.
type fakeStore struct {
	complaints map[uint]*models.Complaint
	activities []models.ActivityLog
	users      map[uint]*models.User
	nextID     uint
	clock      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		complaints: make(map[uint]*models.Complaint),
		users:      make(map[uint]*models.User),
		nextID:     1,
		clock:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) addUser(user models.User) *models.User {
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	}
	f.users[user.ID] = &user
	return &user
}

func (f *fakeStore) Create(complaint *models.Complaint, activity *models.ActivityLog) error {
	complaint.ID = f.nextID
	f.nextID++
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = f.clock
	}
	complaint.UpdatedAt = complaint.CreatedAt
	f.complaints[complaint.ID] = complaint

	activity.ComplaintID = complaint.ID
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) GetByID(id uint) (*models.Complaint, error) {
	complaint, ok := f.complaints[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "complaint"}
	}
	copied := *complaint
	return &copied, nil
}

func (f *fakeStore) FindActiveByLocation(department models.Department, locationKey string) ([]models.Complaint, error) {
	var matches []models.Complaint
	for _, c := range f.complaints {
		if c.Department == department && c.LocationKey == locationKey && c.Status.IsActive() {
			matches = append(matches, *c)
		}
	}
	// Oldest first, matching the gorm query ordering.
	for i := 0; i < len(matches); i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[j].CreatedAt.Before(matches[i].CreatedAt) {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}
	return matches, nil
}

func (f *fakeStore) AddVote(complaintID, citizenID uint, activity *models.ActivityLog) (bool, error) {
	complaint, ok := f.complaints[complaintID]
	if !ok {
		return false, &apperrors.NotFoundError{Resource: "complaint"}
	}
	if complaint.HasVoter(citizenID) {
		return false, nil
	}
	complaint.Voters = append(complaint.Voters, models.ComplaintVoter{
		ComplaintID: complaintID,
		CitizenID:   citizenID,
	})
	complaint.Frequency++
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return true, nil
}

func (f *fakeStore) applyFields(complaint *models.Complaint, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "status":
			complaint.Status = value.(models.ComplaintStatus)
		case "proof_url":
			url := value.(string)
			complaint.ProofURL = &url
		case "resolution_notes":
			notes := value.(string)
			complaint.ResolutionNotes = &notes
		}
	}
	complaint.UpdatedAt = f.clock
}

func (f *fakeStore) UpdateStatus(complaintID uint, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	complaint, ok := f.complaints[complaintID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "complaint"}
	}
	f.applyFields(complaint, fields)
	history.CreatedAt = f.clock
	complaint.StatusHistory = append(complaint.StatusHistory, *history)
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) AddAssignee(assignee *models.ComplaintAssignee, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	complaint, ok := f.complaints[assignee.ComplaintID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "complaint"}
	}
	if !complaint.HasAssignee(assignee.StaffID) {
		complaint.Assignees = append(complaint.Assignees, *assignee)
	}
	f.applyFields(complaint, fields)
	history.CreatedAt = f.clock
	complaint.StatusHistory = append(complaint.StatusHistory, *history)
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) RemoveAssignee(complaintID, staffID uint, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	complaint, ok := f.complaints[complaintID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "complaint"}
	}
	kept := complaint.Assignees[:0]
	for _, a := range complaint.Assignees {
		if a.StaffID != staffID {
			kept = append(kept, a)
		}
	}
	complaint.Assignees = kept
	history.CreatedAt = f.clock
	complaint.StatusHistory = append(complaint.StatusHistory, *history)
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) SetProof(complaintID uint, url string, activity *models.ActivityLog) error {
	complaint, ok := f.complaints[complaintID]
	if !ok {
		return &apperrors.NotFoundError{Resource: "complaint"}
	}
	complaint.ProofURL = &url
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) ListByDepartment(department models.Department) ([]models.Complaint, error) {
	var complaints []models.Complaint
	for _, c := range f.complaints {
		if c.Department == department {
			complaints = append(complaints, *c)
		}
	}
	return complaints, nil
}

func (f *fakeStore) ListByCreator(citizenID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	for _, c := range f.complaints {
		if c.CreatedByID == citizenID {
			complaints = append(complaints, *c)
		}
	}
	return complaints, nil
}

func (f *fakeStore) ListAssignedTo(staffID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	for _, c := range f.complaints {
		if c.HasAssignee(staffID) {
			complaints = append(complaints, *c)
		}
	}
	return complaints, nil
}

func (f *fakeStore) AppendActivity(activity *models.ActivityLog) error {
	activity.CreatedAt = f.clock
	f.activities = append(f.activities, *activity)
	return nil
}

func (f *fakeStore) ListActivity(complaintID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	for _, entry := range f.activities {
		if entry.ComplaintID == complaintID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeStore) GetUser(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Resource: "user"}
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) ListStaff(department models.Department) ([]models.User, error) {
	var staff []models.User
	for _, user := range f.users {
		if user.Role == models.RoleStaff && user.Department != nil && *user.Department == department {
			staff = append(staff, *user)
		}
	}
	return staff, nil
}
