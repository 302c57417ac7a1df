package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/citypulse/backend/internal/apperrors"
	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/models"
	"github.com/citypulse/backend/internal/repository"
)

const (
	msgComplaintRegistered = "Complaint registered successfully."
	msgAlreadyReported     = "You have already reported this issue. We are tracking it."
	msgDuplicateMerged     = "This issue was already reported. Your report has been added and raises its priority."
)

// LifecycleService orchestrates complaint creation, assignment and status
// transitions, and writes the audit trail for every mutation.
type LifecycleService struct {
	store    repository.Store
	resolver *DuplicateResolver
	notifier Notifier
	locks    Locker
}

func NewLifecycleService(store repository.Store, notifier Notifier, locks Locker) *LifecycleService {
	return &LifecycleService{
		store:    store,
		resolver: NewDuplicateResolver(store),
		notifier: notifier,
		locks:    locks,
	}
}

type CreateComplaintInput struct {
	ReporterID  uint
	Department  string
	Title       string
	Description string
	Location    string
	ImageURL    *string
}

type CreateComplaintResult struct {
	Complaint   *models.Complaint
	IsDuplicate bool
	Message     string
}

// CreateComplaint files a new complaint, or folds the report into the
// active complaint already covering the same department and location.
// Reporting the same issue twice as the same citizen is an idempotent
// no-op.
func (s *LifecycleService) CreateComplaint(input CreateComplaintInput) (*CreateComplaintResult, error) {
	department, ok := models.ParseDepartment(input.Department)
	if !ok {
		return nil, &apperrors.ValidationError{Field: "department", Message: "must be one of Road, Water, Electrical, Sanitation"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, &apperrors.ValidationError{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, &apperrors.ValidationError{Field: "description", Message: "description is required"}
	}
	locationKey := models.NormalizeLocation(input.Location)
	if locationKey == "" {
		return nil, &apperrors.ValidationError{Field: "location", Message: "location is required"}
	}

	release, acquired := s.locks.Acquire(department, locationKey)
	if !acquired {
		// A concurrent report for the same place holds the lock. It either
		// created the ticket already or is about to; resolve once more and
		// merge if we can see it.
		if duplicate, err := s.resolver.FindActiveDuplicate(department, input.Location); err == nil && duplicate != nil {
			return s.mergeIntoDuplicate(duplicate, input.ReporterID)
		}
		return nil, &apperrors.ConflictError{Reason: "another report for this location is being processed, please retry"}
	}
	defer release()

	duplicate, err := s.resolver.FindActiveDuplicate(department, input.Location)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return s.mergeIntoDuplicate(duplicate, input.ReporterID)
	}

	openStatus := models.StatusOpen
	complaint := &models.Complaint{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Department:  department,
		Location:    strings.TrimSpace(input.Location),
		LocationKey: locationKey,
		ImageURL:    input.ImageURL,
		Status:      models.StatusOpen,
		Frequency:   1,
		CreatedByID: input.ReporterID,
		Voters: []models.ComplaintVoter{
			{CitizenID: input.ReporterID},
		},
		StatusHistory: []models.StatusHistoryEntry{
			{Status: models.StatusOpen, ChangedByID: input.ReporterID, Notes: "Complaint registered by citizen"},
		},
	}
	activity := &models.ActivityLog{
		Action:    models.ActionCreated,
		ActorID:   input.ReporterID,
		ActorRole: models.RoleCitizen,
		NewStatus: &openStatus,
	}

	if err := s.store.Create(complaint, activity); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost the race to the unique index; the winner's ticket is the
			// duplicate now.
			if duplicate, rerr := s.resolver.FindActiveDuplicate(department, input.Location); rerr == nil && duplicate != nil {
				return s.mergeIntoDuplicate(duplicate, input.ReporterID)
			}
		}
		return nil, err
	}

	logger.WithComplaint(complaint.ID, string(department)).Info("Complaint created")
	s.notifier.Publish(NotificationEvent{
		ComplaintID: complaint.ID,
		Department:  department,
		Type:        "complaint.created",
		Message:     fmt.Sprintf("New complaint filed: %s", complaint.Title),
	})

	created, err := s.store.GetByID(complaint.ID)
	if err != nil {
		return nil, err
	}
	return &CreateComplaintResult{Complaint: created, IsDuplicate: false, Message: msgComplaintRegistered}, nil
}

func (s *LifecycleService) mergeIntoDuplicate(duplicate *models.Complaint, reporterID uint) (*CreateComplaintResult, error) {
	if duplicate.HasVoter(reporterID) {
		return &CreateComplaintResult{Complaint: duplicate, IsDuplicate: true, Message: msgAlreadyReported}, nil
	}

	metadata := "Upvoted/Reported Duplicate"
	activity := &models.ActivityLog{
		ComplaintID: duplicate.ID,
		Action:      models.ActionStatusChange,
		ActorID:     reporterID,
		ActorRole:   models.RoleCitizen,
		Metadata:    &metadata,
	}
	added, err := s.store.AddVote(duplicate.ID, reporterID, activity)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetByID(duplicate.ID)
	if err != nil {
		return nil, err
	}
	if !added {
		return &CreateComplaintResult{Complaint: updated, IsDuplicate: true, Message: msgAlreadyReported}, nil
	}

	logger.WithComplaint(duplicate.ID, string(duplicate.Department)).Info("Duplicate report merged")
	return &CreateComplaintResult{Complaint: updated, IsDuplicate: true, Message: msgDuplicateMerged}, nil
}

type AssignStaffInput struct {
	ComplaintID     uint
	StaffID         uint
	ActorID         uint
	ActorDepartment *models.Department
}

// AssignStaff puts a staff member on the hook for a complaint. Assignment
// of an untouched ticket starts work: OPEN moves to IN_PROGRESS. Any other
// status is left alone.
func (s *LifecycleService) AssignStaff(input AssignStaffInput) (*models.Complaint, error) {
	complaint, err := s.store.GetByID(input.ComplaintID)
	if err != nil {
		return nil, err
	}
	if input.ActorDepartment == nil || *input.ActorDepartment != complaint.Department {
		return nil, &apperrors.AuthorizationError{Reason: "cannot assign staff outside your own department"}
	}

	staff, err := s.store.GetUser(input.StaffID)
	if err != nil {
		return nil, err
	}
	if staff.Role != models.RoleStaff {
		return nil, &apperrors.AuthorizationError{Reason: "assignee must be a staff account"}
	}
	if staff.Department == nil || *staff.Department != complaint.Department {
		return nil, &apperrors.AuthorizationError{Reason: "staff must belong to the complaint's department"}
	}

	if complaint.HasAssignee(input.StaffID) {
		return complaint, nil
	}

	previousStatus := complaint.Status
	newStatus := complaint.Status
	fields := map[string]interface{}{}
	if complaint.Status == models.StatusOpen {
		newStatus = models.StatusInProgress
		fields["status"] = newStatus
	}

	assignee := &models.ComplaintAssignee{
		ComplaintID:  complaint.ID,
		StaffID:      staff.ID,
		AssignedByID: input.ActorID,
	}
	history := &models.StatusHistoryEntry{
		ComplaintID: complaint.ID,
		Status:      newStatus,
		ChangedByID: input.ActorID,
		Notes:       fmt.Sprintf("Assigned to %s %s", staff.FirstName, staff.LastName),
	}
	activity := &models.ActivityLog{
		ComplaintID:    complaint.ID,
		Action:         models.ActionAssigned,
		ActorID:        input.ActorID,
		ActorRole:      models.RoleAuthority,
		PreviousStatus: &previousStatus,
		NewStatus:      &newStatus,
	}

	if err := s.store.AddAssignee(assignee, fields, history, activity); err != nil {
		return nil, err
	}

	s.notifier.Publish(NotificationEvent{
		ComplaintID: complaint.ID,
		Department:  complaint.Department,
		Type:        "complaint.assigned",
		Message:     fmt.Sprintf("Complaint #%d assigned to %s %s", complaint.ID, staff.FirstName, staff.LastName),
	})

	return s.store.GetByID(complaint.ID)
}

// UnassignStaff removes one assignee. Status never advances on
// unassignment; the audit entry records how many assignees remain.
func (s *LifecycleService) UnassignStaff(input AssignStaffInput) (*models.Complaint, error) {
	complaint, err := s.store.GetByID(input.ComplaintID)
	if err != nil {
		return nil, err
	}
	if input.ActorDepartment == nil || *input.ActorDepartment != complaint.Department {
		return nil, &apperrors.AuthorizationError{Reason: "cannot unassign staff outside your own department"}
	}
	if !complaint.HasAssignee(input.StaffID) {
		return nil, &apperrors.NotFoundError{Resource: "assignment"}
	}

	remaining := len(complaint.Assignees) - 1
	history := &models.StatusHistoryEntry{
		ComplaintID: complaint.ID,
		Status:      complaint.Status,
		ChangedByID: input.ActorID,
		Notes:       fmt.Sprintf("Staff unassigned, %d assignee(s) remaining", remaining),
	}
	metadata := fmt.Sprintf("%d assignee(s) remaining", remaining)
	activity := &models.ActivityLog{
		ComplaintID: complaint.ID,
		Action:      models.ActionAssigned,
		ActorID:     input.ActorID,
		ActorRole:   models.RoleAuthority,
		Metadata:    &metadata,
	}

	if err := s.store.RemoveAssignee(complaint.ID, input.StaffID, history, activity); err != nil {
		return nil, err
	}
	return s.store.GetByID(complaint.ID)
}

type UpdateStatusInput struct {
	ComplaintID     uint
	ActorID         uint
	ActorRole       models.UserRole
	ActorDepartment *models.Department
	NewStatus       string
	Notes           string
	ProofURL        *string
	ResolutionNotes *string
}

// UpdateStatus moves a complaint through its workflow. RESOLVED is
// terminal, and resolving demands photographic proof, either already on the
// complaint or supplied with this call.
func (s *LifecycleService) UpdateStatus(input UpdateStatusInput) (*models.Complaint, error) {
	newStatus, ok := models.ParseStatus(input.NewStatus)
	if !ok {
		return nil, &apperrors.ValidationError{Field: "status", Message: "must be one of OPEN, IN_PROGRESS, ON_HOLD, RESOLVED"}
	}

	complaint, err := s.store.GetByID(input.ComplaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status == models.StatusResolved {
		return nil, &apperrors.ValidationError{Field: "status", Message: "a resolved complaint cannot be reopened"}
	}

	switch input.ActorRole {
	case models.RoleStaff:
		if !complaint.HasAssignee(input.ActorID) {
			return nil, &apperrors.AuthorizationError{Reason: "only staff assigned to this complaint may update it"}
		}
	case models.RoleAuthority:
		if input.ActorDepartment == nil || *input.ActorDepartment != complaint.Department {
			return nil, &apperrors.AuthorizationError{Reason: "cannot update complaints outside your own department"}
		}
	default:
		return nil, &apperrors.AuthorizationError{Reason: "citizens cannot change complaint status"}
	}

	if newStatus == models.StatusResolved {
		hasProof := complaint.ProofURL != nil && *complaint.ProofURL != ""
		if input.ProofURL != nil && *input.ProofURL != "" {
			hasProof = true
		}
		if !hasProof {
			return nil, &apperrors.ValidationError{Field: "proofUrl", Message: "photographic proof is required before resolving"}
		}
	}

	fields := map[string]interface{}{"status": newStatus}
	if input.ProofURL != nil && *input.ProofURL != "" {
		fields["proof_url"] = *input.ProofURL
	}
	if input.ResolutionNotes != nil && *input.ResolutionNotes != "" {
		fields["resolution_notes"] = *input.ResolutionNotes
	}

	notes := input.Notes
	if notes == "" {
		notes = fmt.Sprintf("Status changed to %s", newStatus)
	}

	previousStatus := complaint.Status
	history := &models.StatusHistoryEntry{
		ComplaintID: complaint.ID,
		Status:      newStatus,
		ChangedByID: input.ActorID,
		Notes:       notes,
	}
	activity := &models.ActivityLog{
		ComplaintID:    complaint.ID,
		Action:         models.ActionStatusChange,
		ActorID:        input.ActorID,
		ActorRole:      input.ActorRole,
		PreviousStatus: &previousStatus,
		NewStatus:      &newStatus,
	}

	if err := s.store.UpdateStatus(complaint.ID, fields, history, activity); err != nil {
		return nil, err
	}

	s.notifier.Publish(NotificationEvent{
		ComplaintID: complaint.ID,
		Department:  complaint.Department,
		Type:        "complaint.status_changed",
		Message:     fmt.Sprintf("Complaint #%d moved from %s to %s", complaint.ID, previousStatus, newStatus),
	})

	return s.store.GetByID(complaint.ID)
}

// AttachProof stores the uploaded proof-image URL on the complaint and
// records an IMAGE_UPLOAD activity entry.
func (s *LifecycleService) AttachProof(complaintID, actorID uint, actorRole models.UserRole, actorDepartment *models.Department, url string) (*models.Complaint, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &apperrors.ValidationError{Field: "proofUrl", Message: "proof URL is required"}
	}

	complaint, err := s.store.GetByID(complaintID)
	if err != nil {
		return nil, err
	}

	switch actorRole {
	case models.RoleStaff:
		if !complaint.HasAssignee(actorID) {
			return nil, &apperrors.AuthorizationError{Reason: "only staff assigned to this complaint may upload proof"}
		}
	case models.RoleAuthority:
		if actorDepartment == nil || *actorDepartment != complaint.Department {
			return nil, &apperrors.AuthorizationError{Reason: "cannot upload proof outside your own department"}
		}
	default:
		return nil, &apperrors.AuthorizationError{Reason: "citizens cannot upload resolution proof"}
	}

	metadata := url
	activity := &models.ActivityLog{
		ComplaintID: complaint.ID,
		Action:      models.ActionImageUpload,
		ActorID:     actorID,
		ActorRole:   actorRole,
		Metadata:    &metadata,
	}
	if err := s.store.SetProof(complaint.ID, url, activity); err != nil {
		return nil, err
	}
	return s.store.GetByID(complaint.ID)
}

// AddComment appends a COMMENT activity entry to the complaint's timeline.
func (s *LifecycleService) AddComment(complaintID, actorID uint, actorRole models.UserRole, text string) error {
	if strings.TrimSpace(text) == "" {
		return &apperrors.ValidationError{Field: "comment", Message: "comment text is required"}
	}
	if _, err := s.store.GetByID(complaintID); err != nil {
		return err
	}
	comment := text
	return s.store.AppendActivity(&models.ActivityLog{
		ComplaintID: complaintID,
		Action:      models.ActionComment,
		ActorID:     actorID,
		ActorRole:   actorRole,
		Metadata:    &comment,
	})
}

// Timeline returns the complaint's activity entries in chronological order.
func (s *LifecycleService) Timeline(complaintID uint) ([]models.ActivityLog, error) {
	if _, err := s.store.GetByID(complaintID); err != nil {
		return nil, err
	}
	return s.store.ListActivity(complaintID)
}
