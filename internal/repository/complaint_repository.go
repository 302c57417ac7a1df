package repository

import (
	"errors"

	"github.com/citypulse/backend/internal/apperrors"
	"github.com/citypulse/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store abstracts complaint persistence for the service layer. Mutating
// methods that touch both a complaint and its audit records run as a single
// transaction, so a status change can never land without its history entry.
type Store interface {
	// Create inserts the complaint together with its seed voter, first
	// status-history entry and the CREATED activity entry.
	Create(complaint *models.Complaint, activity *models.ActivityLog) error
	GetByID(id uint) (*models.Complaint, error)

	// FindActiveByLocation returns the non-resolved complaints matching the
	// normalized location key, oldest first.
	FindActiveByLocation(department models.Department, locationKey string) ([]models.Complaint, error)

	// AddVote registers one more citizen behind an existing complaint. The
	// voter insert and the frequency increment are one transaction; a
	// repeated vote returns (false, nil) and mutates nothing.
	AddVote(complaintID, citizenID uint, activity *models.ActivityLog) (bool, error)

	// UpdateStatus applies the field updates, appends the history entry and
	// the activity entry atomically.
	UpdateStatus(complaintID uint, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error

	AddAssignee(assignee *models.ComplaintAssignee, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error
	RemoveAssignee(complaintID, staffID uint, history *models.StatusHistoryEntry, activity *models.ActivityLog) error

	// SetProof records the resolution-evidence URL together with its
	// IMAGE_UPLOAD activity entry.
	SetProof(complaintID uint, url string, activity *models.ActivityLog) error

	ListByDepartment(department models.Department) ([]models.Complaint, error)
	ListByCreator(citizenID uint) ([]models.Complaint, error)
	ListAssignedTo(staffID uint) ([]models.Complaint, error)

	AppendActivity(activity *models.ActivityLog) error
	ListActivity(complaintID uint) ([]models.ActivityLog, error)

	GetUser(id uint) (*models.User, error)
	ListStaff(department models.Department) ([]models.User, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(complaint *models.Complaint, activity *models.ActivityLog) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(complaint).Error; err != nil {
			return err
		}
		activity.ComplaintID = complaint.ID
		return tx.Create(activity).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Partial unique index on (department, location_key) for active
			// complaints: somebody else created the same ticket concurrently.
			return &apperrors.ConflictError{Reason: "an active complaint already exists for this location"}
		}
		return &apperrors.PersistenceError{Op: "create complaint", Err: err}
	}
	return nil
}

func (s *GormStore) GetByID(id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.db.
		Preload("CreatedBy").
		Preload("Voters").
		Preload("Assignees").
		Preload("Assignees.Staff").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		First(&complaint, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "complaint"}
		}
		return nil, &apperrors.PersistenceError{Op: "get complaint", Err: err}
	}
	return &complaint, nil
}

func (s *GormStore) FindActiveByLocation(department models.Department, locationKey string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.
		Preload("Voters").
		Where("department = ? AND location_key = ? AND status IN ?",
			department, locationKey, models.ActiveStatuses).
		Order("created_at asc").
		Find(&complaints).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "find active duplicates", Err: err}
	}
	return complaints, nil
}

func (s *GormStore) AddVote(complaintID, citizenID uint, activity *models.ActivityLog) (bool, error) {
	added := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		voter := models.ComplaintVoter{ComplaintID: complaintID, CitizenID: citizenID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&voter)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already a voter; leave frequency alone.
			return nil
		}
		added = true
		if err := tx.Model(&models.Complaint{}).
			Where("id = ?", complaintID).
			Update("frequency", gorm.Expr("frequency + 1")).Error; err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return false, &apperrors.PersistenceError{Op: "add vote", Err: err}
	}
	return added, nil
}

func (s *GormStore) UpdateStatus(complaintID uint, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Complaint{}).
			Where("id = ?", complaintID).
			Updates(fields).Error; err != nil {
			return err
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "update status", Err: err}
	}
	return nil
}

func (s *GormStore) AddAssignee(assignee *models.ComplaintAssignee, fields map[string]interface{}, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(assignee).Error; err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&models.Complaint{}).
				Where("id = ?", assignee.ComplaintID).
				Updates(fields).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "assign staff", Err: err}
	}
	return nil
}

func (s *GormStore) RemoveAssignee(complaintID, staffID uint, history *models.StatusHistoryEntry, activity *models.ActivityLog) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("complaint_id = ? AND staff_id = ?", complaintID, staffID).
			Delete(&models.ComplaintAssignee{}).Error; err != nil {
			return err
		}
		if err := tx.Create(history).Error; err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "unassign staff", Err: err}
	}
	return nil
}

func (s *GormStore) SetProof(complaintID uint, url string, activity *models.ActivityLog) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Complaint{}).
			Where("id = ?", complaintID).
			Update("proof_url", url).Error; err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return &apperrors.PersistenceError{Op: "set proof", Err: err}
	}
	return nil
}

func (s *GormStore) ListByDepartment(department models.Department) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.
		Preload("CreatedBy").
		Preload("Assignees").
		Preload("Assignees.Staff").
		Where("department = ?", department).
		Find(&complaints).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list department complaints", Err: err}
	}
	return complaints, nil
}

func (s *GormStore) ListByCreator(citizenID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.
		Preload("Assignees").
		Where("created_by_id = ?", citizenID).
		Order("created_at desc").
		Find(&complaints).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list citizen complaints", Err: err}
	}
	return complaints, nil
}

func (s *GormStore) ListAssignedTo(staffID uint) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.db.
		Preload("CreatedBy").
		Joins("JOIN complaint_assignees ON complaint_assignees.complaint_id = complaints.id").
		Where("complaint_assignees.staff_id = ?", staffID).
		Order("complaints.created_at desc").
		Find(&complaints).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list assigned complaints", Err: err}
	}
	return complaints, nil
}

func (s *GormStore) AppendActivity(activity *models.ActivityLog) error {
	if err := s.db.Create(activity).Error; err != nil {
		return &apperrors.PersistenceError{Op: "append activity", Err: err}
	}
	return nil
}

func (s *GormStore) ListActivity(complaintID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := s.db.
		Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&entries).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list activity", Err: err}
	}
	return entries, nil
}

func (s *GormStore) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Resource: "user"}
		}
		return nil, &apperrors.PersistenceError{Op: "get user", Err: err}
	}
	return &user, nil
}

func (s *GormStore) ListStaff(department models.Department) ([]models.User, error) {
	var staff []models.User
	err := s.db.
		Where("role = ? AND department = ?", models.RoleStaff, department).
		Order("first_name asc").
		Find(&staff).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list staff", Err: err}
	}
	return staff, nil
}
