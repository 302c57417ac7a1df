package models

import (
	"strings"
	"time"
)

type Department string
type ComplaintStatus string

const (
	DepartmentRoad       Department = "Road"
	DepartmentWater      Department = "Water"
	DepartmentElectrical Department = "Electrical"
	DepartmentSanitation Department = "Sanitation"
)

const (
	StatusOpen       ComplaintStatus = "OPEN"
	StatusInProgress ComplaintStatus = "IN_PROGRESS"
	StatusOnHold     ComplaintStatus = "ON_HOLD"
	StatusResolved   ComplaintStatus = "RESOLVED"
)

// Departments is the fixed service-category enum.
var Departments = []Department{DepartmentRoad, DepartmentWater, DepartmentElectrical, DepartmentSanitation}

// ParseDepartment maps a request string onto the fixed department enum.
// Matching tolerates case and surrounding whitespace; anything else is
// rejected.
func ParseDepartment(s string) (Department, bool) {
	trimmed := strings.TrimSpace(s)
	for _, department := range Departments {
		if strings.EqualFold(trimmed, string(department)) {
			return department, true
		}
	}
	return "", false
}

func ParseStatus(s string) (ComplaintStatus, bool) {
	switch ComplaintStatus(s) {
	case StatusOpen, StatusInProgress, StatusOnHold, StatusResolved:
		return ComplaintStatus(s), true
	}
	return "", false
}

// IsActive reports whether the status still blocks duplicate reports.
// RESOLVED is terminal; everything else counts as a live ticket, including
// ON_HOLD.
func (s ComplaintStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusOnHold
}

// ActiveStatuses are the states the duplicate resolver queries against.
var ActiveStatuses = []ComplaintStatus{StatusOpen, StatusInProgress, StatusOnHold}

// NormalizeLocation produces the dedup key for a free-text location.
// Matching is case-insensitive and trimmed but otherwise exact: " Main St "
// and "main st" are the same place, "Main Street" is not.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

type Complaint struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Department  Department      `json:"department" gorm:"not null;index"`
	Location    string          `json:"location" gorm:"not null"`
	LocationKey string          `json:"-" gorm:"not null;index"`
	ImageURL    *string         `json:"imageUrl"`
	Status      ComplaintStatus `json:"status" gorm:"not null;default:'OPEN'"`
	Frequency   int             `json:"frequency" gorm:"not null;default:1"`

	CreatedByID uint `json:"createdById" gorm:"not null"`
	CreatedBy   User `json:"createdBy" gorm:"foreignKey:CreatedByID"`

	ProofURL        *string `json:"proofUrl"`
	ResolutionNotes *string `json:"resolutionNotes"`

	Voters        []ComplaintVoter     `json:"voters" gorm:"foreignKey:ComplaintID"`
	Assignees     []ComplaintAssignee  `json:"assignees" gorm:"foreignKey:ComplaintID"`
	StatusHistory []StatusHistoryEntry `json:"statusHistory" gorm:"foreignKey:ComplaintID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Complaint) TableName() string {
	return "complaints"
}

// IsAssigned reports whether any staff member is accountable for the
// complaint. Assignment is a set; single-assignee flows are the
// one-element case.
func (c *Complaint) IsAssigned() bool {
	return len(c.Assignees) > 0
}

func (c *Complaint) HasAssignee(staffID uint) bool {
	for _, a := range c.Assignees {
		if a.StaffID == staffID {
			return true
		}
	}
	return false
}

func (c *Complaint) HasVoter(citizenID uint) bool {
	for _, v := range c.Voters {
		if v.CitizenID == citizenID {
			return true
		}
	}
	return false
}

// ComplaintVoter records one citizen's report of the issue. The unique
// index makes duplicate voting a storage-level no-op.
type ComplaintVoter struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ComplaintID uint      `json:"complaintId" gorm:"not null;uniqueIndex:idx_complaint_voter"`
	CitizenID   uint      `json:"citizenId" gorm:"not null;uniqueIndex:idx_complaint_voter"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (ComplaintVoter) TableName() string {
	return "complaint_voters"
}

type ComplaintAssignee struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ComplaintID  uint      `json:"complaintId" gorm:"not null;uniqueIndex:idx_complaint_assignee"`
	StaffID      uint      `json:"staffId" gorm:"not null;uniqueIndex:idx_complaint_assignee"`
	Staff        User      `json:"staff" gorm:"foreignKey:StaffID"`
	AssignedByID uint      `json:"assignedById" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (ComplaintAssignee) TableName() string {
	return "complaint_assignees"
}

// StatusHistoryEntry is the append-only audit trail on the complaint
// itself. Every transition writes exactly one entry; creation writes the
// first.
type StatusHistoryEntry struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ComplaintID uint            `json:"complaintId" gorm:"not null;index"`
	Status      ComplaintStatus `json:"status" gorm:"not null"`
	ChangedByID uint            `json:"changedById" gorm:"not null"`
	Notes       string          `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time       `json:"timestamp"`
}

func (StatusHistoryEntry) TableName() string {
	return "complaint_status_history"
}
