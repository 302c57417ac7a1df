package models

import "time"

type ActivityAction string

const (
	ActionCreated      ActivityAction = "CREATED"
	ActionAssigned     ActivityAction = "ASSIGNED"
	ActionStatusChange ActivityAction = "STATUS_CHANGE"
	ActionComment      ActivityAction = "COMMENT"
	ActionImageUpload  ActivityAction = "IMAGE_UPLOAD"
)

// ActivityLog is the denormalized, complaint-scoped audit record. Entries
// are written alongside the mutation they describe and never updated or
// deleted afterward.
type ActivityLog struct {
	ID             uint             `json:"id" gorm:"primaryKey"`
	ComplaintID    uint             `json:"complaintId" gorm:"not null;index"`
	Action         ActivityAction   `json:"action" gorm:"not null"`
	ActorID        uint             `json:"actorId" gorm:"not null"`
	ActorRole      UserRole         `json:"actorRole" gorm:"not null"`
	PreviousStatus *ComplaintStatus `json:"previousStatus,omitempty"`
	NewStatus      *ComplaintStatus `json:"newStatus,omitempty"`
	Metadata       *string          `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt      time.Time        `json:"timestamp"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
