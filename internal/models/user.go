package models

import (
	"time"
)

type UserRole string

const (
	RoleCitizen   UserRole = "CITIZEN"
	RoleAuthority UserRole = "AUTHORITY"
	RoleStaff     UserRole = "STAFF"
)

func ParseRole(s string) (UserRole, bool) {
	switch UserRole(s) {
	case RoleCitizen, RoleAuthority, RoleStaff:
		return UserRole(s), true
	}
	return "", false
}

// User is identity plus role plus department. Department is set only for
// authority and staff accounts; citizens report across departments.
type User struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	Email      string      `json:"email" gorm:"uniqueIndex;not null"`
	Password   string      `json:"-" gorm:"not null"`
	FirstName  string      `json:"firstName" gorm:"not null"`
	LastName   string      `json:"lastName" gorm:"not null"`
	Role       UserRole    `json:"role" gorm:"not null;default:'CITIZEN'"`
	Department *Department `json:"department,omitempty"`
	Avatar     *string     `json:"avatar"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}
