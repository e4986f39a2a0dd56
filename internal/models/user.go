package models

import (
	"time"
)

// Role is the authorization tier of a user.
type Role string

const (
	RoleMember        Role = "member"
	RoleStaff         Role = "staff"
	RoleAdministrator Role = "administrator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleAdministrator:
		return true
	}
	return false
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName     string    `json:"last_name" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	UserID         uint      `json:"user_id" gorm:"not null;index"`
	Token          string    `json:"-" gorm:"type:varchar(500);uniqueIndex;not null"`
	ImpersonatorID *uint     `json:"impersonator_id,omitempty" gorm:"index"`
	ExpiresAt      time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt      time.Time `json:"created_at"`
	User           User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// AuditAction is the kind of action recorded in the audit trail.
type AuditAction string

const (
	ActionCreate      AuditAction = "create"
	ActionUpdate      AuditAction = "update"
	ActionDelete      AuditAction = "delete"
	ActionAssign      AuditAction = "assign"
	ActionDeactivate  AuditAction = "deactivate"
	ActionLogin       AuditAction = "login"
	ActionImpersonate AuditAction = "impersonate"
)

// Resource types written to AuditLog.ResourceType.
const (
	ResourceUser             = "user"
	ResourceCompetition      = "competition"
	ResourceCompetitionEntry = "competition_entry"
)

// AuditLog is append-only. Nothing updates or deletes rows of this table.
type AuditLog struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"user_id" gorm:"not null;index"`
	Action       AuditAction `json:"action" gorm:"type:varchar(20);not null;index"`
	ResourceType string      `json:"resource_type" gorm:"type:varchar(50);not null"`
	ResourceID   *uint       `json:"resource_id"`
	Details      *string     `json:"details" gorm:"type:text"`
	IPAddress    *string     `json:"ip_address" gorm:"type:varchar(45)"`
	CreatedAt    time.Time   `json:"created_at" gorm:"index"`
}
