package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CompetitionType string

const (
	TypePlankHold  CompetitionType = "plank_hold"
	TypeSquats     CompetitionType = "squats"
	TypeAttendance CompetitionType = "attendance"
	TypeOther      CompetitionType = "other"
)

func (t CompetitionType) Valid() bool {
	switch t {
	case TypePlankHold, TypeSquats, TypeAttendance, TypeOther:
		return true
	}
	return false
}

// DataEntryMethod decides who may submit entries to a competition.
type DataEntryMethod string

const (
	EntryStaffOnly DataEntryMethod = "staff_only"
	EntryUserEntry DataEntryMethod = "user_entry"
)

func (m DataEntryMethod) Valid() bool {
	return m == EntryStaffOnly || m == EntryUserEntry
}

type CompetitionStatus string

const (
	StatusActive    CompetitionStatus = "active"
	StatusInactive  CompetitionStatus = "inactive"
	StatusCompleted CompetitionStatus = "completed"
)

func (s CompetitionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusCompleted:
		return true
	}
	return false
}

type Competition struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	Name            string            `json:"name" gorm:"type:varchar(255);not null"`
	Description     *string           `json:"description" gorm:"type:text"`
	Type            CompetitionType   `json:"type" gorm:"type:varchar(20);not null"`
	DataEntryMethod DataEntryMethod   `json:"data_entry_method" gorm:"type:varchar(20);not null"`
	Status          CompetitionStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	StartDate       time.Time         `json:"start_date" gorm:"not null"`
	EndDate         time.Time         `json:"end_date" gorm:"not null"`
	CreatedBy       uint              `json:"created_by" gorm:"not null;index"`
	AssignedTo      *uint             `json:"assigned_to" gorm:"index"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsAssignedTo reports whether userID is the competition's assignee.
func (c *Competition) IsAssignedTo(userID uint) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// CompetitionEntry stores Value as fixed point with two decimals; callers
// convert to a float only when rendering a response.
type CompetitionEntry struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	CompetitionID uint            `json:"competition_id" gorm:"not null;index"`
	UserID        uint            `json:"user_id" gorm:"not null;index"`
	Value         decimal.Decimal `json:"value" gorm:"type:decimal(10,2);not null"`
	Unit          *string         `json:"unit" gorm:"type:varchar(50)"`
	Notes         *string         `json:"notes" gorm:"type:text"`
	EnteredBy     uint            `json:"entered_by" gorm:"not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
