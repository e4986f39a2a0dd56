package services

import (
	"fmt"

	"fitcomp/internal/metrics"
	"fitcomp/internal/models"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// AuditEntry describes one row to append to the audit trail.
type AuditEntry struct {
	UserID       uint
	Action       models.AuditAction
	ResourceType string
	ResourceID   *uint
	Details      string
	IPAddress    string
}

// AuditService appends to and reads the audit trail. Rows are never updated
// or deleted.
type AuditService struct{}

func NewAuditService() *AuditService {
	return &AuditService{}
}

// Record appends e using db, which should be the transaction carrying the
// mutation being audited.
func (s *AuditService) Record(db *gorm.DB, e AuditEntry) error {
	row := &models.AuditLog{
		UserID:       e.UserID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
	}
	if e.Details != "" {
		details := e.Details
		row.Details = &details
	}
	if e.IPAddress != "" {
		ip := e.IPAddress
		row.IPAddress = &ip
	}

	if err := db.Create(row).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}

	metrics.AuditEvents.WithLabelValues(string(e.Action), e.ResourceType).Inc()
	return nil
}

// List returns audit rows newest first. A non-positive limit means the
// default page size; offset below zero is treated as zero.
func (s *AuditService) List(limit, offset int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}
	if offset < 0 {
		offset = 0
	}

	logs := []models.AuditLog{}
	if err := models.DB.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

func idPtr(id uint) *uint {
	return &id
}
