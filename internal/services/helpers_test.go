package services

import (
	"path/filepath"
	"testing"
	"time"

	"fitcomp/internal/config"
	"fitcomp/internal/models"

	"github.com/stretchr/testify/require"
)

// setupTestDB points models.DB at a fresh SQLite file for the test.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Type: "sqlite",
			SQLite: config.SQLiteConfig{
				Path: filepath.Join(t.TempDir(), "fitcomp_test.db"),
			},
		},
		JWT: config.JWTConfig{
			Secret:    "test-secret-key-for-testing-only",
			ExpiresIn: "1h",
			Issuer:    "fitcomp-test",
		},
		Security: config.SecurityConfig{
			BcryptCost: 4,
		},
	}

	require.NoError(t, models.InitDB(cfg))
	t.Cleanup(func() {
		if models.DB != nil {
			if sqlDB, err := models.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		models.DB = nil
	})

	return cfg
}

// createTestUser inserts a user directly, bypassing the audit trail.
func createTestUser(t *testing.T, email string, role models.Role, active bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  active,
	}
	require.NoError(t, models.DB.Create(user).Error)
	return user
}

func actorFor(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, IPAddress: "127.0.0.1"}
}

func createTestCompetition(t *testing.T, creator *models.User, method models.DataEntryMethod) *models.Competition {
	t.Helper()
	comp, err := NewCompetitionService().CreateCompetition(CreateCompetitionInput{
		Name:            "Squat Test",
		Type:            models.TypeSquats,
		DataEntryMethod: method,
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}, actorFor(creator))
	require.NoError(t, err)
	return comp
}

func setCompetitionStatus(t *testing.T, comp *models.Competition, status models.CompetitionStatus) {
	t.Helper()
	require.NoError(t, models.DB.Model(comp).Update("status", status).Error)
}

func auditRows(t *testing.T, action models.AuditAction, resourceType string) []models.AuditLog {
	t.Helper()
	var logs []models.AuditLog
	require.NoError(t, models.DB.Where("action = ? AND resource_type = ?", action, resourceType).Order("id").Find(&logs).Error)
	return logs
}

func auditCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, models.DB.Model(&models.AuditLog{}).Count(&n).Error)
	return n
}
