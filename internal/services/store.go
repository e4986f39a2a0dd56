package services

import (
	"errors"
	"fmt"

	"fitcomp/internal/apperr"
	"fitcomp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate takes a row lock on dialects that support SELECT ... FOR UPDATE.
// SQLite serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func findUser(tx *gorm.DB, id uint, notFound string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, notFound)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

func findCompetition(tx *gorm.DB, id uint) (*models.Competition, error) {
	var comp models.Competition
	if err := forUpdate(tx).First(&comp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "competition not found")
		}
		return nil, fmt.Errorf("failed to load competition %d: %w", id, err)
	}
	return &comp, nil
}

func findEntry(tx *gorm.DB, id uint) (*models.CompetitionEntry, error) {
	var entry models.CompetitionEntry
	if err := forUpdate(tx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.ErrNotFound, "competition entry not found")
		}
		return nil, fmt.Errorf("failed to load entry %d: %w", id, err)
	}
	return &entry, nil
}

// activeUserExists reports whether id names an active user.
func activeUserExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ? AND is_active = ?", id, true).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}
