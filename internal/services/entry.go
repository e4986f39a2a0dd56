package services

import (
	"fmt"
	"log/slog"

	"fitcomp/internal/apperr"
	"fitcomp/internal/models"
	"fitcomp/internal/policy"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// valuePlaces is the number of decimal places an entry value keeps.
const valuePlaces = 2

type CreateEntryInput struct {
	CompetitionID uint
	UserID        uint
	Value         decimal.Decimal
	Unit          *string
	Notes         *string
}

// UpdateEntryInput carries only the fields to change. Unit and Notes may be
// explicitly cleared.
type UpdateEntryInput struct {
	Value *decimal.Decimal
	Unit  Nullable[string]
	Notes Nullable[string]
}

type EntryService struct {
	audit *AuditService
}

func NewEntryService() *EntryService {
	return &EntryService{audit: NewAuditService()}
}

// GetCompetitionEntries lists a competition's entries, optionally only
// those recorded for userID.
func (s *EntryService) GetCompetitionEntries(competitionID uint, userID *uint) ([]models.CompetitionEntry, error) {
	entries := []models.CompetitionEntry{}
	q := models.DB.Where("competition_id = ?", competitionID)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// CreateEntry records a value for in.UserID, entered by actor.
func (s *EntryService) CreateEntry(in CreateEntryInput, actor Actor) (*models.CompetitionEntry, error) {
	if in.Value.IsNegative() {
		return nil, apperr.New(apperr.ErrInvalidInput, "value must not be negative")
	}

	entry := &models.CompetitionEntry{
		CompetitionID: in.CompetitionID,
		UserID:        in.UserID,
		Value:         in.Value.Round(valuePlaces),
		Unit:          in.Unit,
		Notes:         in.Notes,
		EnteredBy:     actor.UserID,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		comp, err := findCompetition(tx, in.CompetitionID)
		if err != nil {
			return err
		}
		if err := policy.CompetitionOpen(comp); err != nil {
			return denied("create_entry", actor, err)
		}

		subject, err := findUser(tx, in.UserID, "user not found")
		if err != nil {
			return err
		}
		if err := policy.SubjectActive(policy.Of(subject)); err != nil {
			return denied("create_entry", actor, err)
		}

		entrant, err := findUser(tx, actor.UserID, "entered by user not found")
		if err != nil {
			return err
		}
		if err := policy.CanCreateEntry(policy.Of(entrant), policy.Of(subject), comp); err != nil {
			return denied("create_entry", actor, err)
		}

		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionCreate,
			ResourceType: models.ResourceCompetitionEntry,
			ResourceID:   idPtr(entry.ID),
			Details: fmt.Sprintf("Created entry for user %d in competition %d with value %s",
				entry.UserID, entry.CompetitionID, entry.Value.StringFixed(valuePlaces)),
			IPAddress: actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("entry created", "entry_id", entry.ID, "competition_id", entry.CompetitionID, "by", actor.UserID)
	return entry, nil
}

// UpdateEntry applies a partial update to an entry while its competition is
// still active.
func (s *EntryService) UpdateEntry(id uint, in UpdateEntryInput, actor Actor) (*models.CompetitionEntry, error) {
	var entry *models.CompetitionEntry

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = findEntry(tx, id)
		if err != nil {
			return err
		}
		comp, err := findCompetition(tx, entry.CompetitionID)
		if err != nil {
			return err
		}

		actingUser, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		if err := policy.CanUpdateEntry(policy.As(actingUser, actor.Role), entry, comp); err != nil {
			return denied("update_entry", actor, err)
		}

		if in.Value != nil {
			if in.Value.IsNegative() {
				return apperr.New(apperr.ErrInvalidInput, "value must not be negative")
			}
			entry.Value = in.Value.Round(valuePlaces)
		}
		if in.Unit.Set {
			entry.Unit = in.Unit.Value
		}
		if in.Notes.Set {
			entry.Notes = in.Notes.Value
		}

		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionUpdate,
			ResourceType: models.ResourceCompetitionEntry,
			ResourceID:   idPtr(entry.ID),
			Details:      fmt.Sprintf("Updated entry %d in competition %s", entry.ID, comp.Name),
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("entry updated", "entry_id", entry.ID, "by", actor.UserID)
	return entry, nil
}

// GetUserStats returns the entries recorded for subjectID that requester is
// allowed to see. Staff only get entries from competitions they created or
// are assigned to, whoever the subject is.
func (s *EntryService) GetUserStats(subjectID uint, requester Actor) ([]models.CompetitionEntry, error) {
	if _, err := findUser(models.DB, subjectID, "user not found"); err != nil {
		return nil, err
	}

	owned := func() *gorm.DB {
		return models.DB.Model(&models.Competition{}).Select("id").
			Where("created_by = ? OR assigned_to = ?", requester.UserID, requester.UserID)
	}

	shares := false
	if requester.Role == models.RoleStaff && subjectID != requester.UserID {
		var count int64
		err := models.DB.Model(&models.CompetitionEntry{}).
			Where("user_id = ? AND competition_id IN (?)", subjectID, owned()).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check shared competitions: %w", err)
		}
		shares = count > 0
	}

	requesterPrincipal := policy.Principal{ID: requester.UserID, Role: requester.Role, Active: true}
	scope, err := policy.CanViewStats(requesterPrincipal, subjectID, shares)
	if err != nil {
		return nil, denied("view_stats", requester, err)
	}

	entries := []models.CompetitionEntry{}
	q := models.DB.Where("user_id = ?", subjectID)
	if scope.OwnCompetitionsOnly {
		q = q.Where("competition_id IN (?)", owned())
	}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return entries, nil
}
