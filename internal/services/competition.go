package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitcomp/internal/apperr"
	"fitcomp/internal/models"
	"fitcomp/internal/policy"

	"gorm.io/gorm"
)

type CreateCompetitionInput struct {
	Name            string
	Description     *string
	Type            models.CompetitionType
	DataEntryMethod models.DataEntryMethod
	StartDate       time.Time
	EndDate         time.Time
	// AssignedTo defaults to the creator when nil.
	AssignedTo *uint
}

// UpdateCompetitionInput carries only the fields to change. Description and
// AssignedTo may be explicitly cleared.
type UpdateCompetitionInput struct {
	Name            *string
	Description     Nullable[string]
	Type            *models.CompetitionType
	DataEntryMethod *models.DataEntryMethod
	Status          *models.CompetitionStatus
	StartDate       *time.Time
	EndDate         *time.Time
	AssignedTo      Nullable[uint]
}

type CompetitionService struct {
	audit *AuditService
}

func NewCompetitionService() *CompetitionService {
	return &CompetitionService{audit: NewAuditService()}
}

// GetCompetitions lists the competitions visible to userID acting as role.
// Admins see everything, staff what they created or are assigned to, members
// and anonymous callers the active ones.
func (s *CompetitionService) GetCompetitions(userID uint, role models.Role) ([]models.Competition, error) {
	scope := policy.CompetitionScope(userID, role)
	comps := []models.Competition{}

	q := models.DB.Order("created_at DESC").Order("id DESC")
	switch scope.Kind {
	case policy.ScopeAll:
	case policy.ScopeOwnedOrAssigned:
		q = q.Where("created_by = ? OR assigned_to = ?", scope.UserID, scope.UserID)
	case policy.ScopeActiveOnly:
		q = q.Where("status = ?", models.StatusActive)
	default:
		return comps, nil
	}

	if err := q.Find(&comps).Error; err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return comps, nil
}

// GetCompetition returns one competition if actor may see it. Invisible
// competitions are reported as not found.
func (s *CompetitionService) GetCompetition(id uint, actor Actor) (*models.Competition, error) {
	comp, err := findCompetition(models.DB, id)
	if err != nil {
		return nil, err
	}
	if !policy.CompetitionScope(actor.UserID, actor.Role).Visible(comp) {
		return nil, apperr.New(apperr.ErrNotFound, "competition not found")
	}
	return comp, nil
}

// CreateCompetition creates an active competition owned by actor.
func (s *CompetitionService) CreateCompetition(in CreateCompetitionInput, actor Actor) (*models.Competition, error) {
	if err := validateCompetitionFields(strings.TrimSpace(in.Name), in.Type, in.DataEntryMethod); err != nil {
		return nil, err
	}
	if !in.EndDate.After(in.StartDate) {
		return nil, apperr.New(apperr.ErrInvalidDateRange, "end date must be after start date")
	}

	comp := &models.Competition{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Type:            in.Type,
		DataEntryMethod: in.DataEntryMethod,
		Status:          models.StatusActive,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		CreatedBy:       actor.UserID,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		creator, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		if err := policy.CanCreateCompetition(policy.Of(creator)); err != nil {
			return denied("create_competition", actor, err)
		}

		if in.AssignedTo != nil {
			if err := ensureAssignable(tx, *in.AssignedTo); err != nil {
				return err
			}
			comp.AssignedTo = idPtr(*in.AssignedTo)
		} else {
			comp.AssignedTo = idPtr(creator.ID)
		}

		if err := tx.Create(comp).Error; err != nil {
			return fmt.Errorf("failed to create competition: %w", err)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionCreate,
			ResourceType: models.ResourceCompetition,
			ResourceID:   idPtr(comp.ID),
			Details:      fmt.Sprintf("Created competition: %s", comp.Name),
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("competition created", "competition_id", comp.ID, "by", actor.UserID)
	return comp, nil
}

// UpdateCompetition applies a partial update after the policy allows it.
func (s *CompetitionService) UpdateCompetition(id uint, in UpdateCompetitionInput, actor Actor) (*models.Competition, error) {
	var comp *models.Competition

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		comp, err = findCompetition(tx, id)
		if err != nil {
			return err
		}

		actingUser, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		change := policy.CompetitionChange{Status: in.Status}
		if err := policy.CanUpdateCompetition(policy.As(actingUser, actor.Role), comp, change); err != nil {
			return denied("update_competition", actor, err)
		}

		if in.AssignedTo.Set && in.AssignedTo.Value != nil {
			if err := ensureAssignable(tx, *in.AssignedTo.Value); err != nil {
				return err
			}
		}

		changes, err := applyCompetitionUpdate(comp, in)
		if err != nil {
			return err
		}
		if !comp.EndDate.After(comp.StartDate) {
			return apperr.New(apperr.ErrInvalidDateRange, "end date must be after start date")
		}

		if err := tx.Save(comp).Error; err != nil {
			return fmt.Errorf("failed to update competition: %w", err)
		}

		details := fmt.Sprintf("Updated competition: %s", comp.Name)
		if len(changes) > 0 {
			details = "Updated competition: " + strings.Join(changes, ", ")
		}
		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionUpdate,
			ResourceType: models.ResourceCompetition,
			ResourceID:   idPtr(comp.ID),
			Details:      details,
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("competition updated", "competition_id", comp.ID, "by", actor.UserID)
	return comp, nil
}

// DeleteCompetition removes a competition and every entry recorded against it.
func (s *CompetitionService) DeleteCompetition(id uint, actor Actor) (bool, error) {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		actingUser, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		if err := policy.CanDeleteCompetition(policy.Of(actingUser)); err != nil {
			return denied("delete_competition", actor, err)
		}

		comp, err := findCompetition(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Where("competition_id = ?", comp.ID).Delete(&models.CompetitionEntry{}).Error; err != nil {
			return fmt.Errorf("failed to delete competition entries: %w", err)
		}
		if err := tx.Delete(comp).Error; err != nil {
			return fmt.Errorf("failed to delete competition: %w", err)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionDelete,
			ResourceType: models.ResourceCompetition,
			ResourceID:   idPtr(comp.ID),
			Details:      fmt.Sprintf("Deleted competition: %s", comp.Name),
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return false, err
	}

	slog.Info("competition deleted", "competition_id", id, "by", actor.UserID)
	return true, nil
}

func applyCompetitionUpdate(comp *models.Competition, in UpdateCompetitionInput) ([]string, error) {
	var changes []string

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.New(apperr.ErrInvalidInput, "name is required")
		}
		comp.Name = name
		changes = append(changes, "name="+name)
	}
	if in.Description.Set {
		comp.Description = in.Description.Value
		if in.Description.Value == nil {
			changes = append(changes, "description=null")
		} else {
			changes = append(changes, "description="+*in.Description.Value)
		}
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid competition type %q", *in.Type)
		}
		comp.Type = *in.Type
		changes = append(changes, "type="+string(*in.Type))
	}
	if in.DataEntryMethod != nil {
		if !in.DataEntryMethod.Valid() {
			return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid data entry method %q", *in.DataEntryMethod)
		}
		comp.DataEntryMethod = *in.DataEntryMethod
		changes = append(changes, "data_entry_method="+string(*in.DataEntryMethod))
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid status %q", *in.Status)
		}
		comp.Status = *in.Status
		changes = append(changes, "status="+string(*in.Status))
	}
	if in.StartDate != nil {
		comp.StartDate = *in.StartDate
		changes = append(changes, "start_date="+in.StartDate.Format(time.DateOnly))
	}
	if in.EndDate != nil {
		comp.EndDate = *in.EndDate
		changes = append(changes, "end_date="+in.EndDate.Format(time.DateOnly))
	}
	if in.AssignedTo.Set {
		comp.AssignedTo = in.AssignedTo.Value
		if in.AssignedTo.Value == nil {
			changes = append(changes, "assigned_to=null")
		} else {
			changes = append(changes, fmt.Sprintf("assigned_to=%d", *in.AssignedTo.Value))
		}
	}

	return changes, nil
}

func validateCompetitionFields(name string, typ models.CompetitionType, method models.DataEntryMethod) error {
	if name == "" {
		return apperr.New(apperr.ErrInvalidInput, "name is required")
	}
	if !typ.Valid() {
		return apperr.Newf(apperr.ErrInvalidInput, "invalid competition type %q", typ)
	}
	if !method.Valid() {
		return apperr.Newf(apperr.ErrInvalidInput, "invalid data entry method %q", method)
	}
	return nil
}

// ensureAssignable fails with ErrInvalidReference unless id is an active user.
func ensureAssignable(tx *gorm.DB, id uint) error {
	ok, err := activeUserExists(tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.ErrInvalidReference, "assigned user not found or inactive")
	}
	return nil
}
