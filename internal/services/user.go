package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fitcomp/internal/apperr"
	"fitcomp/internal/config"
	"fitcomp/internal/models"
	"fitcomp/internal/policy"

	"gorm.io/gorm"
)

type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
	Password  string
	// IsActive defaults to true when nil.
	IsActive *bool
}

// UpdateUserInput carries only the fields to change.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *models.Role
	IsActive  *bool
	Password  *string
}

type UserService struct {
	authService *AuthService
	audit       *AuditService
}

func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		authService: NewAuthService(cfg),
		audit:       NewAuditService(),
	}
}

// GetUsers returns all users, active or not
func (s *UserService) GetUsers() ([]models.User, error) {
	users := []models.User{}
	if err := models.DB.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	return users, nil
}

// GetUser returns a specific user by ID
func (s *UserService) GetUser(id uint) (*models.User, error) {
	user, err := findUser(models.DB, id, fmt.Sprintf("user with id %d not found", id))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// CreateUser creates a user on behalf of an administrator
func (s *UserService) CreateUser(in CreateUserInput, actor Actor) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.ErrInvalidInput, "a valid email is required")
	}
	if !in.Role.Valid() {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "invalid role %q", in.Role)
	}

	var hash string
	if in.Password != "" {
		h, err := s.authService.HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = h
	}

	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		actingUser, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		if err := policy.CanCreateUser(policy.As(actingUser, actor.Role)); err != nil {
			return denied("create_user", actor, err)
		}

		if err := ensureEmailFree(tx, email, 0); err != nil {
			return err
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       models.ActionCreate,
			ResourceType: models.ResourceUser,
			ResourceID:   idPtr(user.ID),
			Details:      fmt.Sprintf("Created user: %s (%s)", user.Email, user.Role),
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user created", "user_id", user.ID, "by", actor.UserID)
	user.PasswordHash = ""
	return user, nil
}

// UpdateUser applies a partial update. Deactivation is the only way a user
// goes away.
func (s *UserService) UpdateUser(id uint, in UpdateUserInput, actor Actor) (*models.User, error) {
	var user *models.User
	var action models.AuditAction

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUser(forUpdate(tx), id, fmt.Sprintf("user with id %d not found", id))
		if err != nil {
			return err
		}

		actingUser, err := findUser(tx, actor.UserID, "user not found")
		if err != nil {
			return err
		}
		change := policy.UserChange{Role: in.Role != nil, IsActive: in.IsActive != nil}
		if err := policy.CanUpdateUser(policy.As(actingUser, actor.Role), id, change); err != nil {
			return denied("update_user", actor, err)
		}

		var changed []string
		wasActive := user.IsActive

		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if email == "" || !strings.Contains(email, "@") {
				return apperr.New(apperr.ErrInvalidInput, "a valid email is required")
			}
			if email != user.Email {
				if err := ensureEmailFree(tx, email, id); err != nil {
					return err
				}
				user.Email = email
				changed = append(changed, "email")
			}
		}
		if in.FirstName != nil {
			user.FirstName = strings.TrimSpace(*in.FirstName)
			changed = append(changed, "first_name")
		}
		if in.LastName != nil {
			user.LastName = strings.TrimSpace(*in.LastName)
			changed = append(changed, "last_name")
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return apperr.Newf(apperr.ErrInvalidInput, "invalid role %q", *in.Role)
			}
			user.Role = *in.Role
			changed = append(changed, "role")
		}
		if in.IsActive != nil {
			user.IsActive = *in.IsActive
			changed = append(changed, "is_active")
		}
		if in.Password != nil {
			if *in.Password == "" {
				return apperr.New(apperr.ErrInvalidInput, "password must not be empty")
			}
			hash, err := s.authService.HashPassword(*in.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
			changed = append(changed, "password")
		}

		if err := tx.Save(user).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		action = models.ActionUpdate
		details := fmt.Sprintf("Updated user %s: %s", user.Email, strings.Join(changed, ", "))
		if wasActive && !user.IsActive {
			action = models.ActionDeactivate
			details = fmt.Sprintf("Deactivated user: %s", user.Email)
		}

		return s.audit.Record(tx, AuditEntry{
			UserID:       actor.UserID,
			Action:       action,
			ResourceType: models.ResourceUser,
			ResourceID:   idPtr(user.ID),
			Details:      details,
			IPAddress:    actor.IPAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user updated", "user_id", user.ID, "action", action, "by", actor.UserID)
	user.PasswordHash = ""
	return user, nil
}

// ensureEmailFree fails with ErrDuplicateEmail when another user owns email.
func ensureEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	var existing models.User
	err := tx.Where("email = ? AND id <> ?", email, exceptID).First(&existing).Error
	if err == nil {
		return apperr.Newf(apperr.ErrDuplicateEmail, "email %s is already in use", email)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check email: %w", err)
}
