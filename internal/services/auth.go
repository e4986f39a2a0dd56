package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fitcomp/internal/config"
	"fitcomp/internal/metrics"
	"fitcomp/internal/models"
	"fitcomp/internal/policy"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

const fallbackSecret = "fitcomp-default-secret-change-in-production"

// Claims are the JWT claims carried by a session token.
type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	cfg   *config.Config
	audit *AuditService
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg, audit: NewAuditService()}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	cost := s.cfg.Security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// Authenticate checks credentials and returns the user, or nil when the login
// is refused. Bad credentials are never an error. Refusals for a known
// account are written to the audit trail; an accepted login is audited by
// Login together with the session it opens.
func (s *AuthService) Authenticate(email, password, ipAddress string) (*models.User, error) {
	email = normalizeEmail(email)

	var user models.User
	if err := models.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	entry := AuditEntry{
		UserID:       user.ID,
		Action:       models.ActionLogin,
		ResourceType: models.ResourceUser,
		ResourceID:   idPtr(user.ID),
		IPAddress:    ipAddress,
	}

	if !user.IsActive {
		entry.Details = "Login attempt failed: account is inactive"
		s.recordLoginFailure(entry, "inactive")
		return nil, nil
	}

	if !s.VerifyPassword(user.PasswordHash, password) {
		entry.Details = "Login attempt failed: invalid credentials"
		s.recordLoginFailure(entry, "invalid_credentials")
		return nil, nil
	}

	return &user, nil
}

// LoginResult is a freshly opened session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Login authenticates and opens a session. The session row and the
// "Successful login" audit row commit together. A refused login returns nil
// with no error.
func (s *AuthService) Login(email, password, ipAddress string) (*LoginResult, error) {
	user, err := s.Authenticate(email, password, ipAddress)
	if err != nil || user == nil {
		return nil, err
	}

	result := &LoginResult{User: user}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		token, expiresAt, err := s.issueSession(tx, AuthContext{UserID: user.ID, Role: user.Role}, nil)
		if err != nil {
			return err
		}
		result.Token, result.ExpiresAt = token, expiresAt

		return s.audit.Record(tx, AuditEntry{
			UserID:       user.ID,
			Action:       models.ActionLogin,
			ResourceType: models.ResourceUser,
			ResourceID:   idPtr(user.ID),
			Details:      "Successful login",
			IPAddress:    ipAddress,
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	slog.Info("user logged in", "user_id", user.ID, "ip", ipAddress)
	return result, nil
}

// recordLoginFailure audits a refused login. A failed write is logged, not
// returned, so the caller still sees a plain refusal.
func (s *AuthService) recordLoginFailure(entry AuditEntry, reason string) {
	metrics.LoginAttempts.WithLabelValues(reason).Inc()
	if err := s.audit.Record(models.DB, entry); err != nil {
		slog.Error("failed to audit login attempt", "user_id", entry.UserID, "error", err)
	}
}

// Impersonate checks that adminID may assume targetID's identity, audits it
// and returns the target's auth context. Swapping the caller's session is
// left to the caller.
func (s *AuthService) Impersonate(targetID, adminID uint, ipAddress string) (*AuthContext, error) {
	actor := Actor{UserID: adminID, IPAddress: ipAddress}
	var result *AuthContext

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := findUser(tx, adminID, "administrator user not found")
		if err != nil {
			return err
		}
		actor.Role = admin.Role
		if err := policy.CanImpersonate(policy.Of(admin)); err != nil {
			return denied("impersonate", actor, err)
		}

		target, err := findUser(tx, targetID, "target user not found")
		if err != nil {
			return err
		}
		if err := policy.CanImpersonateTarget(policy.Of(admin), policy.Of(target)); err != nil {
			return denied("impersonate", actor, err)
		}

		if err := s.audit.Record(tx, AuditEntry{
			UserID:       admin.ID,
			Action:       models.ActionImpersonate,
			ResourceType: models.ResourceUser,
			ResourceID:   idPtr(target.ID),
			Details:      fmt.Sprintf("Administrator %s impersonated user %s", admin.Email, target.Email),
			IPAddress:    ipAddress,
		}); err != nil {
			return err
		}

		result = &AuthContext{UserID: target.ID, Role: target.Role}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user impersonated", "admin_id", adminID, "target_id", targetID)
	return result, nil
}

// IssueSession signs a token for who and stores the session row.
// impersonatorID is set when an administrator is acting as who.
func (s *AuthService) IssueSession(who AuthContext, impersonatorID *uint) (string, time.Time, error) {
	return s.issueSession(models.DB, who, impersonatorID)
}

func (s *AuthService) issueSession(db *gorm.DB, who AuthContext, impersonatorID *uint) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.TokenTTL())

	claims := Claims{
		UserID: who.UserID,
		Role:   who.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.JWT.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := createSession(db, who.UserID, tokenString, expiresAt, impersonatorID); err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken verifies the signature, issuer and expiry of a session token.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.JWT.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *AuthService) secret() []byte {
	if s.cfg.JWT.Secret == "" {
		return []byte(fallbackSecret)
	}
	return []byte(s.cfg.JWT.Secret)
}

// CreateDefaultUser creates the configured administrator if there are no users yet
func (s *AuthService) CreateDefaultUser() error {
	var count int64
	if err := models.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	def := s.cfg.DefaultUser
	if def.Email == "" || def.Password == "" {
		return errors.New("default user email and password are required")
	}

	hash, err := s.HashPassword(def.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        normalizeEmail(def.Email),
		FirstName:    def.FirstName,
		LastName:     def.LastName,
		PasswordHash: hash,
		Role:         models.RoleAdministrator,
		IsActive:     true,
	}
	if err := models.DB.Create(user).Error; err != nil {
		return err
	}

	slog.Info("created default administrator", "email", user.Email)
	return nil
}

// CreateSession creates a new session record
func (s *AuthService) CreateSession(userID uint, token string, expiresAt time.Time, impersonatorID *uint) error {
	return createSession(models.DB, userID, token, expiresAt, impersonatorID)
}

func createSession(db *gorm.DB, userID uint, token string, expiresAt time.Time, impersonatorID *uint) error {
	session := &models.Session{
		UserID:         userID,
		Token:          token,
		ExpiresAt:      expiresAt,
		ImpersonatorID: impersonatorID,
	}
	if err := db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves an unexpired session by token
func (s *AuthService) GetSession(token string) (*models.Session, error) {
	var session models.Session
	if err := models.DB.Where("token = ? AND expires_at > ?", token, time.Now()).Preload("User").First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession deletes a session
func (s *AuthService) DeleteSession(token string) error {
	return models.DB.Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteExpiredSessions removes expired sessions and returns how many went
func (s *AuthService) DeleteExpiredSessions() (int64, error) {
	result := models.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
