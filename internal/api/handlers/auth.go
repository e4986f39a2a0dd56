package handlers

import (
	"time"

	"fitcomp/internal/api/middleware"
	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type ImpersonateResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	services.AuthContext
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authService.Login(req.Email, req.Password, c.ClientIP())
	if err != nil {
		fail(c, err)
		return
	}
	if result == nil {
		c.JSON(401, gin.H{"error": "Invalid credentials"})
		return
	}

	c.JSON(200, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.User,
	})
}

// Logout ends the current session
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.authService.DeleteSession(session.Token); err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the current user and, while impersonating, who is behind it
func (h *AuthHandler) GetMe(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(200, gin.H{
		"user":            session.User,
		"impersonated_by": session.ImpersonatorID,
	})
}

// Impersonate starts a session as another user on behalf of an administrator
func (h *AuthHandler) Impersonate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	targetID, ok := parseID(c, "id")
	if !ok {
		return
	}

	authCtx, err := h.authService.Impersonate(targetID, actor.UserID, actor.IPAddress)
	if err != nil {
		fail(c, err)
		return
	}

	adminID := actor.UserID
	token, expiresAt, err := h.authService.IssueSession(*authCtx, &adminID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, ImpersonateResponse{
		Token:       token,
		ExpiresAt:   expiresAt,
		AuthContext: *authCtx,
	})
}
