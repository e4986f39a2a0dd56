package handlers

import (
	"fitcomp/internal/config"
	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  *services.UserService
	entryService *services.EntryService
}

func NewUserHandler(cfg *config.Config) *UserHandler {
	return &UserHandler{
		userService:  services.NewUserService(cfg),
		entryService: services.NewEntryService(),
	}
}

type CreateUserRequest struct {
	Email     string      `json:"email" binding:"required"`
	FirstName string      `json:"first_name" binding:"required"`
	LastName  string      `json:"last_name" binding:"required"`
	Role      models.Role `json:"role" binding:"required"`
	Password  string      `json:"password"`
	IsActive  *bool       `json:"is_active"`
}

type UpdateUserRequest struct {
	Email     *string      `json:"email"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"is_active"`
	Password  *string      `json:"password"`
}

// GetUsers returns all users
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers()
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"users": users})
}

// GetUser returns a specific user
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, user)
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Password:  req.Password,
		IsActive:  req.IsActive,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(201, user)
}

// UpdateUser updates a user
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateUser(id, services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  req.IsActive,
		Password:  req.Password,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, user)
}

// GetUserStats returns the entries recorded for a user that the caller may see
func (h *UserHandler) GetUserStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.entryService.GetUserStats(id, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"entries": toEntryResponses(entries)})
}
