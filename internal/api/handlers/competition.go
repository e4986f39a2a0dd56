package handlers

import (
	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

type CompetitionHandler struct {
	competitionService *services.CompetitionService
}

func NewCompetitionHandler() *CompetitionHandler {
	return &CompetitionHandler{competitionService: services.NewCompetitionService()}
}

type CreateCompetitionRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Description     *string                `json:"description"`
	Type            models.CompetitionType `json:"type" binding:"required"`
	DataEntryMethod models.DataEntryMethod `json:"data_entry_method" binding:"required"`
	StartDate       string                 `json:"start_date" binding:"required"`
	EndDate         string                 `json:"end_date" binding:"required"`
	AssignedTo      *uint                  `json:"assigned_to"`
}

type UpdateCompetitionRequest struct {
	Name            *string                   `json:"name"`
	Description     services.Nullable[string] `json:"description"`
	Type            *models.CompetitionType   `json:"type"`
	DataEntryMethod *models.DataEntryMethod   `json:"data_entry_method"`
	Status          *models.CompetitionStatus `json:"status"`
	StartDate       *string                   `json:"start_date"`
	EndDate         *string                   `json:"end_date"`
	AssignedTo      services.Nullable[uint]   `json:"assigned_to"`
}

// GetCompetitions lists the competitions the caller may see
func (h *CompetitionHandler) GetCompetitions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	comps, err := h.competitionService.GetCompetitions(actor.UserID, actor.Role)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"competitions": comps})
}

// GetCompetition returns one competition
func (h *CompetitionHandler) GetCompetition(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comp, err := h.competitionService.GetCompetition(id, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, comp)
}

// CreateCompetition creates a competition owned by the caller
func (h *CompetitionHandler) CreateCompetition(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		fail(c, err)
		return
	}

	comp, err := h.competitionService.CreateCompetition(services.CreateCompetitionInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		DataEntryMethod: req.DataEntryMethod,
		StartDate:       start,
		EndDate:         end,
		AssignedTo:      req.AssignedTo,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(201, comp)
}

// UpdateCompetition applies a partial update
func (h *CompetitionHandler) UpdateCompetition(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		fail(c, err)
		return
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		fail(c, err)
		return
	}

	comp, err := h.competitionService.UpdateCompetition(id, services.UpdateCompetitionInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		DataEntryMethod: req.DataEntryMethod,
		Status:          req.Status,
		StartDate:       start,
		EndDate:         end,
		AssignedTo:      req.AssignedTo,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, comp)
}

// DeleteCompetition removes a competition and its entries
func (h *CompetitionHandler) DeleteCompetition(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	success, err := h.competitionService.DeleteCompetition(id, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"success": success})
}
