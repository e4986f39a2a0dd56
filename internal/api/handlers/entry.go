package handlers

import (
	"strconv"

	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EntryHandler struct {
	entryService *services.EntryService
}

func NewEntryHandler() *EntryHandler {
	return &EntryHandler{entryService: services.NewEntryService()}
}

// CreateEntryRequest takes value as a JSON number or numeric string.
type CreateEntryRequest struct {
	UserID uint             `json:"user_id" binding:"required"`
	Value  *decimal.Decimal `json:"value"`
	Unit   *string          `json:"unit"`
	Notes  *string          `json:"notes"`
}

type UpdateEntryRequest struct {
	Value *decimal.Decimal          `json:"value"`
	Unit  services.Nullable[string] `json:"unit"`
	Notes services.Nullable[string] `json:"notes"`
}

// GetEntries lists a competition's entries, optionally for one user. An
// unknown or deleted competition simply has no entries.
func (h *EntryHandler) GetEntries(c *gin.Context) {
	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var userID *uint
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid user_id"})
			return
		}
		uid := uint(id)
		userID = &uid
	}

	entries, err := h.entryService.GetCompetitionEntries(competitionID, userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"entries": toEntryResponses(entries)})
}

// CreateEntry records a value in a competition
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	competitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Value == nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": "value is required"})
		return
	}

	entry, err := h.entryService.CreateEntry(services.CreateEntryInput{
		CompetitionID: competitionID,
		UserID:        req.UserID,
		Value:         *req.Value,
		Unit:          req.Unit,
		Notes:         req.Notes,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(201, toEntryResponse(entry))
}

// UpdateEntry applies a partial update to an entry
func (h *EntryHandler) UpdateEntry(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.entryService.UpdateEntry(id, services.UpdateEntryInput{
		Value: req.Value,
		Unit:  req.Unit,
		Notes: req.Notes,
	}, actor)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, toEntryResponse(entry))
}
