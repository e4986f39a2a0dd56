package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fitcomp/internal/api/middleware"
	"fitcomp/internal/apperr"
	"fitcomp/internal/models"
	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": fmt.Sprintf("Invalid %s", strings.ReplaceAll(name, "_", " "))})
		return 0, false
	}
	return uint(id), true
}

// actorOrAbort returns the authenticated caller or answers 401.
func actorOrAbort(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return services.Actor{}, false
	}
	return actor, true
}

// fail hands err to middleware.ErrorHandler for rendering.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Newf(apperr.ErrInvalidInput, "%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", field)
}

func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// entryResponse renders an entry with Value as a JSON number.
type entryResponse struct {
	ID            uint      `json:"id"`
	CompetitionID uint      `json:"competition_id"`
	UserID        uint      `json:"user_id"`
	Value         float64   `json:"value"`
	Unit          *string   `json:"unit"`
	Notes         *string   `json:"notes"`
	EnteredBy     uint      `json:"entered_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toEntryResponse(e *models.CompetitionEntry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		CompetitionID: e.CompetitionID,
		UserID:        e.UserID,
		Value:         e.Value.InexactFloat64(),
		Unit:          e.Unit,
		Notes:         e.Notes,
		EnteredBy:     e.EnteredBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toEntryResponses(entries []models.CompetitionEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryResponse(&entries[i]))
	}
	return out
}
