package handlers

import (
	"strconv"

	"fitcomp/internal/services"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler() *AuditHandler {
	return &AuditHandler{auditService: services.NewAuditService()}
}

// GetAuditLogs returns a page of the audit trail, newest first
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid offset"})
		return
	}

	logs, err := h.auditService.List(limit, offset)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(200, gin.H{"audit_logs": logs})
}
