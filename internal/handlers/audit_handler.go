package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/repository"
)

const defaultAuditLimit = 100

type AuditHandler struct {
	audit *repository.AuditLogRepository
}

func NewAuditHandler(a *repository.AuditLogRepository) *AuditHandler {
	return &AuditHandler{audit: a}
}

func (h *AuditHandler) List(c *gin.Context) {
	q := repository.AuditQuery{
		EditedAfterCloseOnly: c.Query("edited_after_close") == "true",
		EntityType:           c.Query("entity_type"),
		Limit:                defaultAuditLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		q.Limit = n
	}

	items, err := h.audit.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, "list audit log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
