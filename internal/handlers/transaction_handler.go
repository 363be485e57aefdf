package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"household-budget-backend/internal/models"
	"household-budget-backend/internal/services/categorization"
)

const maxListLimit = 500

type TransactionHandler struct {
	service *categorization.Service
}

func NewTransactionHandler(s *categorization.Service) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func (h *TransactionHandler) List(c *gin.Context) {
	monthID, ok := queryID(c, "budget_month_id")
	if !ok {
		return
	}
	filter, err := categorization.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}
	if limit == 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := h.service.List(c.Request.Context(), categorization.Query{BudgetMonthID: monthID, Filter: filter, Limit: limit})
	if err != nil {
		respondError(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "filter": filter})
}

func (h *TransactionHandler) Stats(c *gin.Context) {
	monthID, ok := queryID(c, "budget_month_id")
	if !ok {
		return
	}
	stats, err := h.service.InboxStats(c.Request.Context(), monthID)
	if err != nil {
		respondError(c, "load transaction stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TransactionHandler) Create(c *gin.Context) {
	var in categorization.ManualInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c)
		return
	}
	tx, err := h.service.CreateManual(c.Request.Context(), in)
	if err != nil {
		respondError(c, "create transaction", err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *TransactionHandler) Categorize(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p struct {
		CategoryID string            `json:"category_id"`
		Confidence models.Confidence `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	categoryID, err := uuid.Parse(p.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category ID"})
		return
	}

	tx, err := h.service.Categorize(c.Request.Context(), id, categoryID, p.Confidence)
	if err != nil {
		respondError(c, "categorize transaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction categorized", "transaction": tx})
}

func (h *TransactionHandler) MarkInternal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tx, err := h.service.MarkInternal(c.Request.Context(), id)
	if err != nil {
		respondError(c, "mark transaction internal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "transaction marked as internal", "transaction": tx})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "delete transaction", err)
		return
	}
	c.Status(http.StatusNoContent)
}
