package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/services/reporting"
)

type ReportHandler struct {
	service *reporting.Service
}

func NewReportHandler(s *reporting.Service) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) MonthReport(c *gin.Context) {
	id, ok := pathID(c, "monthId")
	if !ok {
		return
	}
	rep, err := h.service.MonthReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, "build report", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	id, ok := pathID(c, "monthId")
	if !ok {
		return
	}
	d, err := h.service.Dashboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, "load dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}
