package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/services/budget"
)

type BudgetHandler struct {
	service *budget.Service
	now     func() time.Time
}

func NewBudgetHandler(s *budget.Service) *BudgetHandler {
	return &BudgetHandler{service: s, now: time.Now}
}

type periodPayload struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`
}

// Current returns the lifecycle view of the calendar month, or of
// ?year=&month= when given.
func (h *BudgetHandler) Current(c *gin.Context) {
	var q struct {
		Year  int `form:"year"`
		Month int `form:"month"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badPayload(c)
		return
	}

	var (
		view *budget.MonthView
		err  error
	)
	if q.Year != 0 || q.Month != 0 {
		view, err = h.service.MonthView(c.Request.Context(), q.Year, q.Month)
	} else {
		view, err = h.service.CurrentMonth(c.Request.Context(), h.now())
	}
	if err != nil {
		respondError(c, "load budget", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BudgetHandler) Start(c *gin.Context) {
	var p periodPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	m, err := h.service.StartMonth(c.Request.Context(), p.Year, p.Month)
	if err != nil {
		respondError(c, "start month", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "month started", "budget_month": m})
}

func (h *BudgetHandler) CreateMonth(c *gin.Context) {
	var p periodPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	m, err := h.service.CreateMonth(c.Request.Context(), p.Year, p.Month)
	if err != nil {
		respondError(c, "create month", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *BudgetHandler) ListMonths(c *gin.Context) {
	months, err := h.service.ListMonths(c.Request.Context())
	if err != nil {
		respondError(c, "list months", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": months})
}

func (h *BudgetHandler) CloseSummary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sum, err := h.service.CloseSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, "load close summary", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *BudgetHandler) Close(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	m, err := h.service.Close(c.Request.Context(), id, p.Confirm)
	if err != nil {
		respondError(c, "close month", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "month closed", "budget_month": m})
}

func (h *BudgetHandler) SetPlannedAmount(c *gin.Context) {
	monthID, ok := pathID(c, "id")
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	var p struct {
		PlannedAmount decimal.Decimal `json:"planned_amount"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	bc, err := h.service.SetPlannedAmount(c.Request.Context(), monthID, categoryID, p.PlannedAmount)
	if err != nil {
		respondError(c, "update planned amount", err)
		return
	}
	c.JSON(http.StatusOK, bc)
}

func (h *BudgetHandler) DeletePlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeletePlan(c.Request.Context(), id); err != nil {
		respondError(c, "delete budget category", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BudgetHandler) ListFixedExpenses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	bills, err := h.service.ListFixedExpenses(c.Request.Context(), id)
	if err != nil {
		respondError(c, "list fixed expenses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bills})
}

func (h *BudgetHandler) AddFixedExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in budget.FixedExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c)
		return
	}
	fe, err := h.service.AddFixedExpense(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, "add fixed expense", err)
		return
	}
	c.JSON(http.StatusCreated, fe)
}

func (h *BudgetHandler) UpdateFixedExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in budget.FixedExpenseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badPayload(c)
		return
	}
	fe, err := h.service.UpdateFixedExpense(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, "update fixed expense", err)
		return
	}
	c.JSON(http.StatusOK, fe)
}

func (h *BudgetHandler) SetFixedExpensePaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p struct {
		IsPaid bool `json:"is_paid"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	fe, err := h.service.SetFixedExpensePaid(c.Request.Context(), id, p.IsPaid)
	if err != nil {
		respondError(c, "update fixed expense", err)
		return
	}
	c.JSON(http.StatusOK, fe)
}

func (h *BudgetHandler) DeleteFixedExpense(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteFixedExpense(c.Request.Context(), id); err != nil {
		respondError(c, "delete fixed expense", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BudgetHandler) SetCardBudgetLimit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p struct {
		BudgetLimit decimal.Decimal `json:"budget_limit"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	card, err := h.service.SetCardBudgetLimit(c.Request.Context(), id, p.BudgetLimit)
	if err != nil {
		respondError(c, "update card budget limit", err)
		return
	}
	c.JSON(http.StatusOK, card)
}
