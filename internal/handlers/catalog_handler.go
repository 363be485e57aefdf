package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
)

// CatalogHandler serves categories, credit cards and bank accounts.
type CatalogHandler struct {
	repos *repository.Repositories
}

func NewCatalogHandler(repos *repository.Repositories) *CatalogHandler {
	return &CatalogHandler{repos: repos}
}

// activeOnly is true unless ?include_inactive=true.
func activeOnly(c *gin.Context) bool {
	return c.Query("include_inactive") != "true"
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	items, err := h.repos.Categories.List(c.Request.Context(), activeOnly(c))
	if err != nil {
		respondError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var p struct {
		Name      string `json:"name"`
		Icon      string `json:"icon"`
		Color     string `json:"color"`
		SortOrder int    `json:"sort_order"`
	}
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Name) == "" {
		badPayload(c)
		return
	}
	cat := &models.Category{Name: strings.TrimSpace(p.Name), Icon: p.Icon, Color: p.Color, SortOrder: p.SortOrder}
	if err := h.repos.Categories.Create(c.Request.Context(), cat); err != nil {
		respondError(c, "create category", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p repository.CategoryPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	cat, err := h.repos.Categories.Update(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, "update category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.repos.Categories.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, "delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListCreditCards(c *gin.Context) {
	items, err := h.repos.CreditCards.List(c.Request.Context(), activeOnly(c))
	if err != nil {
		respondError(c, "list credit cards", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) CreateCreditCard(c *gin.Context) {
	var p struct {
		Name        string          `json:"name"`
		LastFour    *string         `json:"last_four"`
		TotalLimit  decimal.Decimal `json:"total_limit"`
		BudgetLimit decimal.Decimal `json:"budget_limit"`
	}
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Name) == "" {
		badPayload(c)
		return
	}
	if p.LastFour != nil && len(*p.LastFour) > 4 {
		badPayload(c)
		return
	}
	card := &models.CreditCard{Name: strings.TrimSpace(p.Name), LastFour: p.LastFour, TotalLimit: p.TotalLimit, BudgetLimit: p.BudgetLimit}
	if err := h.repos.CreditCards.Create(c.Request.Context(), card); err != nil {
		respondError(c, "create credit card", err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *CatalogHandler) UpdateCreditCard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p repository.CreditCardPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	card, err := h.repos.CreditCards.Update(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, "update credit card", err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *CatalogHandler) DeleteCreditCard(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.repos.CreditCards.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, "delete credit card", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ListBankAccounts(c *gin.Context) {
	items, err := h.repos.BankAccounts.List(c.Request.Context(), activeOnly(c))
	if err != nil {
		respondError(c, "list bank accounts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) CreateBankAccount(c *gin.Context) {
	var p struct {
		Name          string  `json:"name"`
		BankName      string  `json:"bank_name"`
		Agency        *string `json:"agency"`
		AccountNumber *string `json:"account_number"`
	}
	if err := c.ShouldBindJSON(&p); err != nil || strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.BankName) == "" {
		badPayload(c)
		return
	}
	acct := &models.BankAccount{Name: strings.TrimSpace(p.Name), BankName: strings.TrimSpace(p.BankName), Agency: p.Agency, AccountNumber: p.AccountNumber}
	if err := h.repos.BankAccounts.Create(c.Request.Context(), acct); err != nil {
		respondError(c, "create bank account", err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (h *CatalogHandler) UpdateBankAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var p repository.BankAccountPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		badPayload(c)
		return
	}
	acct, err := h.repos.BankAccounts.Update(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, "update bank account", err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (h *CatalogHandler) DeleteBankAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.repos.BankAccounts.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, "delete bank account", err)
		return
	}
	c.Status(http.StatusNoContent)
}
