package routes

import (
	"github.com/gin-gonic/gin"

	"household-budget-backend/internal/auth"
	handler "household-budget-backend/internal/handlers"
	"household-budget-backend/internal/middleware"
	"household-budget-backend/internal/models"
	"household-budget-backend/internal/repository"
	"household-budget-backend/internal/services/audit"
	"household-budget-backend/internal/services/budget"
	"household-budget-backend/internal/services/categorization"
	"household-budget-backend/internal/services/imports"
	"household-budget-backend/internal/services/reporting"
)

type Deps struct {
	Repos         *repository.Repositories
	Procedures    repository.Procedures
	Authenticator auth.Authenticator
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	recorder := audit.NewRecorder(d.Repos)

	budgetHandler := handler.NewBudgetHandler(budget.NewService(d.Repos, d.Procedures, recorder))
	txHandler := handler.NewTransactionHandler(categorization.NewService(d.Repos, recorder))
	reportHandler := handler.NewReportHandler(reporting.NewService(d.Repos))
	importHandler := handler.NewImportHandler(imports.NewService(d.Repos, recorder))
	catalogHandler := handler.NewCatalogHandler(d.Repos)
	profileHandler := handler.NewProfileHandler(d.Repos.Profiles)
	auditHandler := handler.NewAuditHandler(d.Repos.Audit)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := api.Group("")
	authed.Use(middleware.Identity(d.Authenticator))

	// Month lifecycle
	authed.GET("/budget/current", budgetHandler.Current)
	authed.POST("/budget/start", budgetHandler.Start)

	months := authed.Group("/budget-months")
	months.POST("", budgetHandler.CreateMonth)
	months.GET("", budgetHandler.ListMonths)
	months.GET("/:id/close-summary", budgetHandler.CloseSummary)
	months.POST("/:id/close", budgetHandler.Close)
	months.PUT("/:id/categories/:categoryId", budgetHandler.SetPlannedAmount)
	months.GET("/:id/fixed-expenses", budgetHandler.ListFixedExpenses)
	months.POST("/:id/fixed-expenses", budgetHandler.AddFixedExpense)

	authed.DELETE("/budget-categories/:id", budgetHandler.DeletePlan)

	fixed := authed.Group("/fixed-expenses")
	fixed.PUT("/:id", budgetHandler.UpdateFixedExpense)
	fixed.POST("/:id/paid", budgetHandler.SetFixedExpensePaid)
	fixed.DELETE("/:id", budgetHandler.DeleteFixedExpense)

	// Categorization inbox
	tx := authed.Group("/transactions")
	tx.GET("", txHandler.List)
	tx.GET("/stats", txHandler.Stats)
	tx.POST("", txHandler.Create)
	tx.POST("/:id/categorize", txHandler.Categorize)
	tx.POST("/:id/internal", txHandler.MarkInternal)
	tx.DELETE("/:id", txHandler.Delete)

	authed.GET("/reports/:monthId", reportHandler.MonthReport)
	authed.GET("/dashboard/:monthId", reportHandler.Dashboard)

	// Catalogs
	categories := authed.Group("/categories")
	{
		categories.GET("", catalogHandler.ListCategories)
		categories.POST("", catalogHandler.CreateCategory)
		categories.PUT("/:id", catalogHandler.UpdateCategory)
		categories.DELETE("/:id", catalogHandler.DeleteCategory)
	}
	cards := authed.Group("/credit-cards")
	{
		cards.GET("", catalogHandler.ListCreditCards)
		cards.POST("", catalogHandler.CreateCreditCard)
		cards.PUT("/:id", catalogHandler.UpdateCreditCard)
		cards.PUT("/:id/budget-limit", budgetHandler.SetCardBudgetLimit)
		cards.DELETE("/:id", catalogHandler.DeleteCreditCard)
	}
	accounts := authed.Group("/bank-accounts")
	{
		accounts.GET("", catalogHandler.ListBankAccounts)
		accounts.POST("", catalogHandler.CreateBankAccount)
		accounts.PUT("/:id", catalogHandler.UpdateBankAccount)
		accounts.DELETE("/:id", catalogHandler.DeleteBankAccount)
	}

	// Statement imports
	imp := authed.Group("/imports")
	imp.POST("", importHandler.Create)
	imp.POST("/upload", importHandler.Upload)
	imp.GET("/:id", importHandler.GetBatchProgress)

	authed.GET("/profile", profileHandler.Get)
	authed.PUT("/profile", profileHandler.Update)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRole(d.Procedures, models.RoleAdmin))
	admin.GET("/audit-log", auditHandler.List)
}
