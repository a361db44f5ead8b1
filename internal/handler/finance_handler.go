package handler

import (
	"net/http"
	"time"

	"croppo/internal/middleware"
	"croppo/internal/permission"
	"croppo/internal/service"
	"croppo/pkg/pagination"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FinanceHandler struct {
	financeService service.FinanceService
}

func NewFinanceHandler(financeService service.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func (h *FinanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions", middleware.Authenticate())
	{
		transactions.GET("", middleware.RequirePermission(permission.ModuleFinancialTransactions, permission.ActionRead), h.ListTransactions)
		transactions.GET("/:id", middleware.RequirePermission(permission.ModuleFinancialTransactions, permission.ActionRead), h.GetTransaction)
		transactions.POST("", middleware.RequirePermission(permission.ModuleFinancialTransactions, permission.ActionCreate), h.CreateTransaction)
		transactions.DELETE("/:id", middleware.RequirePermission(permission.ModuleFinancialTransactions, permission.ActionDelete), h.DeleteTransaction)
	}

	budgets := router.Group("/budgets", middleware.Authenticate())
	{
		budgets.GET("", middleware.RequirePermission(permission.ModuleBudgeting, permission.ActionRead), h.ListBudgets)
		budgets.POST("", middleware.RequirePermission(permission.ModuleBudgeting, permission.ActionCreate), h.CreateBudget)
	}

	router.GET("/finance/summary", middleware.Authenticate(),
		middleware.RequirePermission(permission.ModuleFinancialTransactions, permission.ActionRead), h.Summary)
}

// CreateTransaction handles POST /transactions
// @Summary      Record a transaction
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTransactionRequest  true  "Transaction Payload"
// @Success      201      {object}  response.Response{data=model.Transaction}
// @Failure      403      {object}  response.Response
// @Router       /transactions [post]
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tx, err := h.financeService.CreateTransaction(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tx))
}

// ListTransactions handles GET /transactions
func (h *FinanceHandler) ListTransactions(c *gin.Context) {
	pg := pagination.Parse(c)

	transactions, total, err := h.financeService.ListTransactions(c.Request.Context(), c.Query("type"), pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   transactions,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// GetTransaction handles GET /transactions/:id
func (h *FinanceHandler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid transaction id"))
		return
	}

	tx, err := h.financeService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tx))
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid transaction id"))
		return
	}

	if err := h.financeService.DeleteTransaction(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "transaction deleted"}))
}

// CreateBudget handles POST /budgets
// @Summary      Create a budget
// @Tags         finance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateBudgetRequest  true  "Budget Payload"
// @Success      201      {object}  response.Response{data=model.Budget}
// @Router       /budgets [post]
func (h *FinanceHandler) CreateBudget(c *gin.Context) {
	var req service.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	budget, err := h.financeService.CreateBudget(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, budget))
}

// ListBudgets handles GET /budgets
func (h *FinanceHandler) ListBudgets(c *gin.Context) {
	pg := pagination.Parse(c)

	budgets, total, err := h.financeService.ListBudgets(c.Request.Context(), pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   budgets,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// Summary handles GET /finance/summary
// @Summary      Finance summary
// @Description  Aggregates income and expenses over the requested period. Defaults to the current month.
// @Tags         finance
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Period start (YYYY-MM-DD)"
// @Param        to    query     string  false  "Period end (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.FinanceSummary}
// @Router       /finance/summary [get]
func (h *FinanceHandler) Summary(c *gin.Context) {
	from, to := periodFromQuery(c)

	summary, err := h.financeService.Summary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// periodFromQuery parses from/to query params, defaulting to the current
// month.
func periodFromQuery(c *gin.Context) (time.Time, time.Time) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if raw := c.Query("from"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := c.Query("to"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			to = parsed
		}
	}
	return from, to
}
