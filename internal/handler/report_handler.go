package handler

import (
	"net/http"

	"croppo/internal/middleware"
	"croppo/internal/permission"
	"croppo/internal/service"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports", middleware.Authenticate())
	{
		reports.GET("/activity", middleware.RequirePermission(permission.ModuleReports, permission.ActionRead), h.Activity)
		reports.GET("/transactions/export", middleware.RequirePermission(permission.ModuleReports, permission.ActionExport), h.ExportTransactions)
		reports.GET("/operations/export", middleware.RequirePermission(permission.ModuleReports, permission.ActionExport), h.ExportOperations)
	}
}

// Activity handles GET /reports/activity
// @Summary      Farm activity report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Period start (YYYY-MM-DD)"
// @Param        to    query     string  false  "Period end (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.ActivityReport}
// @Failure      403   {object}  response.Response
// @Router       /reports/activity [get]
func (h *ReportHandler) Activity(c *gin.Context) {
	from, to := periodFromQuery(c)

	report, err := h.reportService.Activity(c.Request.Context(), middleware.CurrentIdentity(c), from, to)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// ExportTransactions handles GET /reports/transactions/export
// @Summary      Export transactions as CSV
// @Tags         reports
// @Produce      text/csv
// @Security     BearerAuth
// @Param        type  query  string  false  "Filter by transaction type"
// @Success      200   {string}  string  "CSV payload"
// @Failure      403   {object}  response.Response
// @Router       /reports/transactions/export [get]
func (h *ReportHandler) ExportTransactions(c *gin.Context) {
	data, err := h.reportService.ExportTransactionsCSV(c.Request.Context(), middleware.CurrentIdentity(c), c.Query("type"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportOperations handles GET /reports/operations/export
func (h *ReportHandler) ExportOperations(c *gin.Context) {
	data, err := h.reportService.ExportOperationsCSV(c.Request.Context(), middleware.CurrentIdentity(c), c.Query("type"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="operations.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
