package handler

import (
	"net/http"

	"croppo/internal/middleware"
	"croppo/internal/permission"
	"croppo/internal/service"
	"croppo/pkg/pagination"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Only Admin and Manager review the audit trail
	router.GET("/audit-logs", middleware.Authenticate(),
		middleware.RequireRole(permission.RoleAdmin, permission.RoleManager), h.ListEntries)
}

// ListEntries handles GET /audit-logs
// @Summary      List audit entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.AuditLog}
// @Failure      403    {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListEntries(c *gin.Context) {
	pg := pagination.Parse(c)

	entries, total, err := h.auditService.ListEntries(c.Request.Context(), pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   entries,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}
