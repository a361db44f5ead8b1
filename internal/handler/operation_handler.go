package handler

import (
	"net/http"

	"croppo/internal/middleware"
	"croppo/internal/permission"
	"croppo/internal/service"
	"croppo/pkg/pagination"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OperationHandler struct {
	operationService service.OperationService
}

func NewOperationHandler(operationService service.OperationService) *OperationHandler {
	return &OperationHandler{operationService: operationService}
}

func (h *OperationHandler) RegisterRoutes(router *gin.RouterGroup) {
	operations := router.Group("/operations", middleware.Authenticate())
	{
		operations.GET("", middleware.RequirePermission(permission.ModuleOperations, permission.ActionRead), h.ListOperations)
		operations.GET("/:id", middleware.RequirePermission(permission.ModuleOperations, permission.ActionRead), h.GetOperation)
		operations.POST("", middleware.RequirePermission(permission.ModuleOperations, permission.ActionCreate), h.CreateOperation)
		operations.DELETE("/:id", middleware.RequirePermission(permission.ModuleOperations, permission.ActionDelete), h.DeleteOperation)
	}

	// Plan submission checks the per-type plan module inside the service, so
	// the route itself only requires authentication.
	router.POST("/plans", middleware.Authenticate(), h.SubmitPlan)
}

// CreateOperation handles POST /operations
// @Summary      Record a field operation
// @Tags         operations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOperationRequest  true  "Operation Payload"
// @Success      201      {object}  response.Response{data=model.Operation}
// @Failure      403      {object}  response.Response
// @Router       /operations [post]
func (h *OperationHandler) CreateOperation(c *gin.Context) {
	var req service.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	op, err := h.operationService.CreateOperation(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, op))
}

// ListOperations handles GET /operations
// @Summary      List operations
// @Tags         operations
// @Produce      json
// @Security     BearerAuth
// @Param        type      query     string  false  "Filter by operation type"
// @Param        field_id  query     string  false  "Filter by field"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response{data=[]model.Operation}
// @Router       /operations [get]
func (h *OperationHandler) ListOperations(c *gin.Context) {
	pg := pagination.Parse(c)

	var fieldID *uuid.UUID
	if raw := c.Query("field_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid field_id filter"))
			return
		}
		fieldID = &parsed
	}

	operations, total, err := h.operationService.ListOperations(c.Request.Context(), c.Query("type"), fieldID, pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   operations,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// GetOperation handles GET /operations/:id
func (h *OperationHandler) GetOperation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid operation id"))
		return
	}

	op, err := h.operationService.GetOperation(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, op))
}

// DeleteOperation handles DELETE /operations/:id
func (h *OperationHandler) DeleteOperation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid operation id"))
		return
	}

	if err := h.operationService.DeleteOperation(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "operation deleted"}))
}

// SubmitPlan handles POST /plans
// @Summary      Submit an operational plan
// @Description  Routes the plan either into the approval workflow or straight to a confirmed operation, depending on the submitter's role.
// @Tags         operations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitPlanRequest  true  "Plan Payload"
// @Success      201      {object}  response.Response{data=service.SubmitPlanResult}
// @Failure      403      {object}  response.Response
// @Router       /plans [post]
func (h *OperationHandler) SubmitPlan(c *gin.Context) {
	var req service.SubmitPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.operationService.SubmitPlan(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}
