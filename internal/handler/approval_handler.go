package handler

import (
	"net/http"
	"strconv"

	"croppo/internal/middleware"
	"croppo/internal/permission"
	"croppo/internal/service"
	"croppo/pkg/pagination"
	"croppo/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/approvals", middleware.Authenticate())
	{
		approvals.GET("", middleware.RequirePermission(permission.ModuleApprovalRequests, permission.ActionRead), h.ListApprovalRequests)
		approvals.GET("/mine", h.ListMyRequests)
		approvals.GET("/pending", middleware.RequireApprover(), h.ListPendingForApproval)
		approvals.POST("", middleware.RequirePermission(permission.ModuleApprovalRequests, permission.ActionCreate), h.CreateRequest)
		approvals.PUT("/:id/approve", middleware.RequireApprover(), h.ApproveRequest)
		approvals.PUT("/:id/reject", middleware.RequireApprover(), h.RejectRequest)
	}
}

// CreateRequest submits a new approval request
// @Summary      Create approval request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateApprovalRequestDTO  true  "Approval Request Payload"
// @Success      201      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /approvals [post]
func (h *ApprovalHandler) CreateRequest(c *gin.Context) {
	var req service.CreateApprovalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.CreateRequest(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListApprovalRequests returns approval requests, optionally filtered by status
// @Summary      List approval requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  response.Response{data=[]service.ApprovalRequestResponse}
// @Router       /approvals [get]
func (h *ApprovalHandler) ListApprovalRequests(c *gin.Context) {
	pg := pagination.Parse(c)

	filter := service.ApprovalFilter{
		Status: c.Query("status"),
		Page:   pg.Page,
		Limit:  pg.Limit,
	}

	approvals, total, err := h.approvalService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   approvals,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// ListMyRequests returns the requests raised by the current user
// @Summary      List own requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ApprovalRequestResponse}
// @Router       /approvals/mine [get]
func (h *ApprovalHandler) ListMyRequests(c *gin.Context) {
	approvals, err := h.approvalService.ListMyRequests(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// ListPendingForApproval returns pending requests the current user may decide.
// Requests raised by the user themselves are excluded.
// @Summary      Approval inbox
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ApprovalRequestResponse}
// @Failure      403  {object}  response.Response
// @Router       /approvals/pending [get]
func (h *ApprovalHandler) ListPendingForApproval(c *gin.Context) {
	approvals, err := h.approvalService.PendingForApproval(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// ApproveRequest approves a pending approval request
// @Summary      Approve a request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true   "Request ID"
// @Param        payload  body      service.DecideRequestDTO  false  "Optional approval comment"
// @Success      200      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /approvals/{id}/approve [put]
func (h *ApprovalHandler) ApproveRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	var req service.DecideRequestDTO
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		// Empty body is fine, the comment is optional
		req.Comment = ""
	}

	result, err := h.approvalService.ApproveRequest(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Comment)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectRequest rejects a pending approval request. A non-blank reason is
// required.
// @Summary      Reject a request
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "Request ID"
// @Param        payload  body      service.DecideRequestDTO  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /approvals/{id}/reject [put]
func (h *ApprovalHandler) RejectRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	var req service.DecideRequestDTO
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		req.Reason = ""
	}

	result, err := h.approvalService.RejectRequest(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Reason)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
