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
	"github.com/google/uuid"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	queueService     service.RequestQueueService
}

func NewInventoryHandler(inventoryService service.InventoryService, queueService service.RequestQueueService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, queueService: queueService}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/inventory", middleware.Authenticate())
	{
		items.GET("", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionRead), h.ListItems)
		items.GET("/low-stock", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionRead), h.ListLowStock)
		items.GET("/:id", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionRead), h.GetItem)
		items.GET("/:id/movements", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionRead), h.ListMovements)
		items.POST("", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionCreate), h.CreateItem)
		items.PUT("/:id", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionUpdate), h.UpdateItem)
		items.DELETE("/:id", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionDelete), h.DeleteItem)
		items.POST("/:id/deduct", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionUpdate), h.DeductStock)
		items.POST("/:id/restock", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionUpdate), h.RestockItem)
	}

	requests := router.Group("/stock-requests", middleware.Authenticate())
	{
		requests.GET("", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionRead), h.ListStockRequests)
		requests.POST("", h.EnqueueStockRequest)
		requests.PUT("/:id/accept", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionUpdate), h.AcceptStockRequest)
		requests.PUT("/:id/reject", middleware.RequirePermission(permission.ModuleInventoryManagement, permission.ActionUpdate), h.RejectStockRequest)
	}
}

// CreateItem handles POST /inventory
// @Summary      Create inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateItemRequest  true  "Item Payload"
// @Success      201      {object}  response.Response{data=model.InventoryItem}
// @Failure      403      {object}  response.Response
// @Router       /inventory [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.CreateItem(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListItems handles GET /inventory
// @Summary      List inventory items
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  response.Response{data=[]model.InventoryItem}
// @Router       /inventory [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	pg := pagination.Parse(c)

	items, total, err := h.inventoryService.ListItems(c.Request.Context(), c.Query("category"), pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   items,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// ListLowStock handles GET /inventory/low-stock
// @Summary      List items at or below their reorder threshold
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.InventoryItem}
// @Router       /inventory/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStockItems(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetItem handles GET /inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// UpdateItem handles PUT /inventory/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.UpdateItem(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem handles DELETE /inventory/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	if err := h.inventoryService.DeleteItem(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "item deleted"}))
}

// DeductStock handles POST /inventory/:id/deduct
// @Summary      Deduct stock
// @Description  Removes quantity from an item under a row lock and records the movement
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Item ID"
// @Param        payload  body      service.StockChangeRequest  true  "Deduction Payload"
// @Success      200      {object}  response.Response{data=model.InventoryItem}
// @Failure      400      {object}  response.Response
// @Router       /inventory/{id}/deduct [post]
func (h *InventoryHandler) DeductStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.StockChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.DeductStock(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// RestockItem handles POST /inventory/:id/restock
func (h *InventoryHandler) RestockItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.StockChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.inventoryService.RestockItem(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ListMovements handles GET /inventory/:id/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	pg := pagination.Parse(c)

	movements, total, err := h.inventoryService.ListMovements(c.Request.Context(), id, pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   movements,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// EnqueueStockRequest handles POST /stock-requests
// @Summary      Queue a stock deduction request
// @Tags         stock-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.EnqueueStockRequestDTO  true  "Stock Request Payload"
// @Success      201      {object}  response.Response{data=model.InventoryRequest}
// @Router       /stock-requests [post]
func (h *InventoryHandler) EnqueueStockRequest(c *gin.Context) {
	var req service.EnqueueStockRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.queueService.Enqueue(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListStockRequests handles GET /stock-requests
func (h *InventoryHandler) ListStockRequests(c *gin.Context) {
	requests, err := h.queueService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// AcceptStockRequest handles PUT /stock-requests/:id/accept
// @Summary      Accept a stock request
// @Description  Marks the request ACCEPTED and deducts the requested quantity from the referenced item.
// @Tags         stock-requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.InventoryRequest}
// @Failure      409  {object}  response.Response
// @Router       /stock-requests/{id}/accept [put]
func (h *InventoryHandler) AcceptStockRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	result, err := h.queueService.Accept(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// RejectStockRequest handles PUT /stock-requests/:id/reject
func (h *InventoryHandler) RejectStockRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request id"))
		return
	}

	result, err := h.queueService.Reject(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
