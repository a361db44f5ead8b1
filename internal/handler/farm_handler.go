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

type FarmHandler struct {
	farmService service.FarmService
}

func NewFarmHandler(farmService service.FarmService) *FarmHandler {
	return &FarmHandler{farmService: farmService}
}

func (h *FarmHandler) RegisterRoutes(router *gin.RouterGroup) {
	farms := router.Group("/farms", middleware.Authenticate())
	{
		farms.GET("", middleware.RequirePermission(permission.ModuleFarmSettings, permission.ActionRead), h.ListFarms)
		farms.GET("/:id", middleware.RequirePermission(permission.ModuleFarmSettings, permission.ActionRead), h.GetFarm)
		farms.POST("", middleware.RequirePermission(permission.ModuleFarmSettings, permission.ActionCreate), h.CreateFarm)
	}

	fields := router.Group("/fields", middleware.Authenticate())
	{
		fields.GET("", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionRead), h.ListFields)
		fields.GET("/:id", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionRead), h.GetField)
		fields.POST("", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionCreate), h.CreateField)
		fields.DELETE("/:id", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionDelete), h.DeleteField)
	}

	crops := router.Group("/crops", middleware.Authenticate())
	{
		crops.GET("", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionRead), h.ListCrops)
		crops.GET("/:id", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionRead), h.GetCrop)
		crops.POST("", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionCreate), h.CreateCrop)
		crops.PUT("/:id", middleware.RequirePermission(permission.ModuleFieldsAndCrops, permission.ActionUpdate), h.UpdateCrop)
	}
}

// CreateFarm handles POST /farms
// @Summary      Create a farm
// @Tags         farms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateFarmRequest  true  "Farm Payload"
// @Success      201      {object}  response.Response{data=model.Farm}
// @Router       /farms [post]
func (h *FarmHandler) CreateFarm(c *gin.Context) {
	var req service.CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	farm, err := h.farmService.CreateFarm(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, farm))
}

// ListFarms handles GET /farms
func (h *FarmHandler) ListFarms(c *gin.Context) {
	pg := pagination.Parse(c)

	farms, total, err := h.farmService.ListFarms(c.Request.Context(), pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   farms,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// GetFarm handles GET /farms/:id
func (h *FarmHandler) GetFarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid farm id"))
		return
	}

	farm, err := h.farmService.GetFarm(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, farm))
}

// CreateField handles POST /fields
func (h *FarmHandler) CreateField(c *gin.Context) {
	var req service.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	field, err := h.farmService.CreateField(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, field))
}

// ListFields handles GET /fields, optionally filtered by farm
func (h *FarmHandler) ListFields(c *gin.Context) {
	pg := pagination.Parse(c)

	var farmID *uuid.UUID
	if raw := c.Query("farm_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid farm_id filter"))
			return
		}
		farmID = &parsed
	}

	fields, total, err := h.farmService.ListFields(c.Request.Context(), farmID, pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   fields,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// GetField handles GET /fields/:id
func (h *FarmHandler) GetField(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid field id"))
		return
	}

	field, err := h.farmService.GetField(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, field))
}

// DeleteField handles DELETE /fields/:id
func (h *FarmHandler) DeleteField(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid field id"))
		return
	}

	if err := h.farmService.DeleteField(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "field deleted"}))
}

// CreateCrop handles POST /crops
func (h *FarmHandler) CreateCrop(c *gin.Context) {
	var req service.CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	crop, err := h.farmService.CreateCrop(c.Request.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, crop))
}

// ListCrops handles GET /crops, optionally filtered by field
func (h *FarmHandler) ListCrops(c *gin.Context) {
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

	crops, total, err := h.farmService.ListCrops(c.Request.Context(), fieldID, pg.Page, pg.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   crops,
		"total":  total,
		"page":   pg.Page,
		"limit":  pg.Limit,
	})
}

// GetCrop handles GET /crops/:id
func (h *FarmHandler) GetCrop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid crop id"))
		return
	}

	crop, err := h.farmService.GetCrop(c.Request.Context(), id)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, crop))
}

// UpdateCrop handles PUT /crops/:id
func (h *FarmHandler) UpdateCrop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid crop id"))
		return
	}

	var req service.UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	crop, err := h.farmService.UpdateCrop(c.Request.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, crop))
}
