package service

import (
	"context"
	"errors"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	"croppo/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateFarmRequest struct {
	Name     string  `json:"name" binding:"required"`
	Area     float64 `json:"area" binding:"required,gt=0"`
	Location string  `json:"location"`
}

type CreateFieldRequest struct {
	Name         string    `json:"name" binding:"required"`
	FarmID       uuid.UUID `json:"farm_id" binding:"required"`
	Area         float64   `json:"area" binding:"required,gt=0"`
	SoilType     string    `json:"soil_type"`
	GPSLatitude  *float64  `json:"gps_latitude"`
	GPSLongitude *float64  `json:"gps_longitude"`
}

type CreateCropRequest struct {
	Name                string     `json:"name" binding:"required"`
	Variety             string     `json:"variety"`
	FieldID             uuid.UUID  `json:"field_id" binding:"required"`
	PlantingDate        *time.Time `json:"planting_date"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date"`
	GrowthStage         string     `json:"growth_stage"`
}

type UpdateCropRequest struct {
	Variety             string     `json:"variety"`
	ExpectedHarvestDate *time.Time `json:"expected_harvest_date"`
	GrowthStage         string     `json:"growth_stage"`
}

// FarmService manages the farm, field, and crop hierarchy.
type FarmService interface {
	CreateFarm(ctx context.Context, actor *permission.Identity, req CreateFarmRequest) (*model.Farm, error)
	GetFarm(ctx context.Context, id uuid.UUID) (*model.Farm, error)
	ListFarms(ctx context.Context, page, limit int) ([]model.Farm, int64, error)

	CreateField(ctx context.Context, actor *permission.Identity, req CreateFieldRequest) (*model.Field, error)
	GetField(ctx context.Context, id uuid.UUID) (*model.Field, error)
	ListFields(ctx context.Context, farmID *uuid.UUID, page, limit int) ([]model.Field, int64, error)
	DeleteField(ctx context.Context, actor *permission.Identity, id uuid.UUID) error

	CreateCrop(ctx context.Context, actor *permission.Identity, req CreateCropRequest) (*model.Crop, error)
	GetCrop(ctx context.Context, id uuid.UUID) (*model.Crop, error)
	ListCrops(ctx context.Context, fieldID *uuid.UUID, page, limit int) ([]model.Crop, int64, error)
	UpdateCrop(ctx context.Context, actor *permission.Identity, id uuid.UUID, req UpdateCropRequest) (*model.Crop, error)
}

type farmService struct {
	repo repository.FarmRepository
}

func NewFarmService(repo repository.FarmRepository) FarmService {
	return &farmService{repo: repo}
}

func (s *farmService) CreateFarm(ctx context.Context, actor *permission.Identity, req CreateFarmRequest) (*model.Farm, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFarmSettings, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_FARM_DENIED", "role %s cannot create farms", actorRole(actor))
	}

	farm := &model.Farm{
		Name:     req.Name,
		Area:     req.Area,
		Location: req.Location,
	}
	if err := s.repo.CreateFarm(ctx, farm); err != nil {
		return nil, err
	}
	return farm, nil
}

func (s *farmService) GetFarm(ctx context.Context, id uuid.UUID) (*model.Farm, error) {
	farm, err := s.repo.FindFarmByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FARM_NOT_FOUND", "farm %s not found", id)
		}
		return nil, err
	}
	return farm, nil
}

func (s *farmService) ListFarms(ctx context.Context, page, limit int) ([]model.Farm, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListFarms(ctx, page, limit)
}

func (s *farmService) CreateField(ctx context.Context, actor *permission.Identity, req CreateFieldRequest) (*model.Field, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFieldsAndCrops, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_FIELD_DENIED", "role %s cannot create fields", actorRole(actor))
	}

	if _, err := s.repo.FindFarmByID(ctx, req.FarmID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FARM_NOT_FOUND", "farm %s not found", req.FarmID)
		}
		return nil, err
	}

	field := &model.Field{
		Name:         req.Name,
		FarmID:       req.FarmID,
		Area:         req.Area,
		SoilType:     req.SoilType,
		GPSLatitude:  req.GPSLatitude,
		GPSLongitude: req.GPSLongitude,
	}
	if err := s.repo.CreateField(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *farmService) GetField(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	field, err := s.repo.FindFieldByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FIELD_NOT_FOUND", "field %s not found", id)
		}
		return nil, err
	}
	return field, nil
}

func (s *farmService) ListFields(ctx context.Context, farmID *uuid.UUID, page, limit int) ([]model.Field, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListFields(ctx, farmID, page, limit)
}

func (s *farmService) DeleteField(ctx context.Context, actor *permission.Identity, id uuid.UUID) error {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFieldsAndCrops, permission.ActionDelete) {
		return apperr.Permission("DELETE_FIELD_DENIED", "role %s cannot delete fields", actorRole(actor))
	}
	if _, err := s.repo.FindFieldByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("FIELD_NOT_FOUND", "field %s not found", id)
		}
		return err
	}
	return s.repo.DeleteField(ctx, id)
}

func (s *farmService) CreateCrop(ctx context.Context, actor *permission.Identity, req CreateCropRequest) (*model.Crop, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFieldsAndCrops, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_CROP_DENIED", "role %s cannot create crops", actorRole(actor))
	}

	if _, err := s.repo.FindFieldByID(ctx, req.FieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("FIELD_NOT_FOUND", "field %s not found", req.FieldID)
		}
		return nil, err
	}

	stage := req.GrowthStage
	if stage == "" {
		stage = model.GrowthStageSeedling
	}

	crop := &model.Crop{
		Name:                req.Name,
		Variety:             req.Variety,
		FieldID:             req.FieldID,
		PlantingDate:        req.PlantingDate,
		ExpectedHarvestDate: req.ExpectedHarvestDate,
		GrowthStage:         stage,
	}
	if err := s.repo.CreateCrop(ctx, crop); err != nil {
		return nil, err
	}
	return crop, nil
}

func (s *farmService) GetCrop(ctx context.Context, id uuid.UUID) (*model.Crop, error) {
	crop, err := s.repo.FindCropByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CROP_NOT_FOUND", "crop %s not found", id)
		}
		return nil, err
	}
	return crop, nil
}

func (s *farmService) ListCrops(ctx context.Context, fieldID *uuid.UUID, page, limit int) ([]model.Crop, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListCrops(ctx, fieldID, page, limit)
}

func (s *farmService) UpdateCrop(ctx context.Context, actor *permission.Identity, id uuid.UUID, req UpdateCropRequest) (*model.Crop, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleFieldsAndCrops, permission.ActionUpdate) {
		return nil, apperr.Permission("UPDATE_CROP_DENIED", "role %s cannot update crops", actorRole(actor))
	}

	crop, err := s.repo.FindCropByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("CROP_NOT_FOUND", "crop %s not found", id)
		}
		return nil, err
	}

	if req.Variety != "" {
		crop.Variety = req.Variety
	}
	if req.ExpectedHarvestDate != nil {
		crop.ExpectedHarvestDate = req.ExpectedHarvestDate
	}
	if req.GrowthStage != "" {
		crop.GrowthStage = req.GrowthStage
	}

	if err := s.repo.UpdateCrop(ctx, crop); err != nil {
		return nil, err
	}
	return crop, nil
}
