package repository

import (
	"context"

	"croppo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarmRepository covers farms, fields and crops.
type FarmRepository interface {
	CreateFarm(ctx context.Context, farm *model.Farm) error
	FindFarmByID(ctx context.Context, id uuid.UUID) (*model.Farm, error)
	ListFarms(ctx context.Context, page, limit int) ([]model.Farm, int64, error)
	UpdateFarm(ctx context.Context, farm *model.Farm) error
	DeleteFarm(ctx context.Context, id uuid.UUID) error

	CreateField(ctx context.Context, field *model.Field) error
	FindFieldByID(ctx context.Context, id uuid.UUID) (*model.Field, error)
	ListFields(ctx context.Context, farmID *uuid.UUID, page, limit int) ([]model.Field, int64, error)
	UpdateField(ctx context.Context, field *model.Field) error
	DeleteField(ctx context.Context, id uuid.UUID) error

	CreateCrop(ctx context.Context, crop *model.Crop) error
	FindCropByID(ctx context.Context, id uuid.UUID) (*model.Crop, error)
	ListCrops(ctx context.Context, fieldID *uuid.UUID, page, limit int) ([]model.Crop, int64, error)
	UpdateCrop(ctx context.Context, crop *model.Crop) error
	DeleteCrop(ctx context.Context, id uuid.UUID) error
}

type farmRepository struct {
	db *gorm.DB
}

func NewFarmRepository(db *gorm.DB) FarmRepository {
	return &farmRepository{db: db}
}

func (r *farmRepository) CreateFarm(ctx context.Context, farm *model.Farm) error {
	return GetDB(ctx, r.db).Create(farm).Error
}

func (r *farmRepository) FindFarmByID(ctx context.Context, id uuid.UUID) (*model.Farm, error) {
	var farm model.Farm
	if err := GetDB(ctx, r.db).First(&farm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}

func (r *farmRepository) ListFarms(ctx context.Context, page, limit int) ([]model.Farm, int64, error) {
	var farms []model.Farm
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Farm{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&farms).Error; err != nil {
		return nil, 0, err
	}
	return farms, total, nil
}

func (r *farmRepository) UpdateFarm(ctx context.Context, farm *model.Farm) error {
	return GetDB(ctx, r.db).Save(farm).Error
}

func (r *farmRepository) DeleteFarm(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Farm{}).Error
}

func (r *farmRepository) CreateField(ctx context.Context, field *model.Field) error {
	return GetDB(ctx, r.db).Create(field).Error
}

func (r *farmRepository) FindFieldByID(ctx context.Context, id uuid.UUID) (*model.Field, error) {
	var field model.Field
	if err := GetDB(ctx, r.db).Preload("Farm").First(&field, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *farmRepository) ListFields(ctx context.Context, farmID *uuid.UUID, page, limit int) ([]model.Field, int64, error) {
	var fields []model.Field
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Field{})
	if farmID != nil {
		query = query.Where("farm_id = ?", *farmID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Farm").Order("name ASC").Offset(offset).Limit(limit)
	if farmID != nil {
		fetch = fetch.Where("farm_id = ?", *farmID)
	}
	if err := fetch.Find(&fields).Error; err != nil {
		return nil, 0, err
	}
	return fields, total, nil
}

func (r *farmRepository) UpdateField(ctx context.Context, field *model.Field) error {
	return GetDB(ctx, r.db).Save(field).Error
}

func (r *farmRepository) DeleteField(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Field{}).Error
}

func (r *farmRepository) CreateCrop(ctx context.Context, crop *model.Crop) error {
	return GetDB(ctx, r.db).Create(crop).Error
}

func (r *farmRepository) FindCropByID(ctx context.Context, id uuid.UUID) (*model.Crop, error) {
	var crop model.Crop
	if err := GetDB(ctx, r.db).Preload("Field").First(&crop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &crop, nil
}

func (r *farmRepository) ListCrops(ctx context.Context, fieldID *uuid.UUID, page, limit int) ([]model.Crop, int64, error) {
	var crops []model.Crop
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Crop{})
	if fieldID != nil {
		query = query.Where("field_id = ?", *fieldID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Preload("Field").Order("name ASC").Offset(offset).Limit(limit)
	if fieldID != nil {
		fetch = fetch.Where("field_id = ?", *fieldID)
	}
	if err := fetch.Find(&crops).Error; err != nil {
		return nil, 0, err
	}
	return crops, total, nil
}

func (r *farmRepository) UpdateCrop(ctx context.Context, crop *model.Crop) error {
	return GetDB(ctx, r.db).Save(crop).Error
}

func (r *farmRepository) DeleteCrop(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Crop{}).Error
}
