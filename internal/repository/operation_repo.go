package repository

import (
	"context"

	"croppo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OperationRepository stores field operation records.
type OperationRepository interface {
	Create(ctx context.Context, op *model.Operation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Operation, error)
	List(ctx context.Context, opType string, fieldID *uuid.UUID, page, limit int) ([]model.Operation, int64, error)
	Update(ctx context.Context, op *model.Operation) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context) (map[string]int64, error)
}

type operationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &operationRepository{db: db}
}

func (r *operationRepository) Create(ctx context.Context, op *model.Operation) error {
	return GetDB(ctx, r.db).Create(op).Error
}

func (r *operationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Operation, error) {
	var op model.Operation
	if err := GetDB(ctx, r.db).Preload("Field").Preload("Crop").First(&op, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operationRepository) List(ctx context.Context, opType string, fieldID *uuid.UUID, page, limit int) ([]model.Operation, int64, error) {
	var ops []model.Operation
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if opType != "" {
			q = q.Where("type = ?", opType)
		}
		if fieldID != nil {
			q = q.Where("field_id = ?", *fieldID)
		}
		return q
	}

	if err := apply(db.Model(&model.Operation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Preload("Field").Preload("Crop")).
		Order("date DESC").Offset(offset).Limit(limit).Find(&ops).Error; err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}

func (r *operationRepository) Update(ctx context.Context, op *model.Operation) error {
	return GetDB(ctx, r.db).Save(op).Error
}

func (r *operationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Operation{}).Error
}

func (r *operationRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Type  string
		Count int64
	}
	var rows []row
	if err := GetDB(ctx, r.db).Model(&model.Operation{}).
		Select("type, count(*) as count").Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Type] = rr.Count
	}
	return counts, nil
}
