package repository

import (
	"context"

	"croppo/internal/model"

	"gorm.io/gorm"
)

// RequestQueueRepository stores the inventory request queue.
type RequestQueueRepository interface {
	Create(ctx context.Context, req *model.InventoryRequest) error
	FindByID(ctx context.Context, id int64) (*model.InventoryRequest, error)
	List(ctx context.Context, status string) ([]model.InventoryRequest, error)
	Update(ctx context.Context, req *model.InventoryRequest) error
}

type requestQueueRepository struct {
	db *gorm.DB
}

func NewRequestQueueRepository(db *gorm.DB) RequestQueueRepository {
	return &requestQueueRepository{db: db}
}

func (r *requestQueueRepository) Create(ctx context.Context, req *model.InventoryRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestQueueRepository) FindByID(ctx context.Context, id int64) (*model.InventoryRequest, error) {
	var req model.InventoryRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestQueueRepository) List(ctx context.Context, status string) ([]model.InventoryRequest, error) {
	var requests []model.InventoryRequest
	query := GetDB(ctx, r.db).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestQueueRepository) Update(ctx context.Context, req *model.InventoryRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
