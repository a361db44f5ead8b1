package repository

import (
	"context"

	"croppo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository handles inventory items and their movement records.
type InventoryRepository interface {
	CreateItem(ctx context.Context, item *model.InventoryItem) error
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	ListItems(ctx context.Context, category string, page, limit int) ([]model.InventoryItem, int64, error)
	UpdateItem(ctx context.Context, item *model.InventoryItem) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
	CreateMovement(ctx context.Context, mv *model.InventoryMovement) error
	ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.InventoryMovement, int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByIDForUpdate row-locks the item so concurrent deductions
// serialize on the database. sqlite has no FOR UPDATE and serializes
// writers anyway.
func (r *inventoryRepository) FindItemByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	db := GetDB(ctx, r.db)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item model.InventoryItem
	if err := db.First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) ListItems(ctx context.Context, category string, page, limit int) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.InventoryItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Order("name ASC").Offset(offset).Limit(limit)
	if category != "" {
		fetch = fetch.Where("category = ?", category)
	}
	if err := fetch.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) UpdateItem(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *inventoryRepository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryItem{}).Error
}

func (r *inventoryRepository) CreateMovement(ctx context.Context, mv *model.InventoryMovement) error {
	return GetDB(ctx, r.db).Create(mv).Error
}

func (r *inventoryRepository) ListMovements(ctx context.Context, itemID uuid.UUID, page, limit int) ([]model.InventoryMovement, int64, error) {
	var movements []model.InventoryMovement
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.InventoryMovement{}).Where("item_id = ?", itemID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("item_id = ?", itemID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
