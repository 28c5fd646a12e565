package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type CartRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, item *types.CartItem) (*types.CartItem, error)
	ListByUserAndStore(ctx context.Context, tx *gorm.DB, userID, storeID uuid.UUID) ([]*types.CartItem, error)
	DeleteItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID) error
	ClearForStore(ctx context.Context, tx *gorm.DB, userID, storeID uuid.UUID) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{db: db, log: baseLog.With("repo", "CartRepo")}
}

func (r *cartRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *cartRepo) Upsert(ctx context.Context, tx *gorm.DB, item *types.CartItem) (*types.CartItem, error) {
	conn := r.conn(tx).WithContext(ctx)
	var existing types.CartItem
	err := conn.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&existing).Error
	switch {
	case err == nil:
		existing.Quantity = item.Quantity
		if err := conn.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		if err := conn.Create(item).Error; err != nil {
			return nil, err
		}
		return item, nil
	default:
		return nil, err
	}
}

func (r *cartRepo) ListByUserAndStore(ctx context.Context, tx *gorm.DB, userID, storeID uuid.UUID) ([]*types.CartItem, error) {
	var items []*types.CartItem
	if err := r.conn(tx).WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepo) DeleteItem(ctx context.Context, tx *gorm.DB, userID, productID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&types.CartItem{}).Error
}

func (r *cartRepo) ClearForStore(ctx context.Context, tx *gorm.DB, userID, storeID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND store_id = ?", userID, storeID).
		Delete(&types.CartItem{}).Error
}
