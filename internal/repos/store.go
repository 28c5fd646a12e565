package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type StoreRepo interface {
	Create(ctx context.Context, tx *gorm.DB, store *types.Store) (*types.Store, error)
	GetByID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*types.Store, error)
	ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Store, error)
	Update(ctx context.Context, tx *gorm.DB, store *types.Store) error
	Delete(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error
}

type storeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return &storeRepo{db: db, log: baseLog.With("repo", "StoreRepo")}
}

func (r *storeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *storeRepo) Create(ctx context.Context, tx *gorm.DB, store *types.Store) (*types.Store, error) {
	if err := r.conn(tx).WithContext(ctx).Create(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}

func (r *storeRepo) GetByID(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (*types.Store, error) {
	var store types.Store
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", storeID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepo) ListActive(ctx context.Context, tx *gorm.DB) ([]*types.Store, error) {
	var stores []*types.Store
	if err := r.conn(tx).WithContext(ctx).
		Where("active = ?", true).
		Order("created_at asc").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

func (r *storeRepo) Update(ctx context.Context, tx *gorm.DB, store *types.Store) error {
	return r.conn(tx).WithContext(ctx).Save(store).Error
}

func (r *storeRepo) Delete(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", storeID).
		Delete(&types.Store{}).Error
}
