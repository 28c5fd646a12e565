package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type StoreGrantRepo interface {
	Create(ctx context.Context, tx *gorm.DB, grant *types.StoreGrant) (*types.StoreGrant, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.StoreGrant, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StoreGrant, error)
	DeleteByStoreAndUsers(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, userIDs []uuid.UUID) error
	ReplaceForStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, grants []*types.StoreGrant) error
}

type storeGrantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreGrantRepo(db *gorm.DB, baseLog *logger.Logger) StoreGrantRepo {
	return &storeGrantRepo{db: db, log: baseLog.With("repo", "StoreGrantRepo")}
}

func (r *storeGrantRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *storeGrantRepo) Create(ctx context.Context, tx *gorm.DB, grant *types.StoreGrant) (*types.StoreGrant, error) {
	if err := r.conn(tx).WithContext(ctx).Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

func (r *storeGrantRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.StoreGrant, error) {
	var grants []*types.StoreGrant
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at asc").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *storeGrantRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StoreGrant, error) {
	var grants []*types.StoreGrant
	if err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *storeGrantRepo) DeleteByStoreAndUsers(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND user_id IN ?", storeID, userIDs).
		Delete(&types.StoreGrant{}).Error
}

// ReplaceForStore rewrites the store's grant rows to match the in-memory
// aggregate after a cascade (revocation or contract finalize).
func (r *storeGrantRepo) ReplaceForStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, grants []*types.StoreGrant) error {
	conn := r.conn(tx).WithContext(ctx)
	if err := conn.Where("store_id = ?", storeID).Delete(&types.StoreGrant{}).Error; err != nil {
		return err
	}
	if len(grants) == 0 {
		return nil
	}
	return conn.Create(&grants).Error
}
