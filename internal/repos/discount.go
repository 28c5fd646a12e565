package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type DiscountRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, record *types.DiscountRecord) (*types.DiscountRecord, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.DiscountRecord, error)
	DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, discountNo uint64) error
	DeleteByStoreAndNos(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, discountNos []uint64) error
}

type discountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiscountRepo(db *gorm.DB, baseLog *logger.Logger) DiscountRepo {
	return &discountRepo{db: db, log: baseLog.With("repo", "DiscountRepo")}
}

func (r *discountRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *discountRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.DiscountRecord) (*types.DiscountRecord, error) {
	conn := r.conn(tx).WithContext(ctx)
	var existing types.DiscountRecord
	err := conn.Where("store_id = ? AND discount_no = ?", record.StoreID, record.DiscountNo).First(&existing).Error
	switch {
	case err == nil:
		existing.Tree = record.Tree
		if err := conn.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		if err := conn.Create(record).Error; err != nil {
			return nil, err
		}
		return record, nil
	default:
		return nil, err
	}
}

func (r *discountRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.DiscountRecord, error) {
	var records []*types.DiscountRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("discount_no asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *discountRepo) DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, discountNo uint64) error {
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND discount_no = ?", storeID, discountNo).
		Delete(&types.DiscountRecord{}).Error
}

func (r *discountRepo) DeleteByStoreAndNos(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, discountNos []uint64) error {
	if len(discountNos) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND discount_no IN ?", storeID, discountNos).
		Delete(&types.DiscountRecord{}).Error
}
