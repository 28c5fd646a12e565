package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type PurchaseRuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.PurchaseRuleRecord) (*types.PurchaseRuleRecord, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.PurchaseRuleRecord, error)
	DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, ruleNo uint64) error
}

type purchaseRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPurchaseRuleRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseRuleRepo {
	return &purchaseRuleRepo{db: db, log: baseLog.With("repo", "PurchaseRuleRepo")}
}

func (r *purchaseRuleRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *purchaseRuleRepo) Create(ctx context.Context, tx *gorm.DB, record *types.PurchaseRuleRecord) (*types.PurchaseRuleRecord, error) {
	if err := r.conn(tx).WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *purchaseRuleRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.PurchaseRuleRecord, error) {
	var records []*types.PurchaseRuleRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("rule_no asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *purchaseRuleRepo) DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, ruleNo uint64) error {
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND rule_no = ?", storeID, ruleNo).
		Delete(&types.PurchaseRuleRecord{}).Error
}
