package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type ContractRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, record *types.ContractRecord) (*types.ContractRecord, error)
	GetByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, contractNo uint64) (*types.ContractRecord, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.ContractRecord, error)
	DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, contractNo uint64) error
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return &contractRepo{db: db, log: baseLog.With("repo", "ContractRepo")}
}

func (r *contractRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *contractRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.ContractRecord) (*types.ContractRecord, error) {
	conn := r.conn(tx).WithContext(ctx)
	var existing types.ContractRecord
	err := conn.Where("store_id = ? AND contract_no = ?", record.StoreID, record.ContractNo).First(&existing).Error
	switch {
	case err == nil:
		existing.Terms = record.Terms
		existing.Status = record.Status
		existing.Approvers = record.Approvers
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

func (r *contractRepo) GetByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, contractNo uint64) (*types.ContractRecord, error) {
	var record types.ContractRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND contract_no = ?", storeID, contractNo).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *contractRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.ContractRecord, error) {
	var records []*types.ContractRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("contract_no asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *contractRepo) DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, contractNo uint64) error {
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND contract_no = ?", storeID, contractNo).
		Delete(&types.ContractRecord{}).Error
}
