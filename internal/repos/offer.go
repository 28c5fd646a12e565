package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type OfferRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, record *types.OfferRecord) (*types.OfferRecord, error)
	GetByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, offerNo uint64) (*types.OfferRecord, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.OfferRecord, error)
	ListByBuyer(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID) ([]*types.OfferRecord, error)
	DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, offerNo uint64) error
}

type offerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOfferRepo(db *gorm.DB, baseLog *logger.Logger) OfferRepo {
	return &offerRepo{db: db, log: baseLog.With("repo", "OfferRepo")}
}

func (r *offerRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *offerRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.OfferRecord) (*types.OfferRecord, error) {
	conn := r.conn(tx).WithContext(ctx)
	var existing types.OfferRecord
	err := conn.Where("store_id = ? AND offer_no = ?", record.StoreID, record.OfferNo).First(&existing).Error
	switch {
	case err == nil:
		existing.Price = record.Price
		existing.Quantity = record.Quantity
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

func (r *offerRepo) GetByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, offerNo uint64) (*types.OfferRecord, error) {
	var record types.OfferRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND offer_no = ?", storeID, offerNo).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *offerRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.OfferRecord, error) {
	var records []*types.OfferRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("offer_no asc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *offerRepo) ListByBuyer(ctx context.Context, tx *gorm.DB, buyerID uuid.UUID) ([]*types.OfferRecord, error) {
	var records []*types.OfferRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *offerRepo) DeleteByStoreAndNo(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, offerNo uint64) error {
	return r.conn(tx).WithContext(ctx).
		Where("store_id = ? AND offer_no = ?", storeID, offerNo).
		Delete(&types.OfferRecord{}).Error
}
