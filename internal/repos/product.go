package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type ProductRepo interface {
	Create(ctx context.Context, tx *gorm.DB, product *types.Product) (*types.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error)
	ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.Product, error)
	Update(ctx context.Context, tx *gorm.DB, product *types.Product) error
	Delete(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error
	AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (r *productRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepo) Create(ctx context.Context, tx *gorm.DB, product *types.Product) (*types.Product, error) {
	if err := r.conn(tx).WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) GetByID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*types.Product, error) {
	var product types.Product
	if err := r.conn(tx).WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, tx *gorm.DB, productIDs []uuid.UUID) ([]*types.Product, error) {
	var products []*types.Product
	if len(productIDs) == 0 {
		return products, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) ([]*types.Product, error) {
	var products []*types.Product
	if err := r.conn(tx).WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at asc").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, tx *gorm.DB, product *types.Product) error {
	return r.conn(tx).WithContext(ctx).Save(product).Error
}

func (r *productRepo) Delete(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("id = ?", productID).
		Delete(&types.Product{}).Error
}

func (r *productRepo) AdjustStock(ctx context.Context, tx *gorm.DB, productID uuid.UUID, delta int) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}
