package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type ProductService interface {
	CreateProduct(ctx context.Context, actorID uuid.UUID, product *types.Product) (*types.Product, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*types.Product, error)
	ListProducts(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error)
	UpdateProduct(ctx context.Context, actorID uuid.UUID, product *types.Product) error
	DeleteProduct(ctx context.Context, actorID, productID uuid.UUID) error
	AdjustStock(ctx context.Context, actorID, productID uuid.UUID, delta int) error
	UploadProductImage(ctx context.Context, actorID, productID uuid.UUID, image io.Reader) (*types.Product, error)
}

type productService struct {
	db           *gorm.DB
	log          *logger.Logger
	registry     StoreRegistry
	productRepo  repos.ProductRepo
	discountRepo repos.DiscountRepo
	bucket       BucketService
}

func NewProductService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	productRepo repos.ProductRepo,
	discountRepo repos.DiscountRepo,
	bucket BucketService,
) ProductService {
	return &productService{
		db:           db,
		log:          log.With("service", "ProductService"),
		registry:     registry,
		productRepo:  productRepo,
		discountRepo: discountRepo,
		bucket:       bucket,
	}
}

const (
	opCreateProduct = "product.CreateProduct"
	opUpdateProduct = "product.UpdateProduct"
	opDeleteProduct = "product.DeleteProduct"
	opAdjustStock   = "product.AdjustStock"
	opUploadImage   = "product.UploadProductImage"
)

func (ps *productService) requireManageStorage(ctx context.Context, storeID, actorID uuid.UUID, op string) error {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	if !agg.Capabilities(actorID).Has(permission.CapManageStorage) {
		return domainerr.New(domainerr.CodeForbidden, op, "actor lacks manage-storage capability")
	}
	return nil
}

func (ps *productService) CreateProduct(ctx context.Context, actorID uuid.UUID, product *types.Product) (*types.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, domainerr.New(domainerr.CodeValidation, opCreateProduct, "product name required")
	}
	if product.Price < 0 {
		return nil, domainerr.Newf(domainerr.CodeValidation, opCreateProduct, "price %v cannot be negative", product.Price)
	}
	if product.Stock < 0 {
		return nil, domainerr.Newf(domainerr.CodeValidation, opCreateProduct, "stock %d cannot be negative", product.Stock)
	}
	if err := ps.requireManageStorage(ctx, product.StoreID, actorID, opCreateProduct); err != nil {
		return nil, err
	}
	product.ID = uuid.New()
	if _, err := ps.productRepo.Create(ctx, nil, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (ps *productService) GetProduct(ctx context.Context, productID uuid.UUID) (*types.Product, error) {
	return ps.productRepo.GetByID(ctx, nil, productID)
}

func (ps *productService) ListProducts(ctx context.Context, storeID uuid.UUID) ([]*types.Product, error) {
	return ps.productRepo.ListByStore(ctx, nil, storeID)
}

func (ps *productService) UpdateProduct(ctx context.Context, actorID uuid.UUID, product *types.Product) error {
	if err := ps.requireManageStorage(ctx, product.StoreID, actorID, opUpdateProduct); err != nil {
		return err
	}
	if product.Price < 0 {
		return domainerr.Newf(domainerr.CodeValidation, opUpdateProduct, "price %v cannot be negative", product.Price)
	}
	return ps.productRepo.Update(ctx, nil, product)
}

// DeleteProduct removes the product and cascades into the discount
// collection: every discount tree that references the product is removed
// from the aggregate and its persisted records are deleted with it.
func (ps *productService) DeleteProduct(ctx context.Context, actorID, productID uuid.UUID) error {
	product, err := ps.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return domainerr.New(domainerr.CodeNotFound, opDeleteProduct, "product not found")
	}
	if err := ps.requireManageStorage(ctx, product.StoreID, actorID, opDeleteProduct); err != nil {
		return err
	}
	agg, err := ps.registry.Get(ctx, product.StoreID)
	if err != nil {
		return err
	}
	dropped := agg.RemoveProductReferences(productID)
	return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ps.discountRepo.DeleteByStoreAndNos(ctx, tx, product.StoreID, dropped); err != nil {
			return fmt.Errorf("failed to drop dependent discounts: %w", err)
		}
		if err := ps.productRepo.Delete(ctx, tx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

func (ps *productService) AdjustStock(ctx context.Context, actorID, productID uuid.UUID, delta int) error {
	product, err := ps.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return domainerr.New(domainerr.CodeNotFound, opAdjustStock, "product not found")
	}
	if err := ps.requireManageStorage(ctx, product.StoreID, actorID, opAdjustStock); err != nil {
		return err
	}
	if product.Stock+delta < 0 {
		return domainerr.Newf(domainerr.CodeValidation, opAdjustStock, "stock cannot drop below zero (current %d, delta %d)", product.Stock, delta)
	}
	return ps.productRepo.AdjustStock(ctx, nil, productID, delta)
}

func (ps *productService) UploadProductImage(ctx context.Context, actorID, productID uuid.UUID, image io.Reader) (*types.Product, error) {
	product, err := ps.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, domainerr.New(domainerr.CodeNotFound, opUploadImage, "product not found")
	}
	if err := ps.requireManageStorage(ctx, product.StoreID, actorID, opUploadImage); err != nil {
		return nil, err
	}
	if ps.bucket == nil {
		return nil, domainerr.New(domainerr.CodeInternal, opUploadImage, "image storage is not configured")
	}
	key := fmt.Sprintf("products/%s/%s", product.StoreID, productID)
	if err := ps.bucket.UploadFile(ctx, key, image); err != nil {
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}
	product.ImageBucketKey = key
	product.ImageURL = ps.bucket.GetPublicURL(key)
	if err := ps.productRepo.Update(ctx, nil, product); err != nil {
		return nil, fmt.Errorf("failed to save product image key: %w", err)
	}
	return product, nil
}
