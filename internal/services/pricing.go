package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

// PricingService manages a store's discount and purchase-rule collections,
// keeping the persisted JSON trees in step with the aggregate.
type PricingService interface {
	AddDiscount(ctx context.Context, storeID, actorID uuid.UUID, d pricing.Discount, absorb ...uint64) (uint64, error)
	RemoveDiscount(ctx context.Context, storeID, actorID uuid.UUID, discountNo uint64) error
	ListDiscounts(ctx context.Context, storeID uuid.UUID) (map[uint64]pricing.Discount, error)
	AddPurchaseRule(ctx context.Context, storeID, actorID uuid.UUID, rule pricing.PurchaseRule) (uint64, error)
	RemovePurchaseRule(ctx context.Context, storeID, actorID uuid.UUID, ruleNo uint64) error
}

type pricingService struct {
	db           *gorm.DB
	log          *logger.Logger
	registry     StoreRegistry
	discountRepo repos.DiscountRepo
	ruleRepo     repos.PurchaseRuleRepo
}

func NewPricingService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	discountRepo repos.DiscountRepo,
	ruleRepo repos.PurchaseRuleRepo,
) PricingService {
	return &pricingService{
		db:           db,
		log:          log.With("service", "PricingService"),
		registry:     registry,
		discountRepo: discountRepo,
		ruleRepo:     ruleRepo,
	}
}

// AddDiscount installs a discount tree, optionally absorbing existing
// top-level discounts as children of the new root. Absorbed discounts stop
// existing as standalone records.
func (ps *pricingService) AddDiscount(ctx context.Context, storeID, actorID uuid.UUID, d pricing.Discount, absorb ...uint64) (uint64, error) {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return 0, err
	}
	discountNo, err := agg.AddDiscount(actorID, d, absorb...)
	if err != nil {
		return 0, err
	}
	// re-read the stored tree: absorption may have rewritten the children
	stored := agg.Discounts()[discountNo]
	raw, err := json.Marshal(stored)
	if err != nil {
		return 0, err
	}
	err = ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ps.discountRepo.DeleteByStoreAndNos(ctx, tx, storeID, absorb); err != nil {
			return fmt.Errorf("failed to drop absorbed discounts: %w", err)
		}
		_, err := ps.discountRepo.Upsert(ctx, tx, &types.DiscountRecord{
			StoreID:    storeID,
			DiscountNo: discountNo,
			Tree:       raw,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	ps.log.Info("discount added", "store_id", storeID, "discount_no", discountNo, "absorbed", len(absorb))
	return discountNo, nil
}

func (ps *pricingService) RemoveDiscount(ctx context.Context, storeID, actorID uuid.UUID, discountNo uint64) error {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	if err := agg.RemoveDiscount(actorID, discountNo); err != nil {
		return err
	}
	return ps.discountRepo.DeleteByStoreAndNo(ctx, nil, storeID, discountNo)
}

func (ps *pricingService) ListDiscounts(ctx context.Context, storeID uuid.UUID) (map[uint64]pricing.Discount, error) {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return agg.Discounts(), nil
}

func (ps *pricingService) AddPurchaseRule(ctx context.Context, storeID, actorID uuid.UUID, rule pricing.PurchaseRule) (uint64, error) {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return 0, err
	}
	ruleNo, err := agg.AddPurchaseRule(actorID, rule)
	if err != nil {
		return 0, err
	}
	raw, err := json.Marshal(rule)
	if err != nil {
		return 0, err
	}
	if _, err := ps.ruleRepo.Create(ctx, nil, &types.PurchaseRuleRecord{
		StoreID: storeID,
		RuleNo:  ruleNo,
		Rule:    raw,
	}); err != nil {
		return 0, fmt.Errorf("failed to persist purchase rule: %w", err)
	}
	return ruleNo, nil
}

func (ps *pricingService) RemovePurchaseRule(ctx context.Context, storeID, actorID uuid.UUID, ruleNo uint64) error {
	agg, err := ps.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	if err := agg.RemovePurchaseRule(actorID, ruleNo); err != nil {
		return err
	}
	return ps.ruleRepo.DeleteByStoreAndNo(ctx, nil, storeID, ruleNo)
}
