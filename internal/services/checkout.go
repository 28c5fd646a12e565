package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/clients/payment"
	"github.com/storemesh/marketplace-backend/internal/clients/supply"
	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type CheckoutService interface {
	Checkout(ctx context.Context, buyerID, storeID uuid.UUID, address string) (*types.Order, error)
	PurchaseOffer(ctx context.Context, buyerID, storeID uuid.UUID, offerNo uint64, address string) (*types.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*types.Order, error)
}

type checkoutService struct {
	db          *gorm.DB
	log         *logger.Logger
	registry    StoreRegistry
	cart        CartService
	userRepo    repos.UserRepo
	productRepo repos.ProductRepo
	orderRepo   repos.OrderRepo
	cartRepo    repos.CartRepo
	payments    payment.Gateway
	shipping    supply.Gateway
	persister   *proposalPersister
	notifier    Notifier
}

func NewCheckoutService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	cart CartService,
	userRepo repos.UserRepo,
	productRepo repos.ProductRepo,
	orderRepo repos.OrderRepo,
	cartRepo repos.CartRepo,
	offerRepo repos.OfferRepo,
	contractRepo repos.ContractRepo,
	payments payment.Gateway,
	shipping supply.Gateway,
	notifier Notifier,
) CheckoutService {
	return &checkoutService{
		db:          db,
		log:         log.With("service", "CheckoutService"),
		registry:    registry,
		cart:        cart,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		payments:    payments,
		shipping:    shipping,
		persister:   &proposalPersister{offerRepo: offerRepo, contractRepo: contractRepo},
		notifier:    notifier,
	}
}

const (
	opCheckout      = "checkout.Checkout"
	opPurchaseOffer = "checkout.PurchaseOffer"
)

// Checkout prices the cart snapshot, charges the buyer, books the shipment
// and records the order. Purchase-rule violations abort before any money
// moves; a failed shipment refunds the charge.
func (cs *checkoutService) Checkout(ctx context.Context, buyerID, storeID uuid.UUID, address string) (*types.Order, error) {
	basket, items, err := cs.cart.BuildBasket(ctx, buyerID, storeID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domainerr.New(domainerr.CodeValidation, opCheckout, "cart is empty")
	}
	buyer, err := cs.userRepo.GetByID(ctx, nil, buyerID)
	if err != nil {
		return nil, domainerr.New(domainerr.CodeNotFound, opCheckout, "buyer not found")
	}
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}

	quote := agg.PriceBasket(basket, pricing.EvalContext{
		Now:            time.Now(),
		BuyerBirthDate: buyer.BirthDate,
	})
	if !quote.OK() {
		msgs := make([]string, 0, len(quote.Violations))
		for _, v := range quote.Violations {
			msgs = append(msgs, v.Error())
		}
		return nil, domainerr.Newf(domainerr.CodeRuleViolation, opCheckout, "purchase rules violated: %s", strings.Join(msgs, "; "))
	}

	// re-verify stock against the live rows before charging
	for _, item := range items {
		product, err := cs.productRepo.GetByID(ctx, nil, item.ProductID)
		if err != nil {
			return nil, domainerr.New(domainerr.CodeNotFound, opCheckout, "product no longer exists")
		}
		if product.Stock < item.Quantity {
			return nil, domainerr.Newf(domainerr.CodeConflict, opCheckout, "insufficient stock for product %s", item.ProductID)
		}
	}

	paymentRef, err := cs.payments.Pay(ctx, payment.Charge{
		BuyerID: buyerID,
		StoreID: storeID,
		Amount:  quote.FinalPrice,
	})
	if err != nil {
		return nil, domainerr.Wrap(domainerr.CodeConflict, opCheckout, err)
	}

	shipLines := make([]supply.ShipmentLine, 0, len(items))
	for _, item := range items {
		shipLines = append(shipLines, supply.ShipmentLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	supplyRef, err := cs.shipping.Ship(ctx, supply.Shipment{
		BuyerID: buyerID,
		StoreID: storeID,
		Lines:   shipLines,
		Address: address,
	})
	if err != nil {
		if refundErr := cs.payments.Refund(ctx, paymentRef); refundErr != nil {
			cs.log.Error("refund failed after shipment rejection", "payment_ref", paymentRef, "error", refundErr)
		}
		return nil, domainerr.Wrap(domainerr.CodeConflict, opCheckout, err)
	}

	linesJSON, err := json.Marshal(basket.Lines())
	if err != nil {
		return nil, err
	}
	order := &types.Order{
		ID:           uuid.New(),
		UserID:       buyerID,
		StoreID:      storeID,
		RegularPrice: quote.RegularPrice,
		Reduction:    quote.Reduction,
		FinalPrice:   quote.FinalPrice,
		PaymentRef:   paymentRef,
		SupplyRef:    supplyRef,
		Lines:        linesJSON,
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to record order: %w", err)
		}
		for _, item := range items {
			if err := cs.productRepo.AdjustStock(ctx, tx, item.ProductID, -item.Quantity); err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
		}
		return cs.cartRepo.ClearForStore(ctx, tx, buyerID, storeID)
	})
	if err != nil {
		return nil, err
	}
	cs.notifier.OrderPlaced(buyerID, storeID, order.ID, order.FinalPrice)
	cs.log.Info("checkout completed", "order_id", order.ID, "buyer_id", buyerID, "final_price", order.FinalPrice)
	return order, nil
}

// PurchaseOffer pays for a unanimously approved offer at its negotiated
// price. The negotiated terms replace the catalog price; store discounts and
// purchase rules do not apply to offer purchases.
func (cs *checkoutService) PurchaseOffer(ctx context.Context, buyerID, storeID uuid.UUID, offerNo uint64, address string) (*types.Order, error) {
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	offer, err := agg.Offer(offerNo)
	if err != nil {
		return nil, err
	}
	if offer.BuyerID != buyerID {
		return nil, domainerr.New(domainerr.CodeForbidden, opPurchaseOffer, "offer belongs to another buyer")
	}
	if offer.Status != store.OfferApproved {
		return nil, domainerr.New(domainerr.CodeConflict, opPurchaseOffer, "offer has not been approved by all parties")
	}
	product, err := cs.productRepo.GetByID(ctx, nil, offer.ProductID)
	if err != nil {
		return nil, domainerr.New(domainerr.CodeNotFound, opPurchaseOffer, "product no longer exists")
	}
	if product.Stock < offer.Quantity {
		return nil, domainerr.Newf(domainerr.CodeConflict, opPurchaseOffer, "insufficient stock for product %s", offer.ProductID)
	}

	total := offer.Price * float64(offer.Quantity)
	paymentRef, err := cs.payments.Pay(ctx, payment.Charge{BuyerID: buyerID, StoreID: storeID, Amount: total})
	if err != nil {
		return nil, domainerr.Wrap(domainerr.CodeConflict, opPurchaseOffer, err)
	}
	supplyRef, err := cs.shipping.Ship(ctx, supply.Shipment{
		BuyerID: buyerID,
		StoreID: storeID,
		Lines:   []supply.ShipmentLine{{ProductID: offer.ProductID, Quantity: offer.Quantity}},
		Address: address,
	})
	if err != nil {
		if refundErr := cs.payments.Refund(ctx, paymentRef); refundErr != nil {
			cs.log.Error("refund failed after shipment rejection", "payment_ref", paymentRef, "error", refundErr)
		}
		return nil, domainerr.Wrap(domainerr.CodeConflict, opPurchaseOffer, err)
	}

	lines := []pricing.LineItem{{
		ProductID: offer.ProductID,
		Category:  pricing.Category(product.Category),
		Quantity:  offer.Quantity,
		UnitPrice: offer.Price,
	}}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, err
	}
	order := &types.Order{
		ID:           uuid.New(),
		UserID:       buyerID,
		StoreID:      storeID,
		RegularPrice: total,
		Reduction:    0,
		FinalPrice:   total,
		PaymentRef:   paymentRef,
		SupplyRef:    supplyRef,
		Lines:        linesJSON,
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := cs.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to record order: %w", err)
		}
		if err := cs.productRepo.AdjustStock(ctx, tx, offer.ProductID, -offer.Quantity); err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if err := agg.RemoveOffer(offerNo); err != nil {
			return err
		}
		return cs.persister.syncOffers(ctx, tx, agg)
	})
	if err != nil {
		return nil, err
	}
	cs.notifier.OrderPlaced(buyerID, storeID, order.ID, order.FinalPrice)
	cs.log.Info("offer purchased", "order_id", order.ID, "offer_no", offerNo, "buyer_id", buyerID)
	return order, nil
}

func (cs *checkoutService) ListOrders(ctx context.Context, userID uuid.UUID) ([]*types.Order, error) {
	return cs.orderRepo.ListByUser(ctx, nil, userID)
}
