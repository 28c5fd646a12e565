package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

// CartView is the shopper's current cart for one store plus a live quote
// against the store's discounts and purchase rules.
type CartView struct {
	Items []*types.CartItem `json:"items"`
	Quote store.Quote       `json:"quote"`
}

type CartService interface {
	SetItem(ctx context.Context, userID, storeID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ViewCart(ctx context.Context, userID, storeID uuid.UUID) (CartView, error)
	BuildBasket(ctx context.Context, userID, storeID uuid.UUID) (pricing.Basket, []*types.CartItem, error)
}

type cartService struct {
	log         *logger.Logger
	registry    StoreRegistry
	cartRepo    repos.CartRepo
	productRepo repos.ProductRepo
	userRepo    repos.UserRepo
}

func NewCartService(
	log *logger.Logger,
	registry StoreRegistry,
	cartRepo repos.CartRepo,
	productRepo repos.ProductRepo,
	userRepo repos.UserRepo,
) CartService {
	return &cartService{
		log:         log.With("service", "CartService"),
		registry:    registry,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
	}
}

const (
	opSetItem  = "cart.SetItem"
	opViewCart = "cart.ViewCart"
)

// SetItem pins the quantity of one product in the cart. Quantity zero
// removes the line.
func (cs *cartService) SetItem(ctx context.Context, userID, storeID, productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return domainerr.Newf(domainerr.CodeValidation, opSetItem, "quantity %d cannot be negative", quantity)
	}
	if quantity == 0 {
		return cs.cartRepo.DeleteItem(ctx, nil, userID, productID)
	}
	product, err := cs.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return domainerr.New(domainerr.CodeNotFound, opSetItem, "product not found")
	}
	if product.StoreID != storeID {
		return domainerr.New(domainerr.CodeValidation, opSetItem, "product belongs to a different store")
	}
	if product.Stock < quantity {
		return domainerr.Newf(domainerr.CodeConflict, opSetItem, "only %d units in stock", product.Stock)
	}
	_, err = cs.cartRepo.Upsert(ctx, nil, &types.CartItem{
		UserID:    userID,
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return err
}

func (cs *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	return cs.cartRepo.DeleteItem(ctx, nil, userID, productID)
}

// BuildBasket snapshots the cart into an immutable basket for evaluation.
func (cs *cartService) BuildBasket(ctx context.Context, userID, storeID uuid.UUID) (pricing.Basket, []*types.CartItem, error) {
	items, err := cs.cartRepo.ListByUserAndStore(ctx, nil, userID, storeID)
	if err != nil {
		return pricing.Basket{}, nil, err
	}
	lines := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return pricing.Basket{}, nil, domainerr.New(domainerr.CodeInternal, opViewCart, "cart line lost its product")
		}
		lines = append(lines, pricing.LineItem{
			ProductID: item.ProductID,
			Category:  pricing.Category(item.Product.Category),
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}
	return pricing.NewBasket(lines), items, nil
}

// ViewCart returns the cart lines and a quote so the shopper sees rule
// violations and the discounted total before checking out.
func (cs *cartService) ViewCart(ctx context.Context, userID, storeID uuid.UUID) (CartView, error) {
	basket, items, err := cs.BuildBasket(ctx, userID, storeID)
	if err != nil {
		return CartView{}, err
	}
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return CartView{}, err
	}
	user, err := cs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return CartView{}, err
	}
	quote := agg.PriceBasket(basket, pricing.EvalContext{
		Now:            time.Now(),
		BuyerBirthDate: user.BirthDate,
	})
	return CartView{Items: items, Quote: quote}, nil
}
