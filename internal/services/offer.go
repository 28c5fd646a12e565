package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/repos"
)

// OfferService drives the price negotiation workflow on the store aggregate
// and mirrors every change into the offer records.
type OfferService interface {
	CreateOffer(ctx context.Context, buyerID, storeID, productID uuid.UUID, price float64, quantity int) (store.OfferView, error)
	CounterOffer(ctx context.Context, actorID, storeID uuid.UUID, offerNo uint64, price float64, quantity int) (store.OfferView, error)
	ApproveOffer(ctx context.Context, approverID, storeID uuid.UUID, offerNo uint64) (store.OfferView, error)
	RejectOffer(ctx context.Context, actorID, storeID uuid.UUID, offerNo uint64) error
	GetOffer(ctx context.Context, storeID uuid.UUID, offerNo uint64) (store.OfferView, error)
	ListOffers(ctx context.Context, actorID, storeID uuid.UUID) ([]store.OfferView, error)
}

type offerService struct {
	db          *gorm.DB
	log         *logger.Logger
	registry    StoreRegistry
	productRepo repos.ProductRepo
	persister   *proposalPersister
	notifier    Notifier
}

func NewOfferService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	productRepo repos.ProductRepo,
	offerRepo repos.OfferRepo,
	contractRepo repos.ContractRepo,
	notifier Notifier,
) OfferService {
	return &offerService{
		db:          db,
		log:         log.With("service", "OfferService"),
		registry:    registry,
		productRepo: productRepo,
		persister:   &proposalPersister{offerRepo: offerRepo, contractRepo: contractRepo},
		notifier:    notifier,
	}
}

const (
	opOfferCreate = "offer.CreateOffer"
	opOfferReject = "offer.RejectOffer"
)

func (os *offerService) CreateOffer(ctx context.Context, buyerID, storeID, productID uuid.UUID, price float64, quantity int) (store.OfferView, error) {
	product, err := os.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return store.OfferView{}, domainerr.New(domainerr.CodeNotFound, opOfferCreate, "product not found")
	}
	if product.StoreID != storeID {
		return store.OfferView{}, domainerr.New(domainerr.CodeValidation, opOfferCreate, "product belongs to a different store")
	}
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return store.OfferView{}, err
	}
	view, err := agg.CreateOffer(buyerID, productID, price, quantity, time.Now())
	if err != nil {
		return store.OfferView{}, err
	}
	if err := os.syncOffers(ctx, agg); err != nil {
		return store.OfferView{}, err
	}
	os.notifier.OfferChanged(storeID, realtime.EventOfferCreated, view)
	return view, nil
}

func (os *offerService) CounterOffer(ctx context.Context, actorID, storeID uuid.UUID, offerNo uint64, price float64, quantity int) (store.OfferView, error) {
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return store.OfferView{}, err
	}
	view, err := agg.CounterOffer(actorID, offerNo, price, quantity)
	if err != nil {
		return store.OfferView{}, err
	}
	if err := os.syncOffers(ctx, agg); err != nil {
		return store.OfferView{}, err
	}
	os.notifier.OfferChanged(storeID, realtime.EventOfferCountered, view)
	return view, nil
}

func (os *offerService) ApproveOffer(ctx context.Context, approverID, storeID uuid.UUID, offerNo uint64) (store.OfferView, error) {
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return store.OfferView{}, err
	}
	view, err := agg.ApproveOffer(approverID, offerNo)
	if err != nil {
		return store.OfferView{}, err
	}
	if err := os.syncOffers(ctx, agg); err != nil {
		return store.OfferView{}, err
	}
	if view.Status == store.OfferApproved {
		os.notifier.OfferChanged(storeID, realtime.EventOfferApproved, view)
	}
	return view, nil
}

// RejectOffer discards the offer. The buyer may withdraw their own offer;
// anyone else needs the manage-offers capability.
func (os *offerService) RejectOffer(ctx context.Context, actorID, storeID uuid.UUID, offerNo uint64) error {
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	view, err := agg.Offer(offerNo)
	if err != nil {
		return err
	}
	if view.BuyerID != actorID && !agg.Capabilities(actorID).Has(permission.CapManageOffers) {
		return domainerr.New(domainerr.CodeForbidden, opOfferReject, "actor may not reject this offer")
	}
	if err := agg.RejectOffer(offerNo); err != nil {
		return err
	}
	if err := os.syncOffers(ctx, agg); err != nil {
		return err
	}
	os.notifier.OfferChanged(storeID, realtime.EventOfferRejected, view)
	return nil
}

func (os *offerService) GetOffer(ctx context.Context, storeID uuid.UUID, offerNo uint64) (store.OfferView, error) {
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return store.OfferView{}, err
	}
	return agg.Offer(offerNo)
}

// ListOffers returns every live offer for manage-offers holders, or just the
// actor's own offers otherwise.
func (os *offerService) ListOffers(ctx context.Context, actorID, storeID uuid.UUID) ([]store.OfferView, error) {
	agg, err := os.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	all := agg.Offers()
	if agg.Capabilities(actorID).Has(permission.CapManageOffers) {
		return all, nil
	}
	var own []store.OfferView
	for _, v := range all {
		if v.BuyerID == actorID {
			own = append(own, v)
		}
	}
	return own, nil
}

func (os *offerService) syncOffers(ctx context.Context, agg *store.Store) error {
	return os.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return os.persister.syncOffers(ctx, tx, agg)
	})
}
