package app

import (
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/clients/payment"
	"github.com/storemesh/marketplace-backend/internal/clients/supply"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime/bus"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Bucket   services.BucketService
	Policy   services.PolicyService
	Registry services.StoreRegistry
	Notifier services.Notifier
	Store    services.StoreService
	Product  services.ProductService
	Pricing  services.PricingService
	Cart     services.CartService
	Checkout services.CheckoutService
	Offer    services.OfferService
	Contract services.ContractService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, eventBus bus.Bus) (Services, error) {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	bucket, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Bucket service unavailable, image uploads disabled", "error", err)
		bucket = nil
	}

	policy, err := services.NewPolicyService(log)
	if err != nil {
		return Services{}, err
	}

	registry := services.NewStoreRegistry(log, r.Store, r.StoreGrant, r.Discount, r.PurchaseRule, r.Offer, r.Contract)
	notifier := services.NewNotifier(log, eventBus)

	storeSvc := services.NewStoreService(db, log, registry, r.Store, r.StoreGrant, r.User, r.PurchaseRule, r.Offer, r.Contract, policy, notifier)
	productSvc := services.NewProductService(db, log, registry, r.Product, r.Discount, bucket)
	pricingSvc := services.NewPricingService(db, log, registry, r.Discount, r.PurchaseRule)
	cartSvc := services.NewCartService(log, registry, r.Cart, r.Product, r.User)

	payments := payment.NewHTTPGateway(log)
	shipping := supply.NewHTTPGateway(log)
	checkoutSvc := services.NewCheckoutService(db, log, registry, cartSvc, r.User, r.Product, r.Order, r.Cart, r.Offer, r.Contract, payments, shipping, notifier)

	offerSvc := services.NewOfferService(db, log, registry, r.Product, r.Offer, r.Contract, notifier)
	contractSvc := services.NewContractService(db, log, registry, r.User, r.StoreGrant, r.Offer, r.Contract, notifier)

	return Services{
		Auth:     auth,
		Bucket:   bucket,
		Policy:   policy,
		Registry: registry,
		Notifier: notifier,
		Store:    storeSvc,
		Product:  productSvc,
		Pricing:  pricingSvc,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Offer:    offerSvc,
		Contract: contractSvc,
	}, nil
}
