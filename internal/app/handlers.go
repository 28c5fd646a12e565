package app

import (
	"github.com/storemesh/marketplace-backend/internal/handlers"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Store    *handlers.StoreHandler
	Product  *handlers.ProductHandler
	Pricing  *handlers.PricingHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Offer    *handlers.OfferHandler
	Contract *handlers.ContractHandler
	SSE      *handlers.SSEHandler
}

func wireHandlers(log *logger.Logger, s Services, hub *realtime.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     handlers.NewAuthHandler(s.Auth),
		Store:    handlers.NewStoreHandler(s.Store),
		Product:  handlers.NewProductHandler(s.Product),
		Pricing:  handlers.NewPricingHandler(s.Pricing),
		Cart:     handlers.NewCartHandler(s.Cart),
		Checkout: handlers.NewCheckoutHandler(s.Checkout),
		Offer:    handlers.NewOfferHandler(s.Offer),
		Contract: handlers.NewContractHandler(s.Contract),
		SSE:      handlers.NewSSEHandler(hub),
	}
}
