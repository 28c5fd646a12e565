package app

import (
	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/server"
)

func wireRouter(h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:     h.Auth,
		AuthMiddleware:  mw.Auth,
		StoreHandler:    h.Store,
		ProductHandler:  h.Product,
		PricingHandler:  h.Pricing,
		CartHandler:     h.Cart,
		CheckoutHandler: h.Checkout,
		OfferHandler:    h.Offer,
		ContractHandler: h.Contract,
		SSEHandler:      h.SSE,
	})
}
