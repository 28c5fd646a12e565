package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/storemesh/marketplace-backend/internal/handlers"
	"github.com/storemesh/marketplace-backend/internal/middleware"
	"github.com/storemesh/marketplace-backend/internal/platform/envutil"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	StoreHandler    *handlers.StoreHandler
	ProductHandler  *handlers.ProductHandler
	PricingHandler  *handlers.PricingHandler
	CartHandler     *handlers.CartHandler
	CheckoutHandler *handlers.CheckoutHandler
	OfferHandler    *handlers.OfferHandler
	ContractHandler *handlers.ContractHandler
	SSEHandler      *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(envutil.String("OTEL_SERVICE_NAME", "marketplace-backend")))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)
	router.POST("/api/refresh", cfg.AuthHandler.Refresh)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/logout", cfg.AuthHandler.Logout)
	api.GET("/events", cfg.SSEHandler.Stream)

	// Stores and membership
	api.POST("/stores", cfg.StoreHandler.OpenStore)
	api.GET("/stores", cfg.StoreHandler.ListStores)
	api.GET("/stores/:storeID", cfg.StoreHandler.GetStore)
	api.DELETE("/stores/:storeID", cfg.StoreHandler.CloseStore)
	api.GET("/stores/:storeID/roles", cfg.StoreHandler.ListRoles)
	api.POST("/stores/:storeID/roles", cfg.StoreHandler.GrantRole)
	api.DELETE("/stores/:storeID/roles/:userID", cfg.StoreHandler.RevokeRole)

	// Catalog
	api.POST("/stores/:storeID/products", cfg.ProductHandler.Create)
	api.GET("/stores/:storeID/products", cfg.ProductHandler.List)
	api.GET("/products/:productID", cfg.ProductHandler.Get)
	api.PATCH("/products/:productID", cfg.ProductHandler.Update)
	api.DELETE("/products/:productID", cfg.ProductHandler.Delete)
	api.POST("/products/:productID/stock", cfg.ProductHandler.AdjustStock)
	api.POST("/products/:productID/image", cfg.ProductHandler.UploadImage)

	// Discounts and purchase rules
	api.POST("/stores/:storeID/discounts", cfg.PricingHandler.AddDiscount)
	api.GET("/stores/:storeID/discounts", cfg.PricingHandler.ListDiscounts)
	api.DELETE("/stores/:storeID/discounts/:discountNo", cfg.PricingHandler.RemoveDiscount)
	api.POST("/stores/:storeID/rules", cfg.PricingHandler.AddPurchaseRule)
	api.DELETE("/stores/:storeID/rules/:ruleNo", cfg.PricingHandler.RemovePurchaseRule)

	// Cart and checkout
	api.PUT("/stores/:storeID/cart", cfg.CartHandler.SetItem)
	api.GET("/stores/:storeID/cart", cfg.CartHandler.View)
	api.DELETE("/cart/:productID", cfg.CartHandler.RemoveItem)
	api.POST("/stores/:storeID/checkout", cfg.CheckoutHandler.Checkout)
	api.GET("/orders", cfg.CheckoutHandler.ListOrders)

	// Offer negotiation
	api.POST("/stores/:storeID/offers", cfg.OfferHandler.Create)
	api.GET("/stores/:storeID/offers", cfg.OfferHandler.List)
	api.GET("/stores/:storeID/offers/:offerNo", cfg.OfferHandler.Get)
	api.POST("/stores/:storeID/offers/:offerNo/counter", cfg.OfferHandler.Counter)
	api.POST("/stores/:storeID/offers/:offerNo/approve", cfg.OfferHandler.Approve)
	api.POST("/stores/:storeID/offers/:offerNo/reject", cfg.OfferHandler.Reject)
	api.POST("/stores/:storeID/offers/:offerNo/purchase", cfg.CheckoutHandler.PurchaseOffer)

	// Owner contracts
	api.POST("/stores/:storeID/contracts", cfg.ContractHandler.Create)
	api.GET("/stores/:storeID/contracts", cfg.ContractHandler.List)
	api.PATCH("/stores/:storeID/contracts/:contractNo", cfg.ContractHandler.UpdateTerms)
	api.POST("/stores/:storeID/contracts/:contractNo/approve", cfg.ContractHandler.Approve)
	api.POST("/stores/:storeID/contracts/:contractNo/reject", cfg.ContractHandler.Reject)

	return router
}
