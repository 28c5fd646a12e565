package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type CartHandler struct {
	cartService services.CartService
}

func NewCartHandler(cartService services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (ch *CartHandler) SetItem(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	if err := ch.cartService.SetItem(c.Request.Context(), userID, storeID, productID, req.Quantity); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	if err := ch.cartService.RemoveItem(c.Request.Context(), userID, productID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *CartHandler) View(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	userID := requestdata.UserID(c.Request.Context())
	view, err := ch.cartService.ViewCart(c.Request.Context(), userID, storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"cart": view})
}
