package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type CheckoutHandler struct {
	checkoutService services.CheckoutService
}

func NewCheckoutHandler(checkoutService services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

func (ch *CheckoutHandler) Checkout(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	buyerID := requestdata.UserID(c.Request.Context())
	order, err := ch.checkoutService.Checkout(c.Request.Context(), buyerID, storeID, req.Address)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"order": order})
}

func (ch *CheckoutHandler) PurchaseOffer(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	offerNo, ok := parseUint64Param(c, "offerNo")
	if !ok {
		return
	}
	var req struct {
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	buyerID := requestdata.UserID(c.Request.Context())
	order, err := ch.checkoutService.PurchaseOffer(c.Request.Context(), buyerID, storeID, offerNo, req.Address)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"order": order})
}

func (ch *CheckoutHandler) ListOrders(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	orders, err := ch.checkoutService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"orders": orders})
}
