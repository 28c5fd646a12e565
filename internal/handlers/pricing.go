package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type PricingHandler struct {
	pricingService services.PricingService
}

func NewPricingHandler(pricingService services.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

func parseUint64Param(c *gin.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return 0, false
	}
	return n, true
}

func (ph *PricingHandler) AddDiscount(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		Discount pricing.Discount `json:"discount"`
		Absorb   []uint64         `json:"absorb,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := pricing.Validate(req.Discount); err != nil {
		RespondDomainError(c, err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	discountNo, err := ph.pricingService.AddDiscount(c.Request.Context(), storeID, actorID, req.Discount, req.Absorb...)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"discount_no": discountNo})
}

func (ph *PricingHandler) RemoveDiscount(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	discountNo, ok := parseUint64Param(c, "discountNo")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ph.pricingService.RemoveDiscount(c.Request.Context(), storeID, actorID, discountNo); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ph *PricingHandler) ListDiscounts(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	discounts, err := ph.pricingService.ListDiscounts(c.Request.Context(), storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"discounts": discounts})
}

func (ph *PricingHandler) AddPurchaseRule(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		Rule pricing.PurchaseRule `json:"rule"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := pricing.ValidateRule(req.Rule); err != nil {
		RespondDomainError(c, err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	ruleNo, err := ph.pricingService.AddPurchaseRule(c.Request.Context(), storeID, actorID, req.Rule)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"rule_no": ruleNo})
}

func (ph *PricingHandler) RemovePurchaseRule(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	ruleNo, ok := parseUint64Param(c, "ruleNo")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ph.pricingService.RemovePurchaseRule(c.Request.Context(), storeID, actorID, ruleNo); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
