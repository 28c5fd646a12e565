package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type OfferHandler struct {
	offerService services.OfferService
}

func NewOfferHandler(offerService services.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

func (oh *OfferHandler) Create(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		ProductID string  `json:"product_id"`
		Price     float64 `json:"price"`
		Quantity  int     `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	productID, ok := parseUUIDString(c, req.ProductID)
	if !ok {
		return
	}
	buyerID := requestdata.UserID(c.Request.Context())
	view, err := oh.offerService.CreateOffer(c.Request.Context(), buyerID, storeID, productID, req.Price, req.Quantity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"offer": view})
}

func (oh *OfferHandler) Counter(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	offerNo, ok := parseUint64Param(c, "offerNo")
	if !ok {
		return
	}
	var req struct {
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	view, err := oh.offerService.CounterOffer(c.Request.Context(), actorID, storeID, offerNo, req.Price, req.Quantity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"offer": view})
}

func (oh *OfferHandler) Approve(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	offerNo, ok := parseUint64Param(c, "offerNo")
	if !ok {
		return
	}
	approverID := requestdata.UserID(c.Request.Context())
	view, err := oh.offerService.ApproveOffer(c.Request.Context(), approverID, storeID, offerNo)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"offer": view})
}

func (oh *OfferHandler) Reject(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	offerNo, ok := parseUint64Param(c, "offerNo")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := oh.offerService.RejectOffer(c.Request.Context(), actorID, storeID, offerNo); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (oh *OfferHandler) Get(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	offerNo, ok := parseUint64Param(c, "offerNo")
	if !ok {
		return
	}
	view, err := oh.offerService.GetOffer(c.Request.Context(), storeID, offerNo)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"offer": view})
}

func (oh *OfferHandler) List(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	views, err := oh.offerService.ListOffers(c.Request.Context(), actorID, storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"offers": views})
}
