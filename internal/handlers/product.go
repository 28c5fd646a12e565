package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
	"github.com/storemesh/marketplace-backend/internal/types"
)

type ProductHandler struct {
	productService services.ProductService
}

func NewProductHandler(productService services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (ph *ProductHandler) Create(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Category    string  `json:"category"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	product := &types.Product{
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	created, err := ph.productService.CreateProduct(c.Request.Context(), actorID, product)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"product": created})
}

func (ph *ProductHandler) Get(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	product, err := ph.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}

func (ph *ProductHandler) List(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	products, err := ph.productService.ListProducts(c.Request.Context(), storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"products": products})
}

func (ph *ProductHandler) Update(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	existing, err := ph.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Category != nil {
		existing.Category = *req.Category
	}
	if req.Price != nil {
		existing.Price = *req.Price
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ph.productService.UpdateProduct(c.Request.Context(), actorID, existing); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"product": existing})
}

func (ph *ProductHandler) Delete(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ph.productService.DeleteProduct(c.Request.Context(), actorID, productID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ph *ProductHandler) AdjustStock(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ph.productService.AdjustStock(c.Request.Context(), actorID, productID, req.Delta); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ph *ProductHandler) UploadImage(c *gin.Context) {
	productID, ok := parseUUIDParam(c, "productID")
	if !ok {
		return
	}
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer file.Close()
	actorID := requestdata.UserID(c.Request.Context())
	product, err := ph.productService.UploadProductImage(c.Request.Context(), actorID, productID, file)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"product": product})
}
