package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type StoreHandler struct {
	storeService services.StoreService
}

func NewStoreHandler(storeService services.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDString(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return uuid.Nil, false
	}
	return id, true
}

func (sh *StoreHandler) OpenStore(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	founderID := requestdata.UserID(c.Request.Context())
	record, err := sh.storeService.OpenStore(c.Request.Context(), founderID, req.Name, req.Description)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"store": record})
}

func (sh *StoreHandler) CloseStore(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := sh.storeService.CloseStore(c.Request.Context(), actorID, storeID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (sh *StoreHandler) GetStore(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	record, err := sh.storeService.GetStore(c.Request.Context(), storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"store": record})
}

func (sh *StoreHandler) ListStores(c *gin.Context) {
	records, err := sh.storeService.ListStores(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"stores": records})
}

func (sh *StoreHandler) GrantRole(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	grantorID := requestdata.UserID(c.Request.Context())
	if err := sh.storeService.GrantRole(c.Request.Context(), storeID, grantorID, userID, permission.Role(req.Role)); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (sh *StoreHandler) RevokeRole(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(c, "userID")
	if !ok {
		return
	}
	revokerID := requestdata.UserID(c.Request.Context())
	if err := sh.storeService.RevokeRole(c.Request.Context(), storeID, revokerID, userID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (sh *StoreHandler) ListRoles(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	roles, err := sh.storeService.Roles(c.Request.Context(), storeID, actorID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"roles": roles})
}
