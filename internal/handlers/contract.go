package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storemesh/marketplace-backend/internal/requestdata"
	"github.com/storemesh/marketplace-backend/internal/services"
)

type ContractHandler struct {
	contractService services.ContractService
}

func NewContractHandler(contractService services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (ch *ContractHandler) Create(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	var req struct {
		CandidateID string `json:"candidate_id"`
		Terms       string `json:"terms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	candidateID, ok := parseUUIDString(c, req.CandidateID)
	if !ok {
		return
	}
	assignerID := requestdata.UserID(c.Request.Context())
	view, err := ch.contractService.CreateContract(c.Request.Context(), assignerID, storeID, candidateID, req.Terms)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"contract": view})
}

func (ch *ContractHandler) UpdateTerms(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	contractNo, ok := parseUint64Param(c, "contractNo")
	if !ok {
		return
	}
	var req struct {
		Terms string `json:"terms"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	view, err := ch.contractService.UpdateTerms(c.Request.Context(), actorID, storeID, contractNo, req.Terms)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"contract": view})
}

func (ch *ContractHandler) Approve(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	contractNo, ok := parseUint64Param(c, "contractNo")
	if !ok {
		return
	}
	approverID := requestdata.UserID(c.Request.Context())
	view, err := ch.contractService.ApproveContract(c.Request.Context(), approverID, storeID, contractNo)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"contract": view})
}

func (ch *ContractHandler) Reject(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	contractNo, ok := parseUint64Param(c, "contractNo")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	if err := ch.contractService.RejectContract(c.Request.Context(), actorID, storeID, contractNo); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (ch *ContractHandler) List(c *gin.Context) {
	storeID, ok := parseUUIDParam(c, "storeID")
	if !ok {
		return
	}
	actorID := requestdata.UserID(c.Request.Context())
	views, err := ch.contractService.ListContracts(c.Request.Context(), actorID, storeID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"contracts": views})
}
