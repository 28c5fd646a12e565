package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

// ledgerState is the persisted shape of a consent ledger: the full approver
// set in insertion order plus the subset still pending.
type ledgerState struct {
	Approvers []uuid.UUID `json:"approvers"`
	Pending   []uuid.UUID `json:"pending"`
}

func encodeLedgerState(approvers, pending []uuid.UUID) ([]byte, error) {
	return json.Marshal(ledgerState{Approvers: approvers, Pending: pending})
}

func decodeLedgerState(raw []byte) (ledgerState, error) {
	var state ledgerState
	if len(raw) == 0 {
		return state, fmt.Errorf("empty ledger state")
	}
	err := json.Unmarshal(raw, &state)
	return state, err
}

// proposalPersister mirrors the aggregate's live proposals into their record
// tables. A role change can touch every ledger at once, so syncing rewrites
// the full set: upsert what lives, delete what does not.
type proposalPersister struct {
	offerRepo    repos.OfferRepo
	contractRepo repos.ContractRepo
}

func (p *proposalPersister) syncOffers(ctx context.Context, tx *gorm.DB, agg *store.Store) error {
	views := agg.Offers()
	alive := make(map[uint64]struct{}, len(views))
	for _, v := range views {
		alive[v.ID] = struct{}{}
		ledger, err := encodeLedgerState(v.Approvers, v.Pending)
		if err != nil {
			return err
		}
		_, err = p.offerRepo.Upsert(ctx, tx, &types.OfferRecord{
			StoreID:   agg.ID(),
			OfferNo:   v.ID,
			BuyerID:   v.BuyerID,
			ProductID: v.ProductID,
			Price:     v.Price,
			Quantity:  v.Quantity,
			Status:    string(v.Status),
			Approvers: ledger,
			CreatedAt: v.CreatedAt,
		})
		if err != nil {
			return err
		}
	}
	records, err := p.offerRepo.ListByStore(ctx, tx, agg.ID())
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, ok := alive[rec.OfferNo]; !ok {
			if err := p.offerRepo.DeleteByStoreAndNo(ctx, tx, agg.ID(), rec.OfferNo); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *proposalPersister) syncContracts(ctx context.Context, tx *gorm.DB, agg *store.Store) error {
	views := agg.Contracts()
	alive := make(map[uint64]struct{}, len(views))
	for _, v := range views {
		alive[v.ID] = struct{}{}
		ledger, err := encodeLedgerState(v.Approvers, v.Pending)
		if err != nil {
			return err
		}
		_, err = p.contractRepo.Upsert(ctx, tx, &types.ContractRecord{
			StoreID:     agg.ID(),
			ContractNo:  v.ID,
			AssignedBy:  v.AssignedBy,
			CandidateID: v.CandidateID,
			Terms:       v.Terms,
			Status:      "pending",
			Approvers:   ledger,
		})
		if err != nil {
			return err
		}
	}
	records, err := p.contractRepo.ListByStore(ctx, tx, agg.ID())
	if err != nil {
		return err
	}
	for _, rec := range records {
		if _, ok := alive[rec.ContractNo]; !ok {
			if err := p.contractRepo.DeleteByStoreAndNo(ctx, tx, agg.ID(), rec.ContractNo); err != nil {
				return err
			}
		}
	}
	return nil
}

// syncGrants rewrites the store's grant rows from the aggregate.
func syncGrants(ctx context.Context, tx *gorm.DB, grantRepo repos.StoreGrantRepo, agg *store.Store) error {
	grants := agg.Grants()
	rows := make([]*types.StoreGrant, 0, len(grants))
	for _, g := range grants {
		rows = append(rows, &types.StoreGrant{
			StoreID:      g.StoreID,
			UserID:       g.UserID,
			GrantedBy:    g.GrantedBy,
			Role:         string(g.Role),
			Capabilities: uint32(g.Capabilities),
		})
	}
	return grantRepo.ReplaceForStore(ctx, tx, agg.ID(), rows)
}
