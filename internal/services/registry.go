package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
)

// StoreRegistry owns the live store aggregates. Role changes, consent
// workflows and pricing evaluation all run against the in-memory aggregate;
// the database rows are its durable shadow. An aggregate is hydrated from
// its records on first access and kept for the process lifetime.
type StoreRegistry interface {
	Get(ctx context.Context, storeID uuid.UUID) (*store.Store, error)
	Register(agg *store.Store)
	Evict(storeID uuid.UUID)
}

type storeRegistry struct {
	mu   sync.Mutex
	live map[uuid.UUID]*store.Store

	log          *logger.Logger
	storeRepo    repos.StoreRepo
	grantRepo    repos.StoreGrantRepo
	discountRepo repos.DiscountRepo
	ruleRepo     repos.PurchaseRuleRepo
	offerRepo    repos.OfferRepo
	contractRepo repos.ContractRepo
}

func NewStoreRegistry(
	log *logger.Logger,
	storeRepo repos.StoreRepo,
	grantRepo repos.StoreGrantRepo,
	discountRepo repos.DiscountRepo,
	ruleRepo repos.PurchaseRuleRepo,
	offerRepo repos.OfferRepo,
	contractRepo repos.ContractRepo,
) StoreRegistry {
	return &storeRegistry{
		live:         make(map[uuid.UUID]*store.Store),
		log:          log.With("service", "StoreRegistry"),
		storeRepo:    storeRepo,
		grantRepo:    grantRepo,
		discountRepo: discountRepo,
		ruleRepo:     ruleRepo,
		offerRepo:    offerRepo,
		contractRepo: contractRepo,
	}
}

func (r *storeRegistry) Register(agg *store.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[agg.ID()] = agg
}

func (r *storeRegistry) Evict(storeID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, storeID)
}

func (r *storeRegistry) Get(ctx context.Context, storeID uuid.UUID) (*store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agg, ok := r.live[storeID]; ok {
		return agg, nil
	}
	agg, err := r.hydrate(ctx, storeID)
	if err != nil {
		return nil, err
	}
	r.live[storeID] = agg
	return agg, nil
}

// hydrate rebuilds the aggregate from its records. Order matters: grants
// first so restored ledgers refer to known members.
func (r *storeRegistry) hydrate(ctx context.Context, storeID uuid.UUID) (*store.Store, error) {
	record, err := r.storeRepo.GetByID(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load store %s: %w", storeID, err)
	}
	agg := store.New(record.ID, record.FounderID)

	grants, err := r.grantRepo.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load grants: %w", err)
	}
	for _, g := range grants {
		err := agg.RestoreGrant(permission.Grant{
			StoreID:      g.StoreID,
			UserID:       g.UserID,
			GrantedBy:    g.GrantedBy,
			Role:         permission.Role(g.Role),
			Capabilities: permission.Capability(g.Capabilities),
		})
		if err != nil {
			return nil, err
		}
	}

	discounts, err := r.discountRepo.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load discounts: %w", err)
	}
	for _, rec := range discounts {
		var d pricing.Discount
		if err := json.Unmarshal(rec.Tree, &d); err != nil {
			return nil, fmt.Errorf("corrupt discount tree %d: %w", rec.DiscountNo, err)
		}
		if err := agg.RestoreDiscount(rec.DiscountNo, d); err != nil {
			return nil, err
		}
	}

	rules, err := r.ruleRepo.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase rules: %w", err)
	}
	for _, rec := range rules {
		var rule pricing.PurchaseRule
		if err := json.Unmarshal(rec.Rule, &rule); err != nil {
			return nil, fmt.Errorf("corrupt purchase rule %d: %w", rec.RuleNo, err)
		}
		if err := agg.RestoreRule(rec.RuleNo, rule); err != nil {
			return nil, err
		}
	}

	offers, err := r.offerRepo.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	for _, rec := range offers {
		state, err := decodeLedgerState(rec.Approvers)
		if err != nil {
			return nil, fmt.Errorf("corrupt offer ledger %d: %w", rec.OfferNo, err)
		}
		view := store.OfferView{
			ID:        rec.OfferNo,
			BuyerID:   rec.BuyerID,
			ProductID: rec.ProductID,
			Price:     rec.Price,
			Quantity:  rec.Quantity,
			Status:    store.OfferStatus(rec.Status),
			Approvers: state.Approvers,
			Pending:   state.Pending,
		}
		if err := agg.RestoreOffer(view, rec.CreatedAt); err != nil {
			return nil, err
		}
	}

	contracts, err := r.contractRepo.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contracts: %w", err)
	}
	for _, rec := range contracts {
		state, err := decodeLedgerState(rec.Approvers)
		if err != nil {
			return nil, fmt.Errorf("corrupt contract ledger %d: %w", rec.ContractNo, err)
		}
		view := store.ContractView{
			ID:          rec.ContractNo,
			AssignedBy:  rec.AssignedBy,
			CandidateID: rec.CandidateID,
			Terms:       rec.Terms,
			Approvers:   state.Approvers,
			Pending:     state.Pending,
		}
		if err := agg.RestoreContract(view); err != nil {
			return nil, err
		}
	}

	r.log.Info("hydrated store aggregate",
		"store_id", storeID,
		"grants", len(grants),
		"discounts", len(discounts),
		"rules", len(rules),
		"offers", len(offers),
		"contracts", len(contracts))
	return agg, nil
}
