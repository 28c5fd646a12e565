package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/consent"
	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
)

// Restore functions rebuild an aggregate from persisted records at boot. They
// bypass the capability checks that guard live mutations; restoring replays
// state that already passed them. Call order matters: grants first, then
// discounts, rules, offers and contracts.

const opRestore = "store.Restore"

// RestoreGrant inserts a grant without a capability check. The founder's
// grant is seeded by New and is skipped here.
func (s *Store) RestoreGrant(g permission.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.UserID == s.founderID {
		return nil
	}
	if _, exists := s.grants[g.UserID]; exists {
		return domainerr.New(domainerr.CodeConflict, opRestore, "grant already restored for user")
	}
	restored := g
	s.grants[g.UserID] = &restored
	s.grantOrder = append(s.grantOrder, g.UserID)
	return nil
}

// RestoreDiscount reinstates a discount under its original id and advances
// the counter past it.
func (s *Store) RestoreDiscount(id uint64, d pricing.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.discounts[id]; exists {
		return domainerr.New(domainerr.CodeConflict, opRestore, "discount id already restored")
	}
	s.discounts[id] = pricingEntry{discount: d}
	s.discountOrder = append(s.discountOrder, id)
	if id > s.nextDiscountID {
		s.nextDiscountID = id
	}
	return nil
}

// RestoreRule reinstates a purchase rule under its original id.
func (s *Store) RestoreRule(id uint64, rule pricing.PurchaseRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[id]; exists {
		return domainerr.New(domainerr.CodeConflict, opRestore, "rule id already restored")
	}
	s.rules[id] = ruleEntry{rule: rule}
	s.ruleOrder = append(s.ruleOrder, id)
	if id > s.nextRuleID {
		s.nextRuleID = id
	}
	return nil
}

// RestoreOffer reinstates an offer with its consent ledger rebuilt from the
// snapshot's approver order and pending set.
func (s *Store) RestoreOffer(v OfferView, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.offers[v.ID]; exists {
		return domainerr.New(domainerr.CodeConflict, opRestore, "offer id already restored")
	}
	o := &Offer{
		ID:        v.ID,
		BuyerID:   v.BuyerID,
		ProductID: v.ProductID,
		Price:     v.Price,
		Quantity:  v.Quantity,
		CreatedAt: createdAt,
		Status:    v.Status,
		ledger:    restoreLedger(v.Approvers, v.Pending),
	}
	s.offers[o.ID] = o
	s.offerOrder = append(s.offerOrder, o.ID)
	if o.ID > s.nextOfferID {
		s.nextOfferID = o.ID
	}
	return nil
}

// RestoreContract reinstates a pending contract with its consent ledger
// rebuilt from the snapshot.
func (s *Store) RestoreContract(v ContractView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.contracts[v.ID]; exists {
		return domainerr.New(domainerr.CodeConflict, opRestore, "contract id already restored")
	}
	c := &OwnerContract{
		ID:          v.ID,
		AssignedBy:  v.AssignedBy,
		CandidateID: v.CandidateID,
		Terms:       v.Terms,
		ledger:      restoreLedger(v.Approvers, v.Pending),
	}
	s.contracts[c.ID] = c
	s.contractOrder = append(s.contractOrder, c.ID)
	if c.ID > s.nextContractID {
		s.nextContractID = c.ID
	}
	return nil
}

func restoreLedger(approvers, pending []uuid.UUID) *consent.Ledger {
	ledger := consent.Restore(approvers)
	pendingSet := make(map[uuid.UUID]struct{}, len(pending))
	for _, id := range pending {
		pendingSet[id] = struct{}{}
	}
	for _, id := range approvers {
		if _, waiting := pendingSet[id]; !waiting {
			ledger.Approve(id)
		}
	}
	return ledger
}
