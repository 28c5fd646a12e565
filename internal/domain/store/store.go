package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

// Store is the per-store aggregate. One mutex serializes role mutations,
// consent-workflow mutations and discount/rule collection edits, so a role
// change and a concurrent approval cannot race on ledger membership.
// Evaluation of discounts and rules is read-only over an immutable basket
// snapshot and takes copies of the collections under the lock.
//
// Discounts, rules, offers and contracts are owned by integer id from
// per-store monotonic counters; cross-references between them are ids, never
// shared pointers.
type Store struct {
	mu        sync.Mutex
	id        uuid.UUID
	founderID uuid.UUID

	grants     map[uuid.UUID]*permission.Grant
	grantOrder []uuid.UUID

	discounts     map[uint64]pricingEntry
	discountOrder []uint64
	rules         map[uint64]ruleEntry
	ruleOrder     []uint64

	offers        map[uint64]*Offer
	offerOrder    []uint64
	contracts     map[uint64]*OwnerContract
	contractOrder []uint64

	nextDiscountID uint64
	nextRuleID     uint64
	nextOfferID    uint64
	nextContractID uint64
}

// New creates a store aggregate with the founder's all-capability grant
// seeded.
func New(id, founderID uuid.UUID) *Store {
	s := &Store{
		id:        id,
		founderID: founderID,
		grants:    make(map[uuid.UUID]*permission.Grant),
		discounts: make(map[uint64]pricingEntry),
		rules:     make(map[uint64]ruleEntry),
		offers:    make(map[uint64]*Offer),
		contracts: make(map[uint64]*OwnerContract),
	}
	s.grants[founderID] = permission.NewGrant(id, founderID, uuid.Nil, permission.RoleFounder)
	s.grantOrder = append(s.grantOrder, founderID)
	return s
}

func (s *Store) ID() uuid.UUID        { return s.id }
func (s *Store) FounderID() uuid.UUID { return s.founderID }

// Capabilities returns the user's current capability bits, zero when the
// user holds no role.
func (s *Store) Capabilities(userID uuid.UUID) permission.Capability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilitiesLocked(userID)
}

func (s *Store) capabilitiesLocked(userID uuid.UUID) permission.Capability {
	g, ok := s.grants[userID]
	if !ok {
		return 0
	}
	return g.Capabilities
}

// HoldersOf returns users carrying the capability, in grant order.
func (s *Store) HoldersOf(cap permission.Capability) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.holdersOfLocked(cap)
}

func (s *Store) holdersOfLocked(cap permission.Capability) []uuid.UUID {
	var out []uuid.UUID
	for _, userID := range s.grantOrder {
		if s.grants[userID].Capabilities.Has(cap) {
			out = append(out, userID)
		}
	}
	return out
}

// Grants returns a copy of all current grants in grant order.
func (s *Store) Grants() []permission.Grant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]permission.Grant, 0, len(s.grantOrder))
	for _, userID := range s.grantOrder {
		out = append(out, *s.grants[userID])
	}
	return out
}

const (
	opGrantRole  = "store.GrantRole"
	opRevokeRole = "store.RevokeRole"
)

// GrantRole assigns a role to userID on behalf of grantorID. Appointing a
// manager requires CapAppointManager; appointing an owner requires
// CapAppointOwner (owner promotion of an existing member normally goes
// through an appointment contract instead). Every live proposal ledger whose
// governing capability the new grant carries gains the user as a required
// approver.
func (s *Store) GrantRole(grantorID, userID uuid.UUID, role permission.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grantor, ok := s.grants[grantorID]
	if !ok {
		return domainerr.New(domainerr.CodeForbidden, opGrantRole, "grantor holds no role in this store")
	}
	var need permission.Capability
	switch role {
	case permission.RoleManager:
		need = permission.CapAppointManager
	case permission.RoleOwner:
		need = permission.CapAppointOwner
	default:
		return domainerr.Newf(domainerr.CodeValidation, opGrantRole, "role %s cannot be granted", role)
	}
	if !grantor.Capabilities.Has(need) {
		return domainerr.Newf(domainerr.CodeForbidden, opGrantRole, "grantor lacks capability to appoint %s", role)
	}
	return s.grantLocked(grantorID, userID, role)
}

func (s *Store) grantLocked(grantorID, userID uuid.UUID, role permission.Role) error {
	if _, exists := s.grants[userID]; exists {
		return domainerr.New(domainerr.CodeConflict, opGrantRole, "user already holds a role in this store")
	}
	g := permission.NewGrant(s.id, userID, grantorID, role)
	s.grants[userID] = g
	s.grantOrder = append(s.grantOrder, userID)
	s.syncLedgersOnGrantLocked(g)
	return nil
}

func (s *Store) syncLedgersOnGrantLocked(g *permission.Grant) {
	if g.Capabilities.Has(permission.CapManageOffers) {
		for _, id := range s.offerOrder {
			s.offers[id].ledger.AddApprover(g.UserID)
			// a satisfied-but-unpaid offer regresses to pending consent
			if s.offers[id].Status == OfferApproved {
				s.offers[id].Status = OfferPending
			}
		}
	}
	if g.Capabilities.Has(permission.CapManageContracts) {
		for _, id := range s.contractOrder {
			s.contracts[id].ledger.AddApprover(g.UserID)
		}
	}
}

// RevokeRole removes userID's role on behalf of revokerID, cascading to
// every role the user transitively granted. Each removed user leaves every
// proposal ledger, and contracts assigned by a removed user are rejected
// with them.
func (s *Store) RevokeRole(revokerID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	revoker, ok := s.grants[revokerID]
	if !ok || !revoker.Capabilities.Has(permission.CapRemoveRoles) {
		return domainerr.New(domainerr.CodeForbidden, opRevokeRole, "revoker lacks remove-roles capability")
	}
	if userID == s.founderID {
		return domainerr.New(domainerr.CodeValidation, opRevokeRole, "founder role cannot be revoked")
	}
	if _, ok := s.grants[userID]; !ok {
		return domainerr.New(domainerr.CodeNotFound, opRevokeRole, "user holds no role in this store")
	}

	removed := s.collectCascadeLocked(userID)
	for _, id := range removed {
		delete(s.grants, id)
		for i, ordered := range s.grantOrder {
			if ordered == id {
				s.grantOrder = append(s.grantOrder[:i], s.grantOrder[i+1:]...)
				break
			}
		}
	}
	s.syncLedgersOnRevokeLocked(removed)
	return nil
}

// collectCascadeLocked returns userID plus every user whose grant descends
// from it through GrantedBy.
func (s *Store) collectCascadeLocked(userID uuid.UUID) []uuid.UUID {
	removed := []uuid.UUID{userID}
	removedSet := map[uuid.UUID]struct{}{userID: {}}
	for {
		grew := false
		for _, ordered := range s.grantOrder {
			g := s.grants[ordered]
			if _, gone := removedSet[g.UserID]; gone {
				continue
			}
			if _, parentGone := removedSet[g.GrantedBy]; parentGone {
				removedSet[g.UserID] = struct{}{}
				removed = append(removed, g.UserID)
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	return removed
}

func (s *Store) syncLedgersOnRevokeLocked(removed []uuid.UUID) {
	removedSet := make(map[uuid.UUID]struct{}, len(removed))
	for _, id := range removed {
		removedSet[id] = struct{}{}
	}
	for _, id := range s.offerOrder {
		for _, userID := range removed {
			s.offers[id].ledger.RemoveApprover(userID)
		}
	}
	// contracts assigned by a removed user fall with them
	var rejected []uint64
	for _, id := range s.contractOrder {
		c := s.contracts[id]
		if _, gone := removedSet[c.AssignedBy]; gone {
			rejected = append(rejected, id)
			continue
		}
		for _, userID := range removed {
			c.ledger.RemoveApprover(userID)
		}
	}
	for _, id := range rejected {
		s.dropContractLocked(id)
	}
}
