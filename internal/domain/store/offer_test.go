package store

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

func TestCreateOffer_Validation(t *testing.T) {
	s, _ := newTestStore()
	buyer := uuid.New()

	cases := []struct {
		name     string
		price    float64
		quantity int
	}{
		{name: "zero_price", price: 0, quantity: 1},
		{name: "negative_price", price: -5, quantity: 1},
		{name: "zero_quantity", price: 10, quantity: 0},
		{name: "negative_quantity", price: 10, quantity: -2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateOffer(buyer, uuid.New(), tc.price, tc.quantity, time.Now())
			if !domainerr.IsCode(err, domainerr.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOffer_ApproveThenCounterResetsConsent(t *testing.T) {
	s, founder := newTestStore()
	buyer := uuid.New()
	manager := uuid.New()
	if err := s.GrantRole(founder, manager, permission.RoleManager); err != nil {
		t.Fatalf("grant manager: %v", err)
	}

	offer, err := s.CreateOffer(buyer, uuid.New(), 50, 2, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	// the default manager has no manage-offers capability, so the founder
	// is the only required approver
	view, err := s.ApproveOffer(founder, offer.ID)
	if err != nil {
		t.Fatalf("ApproveOffer: %v", err)
	}
	if !view.Satisfied || view.Status != OfferApproved {
		t.Fatalf("expected approved offer, got %+v", view)
	}

	// counter-offer by a manage-offers holder resets the standing approval
	view, err = s.CounterOffer(founder, offer.ID, 60, 2)
	if err != nil {
		t.Fatalf("CounterOffer: %v", err)
	}
	if view.Satisfied || view.Status != OfferPending {
		t.Fatalf("counter-offer should reset consent, got %+v", view)
	}
	if view.Price != 60 {
		t.Fatalf("counter-offer price not applied: %v", view.Price)
	}
	if len(view.Pending) != 1 {
		t.Fatalf("expected the original approver still listed, got %v", view.Pending)
	}
}

func TestOffer_CounterRequiresCapabilityAndValidTerms(t *testing.T) {
	s, founder := newTestStore()
	buyer := uuid.New()

	offer, err := s.CreateOffer(buyer, uuid.New(), 50, 2, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if _, err := s.CounterOffer(buyer, offer.ID, 60, 2); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("buyer counter should be forbidden, got %v", err)
	}
	if _, err := s.CounterOffer(founder, offer.ID, -1, 2); !domainerr.IsCode(err, domainerr.CodeValidation) {
		t.Fatalf("negative counter price should fail validation, got %v", err)
	}
}

func TestOffer_ApprovalByStrangerIsNoOp(t *testing.T) {
	s, _ := newTestStore()

	offer, err := s.CreateOffer(uuid.New(), uuid.New(), 10, 1, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	view, err := s.ApproveOffer(uuid.New(), offer.ID)
	if err != nil {
		t.Fatalf("ApproveOffer: %v", err)
	}
	if view.Satisfied {
		t.Fatalf("stranger approval must not satisfy the ledger")
	}
}

func TestOffer_RejectRemoves(t *testing.T) {
	s, _ := newTestStore()

	offer, err := s.CreateOffer(uuid.New(), uuid.New(), 10, 1, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if err := s.RejectOffer(offer.ID); err != nil {
		t.Fatalf("RejectOffer: %v", err)
	}
	if _, err := s.Offer(offer.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("rejected offer should be gone, got %v", err)
	}
	if err := s.RejectOffer(offer.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("double reject should be not_found, got %v", err)
	}
}

// A role change and concurrent approvals race on the same ledger; the store
// lock must serialize them without losing membership updates.
func TestOffer_ConcurrentApprovalAndRoleChange(t *testing.T) {
	s, founder := newTestStore()

	offer, err := s.CreateOffer(uuid.New(), uuid.New(), 25, 1, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}

	owners := make([]uuid.UUID, 8)
	for i := range owners {
		owners[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for _, owner := range owners {
		wg.Add(1)
		go func(owner uuid.UUID) {
			defer wg.Done()
			if err := s.GrantRole(founder, owner, permission.RoleOwner); err != nil {
				t.Errorf("grant: %v", err)
				return
			}
			if _, err := s.ApproveOffer(owner, offer.ID); err != nil {
				t.Errorf("approve: %v", err)
			}
		}(owner)
	}
	wg.Wait()

	if _, err := s.ApproveOffer(founder, offer.ID); err != nil {
		t.Fatalf("founder approve: %v", err)
	}
	view, err := s.Offer(offer.ID)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if !view.Satisfied {
		t.Fatalf("every holder approved, offer should be satisfied: pending=%v", view.Pending)
	}
}
