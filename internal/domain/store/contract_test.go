package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

func TestCreateContract_Guards(t *testing.T) {
	s, founder := newTestStore()
	manager := uuid.New()
	if err := s.GrantRole(founder, manager, permission.RoleManager); err != nil {
		t.Fatalf("grant manager: %v", err)
	}

	if _, err := s.CreateContract(manager, uuid.New(), "terms"); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("manager cannot assign owner contracts, got %v", err)
	}
	if _, err := s.CreateContract(founder, founder, "terms"); !domainerr.IsCode(err, domainerr.CodeConflict) {
		t.Fatalf("founder candidate should conflict, got %v", err)
	}
}

func TestContract_FinalizeGrantsOwnerAndDropsDuplicates(t *testing.T) {
	s, founder := newTestStore()
	ownerA := uuid.New()
	candidate := uuid.New()

	if err := s.GrantRole(founder, ownerA, permission.RoleOwner); err != nil {
		t.Fatalf("grant ownerA: %v", err)
	}

	first, err := s.CreateContract(founder, candidate, "70/30 split")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	second, err := s.CreateContract(ownerA, candidate, "60/40 split")
	if err != nil {
		t.Fatalf("CreateContract duplicate: %v", err)
	}

	if _, err := s.ApproveContract(founder, first.ID); err != nil {
		t.Fatalf("founder approve: %v", err)
	}
	view, err := s.ApproveContract(ownerA, first.ID)
	if err != nil {
		t.Fatalf("ownerA approve: %v", err)
	}
	if !view.Finalized {
		t.Fatalf("unanimous consent should finalize, got %+v", view)
	}

	if caps := s.Capabilities(candidate); caps != permission.AllCapabilities() {
		t.Fatalf("candidate should be a full owner, caps=%s", caps)
	}
	if _, err := s.Contract(first.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("finalized contract should be removed, got %v", err)
	}
	if _, err := s.Contract(second.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("other contract naming the candidate should be removed, got %v", err)
	}
}

func TestContract_FinalizePromotesManagerInPlace(t *testing.T) {
	s, founder := newTestStore()
	manager := uuid.New()
	if err := s.GrantRole(founder, manager, permission.RoleManager); err != nil {
		t.Fatalf("grant manager: %v", err)
	}

	c, err := s.CreateContract(founder, manager, "promotion")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	view, err := s.ApproveContract(founder, c.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !view.Finalized {
		t.Fatalf("expected finalize, got %+v", view)
	}
	if caps := s.Capabilities(manager); caps != permission.AllCapabilities() {
		t.Fatalf("promoted manager should hold all capabilities, caps=%s", caps)
	}
}

func TestContract_FinalizeAddsNewOwnerToLiveLedgers(t *testing.T) {
	s, founder := newTestStore()
	candidate := uuid.New()

	offer, err := s.CreateOffer(uuid.New(), uuid.New(), 30, 1, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	if _, err := s.ApproveOffer(founder, offer.ID); err != nil {
		t.Fatalf("approve offer: %v", err)
	}

	c, err := s.CreateContract(founder, candidate, "terms")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	if _, err := s.ApproveContract(founder, c.ID); err != nil {
		t.Fatalf("approve contract: %v", err)
	}

	// the new owner is now a required approver for the still-live offer
	view, err := s.Offer(offer.ID)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if view.Satisfied {
		t.Fatalf("offer should need the new owner's consent")
	}
	if _, err := s.ApproveOffer(candidate, offer.ID); err != nil {
		t.Fatalf("candidate approve: %v", err)
	}
	view, _ = s.Offer(offer.ID)
	if !view.Satisfied {
		t.Fatalf("offer should satisfy after the new owner consents")
	}
}

func TestContract_UpdateTermsResetsConsent(t *testing.T) {
	s, founder := newTestStore()
	ownerA := uuid.New()
	if err := s.GrantRole(founder, ownerA, permission.RoleOwner); err != nil {
		t.Fatalf("grant ownerA: %v", err)
	}

	c, err := s.CreateContract(founder, uuid.New(), "v1")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	if _, err := s.ApproveContract(founder, c.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	view, err := s.UpdateContractTerms(ownerA, c.ID, "v2")
	if err != nil {
		t.Fatalf("UpdateContractTerms: %v", err)
	}
	if view.Satisfied {
		t.Fatalf("terms edit should reset consent")
	}
	if len(view.Pending) != 2 {
		t.Fatalf("both holders should be pending again, got %v", view.Pending)
	}
	if view.Terms != "v2" {
		t.Fatalf("terms not applied: %q", view.Terms)
	}
}

func TestContract_Reject(t *testing.T) {
	s, founder := newTestStore()

	c, err := s.CreateContract(founder, uuid.New(), "terms")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}
	if err := s.RejectContract(c.ID); err != nil {
		t.Fatalf("RejectContract: %v", err)
	}
	if _, err := s.Contract(c.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("rejected contract should be gone, got %v", err)
	}
}
