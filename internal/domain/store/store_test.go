package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

func newTestStore() (*Store, uuid.UUID) {
	founder := uuid.New()
	return New(uuid.New(), founder), founder
}

func TestNew_SeedsFounderGrant(t *testing.T) {
	s, founder := newTestStore()

	caps := s.Capabilities(founder)
	if caps != permission.AllCapabilities() {
		t.Fatalf("founder capabilities = %s, want all", caps)
	}
	holders := s.HoldersOf(permission.CapManageOffers)
	if len(holders) != 1 || holders[0] != founder {
		t.Fatalf("manage-offers holders = %v, want founder only", holders)
	}
}

func TestGrantRole_CapabilityChecks(t *testing.T) {
	s, founder := newTestStore()
	manager := uuid.New()
	outsider := uuid.New()

	if err := s.GrantRole(outsider, uuid.New(), permission.RoleManager); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("outsider grant should be forbidden, got %v", err)
	}
	if err := s.GrantRole(founder, manager, permission.RoleManager); err != nil {
		t.Fatalf("founder grant: %v", err)
	}
	if err := s.GrantRole(founder, manager, permission.RoleManager); !domainerr.IsCode(err, domainerr.CodeConflict) {
		t.Fatalf("second role for same user should conflict, got %v", err)
	}
	// default managers cannot appoint anyone
	if err := s.GrantRole(manager, uuid.New(), permission.RoleManager); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("manager appointment should be forbidden, got %v", err)
	}
}

func TestRevokeRole_CascadesTransitiveGrants(t *testing.T) {
	s, founder := newTestStore()
	ownerA := uuid.New()
	managerB := uuid.New()
	managerC := uuid.New()

	if err := s.GrantRole(founder, ownerA, permission.RoleOwner); err != nil {
		t.Fatalf("grant ownerA: %v", err)
	}
	if err := s.GrantRole(ownerA, managerB, permission.RoleManager); err != nil {
		t.Fatalf("grant managerB: %v", err)
	}
	if err := s.GrantRole(founder, managerC, permission.RoleManager); err != nil {
		t.Fatalf("grant managerC: %v", err)
	}

	if err := s.RevokeRole(founder, ownerA); err != nil {
		t.Fatalf("revoke ownerA: %v", err)
	}
	if s.Capabilities(ownerA) != 0 {
		t.Fatalf("revoked owner still holds capabilities")
	}
	if s.Capabilities(managerB) != 0 {
		t.Fatalf("transitively granted manager should be revoked too")
	}
	if s.Capabilities(managerC) == 0 {
		t.Fatalf("unrelated manager lost their role")
	}
}

func TestRevokeRole_Guards(t *testing.T) {
	s, founder := newTestStore()
	manager := uuid.New()
	if err := s.GrantRole(founder, manager, permission.RoleManager); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := s.RevokeRole(founder, founder); !domainerr.IsCode(err, domainerr.CodeValidation) {
		t.Fatalf("founder revocation should be rejected, got %v", err)
	}
	if err := s.RevokeRole(manager, founder); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("manager lacks remove-roles, got %v", err)
	}
	if err := s.RevokeRole(founder, uuid.New()); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("revoking a stranger should be not_found, got %v", err)
	}
}

func TestRoleChange_SyncsOfferLedgers(t *testing.T) {
	s, founder := newTestStore()
	buyer := uuid.New()

	offer, err := s.CreateOffer(buyer, uuid.New(), 50, 2, time.Now())
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}

	// a second owner arrives: their consent becomes required
	ownerB := uuid.New()
	if err := s.GrantRole(founder, ownerB, permission.RoleOwner); err != nil {
		t.Fatalf("grant ownerB: %v", err)
	}
	view, err := s.ApproveOffer(founder, offer.ID)
	if err != nil {
		t.Fatalf("ApproveOffer: %v", err)
	}
	if view.Satisfied {
		t.Fatalf("offer satisfied without the new owner's consent")
	}

	// the new owner leaves again: the founder's standing approval suffices
	if err := s.RevokeRole(founder, ownerB); err != nil {
		t.Fatalf("revoke ownerB: %v", err)
	}
	view, err = s.Offer(offer.ID)
	if err != nil {
		t.Fatalf("Offer: %v", err)
	}
	if !view.Satisfied {
		t.Fatalf("offer should satisfy once the departed owner is no longer required")
	}
}

func TestRevokeRole_CascadeRejectsContractsByRevokedAssigner(t *testing.T) {
	s, founder := newTestStore()
	ownerA := uuid.New()
	candidate := uuid.New()

	if err := s.GrantRole(founder, ownerA, permission.RoleOwner); err != nil {
		t.Fatalf("grant ownerA: %v", err)
	}
	contract, err := s.CreateContract(ownerA, candidate, "standard terms")
	if err != nil {
		t.Fatalf("CreateContract: %v", err)
	}

	if err := s.RevokeRole(founder, ownerA); err != nil {
		t.Fatalf("revoke ownerA: %v", err)
	}
	if _, err := s.Contract(contract.ID); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("contract assigned by revoked owner should be gone, got %v", err)
	}
}
