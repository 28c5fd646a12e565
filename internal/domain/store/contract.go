package store

import (
	"strings"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/consent"
	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

// OwnerContract proposes promoting an existing member to store owner. It is
// gated by unanimous consent of every manage-contracts holder; on unanimity
// the candidate is granted the owner role and the contract (plus any other
// pending contract naming the same candidate) is removed.
type OwnerContract struct {
	ID          uint64
	AssignedBy  uuid.UUID
	CandidateID uuid.UUID
	Terms       string

	ledger *consent.Ledger
}

// ContractView is a copy-safe snapshot of a contract.
type ContractView struct {
	ID          uint64      `json:"id"`
	AssignedBy  uuid.UUID   `json:"assigned_by"`
	CandidateID uuid.UUID   `json:"candidate_id"`
	Terms       string      `json:"terms"`
	Approvers   []uuid.UUID `json:"approvers"`
	Pending     []uuid.UUID `json:"pending_approvers"`
	Satisfied   bool        `json:"satisfied"`
	Finalized   bool        `json:"finalized"`
}

func (c *OwnerContract) view(finalized bool) ContractView {
	return ContractView{
		ID:          c.ID,
		AssignedBy:  c.AssignedBy,
		CandidateID: c.CandidateID,
		Terms:       c.Terms,
		Approvers:   c.ledger.Approvers(),
		Pending:     c.ledger.Pending(),
		Satisfied:   c.ledger.Satisfied(),
		Finalized:   finalized,
	}
}

const (
	opCreateContract  = "store.CreateContract"
	opUpdateContract  = "store.UpdateContractTerms"
	opApproveContract = "store.ApproveContract"
	opContract        = "store.Contract"
)

// CreateContract opens an owner-appointment proposal. The assigner must hold
// appoint-owner; the candidate must not already hold a role that makes the
// promotion meaningless.
func (s *Store) CreateContract(assignerID, candidateID uuid.UUID, terms string) (ContractView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	assigner, ok := s.grants[assignerID]
	if !ok || !assigner.Capabilities.Has(permission.CapAppointOwner) {
		return ContractView{}, domainerr.New(domainerr.CodeForbidden, opCreateContract, "assigner lacks appoint-owner capability")
	}
	if g, exists := s.grants[candidateID]; exists && g.Role != permission.RoleManager {
		return ContractView{}, domainerr.New(domainerr.CodeConflict, opCreateContract, "candidate already owns this store")
	}
	ledger, err := consent.Seed(s.holdersOfLocked(permission.CapManageContracts))
	if err != nil {
		return ContractView{}, domainerr.Wrap(domainerr.CodeValidation, opCreateContract, err)
	}

	s.nextContractID++
	c := &OwnerContract{
		ID:          s.nextContractID,
		AssignedBy:  assignerID,
		CandidateID: candidateID,
		Terms:       strings.TrimSpace(terms),
		ledger:      ledger,
	}
	s.contracts[c.ID] = c
	s.contractOrder = append(s.contractOrder, c.ID)
	return c.view(false), nil
}

// UpdateContractTerms rewrites the contract text. Editing the payload resets
// every consent entry.
func (s *Store) UpdateContractTerms(actorID uuid.UUID, contractID uint64, terms string) (ContractView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManageContracts) {
		return ContractView{}, domainerr.New(domainerr.CodeForbidden, opUpdateContract, "actor lacks manage-contracts capability")
	}
	c, ok := s.contracts[contractID]
	if !ok {
		return ContractView{}, domainerr.New(domainerr.CodeNotFound, opUpdateContract, "contract not found")
	}
	c.Terms = strings.TrimSpace(terms)
	c.ledger.ResetAll()
	return c.view(false), nil
}

// ApproveContract records one party's consent; unknown approvers are a
// no-op. Unanimity finalizes the contract: the candidate is granted the
// owner role (attributed to the assigner), this contract and any other
// pending contract naming the same candidate are removed, and every live
// proposal ledger gains the new owner as a required approver.
func (s *Store) ApproveContract(approverID uuid.UUID, contractID uint64) (ContractView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[contractID]
	if !ok {
		return ContractView{}, domainerr.New(domainerr.CodeNotFound, opApproveContract, "contract not found")
	}
	c.ledger.Approve(approverID)
	if !c.ledger.Satisfied() {
		return c.view(false), nil
	}

	view := c.view(true)
	s.dropContractLocked(contractID)
	var duplicates []uint64
	for _, id := range s.contractOrder {
		if s.contracts[id].CandidateID == c.CandidateID {
			duplicates = append(duplicates, id)
		}
	}
	for _, id := range duplicates {
		s.dropContractLocked(id)
	}
	// grantLocked syncs the new owner into every remaining ledger
	if g, exists := s.grants[c.CandidateID]; exists {
		// promote an existing manager in place
		delete(s.grants, g.UserID)
		for i, ordered := range s.grantOrder {
			if ordered == g.UserID {
				s.grantOrder = append(s.grantOrder[:i], s.grantOrder[i+1:]...)
				break
			}
		}
	}
	if err := s.grantLocked(c.AssignedBy, c.CandidateID, permission.RoleOwner); err != nil {
		return ContractView{}, domainerr.Wrap(domainerr.CodeInternal, opApproveContract, err)
	}
	return view, nil
}

// RejectContract discards the contract and its ledger without committing.
func (s *Store) RejectContract(contractID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contracts[contractID]; !ok {
		return domainerr.New(domainerr.CodeNotFound, opContract, "contract not found")
	}
	s.dropContractLocked(contractID)
	return nil
}

func (s *Store) dropContractLocked(contractID uint64) {
	delete(s.contracts, contractID)
	for i, id := range s.contractOrder {
		if id == contractID {
			s.contractOrder = append(s.contractOrder[:i], s.contractOrder[i+1:]...)
			break
		}
	}
}

// Contract returns a snapshot of one contract.
func (s *Store) Contract(contractID uint64) (ContractView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[contractID]
	if !ok {
		return ContractView{}, domainerr.New(domainerr.CodeNotFound, opContract, "contract not found")
	}
	return c.view(false), nil
}

// Contracts returns snapshots of all pending contracts in creation order.
func (s *Store) Contracts() []ContractView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ContractView, 0, len(s.contractOrder))
	for _, id := range s.contractOrder {
		out = append(out, s.contracts[id].view(false))
	}
	return out
}
