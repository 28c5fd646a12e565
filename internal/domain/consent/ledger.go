package consent

import (
	"sync"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

// Ledger tracks which empowered parties have approved one proposal. The key
// set mirrors the current holders of the governing capability; the ledger
// itself has no visibility into the capability model and must be driven by
// the owning aggregate through AddApprover/RemoveApprover on role changes.
//
// All mutations and Satisfied are guarded by one mutex so an approve and a
// concurrent satisfaction check cannot race into a double finalize.
type Ledger struct {
	mu      sync.Mutex
	consent map[uuid.UUID]bool
	order   []uuid.UUID
}

const opSeed = "consent.Seed"

// Seed builds a ledger with one unapproved entry per approver. A proposal
// nobody can ever approve is useless, so an empty approver set is rejected.
func Seed(approvers []uuid.UUID) (*Ledger, error) {
	l := &Ledger{consent: make(map[uuid.UUID]bool, len(approvers))}
	for _, id := range approvers {
		if _, ok := l.consent[id]; ok {
			continue
		}
		l.consent[id] = false
		l.order = append(l.order, id)
	}
	if len(l.order) == 0 {
		return nil, domainerr.New(domainerr.CodeValidation, opSeed, "approver set is empty")
	}
	return l, nil
}

// Restore rebuilds a ledger from persisted state. Unlike Seed it tolerates
// an empty approver set: revocation can legitimately empty a live ledger,
// and that state must round-trip through storage.
func Restore(approvers []uuid.UUID) *Ledger {
	l := &Ledger{consent: make(map[uuid.UUID]bool, len(approvers))}
	for _, id := range approvers {
		if _, ok := l.consent[id]; ok {
			continue
		}
		l.consent[id] = false
		l.order = append(l.order, id)
	}
	return l
}

// Approve marks one approver's consent. Approvers absent from the ledger are
// tolerated as a no-op rather than failing loudly; role churn makes stale
// callers routine.
func (l *Ledger) Approve(approverID uuid.UUID) {
	l.SetConsent(approverID, true)
}

func (l *Ledger) SetConsent(approverID uuid.UUID, approved bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.consent[approverID]; !ok {
		return
	}
	l.consent[approverID] = approved
}

// ResetAll clears every consent flag. Called whenever the governed payload
// is edited: a counter-offer or rewritten terms invalidates prior approvals.
func (l *Ledger) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id := range l.consent {
		l.consent[id] = false
	}
}

// AddApprover inserts a new unapproved entry. No-op when already present.
func (l *Ledger) AddApprover(approverID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.consent[approverID]; ok {
		return
	}
	l.consent[approverID] = false
	l.order = append(l.order, approverID)
}

// RemoveApprover drops an entry. Removal may leave the ledger empty; an
// empty ledger is never satisfied and the proposal stays pending until a new
// approver is added.
func (l *Ledger) RemoveApprover(approverID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.consent[approverID]; !ok {
		return
	}
	delete(l.consent, approverID)
	for i, id := range l.order {
		if id == approverID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Satisfied reports unanimous consent: every entry true and the set
// non-empty.
func (l *Ledger) Satisfied() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.consent) == 0 {
		return false
	}
	for _, approved := range l.consent {
		if !approved {
			return false
		}
	}
	return true
}

// Approvers returns the current approver ids in insertion order.
func (l *Ledger) Approvers() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]uuid.UUID, len(l.order))
	copy(out, l.order)
	return out
}

// Pending returns the approvers that have not yet consented, in insertion
// order.
func (l *Ledger) Pending() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []uuid.UUID
	for _, id := range l.order {
		if !l.consent[id] {
			out = append(out, id)
		}
	}
	return out
}

// HasApprover reports whether the id is a current ledger entry.
func (l *Ledger) HasApprover(approverID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.consent[approverID]
	return ok
}
