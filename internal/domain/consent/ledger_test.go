package consent

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

func TestSeed_RejectsEmptyApproverSet(t *testing.T) {
	_, err := Seed(nil)
	if err == nil {
		t.Fatalf("expected error for empty approver set")
	}
	if !domainerr.IsCode(err, domainerr.CodeValidation) {
		t.Fatalf("expected validation code, got %v", domainerr.CodeOf(err))
	}
}

func TestSeed_DeduplicatesApprovers(t *testing.T) {
	a := uuid.New()
	l, err := Seed([]uuid.UUID{a, a})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if got := len(l.Approvers()); got != 1 {
		t.Fatalf("expected 1 approver, got %d", got)
	}
}

func TestLedger_UnanimityAndReset(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	l, err := Seed([]uuid.UUID{a, b, c})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	l.Approve(a)
	l.Approve(b)
	if l.Satisfied() {
		t.Fatalf("satisfied with one approver outstanding")
	}

	l.Approve(c)
	if !l.Satisfied() {
		t.Fatalf("expected satisfied after unanimous approval")
	}

	l.ResetAll()
	if l.Satisfied() {
		t.Fatalf("satisfied after reset")
	}
	if got := len(l.Approvers()); got != 3 {
		t.Fatalf("reset should keep all entries, got %d", got)
	}
	if got := len(l.Pending()); got != 3 {
		t.Fatalf("expected 3 pending after reset, got %d", got)
	}
}

func TestLedger_UnknownApproverIsNoOp(t *testing.T) {
	a := uuid.New()
	l, _ := Seed([]uuid.UUID{a})

	l.Approve(uuid.New())
	if l.Satisfied() {
		t.Fatalf("stray approval satisfied the ledger")
	}
	l.Approve(a)
	if !l.Satisfied() {
		t.Fatalf("expected satisfied")
	}
}

func TestLedger_MembershipSync(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	l, _ := Seed([]uuid.UUID{a, b})

	// B loses the governing capability: only A is still required.
	l.RemoveApprover(b)
	l.Approve(a)
	if !l.Satisfied() {
		t.Fatalf("expected satisfied once the remaining approver consents")
	}

	// A new holder arrives after satisfaction: back to pending until they
	// also approve.
	l.AddApprover(c)
	if l.Satisfied() {
		t.Fatalf("new approver should revert satisfaction")
	}
	l.Approve(c)
	if !l.Satisfied() {
		t.Fatalf("expected satisfied after the new approver consents")
	}
}

func TestLedger_AddApproverIsIdempotent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	l, _ := Seed([]uuid.UUID{a})

	l.Approve(a)
	l.AddApprover(b)
	l.AddApprover(b)
	if got := len(l.Approvers()); got != 2 {
		t.Fatalf("expected 2 approvers, got %d", got)
	}
	if l.Satisfied() {
		t.Fatalf("ledger satisfied with unapproved entry")
	}
	// re-adding an existing approver must not clear their consent
	l.AddApprover(a)
	l.Approve(b)
	if !l.Satisfied() {
		t.Fatalf("expected satisfied")
	}
}

func TestLedger_RemovalToEmptyStaysUnsatisfied(t *testing.T) {
	a := uuid.New()
	l, _ := Seed([]uuid.UUID{a})

	l.Approve(a)
	l.RemoveApprover(a)
	if l.Satisfied() {
		t.Fatalf("empty ledger must not be satisfied")
	}

	b := uuid.New()
	l.AddApprover(b)
	l.Approve(b)
	if !l.Satisfied() {
		t.Fatalf("ledger should recover once a new approver consents")
	}
}

func TestLedger_ConcurrentApprovals(t *testing.T) {
	approvers := make([]uuid.UUID, 32)
	for i := range approvers {
		approvers[i] = uuid.New()
	}
	l, _ := Seed(approvers)

	var wg sync.WaitGroup
	for _, id := range approvers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			l.Approve(id)
			_ = l.Satisfied()
		}(id)
	}
	wg.Wait()

	if !l.Satisfied() {
		t.Fatalf("expected satisfied after all concurrent approvals")
	}
}
