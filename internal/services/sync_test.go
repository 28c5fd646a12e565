package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestLedgerStateRoundTrip(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	raw, err := encodeLedgerState([]uuid.UUID{a, b, c}, []uuid.UUID{b})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	state, err := decodeLedgerState(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Approvers) != 3 || state.Approvers[0] != a || state.Approvers[2] != c {
		t.Fatalf("approver order not preserved: %v", state.Approvers)
	}
	if len(state.Pending) != 1 || state.Pending[0] != b {
		t.Fatalf("pending set not preserved: %v", state.Pending)
	}
}

func TestLedgerStateEmptyApprovers(t *testing.T) {
	// a ledger emptied by revocation must still round-trip
	raw, err := encodeLedgerState(nil, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	state, err := decodeLedgerState(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(state.Approvers) != 0 || len(state.Pending) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestDecodeLedgerStateRejectsEmptyPayload(t *testing.T) {
	if _, err := decodeLedgerState(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}
