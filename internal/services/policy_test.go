package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestPolicyServiceLoadsAlcoholRules(t *testing.T) {
	path := writePolicyFile(t, `
categories:
  - category: alcohol
    min_age: 18
    time_windowed: true
    no_sale_from_hour: 23
    no_sale_to_hour: 6
`)
	t.Setenv("POLICY_FILE", path)

	svc, err := NewPolicyService(testLogger(t))
	if err != nil {
		t.Fatalf("NewPolicyService: %v", err)
	}
	rules := svc.DefaultRules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 default rules, got %d", len(rules))
	}

	// an underage buyer with alcohol in the basket violates the age rule
	basket := pricing.NewBasket([]pricing.LineItem{{
		ProductID: uuid.New(),
		Category:  pricing.CategoryAlcohol,
		Quantity:  1,
		UnitPrice: 9.5,
	}})
	evalCtx := pricing.EvalContext{
		Now:            time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		BuyerBirthDate: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	violations := pricing.CheckRules(rules, basket, evalCtx)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation for underage buyer, got %d", len(violations))
	}

	// an adult buying at noon passes both rules
	evalCtx.BuyerBirthDate = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	if v := pricing.CheckRules(rules, basket, evalCtx); len(v) != 0 {
		t.Fatalf("expected no violations for adult at noon, got %v", v)
	}

	// the same adult at 2am hits the time window
	evalCtx.Now = time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	if v := pricing.CheckRules(rules, basket, evalCtx); len(v) != 1 {
		t.Fatalf("expected time-window violation at 2am, got %v", v)
	}
}

func TestPolicyServiceMissingFile(t *testing.T) {
	t.Setenv("POLICY_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	svc, err := NewPolicyService(testLogger(t))
	if err != nil {
		t.Fatalf("NewPolicyService should tolerate a missing file: %v", err)
	}
	if rules := svc.DefaultRules(); len(rules) != 0 {
		t.Fatalf("expected no rules without a policy file, got %d", len(rules))
	}
}

func TestPolicyServiceRejectsUnnamedCategory(t *testing.T) {
	path := writePolicyFile(t, `
categories:
  - min_age: 21
`)
	t.Setenv("POLICY_FILE", path)
	if _, err := NewPolicyService(testLogger(t)); err == nil {
		t.Fatalf("expected error for category without a name")
	}
}
