package pricing

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCheckRule_AndNamesFirstFailingCondition(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 3, UnitPrice: 10},
	)
	ctx := EvalContext{Now: time.Now()}

	passing := MinBasketPrice(10)
	failingFirst := AtLeastQuantity(ProductScope(productX), 5)
	failingSecond := MinBasketPrice(100)

	rule := NewAndRule(passing, failingFirst, failingSecond)
	v := CheckRule(rule, basket, ctx)
	if v == nil {
		t.Fatalf("expected violation")
	}
	if v.Condition.Kind != CondAtLeastQuantity {
		t.Fatalf("expected first failing condition, got %s", v.Condition.Kind)
	}
	if !strings.Contains(v.Error(), productX.String()) {
		t.Fatalf("violation should name product %s, got %q", productX, v.Error())
	}
}

func TestCheckRule_Or(t *testing.T) {
	basket := testBasket(
		LineItem{ProductID: uuid.New(), Category: "snacks", Quantity: 2, UnitPrice: 5},
	)
	ctx := EvalContext{Now: time.Now()}

	cases := []struct {
		name    string
		rule    PurchaseRule
		wantErr bool
	}{
		{name: "one_holds", rule: NewOrRule(MinBasketPrice(100), MinBasketPrice(5)), wantErr: false},
		{name: "none_hold", rule: NewOrRule(MinBasketPrice(100), MinBasketPrice(50)), wantErr: true},
		{name: "empty_or_passes", rule: NewOrRule(), wantErr: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := CheckRule(tc.rule, basket, ctx)
			if tc.wantErr && v == nil {
				t.Fatalf("expected violation")
			}
			if !tc.wantErr && v != nil {
				t.Fatalf("unexpected violation: %v", v)
			}
		})
	}
}

func TestCheckRule_IfThenIsMaterialImplication(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 3, UnitPrice: 10},
	)
	ctx := EvalContext{Now: time.Now()}

	holds := AtLeastQuantity(ProductScope(productX), 3)
	fails := AtLeastQuantity(ProductScope(productX), 5)

	cases := []struct {
		name       string
		antecedent Condition
		consequent Condition
		wantErr    bool
	}{
		{name: "antecedent_false_passes", antecedent: fails, consequent: fails, wantErr: false},
		{name: "both_hold_passes", antecedent: holds, consequent: MinBasketPrice(10), wantErr: false},
		{name: "antecedent_holds_consequent_fails", antecedent: holds, consequent: fails, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := NewIfThenRule(tc.antecedent, tc.consequent)
			v := CheckRule(rule, basket, ctx)
			if tc.wantErr && v == nil {
				t.Fatalf("expected violation")
			}
			if !tc.wantErr && v != nil {
				t.Fatalf("unexpected violation: %v", v)
			}
		})
	}
}

func TestCheckRules_CollectsAllViolations(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 3, UnitPrice: 10},
	)
	ctx := EvalContext{Now: time.Now()}

	rules := []PurchaseRule{
		NewAndRule(MinBasketPrice(10)),                         // passes
		NewAndRule(AtLeastQuantity(ProductScope(productX), 5)), // fails
		NewAndRule(MinBasketPrice(100)),                        // fails
	}

	violations := CheckRules(rules, basket, ctx)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(violations))
	}
	if violations[0].Condition.Kind != CondAtLeastQuantity {
		t.Fatalf("violations should follow rule order, got %s first", violations[0].Condition.Kind)
	}
}
