package pricing

import (
	"fmt"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

// RuleKind tags the closed set of purchase rule variants.
type RuleKind string

const (
	RuleAnd    RuleKind = "and"
	RuleOr     RuleKind = "or"
	RuleIfThen RuleKind = "if_then"
)

// PurchaseRule validates a basket at checkout time. Rules never compute a
// value; they either pass or raise a Violation naming the unmet condition.
type PurchaseRule struct {
	Kind       RuleKind    `json:"kind"`
	Conditions []Condition `json:"conditions,omitempty"`

	// if_then only: material implication, consequent must hold whenever
	// the antecedent holds.
	Antecedent *Condition `json:"antecedent,omitempty"`
	Consequent *Condition `json:"consequent,omitempty"`
}

func NewAndRule(conditions ...Condition) PurchaseRule {
	return PurchaseRule{Kind: RuleAnd, Conditions: conditions}
}

func NewOrRule(conditions ...Condition) PurchaseRule {
	return PurchaseRule{Kind: RuleOr, Conditions: conditions}
}

func NewIfThenRule(antecedent, consequent Condition) PurchaseRule {
	return PurchaseRule{Kind: RuleIfThen, Antecedent: &antecedent, Consequent: &consequent}
}

// ValidateRule checks a rule decoded from an API request.
func ValidateRule(rule PurchaseRule) error {
	const op = "pricing.ValidateRule"
	switch rule.Kind {
	case RuleAnd, RuleOr:
		for _, cond := range rule.Conditions {
			if err := validateCondition(cond); err != nil {
				return err
			}
		}
		return nil
	case RuleIfThen:
		if rule.Antecedent == nil || rule.Consequent == nil {
			return domainerr.New(domainerr.CodeValidation, op, "if-then rule requires antecedent and consequent")
		}
		if err := validateCondition(*rule.Antecedent); err != nil {
			return err
		}
		return validateCondition(*rule.Consequent)
	default:
		return domainerr.Newf(domainerr.CodeValidation, op, "unknown rule kind %q", rule.Kind)
	}
}

// Violation is the result of a failed purchase rule check. It carries the
// unmet condition so the caller can produce a user-facing message.
type Violation struct {
	RuleID    uint64    `json:"rule_id,omitempty"`
	Condition Condition `json:"condition"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("purchase rule violated: requires %s", v.Condition.Describe())
}

// CheckRule evaluates one rule against the basket. On failure the returned
// violation names the first failing condition in insertion order, which
// keeps the result deterministic for a given basket.
func CheckRule(rule PurchaseRule, basket Basket, ctx EvalContext) *Violation {
	switch rule.Kind {
	case RuleAnd:
		for _, cond := range rule.Conditions {
			if !EvaluateCondition(cond, basket, ctx) {
				return &Violation{Condition: cond}
			}
		}
		return nil
	case RuleOr:
		if len(rule.Conditions) == 0 {
			return nil
		}
		for _, cond := range rule.Conditions {
			if EvaluateCondition(cond, basket, ctx) {
				return nil
			}
		}
		return &Violation{Condition: rule.Conditions[0]}
	case RuleIfThen:
		if rule.Antecedent == nil || rule.Consequent == nil {
			return nil
		}
		if !EvaluateCondition(*rule.Antecedent, basket, ctx) {
			return nil
		}
		if EvaluateCondition(*rule.Consequent, basket, ctx) {
			return nil
		}
		return &Violation{Condition: *rule.Consequent}
	default:
		return nil
	}
}

// CheckRules evaluates every top-level rule and collects all violations, in
// rule order. Checkout succeeds only when the result is empty.
func CheckRules(rules []PurchaseRule, basket Basket, ctx EvalContext) []Violation {
	var violations []Violation
	for _, rule := range rules {
		if v := CheckRule(rule, basket, ctx); v != nil {
			violations = append(violations, *v)
		}
	}
	return violations
}
