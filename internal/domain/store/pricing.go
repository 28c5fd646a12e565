package store

import (
	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
)

type pricingEntry struct {
	discount pricing.Discount
}

type ruleEntry struct {
	rule pricing.PurchaseRule
}

const (
	opAddDiscount = "store.AddDiscount"
	opAddRule     = "store.AddPurchaseRule"
	opPriceBasket = "store.PriceBasket"
)

// AddDiscount registers a top-level discount and returns its id. When the
// discount is a composite absorbing previously independent discounts, pass
// their ids in absorb: they are silently detached from top-level existence
// and live on only inside the new composite.
func (s *Store) AddDiscount(actorID uuid.UUID, d pricing.Discount, absorb ...uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManageDiscounts) {
		return 0, domainerr.New(domainerr.CodeForbidden, opAddDiscount, "actor lacks manage-discounts capability")
	}
	for _, id := range absorb {
		if _, ok := s.discounts[id]; !ok {
			return 0, domainerr.Newf(domainerr.CodeNotFound, opAddDiscount, "absorbed discount %d not found", id)
		}
	}
	for _, id := range absorb {
		s.removeDiscountLocked(id)
	}

	s.nextDiscountID++
	s.discounts[s.nextDiscountID] = pricingEntry{discount: d}
	s.discountOrder = append(s.discountOrder, s.nextDiscountID)
	return s.nextDiscountID, nil
}

// RemoveDiscount drops a top-level discount.
func (s *Store) RemoveDiscount(actorID uuid.UUID, discountID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManageDiscounts) {
		return domainerr.New(domainerr.CodeForbidden, opAddDiscount, "actor lacks manage-discounts capability")
	}
	if _, ok := s.discounts[discountID]; !ok {
		return domainerr.New(domainerr.CodeNotFound, opAddDiscount, "discount not found")
	}
	s.removeDiscountLocked(discountID)
	return nil
}

func (s *Store) removeDiscountLocked(discountID uint64) {
	delete(s.discounts, discountID)
	for i, id := range s.discountOrder {
		if id == discountID {
			s.discountOrder = append(s.discountOrder[:i], s.discountOrder[i+1:]...)
			break
		}
	}
}

// RemoveProductReferences cascade-removes every discount that depends on the
// deleted product and returns the removed discount ids.
func (s *Store) RemoveProductReferences(productID uuid.UUID) []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []uint64
	for _, id := range s.discountOrder {
		for _, dep := range pricing.DependsOnProducts(s.discounts[id].discount) {
			if dep == productID {
				removed = append(removed, id)
				break
			}
		}
	}
	for _, id := range removed {
		s.removeDiscountLocked(id)
	}
	return removed
}

// Discounts returns the top-level discounts keyed by id, in insertion order.
func (s *Store) Discounts() map[uint64]pricing.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint64]pricing.Discount, len(s.discounts))
	for id, entry := range s.discounts {
		out[id] = entry.discount
	}
	return out
}

// AddPurchaseRule registers a top-level purchase rule.
func (s *Store) AddPurchaseRule(actorID uuid.UUID, rule pricing.PurchaseRule) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManagePurchaseRules) {
		return 0, domainerr.New(domainerr.CodeForbidden, opAddRule, "actor lacks manage-purchase-rules capability")
	}
	s.nextRuleID++
	s.rules[s.nextRuleID] = ruleEntry{rule: rule}
	s.ruleOrder = append(s.ruleOrder, s.nextRuleID)
	return s.nextRuleID, nil
}

// RemovePurchaseRule drops a top-level purchase rule.
func (s *Store) RemovePurchaseRule(actorID uuid.UUID, ruleID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManagePurchaseRules) {
		return domainerr.New(domainerr.CodeForbidden, opAddRule, "actor lacks manage-purchase-rules capability")
	}
	if _, ok := s.rules[ruleID]; !ok {
		return domainerr.New(domainerr.CodeNotFound, opAddRule, "purchase rule not found")
	}
	delete(s.rules, ruleID)
	for i, id := range s.ruleOrder {
		if id == ruleID {
			s.ruleOrder = append(s.ruleOrder[:i], s.ruleOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Quote is the result of pricing one basket snapshot: the regular price,
// the summed reduction from the store's top-level discounts, the resulting
// final price, and any purchase rule violations. A non-empty Violations
// aborts checkout.
type Quote struct {
	RegularPrice float64             `json:"regular_price"`
	Reduction    float64             `json:"reduction"`
	FinalPrice   float64             `json:"final_price"`
	Violations   []pricing.Violation `json:"violations,omitempty"`
}

func (q Quote) OK() bool { return len(q.Violations) == 0 }

// PriceBasket evaluates every top-level purchase rule and discount against
// the basket snapshot. Collections are copied under the lock; evaluation
// itself is lock-free and pure.
func (s *Store) PriceBasket(basket pricing.Basket, ctx pricing.EvalContext) Quote {
	s.mu.Lock()
	rules := make([]pricing.PurchaseRule, 0, len(s.ruleOrder))
	for _, id := range s.ruleOrder {
		r := s.rules[id].rule
		rules = append(rules, r)
	}
	ruleIDs := make([]uint64, len(s.ruleOrder))
	copy(ruleIDs, s.ruleOrder)
	discounts := make([]pricing.Discount, 0, len(s.discountOrder))
	for _, id := range s.discountOrder {
		discounts = append(discounts, s.discounts[id].discount)
	}
	s.mu.Unlock()

	quote := Quote{RegularPrice: basket.RegularPrice()}
	for i, rule := range rules {
		if v := pricing.CheckRule(rule, basket, ctx); v != nil {
			v.RuleID = ruleIDs[i]
			quote.Violations = append(quote.Violations, *v)
		}
	}
	if !quote.OK() {
		quote.FinalPrice = quote.RegularPrice
		return quote
	}
	for _, d := range discounts {
		quote.Reduction += pricing.Apply(d, basket, ctx)
	}
	if quote.Reduction > quote.RegularPrice {
		quote.Reduction = quote.RegularPrice
	}
	quote.FinalPrice = quote.RegularPrice - quote.Reduction
	return quote
}
