package store

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
)

func TestPriceBasket_ViolationAbortsDiscounting(t *testing.T) {
	s, founder := newTestStore()
	productX := uuid.New()

	if _, err := s.AddPurchaseRule(founder, pricing.NewAndRule(
		pricing.AtLeastQuantity(pricing.ProductScope(productX), 5),
	)); err != nil {
		t.Fatalf("AddPurchaseRule: %v", err)
	}
	d, _ := pricing.NewStoreDiscount(10)
	if _, err := s.AddDiscount(founder, d); err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}

	basket := pricing.NewBasket([]pricing.LineItem{
		{ProductID: productX, Category: "snacks", Quantity: 3, UnitPrice: 10},
	})
	quote := s.PriceBasket(basket, pricing.EvalContext{Now: time.Now()})

	if quote.OK() {
		t.Fatalf("expected a violation")
	}
	if len(quote.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(quote.Violations))
	}
	if got := quote.Violations[0].Condition.Scope.ProductID; got != productX {
		t.Fatalf("violation should name product %s, got %s", productX, got)
	}
	if quote.FinalPrice != quote.RegularPrice || quote.Reduction != 0 {
		t.Fatalf("violating basket must not be discounted: %+v", quote)
	}
}

func TestPriceBasket_SumsTopLevelDiscounts(t *testing.T) {
	s, founder := newTestStore()
	productX := uuid.New()

	dx, _ := pricing.NewProductDiscount(10, productX)
	ds, _ := pricing.NewStoreDiscount(5)
	if _, err := s.AddDiscount(founder, dx); err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}
	if _, err := s.AddDiscount(founder, ds); err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}

	basket := pricing.NewBasket([]pricing.LineItem{
		{ProductID: productX, Category: "snacks", Quantity: 2, UnitPrice: 50}, // 100
	})
	quote := s.PriceBasket(basket, pricing.EvalContext{Now: time.Now()})

	if !quote.OK() {
		t.Fatalf("unexpected violations: %v", quote.Violations)
	}
	if math.Abs(quote.Reduction-15) > 1e-9 {
		t.Fatalf("reduction=%v, want 15", quote.Reduction)
	}
	if math.Abs(quote.FinalPrice-85) > 1e-9 {
		t.Fatalf("final=%v, want 85", quote.FinalPrice)
	}
}

func TestAddDiscount_AbsorbDetachesChildren(t *testing.T) {
	s, founder := newTestStore()
	productX := uuid.New()

	d1, _ := pricing.NewProductDiscount(10, productX)
	d2, _ := pricing.NewStoreDiscount(5)
	id1, err := s.AddDiscount(founder, d1)
	if err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}
	id2, err := s.AddDiscount(founder, d2)
	if err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}

	maxd, _ := pricing.NewMaxDiscount(d1, d2)
	if _, err := s.AddDiscount(founder, maxd, id1, id2); err != nil {
		t.Fatalf("AddDiscount absorb: %v", err)
	}

	basket := pricing.NewBasket([]pricing.LineItem{
		{ProductID: productX, Category: "snacks", Quantity: 1, UnitPrice: 100},
	})
	quote := s.PriceBasket(basket, pricing.EvalContext{Now: time.Now()})
	// absorbed children no longer apply independently: only max(10, 5) = 10
	if math.Abs(quote.Reduction-10) > 1e-9 {
		t.Fatalf("reduction=%v, want 10 from the composite only", quote.Reduction)
	}

	if len(s.Discounts()) != 1 {
		t.Fatalf("absorbed children should be detached, have %d top-level discounts", len(s.Discounts()))
	}
}

func TestAddDiscount_AbsorbUnknownChildFails(t *testing.T) {
	s, founder := newTestStore()
	d, _ := pricing.NewStoreDiscount(5)
	if _, err := s.AddDiscount(founder, d, 999); !domainerr.IsCode(err, domainerr.CodeNotFound) {
		t.Fatalf("expected not_found for unknown absorbed id, got %v", err)
	}
}

func TestRemoveProductReferences_CascadesDiscounts(t *testing.T) {
	s, founder := newTestStore()
	productX := uuid.New()

	dx, _ := pricing.NewProductDiscount(10, productX)
	ds, _ := pricing.NewStoreDiscount(5)
	idx, _ := s.AddDiscount(founder, dx)
	_, _ = s.AddDiscount(founder, ds)

	removed := s.RemoveProductReferences(productX)
	if len(removed) != 1 || removed[0] != idx {
		t.Fatalf("expected [%d] removed, got %v", idx, removed)
	}
	if len(s.Discounts()) != 1 {
		t.Fatalf("unrelated discount should survive")
	}
}

func TestDiscountAndRuleMutation_RequireCapabilities(t *testing.T) {
	s, _ := newTestStore()
	stranger := uuid.New()

	d, _ := pricing.NewStoreDiscount(5)
	if _, err := s.AddDiscount(stranger, d); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("stranger AddDiscount should be forbidden, got %v", err)
	}
	if _, err := s.AddPurchaseRule(stranger, pricing.NewAndRule()); !domainerr.IsCode(err, domainerr.CodeForbidden) {
		t.Fatalf("stranger AddPurchaseRule should be forbidden, got %v", err)
	}
}

func TestPriceBasket_ReductionCappedAtRegularPrice(t *testing.T) {
	s, founder := newTestStore()

	full, _ := pricing.NewStoreDiscount(100)
	extra, _ := pricing.NewStoreDiscount(50)
	if _, err := s.AddDiscount(founder, full); err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}
	if _, err := s.AddDiscount(founder, extra); err != nil {
		t.Fatalf("AddDiscount: %v", err)
	}

	basket := pricing.NewBasket([]pricing.LineItem{
		{ProductID: uuid.New(), Category: "snacks", Quantity: 1, UnitPrice: 10},
	})
	quote := s.PriceBasket(basket, pricing.EvalContext{Now: time.Now()})
	if quote.FinalPrice < 0 {
		t.Fatalf("final price went negative: %v", quote.FinalPrice)
	}
	if math.Abs(quote.Reduction-10) > 1e-9 {
		t.Fatalf("reduction should cap at regular price, got %v", quote.Reduction)
	}
}
