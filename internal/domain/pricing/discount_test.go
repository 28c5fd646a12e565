package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNewDiscount_PercentValidation(t *testing.T) {
	productID := uuid.New()

	cases := []struct {
		name    string
		pct     float64
		wantErr bool
	}{
		{name: "zero_ok", pct: 0},
		{name: "hundred_ok", pct: 100},
		{name: "mid_ok", pct: 37.5},
		{name: "negative_rejected", pct: -1, wantErr: true},
		{name: "over_hundred_rejected", pct: 100.5, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewProductDiscount(tc.pct, productID)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected validation error for pct=%v", tc.pct)
				}
				if !domainerr.IsCode(err, domainerr.CodeValidation) {
					t.Fatalf("expected validation code, got %v", domainerr.CodeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for pct=%v: %v", tc.pct, err)
			}
		})
	}
}

func TestApply_ProductDiscountExactFraction(t *testing.T) {
	productID := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productID, Category: "snacks", Quantity: 4, UnitPrice: 12.5},
	)
	ctx := EvalContext{Now: time.Now()}

	for _, pct := range []float64{0, 10, 25, 50, 100} {
		d, err := NewProductDiscount(pct, productID)
		if err != nil {
			t.Fatalf("NewProductDiscount(%v): %v", pct, err)
		}
		want := 50 * pct / 100
		if got := Apply(d, basket, ctx); !approxEqual(got, want) {
			t.Fatalf("Apply(pct=%v)=%v, want %v", pct, got, want)
		}
	}
}

func TestApply_ScopedSimpleDiscounts(t *testing.T) {
	productX := uuid.New()
	productY := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 2, UnitPrice: 10}, // 20
		LineItem{ProductID: productY, Category: "drinks", Quantity: 1, UnitPrice: 30}, // 30
	)
	ctx := EvalContext{Now: time.Now()}

	product, _ := NewProductDiscount(50, productX)
	category, _ := NewCategoryDiscount(10, "drinks")
	store, _ := NewStoreDiscount(20)

	cases := []struct {
		name string
		d    Discount
		want float64
	}{
		{name: "product_matches_only_its_lines", d: product, want: 10},
		{name: "category_matches_only_its_lines", d: category, want: 3},
		{name: "store_matches_everything", d: store, want: 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Apply(tc.d, basket, ctx); !approxEqual(got, tc.want) {
				t.Fatalf("Apply=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestApply_AddSumsChildren(t *testing.T) {
	productX := uuid.New()
	productY := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 1, UnitPrice: 40},
		LineItem{ProductID: productY, Category: "drinks", Quantity: 1, UnitPrice: 60},
	)
	ctx := EvalContext{Now: time.Now()}

	d1, _ := NewProductDiscount(10, productX) // 4
	d2, _ := NewProductDiscount(20, productY) // 12
	d3, _ := NewCategoryDiscount(5, "drinks") // 3

	add, err := NewAddDiscount(d1, d2, d3)
	if err != nil {
		t.Fatalf("NewAddDiscount: %v", err)
	}

	want := Apply(d1, basket, ctx) + Apply(d2, basket, ctx) + Apply(d3, basket, ctx)
	if got := Apply(add, basket, ctx); !approxEqual(got, want) {
		t.Fatalf("Apply(add)=%v, want sum of children %v", got, want)
	}
}

func TestApply_MaxKeepsLargestChild(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 1, UnitPrice: 100},
	)
	ctx := EvalContext{Now: time.Now()}

	small, _ := NewProductDiscount(5, productX)  // 5
	large, _ := NewStoreDiscount(15)             // 15
	maxd, err := NewMaxDiscount(small, large)
	if err != nil {
		t.Fatalf("NewMaxDiscount: %v", err)
	}

	if got := Apply(maxd, basket, ctx); !approxEqual(got, 15) {
		t.Fatalf("Apply(max)=%v, want 15", got)
	}
}

func TestApply_XorPrefersLargerAndBreaksTiesLeft(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 1, UnitPrice: 100},
	)
	ctx := EvalContext{Now: time.Now()}

	ten, _ := NewProductDiscount(10, productX)
	twenty, _ := NewStoreDiscount(20)
	tenAgain, _ := NewStoreDiscount(10)

	larger, _ := NewXorDiscount(ten, twenty)
	if got := Apply(larger, basket, ctx); !approxEqual(got, 20) {
		t.Fatalf("xor should pick larger child, got %v", got)
	}

	tie, _ := NewXorDiscount(ten, tenAgain)
	if got := Apply(tie, basket, ctx); !approxEqual(got, 10) {
		t.Fatalf("xor tie should pick left child, got %v", got)
	}
}

func TestApply_GatedDiscounts(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 3, UnitPrice: 10},
	)
	ctx := EvalContext{Now: time.Now()}

	child, _ := NewStoreDiscount(10) // 3 when gate passes

	holds := AtLeastQuantity(BasketScope(), 3)
	fails := AtLeastQuantity(BasketScope(), 4)

	cases := []struct {
		name  string
		build func() (Discount, error)
		want  float64
	}{
		{
			name:  "if_then_condition_holds",
			build: func() (Discount, error) { return NewIfThenDiscount(holds, child) },
			want:  3,
		},
		{
			name:  "if_then_condition_fails",
			build: func() (Discount, error) { return NewIfThenDiscount(fails, child) },
			want:  0,
		},
		{
			name:  "and_all_hold",
			build: func() (Discount, error) { return NewAndDiscount([]Condition{holds, MinBasketPrice(30)}, child) },
			want:  3,
		},
		{
			name:  "and_one_fails",
			build: func() (Discount, error) { return NewAndDiscount([]Condition{holds, fails}, child) },
			want:  0,
		},
		{
			name:  "or_one_holds",
			build: func() (Discount, error) { return NewOrDiscount([]Condition{fails, holds}, child) },
			want:  3,
		},
		{
			name:  "or_none_hold",
			build: func() (Discount, error) { return NewOrDiscount([]Condition{fails, MinBasketPrice(31)}, child) },
			want:  0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := tc.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if got := Apply(d, basket, ctx); !approxEqual(got, tc.want) {
				t.Fatalf("Apply=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestApply_ReductionNeverExceedsAffectedSubtotal(t *testing.T) {
	productX := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 2, UnitPrice: 7.25},
	)
	ctx := EvalContext{Now: time.Now()}

	full, _ := NewProductDiscount(100, productX)
	if got := Apply(full, basket, ctx); !approxEqual(got, basket.ProductSubtotal(productX)) {
		t.Fatalf("100%% discount should equal subtotal, got %v", got)
	}
	if got := Apply(full, basket, ctx); got > basket.RegularPrice() {
		t.Fatalf("reduction %v exceeds basket price %v", got, basket.RegularPrice())
	}
}

func TestDependsOnProducts(t *testing.T) {
	productX := uuid.New()
	productY := uuid.New()

	dx, _ := NewProductDiscount(10, productX)
	store, _ := NewStoreDiscount(5)
	gate := AtLeastQuantity(ProductScope(productY), 2)
	gated, _ := NewIfThenDiscount(gate, dx)
	tree, _ := NewMaxDiscount(gated, store)

	deps := DependsOnProducts(tree)
	if len(deps) != 2 {
		t.Fatalf("expected 2 product deps, got %d", len(deps))
	}
	found := map[uuid.UUID]bool{}
	for _, id := range deps {
		found[id] = true
	}
	if !found[productX] || !found[productY] {
		t.Fatalf("deps missing expected products: %v", deps)
	}
}
