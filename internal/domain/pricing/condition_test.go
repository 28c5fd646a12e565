package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testBasket(lines ...LineItem) Basket {
	return NewBasket(lines)
}

func TestEvaluateCondition_QuantityScopes(t *testing.T) {
	productX := uuid.New()
	productY := uuid.New()
	basket := testBasket(
		LineItem{ProductID: productX, Category: "snacks", Quantity: 4, UnitPrice: 2},
		LineItem{ProductID: productY, Category: "drinks", Quantity: 2, UnitPrice: 5},
	)

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{name: "basket_limit_at_threshold", cond: LimitQuantity(BasketScope(), 6), want: true},
		{name: "basket_limit_exceeded", cond: LimitQuantity(BasketScope(), 5), want: false},
		{name: "product_limit_holds", cond: LimitQuantity(ProductScope(productX), 4), want: true},
		{name: "product_limit_exceeded", cond: LimitQuantity(ProductScope(productX), 3), want: false},
		{name: "category_at_least_holds", cond: AtLeastQuantity(CategoryScope("drinks"), 2), want: true},
		{name: "category_at_least_fails", cond: AtLeastQuantity(CategoryScope("drinks"), 3), want: false},
		{name: "missing_product_at_least_fails", cond: AtLeastQuantity(ProductScope(uuid.New()), 1), want: false},
		{name: "min_basket_price_holds", cond: MinBasketPrice(18), want: true},
		{name: "min_basket_price_fails", cond: MinBasketPrice(18.01), want: false},
	}

	ctx := EvalContext{Now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluateCondition(tc.cond, basket, ctx); got != tc.want {
				t.Fatalf("EvaluateCondition(%s)=%v, want %v", tc.cond.Kind, got, tc.want)
			}
		})
	}
}

func TestEvaluateCondition_AgeRestricted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	alcoholBasket := testBasket(
		LineItem{ProductID: uuid.New(), Category: CategoryAlcohol, Quantity: 1, UnitPrice: 9},
	)
	plainBasket := testBasket(
		LineItem{ProductID: uuid.New(), Category: "snacks", Quantity: 1, UnitPrice: 2},
	)
	cond := AgeRestricted(CategoryAlcohol, 18)

	cases := []struct {
		name   string
		basket Basket
		birth  time.Time
		want   bool
	}{
		{name: "sixteen_year_old_blocked", basket: alcoholBasket, birth: now.AddDate(-16, 0, 0), want: false},
		{name: "eighteen_year_old_allowed", basket: alcoholBasket, birth: now.AddDate(-18, 0, 0), want: true},
		{name: "birthday_tomorrow_blocked", basket: alcoholBasket, birth: now.AddDate(-18, 0, 1), want: false},
		{name: "no_alcohol_passes_regardless", basket: plainBasket, birth: now.AddDate(-10, 0, 0), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := EvalContext{Now: now, BuyerBirthDate: tc.birth}
			if got := EvaluateCondition(cond, tc.basket, ctx); got != tc.want {
				t.Fatalf("AgeRestricted=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateCondition_TimeRestrictedWrapsMidnight(t *testing.T) {
	alcoholBasket := testBasket(
		LineItem{ProductID: uuid.New(), Category: CategoryAlcohol, Quantity: 1, UnitPrice: 9},
	)
	cond := TimeRestricted(CategoryAlcohol, 23, 6)

	cases := []struct {
		name string
		hour int
		want bool
	}{
		{name: "noon_allowed", hour: 12, want: true},
		{name: "just_before_window", hour: 22, want: true},
		{name: "window_start_blocked", hour: 23, want: false},
		{name: "past_midnight_blocked", hour: 2, want: false},
		{name: "window_end_allowed", hour: 6, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := EvalContext{
				Now:            time.Date(2025, 6, 1, tc.hour, 30, 0, 0, time.UTC),
				BuyerBirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			if got := EvaluateCondition(cond, alcoholBasket, ctx); got != tc.want {
				t.Fatalf("TimeRestricted at %02d:30 = %v, want %v", tc.hour, got, tc.want)
			}
		})
	}
}

func TestEvalContext_BuyerAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		birth time.Time
		want  int
	}{
		{name: "birthday_today", birth: time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC), want: 25},
		{name: "birthday_tomorrow", birth: time.Date(2000, 6, 2, 0, 0, 0, 0, time.UTC), want: 24},
		{name: "zero_birth_date", birth: time.Time{}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := EvalContext{Now: now, BuyerBirthDate: tc.birth}
			if got := ctx.BuyerAge(); got != tc.want {
				t.Fatalf("BuyerAge()=%d, want %d", got, tc.want)
			}
		})
	}
}
