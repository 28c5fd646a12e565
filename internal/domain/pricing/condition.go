package pricing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

// CondKind tags the closed set of condition variants.
type CondKind string

const (
	CondLimitQuantity   CondKind = "limit_quantity"
	CondAtLeastQuantity CondKind = "at_least_quantity"
	CondMinBasketPrice  CondKind = "min_basket_price"
	CondAgeRestricted   CondKind = "age_restricted"
	CondTimeRestricted  CondKind = "time_restricted"
)

// ScopeKind selects which quantity a quantity-scoped condition sums.
type ScopeKind string

const (
	ScopeBasket   ScopeKind = "basket"
	ScopeProduct  ScopeKind = "product"
	ScopeCategory ScopeKind = "category"
)

// QuantityScope narrows a quantity condition to the whole basket, one
// product, or one category.
type QuantityScope struct {
	Kind      ScopeKind `json:"kind"`
	ProductID uuid.UUID `json:"product_id,omitempty"`
	Category  Category  `json:"category,omitempty"`
}

func BasketScope() QuantityScope {
	return QuantityScope{Kind: ScopeBasket}
}

func ProductScope(productID uuid.UUID) QuantityScope {
	return QuantityScope{Kind: ScopeProduct, ProductID: productID}
}

func CategoryScope(category Category) QuantityScope {
	return QuantityScope{Kind: ScopeCategory, Category: category}
}

// Condition is a pure predicate over a basket snapshot and its evaluation
// context. It is a tagged union: Kind decides which fields are meaningful.
// Conditions never mutate state and never fail; an unmatched predicate is
// simply false.
type Condition struct {
	Kind CondKind `json:"kind"`

	// quantity variants
	Scope QuantityScope `json:"scope,omitempty"`
	Max   int           `json:"max,omitempty"`
	Min   int           `json:"min,omitempty"`

	// min_basket_price
	MinPrice float64 `json:"min_price,omitempty"`

	// age/time restriction variants
	Category Category `json:"category,omitempty"`
	MinAge   int      `json:"min_age,omitempty"`
	FromHour int      `json:"from_hour,omitempty"`
	ToHour   int      `json:"to_hour,omitempty"`
}

func LimitQuantity(scope QuantityScope, max int) Condition {
	return Condition{Kind: CondLimitQuantity, Scope: scope, Max: max}
}

func AtLeastQuantity(scope QuantityScope, min int) Condition {
	return Condition{Kind: CondAtLeastQuantity, Scope: scope, Min: min}
}

func MinBasketPrice(min float64) Condition {
	return Condition{Kind: CondMinBasketPrice, MinPrice: min}
}

func AgeRestricted(category Category, minAge int) Condition {
	return Condition{Kind: CondAgeRestricted, Category: category, MinAge: minAge}
}

// TimeRestricted disallows purchase of the category while the wall clock is
// inside [fromHour, toHour). The window may wrap midnight, e.g. 23 to 6.
func TimeRestricted(category Category, fromHour, toHour int) Condition {
	return Condition{Kind: CondTimeRestricted, Category: category, FromHour: fromHour, ToHour: toHour}
}

// validateCondition checks a condition decoded from an API request. Only
// structural errors are rejected; a condition that can never hold is legal.
func validateCondition(c Condition) error {
	const op = "pricing.ValidateCondition"
	switch c.Kind {
	case CondLimitQuantity, CondAtLeastQuantity:
		switch c.Scope.Kind {
		case ScopeBasket, ScopeCategory:
		case ScopeProduct:
			if c.Scope.ProductID == uuid.Nil {
				return domainerr.New(domainerr.CodeValidation, op, "product scope requires a product id")
			}
		default:
			return domainerr.Newf(domainerr.CodeValidation, op, "unknown scope kind %q", c.Scope.Kind)
		}
		return nil
	case CondMinBasketPrice:
		if c.MinPrice < 0 {
			return domainerr.New(domainerr.CodeValidation, op, "minimum basket price cannot be negative")
		}
		return nil
	case CondAgeRestricted:
		if c.Category == "" {
			return domainerr.New(domainerr.CodeValidation, op, "age restriction requires a category")
		}
		return nil
	case CondTimeRestricted:
		if c.Category == "" {
			return domainerr.New(domainerr.CodeValidation, op, "time restriction requires a category")
		}
		if c.FromHour < 0 || c.FromHour > 23 || c.ToHour < 0 || c.ToHour > 23 {
			return domainerr.New(domainerr.CodeValidation, op, "restriction hours must be within 0..23")
		}
		return nil
	default:
		return domainerr.Newf(domainerr.CodeValidation, op, "unknown condition kind %q", c.Kind)
	}
}

// EvaluateCondition reports whether the condition holds against the basket.
func EvaluateCondition(c Condition, basket Basket, ctx EvalContext) bool {
	switch c.Kind {
	case CondLimitQuantity:
		return scopedQuantity(c.Scope, basket) <= c.Max
	case CondAtLeastQuantity:
		return scopedQuantity(c.Scope, basket) >= c.Min
	case CondMinBasketPrice:
		return basket.RegularPrice() >= c.MinPrice
	case CondAgeRestricted:
		if !basket.ContainsCategory(c.Category) {
			return true
		}
		return ctx.BuyerAge() >= c.MinAge
	case CondTimeRestricted:
		if !basket.ContainsCategory(c.Category) {
			return true
		}
		return !inDisallowedWindow(ctx.Now.Hour(), c.FromHour, c.ToHour)
	default:
		return false
	}
}

func scopedQuantity(scope QuantityScope, basket Basket) int {
	switch scope.Kind {
	case ScopeProduct:
		return basket.ProductQuantity(scope.ProductID)
	case ScopeCategory:
		return basket.CategoryQuantity(scope.Category)
	default:
		return basket.TotalQuantity()
	}
}

func inDisallowedWindow(hour, from, to int) bool {
	if from == to {
		return false
	}
	if from < to {
		return hour >= from && hour < to
	}
	// window wraps midnight
	return hour >= from || hour < to
}

// Describe renders the condition for violation messages.
func (c Condition) Describe() string {
	switch c.Kind {
	case CondLimitQuantity:
		return fmt.Sprintf("at most %d of %s", c.Max, c.Scope.describe())
	case CondAtLeastQuantity:
		return fmt.Sprintf("at least %d of %s", c.Min, c.Scope.describe())
	case CondMinBasketPrice:
		return fmt.Sprintf("basket price of at least %.2f", c.MinPrice)
	case CondAgeRestricted:
		return fmt.Sprintf("buyer aged %d or over for category %s", c.MinAge, c.Category)
	case CondTimeRestricted:
		return fmt.Sprintf("category %s not purchasable between %02d:00 and %02d:00", c.Category, c.FromHour, c.ToHour)
	default:
		return string(c.Kind)
	}
}

func (s QuantityScope) describe() string {
	switch s.Kind {
	case ScopeProduct:
		return fmt.Sprintf("product %s", s.ProductID)
	case ScopeCategory:
		return fmt.Sprintf("category %s", s.Category)
	default:
		return "the basket"
	}
}
