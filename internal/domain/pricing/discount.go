package pricing

import (
	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
)

// DiscountKind tags the closed set of discount variants.
type DiscountKind string

const (
	DiscountProduct  DiscountKind = "product"
	DiscountCategory DiscountKind = "category"
	DiscountStore    DiscountKind = "store"
	DiscountAdd      DiscountKind = "add"
	DiscountMax      DiscountKind = "max"
	DiscountXor      DiscountKind = "xor"
	DiscountOr       DiscountKind = "or"
	DiscountAnd      DiscountKind = "and"
	DiscountIfThen   DiscountKind = "if_then"
)

// Discount is a tagged union over simple percentage discounts and the
// composites that combine them. Kind decides which fields are meaningful:
// simple kinds use Percent plus a matching scope, add/max use Children,
// xor uses exactly two Children, and the gated kinds (or/and/if_then) use
// Conditions plus a single child.
//
// A discount tree is a value; evaluation never mutates it and every node in
// one Apply pass sees the same basket snapshot.
type Discount struct {
	Kind DiscountKind `json:"kind"`

	Percent   float64   `json:"percent,omitempty"`
	ProductID uuid.UUID `json:"product_id,omitempty"`
	Category  Category  `json:"category,omitempty"`

	Children   []Discount  `json:"children,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

const opNewDiscount = "pricing.NewDiscount"

func validatePercent(pct float64) error {
	if pct < 0 || pct > 100 {
		return domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "percent %v outside [0,100]", pct)
	}
	return nil
}

func NewProductDiscount(pct float64, productID uuid.UUID) (Discount, error) {
	if err := validatePercent(pct); err != nil {
		return Discount{}, err
	}
	if productID == uuid.Nil {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "product discount requires a product id")
	}
	return Discount{Kind: DiscountProduct, Percent: pct, ProductID: productID}, nil
}

func NewCategoryDiscount(pct float64, category Category) (Discount, error) {
	if err := validatePercent(pct); err != nil {
		return Discount{}, err
	}
	if category == "" {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "category discount requires a category")
	}
	return Discount{Kind: DiscountCategory, Percent: pct, Category: category}, nil
}

func NewStoreDiscount(pct float64) (Discount, error) {
	if err := validatePercent(pct); err != nil {
		return Discount{}, err
	}
	return Discount{Kind: DiscountStore, Percent: pct}, nil
}

// NewAddDiscount sums independent simple discounts.
func NewAddDiscount(children ...Discount) (Discount, error) {
	if len(children) == 0 {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "add discount requires at least one child")
	}
	for _, child := range children {
		switch child.Kind {
		case DiscountProduct, DiscountCategory, DiscountStore:
		default:
			return Discount{}, domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "add discount child must be simple, got %s", child.Kind)
		}
	}
	return Discount{Kind: DiscountAdd, Children: children}, nil
}

// NewMaxDiscount applies only the single largest child reduction. Ties go to
// the first child in insertion order.
func NewMaxDiscount(children ...Discount) (Discount, error) {
	if len(children) == 0 {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "max discount requires at least one child")
	}
	return Discount{Kind: DiscountMax, Children: children}, nil
}

// NewXorDiscount applies exactly one of two children: the one yielding the
// larger reduction, the left child on a tie.
func NewXorDiscount(left, right Discount) (Discount, error) {
	return Discount{Kind: DiscountXor, Children: []Discount{left, right}}, nil
}

// NewOrDiscount gates child behind the conditions; at least one must hold.
func NewOrDiscount(conditions []Condition, child Discount) (Discount, error) {
	if len(conditions) == 0 {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "or discount requires at least one condition")
	}
	return Discount{Kind: DiscountOr, Conditions: conditions, Children: []Discount{child}}, nil
}

// NewAndDiscount gates child behind the conditions; all must hold.
func NewAndDiscount(conditions []Condition, child Discount) (Discount, error) {
	if len(conditions) == 0 {
		return Discount{}, domainerr.New(domainerr.CodeValidation, opNewDiscount, "and discount requires at least one condition")
	}
	return Discount{Kind: DiscountAnd, Conditions: conditions, Children: []Discount{child}}, nil
}

// NewIfThenDiscount is the single-condition specialization of And.
func NewIfThenDiscount(condition Condition, child Discount) (Discount, error) {
	return Discount{Kind: DiscountIfThen, Conditions: []Condition{condition}, Children: []Discount{child}}, nil
}

// Validate checks a discount tree built outside the constructors, e.g. one
// decoded from an API request, against the same invariants the constructors
// enforce.
func Validate(d Discount) error {
	switch d.Kind {
	case DiscountProduct:
		if d.ProductID == uuid.Nil {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "product discount requires a product id")
		}
		return validatePercent(d.Percent)
	case DiscountCategory:
		if d.Category == "" {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "category discount requires a category")
		}
		return validatePercent(d.Percent)
	case DiscountStore:
		return validatePercent(d.Percent)
	case DiscountAdd:
		if len(d.Children) == 0 {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "add discount requires at least one child")
		}
		for _, child := range d.Children {
			switch child.Kind {
			case DiscountProduct, DiscountCategory, DiscountStore:
			default:
				return domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "add discount child must be simple, got %s", child.Kind)
			}
			if err := Validate(child); err != nil {
				return err
			}
		}
		return nil
	case DiscountMax:
		if len(d.Children) == 0 {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "max discount requires at least one child")
		}
		return validateChildren(d.Children)
	case DiscountXor:
		if len(d.Children) != 2 {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "xor discount requires exactly two children")
		}
		return validateChildren(d.Children)
	case DiscountOr, DiscountAnd:
		if len(d.Conditions) == 0 {
			return domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "%s discount requires at least one condition", d.Kind)
		}
		if len(d.Children) != 1 {
			return domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "%s discount requires exactly one child", d.Kind)
		}
		for _, cond := range d.Conditions {
			if err := validateCondition(cond); err != nil {
				return err
			}
		}
		return Validate(d.Children[0])
	case DiscountIfThen:
		if len(d.Conditions) != 1 {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "if-then discount requires exactly one condition")
		}
		if len(d.Children) != 1 {
			return domainerr.New(domainerr.CodeValidation, opNewDiscount, "if-then discount requires exactly one child")
		}
		if err := validateCondition(d.Conditions[0]); err != nil {
			return err
		}
		return Validate(d.Children[0])
	default:
		return domainerr.Newf(domainerr.CodeValidation, opNewDiscount, "unknown discount kind %q", d.Kind)
	}
}

func validateChildren(children []Discount) error {
	for _, child := range children {
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}

// Apply computes the monetary reduction the discount yields against the
// basket. Composites evaluate children post-order against the same snapshot,
// so discounts never see each other's partial application. The result is
// always >= 0 and never exceeds the affected line items' subtotal.
func Apply(d Discount, basket Basket, ctx EvalContext) float64 {
	switch d.Kind {
	case DiscountProduct:
		return basket.ProductSubtotal(d.ProductID) * d.Percent / 100
	case DiscountCategory:
		return basket.CategorySubtotal(d.Category) * d.Percent / 100
	case DiscountStore:
		return basket.RegularPrice() * d.Percent / 100
	case DiscountAdd:
		total := 0.0
		for _, child := range d.Children {
			total += Apply(child, basket, ctx)
		}
		return total
	case DiscountMax:
		best := 0.0
		for i, child := range d.Children {
			reduction := Apply(child, basket, ctx)
			if i == 0 || reduction > best {
				best = reduction
			}
		}
		return best
	case DiscountXor:
		if len(d.Children) != 2 {
			return 0
		}
		left := Apply(d.Children[0], basket, ctx)
		right := Apply(d.Children[1], basket, ctx)
		if right > left {
			return right
		}
		return left
	case DiscountOr:
		for _, cond := range d.Conditions {
			if EvaluateCondition(cond, basket, ctx) {
				return applyOnlyChild(d, basket, ctx)
			}
		}
		return 0
	case DiscountAnd, DiscountIfThen:
		for _, cond := range d.Conditions {
			if !EvaluateCondition(cond, basket, ctx) {
				return 0
			}
		}
		return applyOnlyChild(d, basket, ctx)
	default:
		return 0
	}
}

func applyOnlyChild(d Discount, basket Basket, ctx EvalContext) float64 {
	if len(d.Children) == 0 {
		return 0
	}
	return Apply(d.Children[0], basket, ctx)
}

// DependsOnProducts collects every product id the discount tree references,
// so an owning store can cascade-remove discounts when a product is deleted.
func DependsOnProducts(d Discount) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	collectProductDeps(d, seen, &out)
	return out
}

func collectProductDeps(d Discount, seen map[uuid.UUID]struct{}, out *[]uuid.UUID) {
	if d.Kind == DiscountProduct && d.ProductID != uuid.Nil {
		if _, ok := seen[d.ProductID]; !ok {
			seen[d.ProductID] = struct{}{}
			*out = append(*out, d.ProductID)
		}
	}
	for _, cond := range d.Conditions {
		if cond.Scope.Kind == ScopeProduct && cond.Scope.ProductID != uuid.Nil {
			if _, ok := seen[cond.Scope.ProductID]; !ok {
				seen[cond.Scope.ProductID] = struct{}{}
				*out = append(*out, cond.Scope.ProductID)
			}
		}
	}
	for _, child := range d.Children {
		collectProductDeps(child, seen, out)
	}
}
