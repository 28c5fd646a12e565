package pricing

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for category-scoped conditions and discounts.
type Category string

const CategoryAlcohol Category = "alcohol"

// LineItem is one product line inside a basket snapshot.
type LineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Category  Category  `json:"category"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

func (li LineItem) Subtotal() float64 {
	return float64(li.Quantity) * li.UnitPrice
}

// Basket is an immutable snapshot of one shopper's selected line items for
// one store, taken at evaluation time. Conditions, discounts and purchase
// rules all evaluate against the same snapshot.
type Basket struct {
	lines []LineItem
}

func NewBasket(lines []LineItem) Basket {
	copied := make([]LineItem, len(lines))
	copy(copied, lines)
	return Basket{lines: copied}
}

func (b Basket) Lines() []LineItem {
	out := make([]LineItem, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b Basket) TotalQuantity() int {
	total := 0
	for _, li := range b.lines {
		total += li.Quantity
	}
	return total
}

func (b Basket) ProductQuantity(productID uuid.UUID) int {
	total := 0
	for _, li := range b.lines {
		if li.ProductID == productID {
			total += li.Quantity
		}
	}
	return total
}

func (b Basket) CategoryQuantity(category Category) int {
	total := 0
	for _, li := range b.lines {
		if li.Category == category {
			total += li.Quantity
		}
	}
	return total
}

// RegularPrice is the undiscounted basket total.
func (b Basket) RegularPrice() float64 {
	total := 0.0
	for _, li := range b.lines {
		total += li.Subtotal()
	}
	return total
}

func (b Basket) ProductSubtotal(productID uuid.UUID) float64 {
	total := 0.0
	for _, li := range b.lines {
		if li.ProductID == productID {
			total += li.Subtotal()
		}
	}
	return total
}

func (b Basket) CategorySubtotal(category Category) float64 {
	total := 0.0
	for _, li := range b.lines {
		if li.Category == category {
			total += li.Subtotal()
		}
	}
	return total
}

func (b Basket) ContainsCategory(category Category) bool {
	for _, li := range b.lines {
		if li.Category == category {
			return true
		}
	}
	return false
}

// EvalContext carries the evaluation-time facts a condition may read besides
// the basket itself: the wall clock and the buyer's birth date.
type EvalContext struct {
	Now            time.Time
	BuyerBirthDate time.Time
}

// BuyerAge is the buyer's age in whole years at evaluation time.
func (ec EvalContext) BuyerAge() int {
	if ec.BuyerBirthDate.IsZero() {
		return 0
	}
	age := ec.Now.Year() - ec.BuyerBirthDate.Year()
	anniversary := ec.BuyerBirthDate.AddDate(age, 0, 0)
	if anniversary.After(ec.Now) {
		age--
	}
	return age
}
