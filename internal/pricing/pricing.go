// Package pricing turns cart lines and their products into priced line items.
// It performs no I/O; callers assemble every product before pricing.
package pricing

import (
	"errors"
	"fmt"

	"belanja/internal/models"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound means a cart line references a product the caller could
// not load. It signals broken referential integrity, not bad user input.
var ErrProductNotFound = errors.New("product not found for cart line")

// Category selects the tax brackets applied to a line.
type Category int

const (
	// CategoryProduct is the category of every line the cart can hold today.
	CategoryProduct Category = iota
	// CategoryService has its own brackets but no cart line produces it yet.
	CategoryService
)

func (c Category) String() string {
	switch c {
	case CategoryProduct:
		return "product"
	case CategoryService:
		return "service"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText renders the category name in JSON.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type bracket struct {
	upTo decimal.Decimal // inclusive upper bound; zero value means unbounded
	rate decimal.Decimal
}

var (
	flatTax      = decimal.NewFromInt(200)
	flatTaxLimit = decimal.NewFromInt(1000)

	productBrackets = []bracket{
		{upTo: decimal.NewFromInt(5000), rate: decimal.RequireFromString("0.12")},
		{rate: decimal.RequireFromString("0.18")},
	}
	serviceBrackets = []bracket{
		{upTo: decimal.NewFromInt(8000), rate: decimal.RequireFromString("0.10")},
		{rate: decimal.RequireFromString("0.15")},
	}
)

// Tax returns the tax owed on one line with the given unit price. Prices up to
// 1000 pay a flat 200; above that the category's percentage brackets apply.
func Tax(category Category, unitPrice decimal.Decimal) decimal.Decimal {
	if unitPrice.LessThanOrEqual(flatTaxLimit) {
		return flatTax
	}

	brackets := productBrackets
	if category == CategoryService {
		brackets = serviceBrackets
	}
	for _, b := range brackets {
		if b.upTo.IsZero() || unitPrice.LessThanOrEqual(b.upTo) {
			return unitPrice.Mul(b.rate)
		}
	}
	return unitPrice.Mul(brackets[len(brackets)-1].rate)
}

// Line pairs a cart line with its product. Product is nil when the lookup
// found nothing.
type Line struct {
	Cart    models.CartLine
	Product *models.Product
}

// LineItem is one priced row of a cart.
type LineItem struct {
	ProductID   uint
	ProductName string
	Category    Category
	UnitPrice   decimal.Decimal
	Quantity    int
	Tax         decimal.Decimal
	LineTotal   decimal.Decimal
}

// Quote is a fully priced cart.
type Quote struct {
	Items []LineItem
	Total decimal.Decimal
}

// PriceCart prices every line and sums the line totals. Lines keep their input
// order. An empty cart yields no items and a zero total.
func PriceCart(lines []Line) (Quote, error) {
	quote := Quote{
		Items: make([]LineItem, 0, len(lines)),
		Total: decimal.Zero,
	}

	for _, l := range lines {
		if l.Product == nil {
			return Quote{}, fmt.Errorf("%w: product %d", ErrProductNotFound, l.Cart.ProductID)
		}
		item := priceLine(CategoryProduct, l.Cart, *l.Product)
		quote.Items = append(quote.Items, item)
		quote.Total = quote.Total.Add(item.LineTotal)
	}
	return quote, nil
}

func priceLine(category Category, line models.CartLine, product models.Product) LineItem {
	unitPrice := decimal.NewFromFloat(product.Price)
	tax := Tax(category, unitPrice)
	qty := decimal.NewFromInt(int64(line.ProductQuantity))

	return LineItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Category:    category,
		UnitPrice:   unitPrice,
		Quantity:    line.ProductQuantity,
		Tax:         tax,
		LineTotal:   qty.Mul(unitPrice).Add(tax),
	}
}
