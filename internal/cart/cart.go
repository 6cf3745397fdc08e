// Package cart models the shopper's basket before checkout.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type Line struct {
	ProductID        uuid.UUID       `json:"productId"`
	Slug             string          `json:"slug"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	CustomDimensions string          `json:"customDimensions,omitempty"`
	CustomImageURL   string          `json:"customImageUrl,omitempty"`
}

// Key identifies a line. Same product with different customization is a different line.
type Key struct {
	ProductID        uuid.UUID `json:"productId"`
	CustomDimensions string    `json:"customDimensions,omitempty"`
	CustomImageURL   string    `json:"customImageUrl,omitempty"`
}

func (l Line) Key() Key {
	return Key{ProductID: l.ProductID, CustomDimensions: l.CustomDimensions, CustomImageURL: l.CustomImageURL}
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []Line `json:"items"`
}

// Add merges quantities only when the key matches an existing line exactly.
func (c *Cart) Add(l Line) error {
	if l.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	k := l.Key()
	for i := range c.Lines {
		if c.Lines[i].Key() == k {
			c.Lines[i].Quantity += l.Quantity
			return nil
		}
	}
	c.Lines = append(c.Lines, l)
	return nil
}

func (c *Cart) Remove(k Key) bool {
	for i := range c.Lines {
		if c.Lines[i].Key() == k {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetQuantity removes the line when qty drops below one.
func (c *Cart) SetQuantity(k Key, qty int) error {
	for i := range c.Lines {
		if c.Lines[i].Key() != k {
			continue
		}
		if qty < 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		c.Lines[i].Quantity = qty
		return nil
	}
	return domain.ErrNotFound
}

// Reprice refreshes every unit price for its current quantity.
func (c *Cart) Reprice(price func(productID uuid.UUID, qty int) (decimal.Decimal, error)) error {
	for i := range c.Lines {
		p, err := price(c.Lines[i].ProductID, c.Lines[i].Quantity)
		if err != nil {
			return err
		}
		c.Lines[i].UnitPrice = p
	}
	return nil
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

func (c *Cart) Clear() { c.Lines = nil }

func (c *Cart) Empty() bool { return len(c.Lines) == 0 }

// CheckLine enforces the per-product customization rules.
func CheckLine(p *domain.Product, l Line) error {
	verr := &domain.ValidationError{}
	if l.Quantity < 1 {
		verr.Add("quantity", "must be at least 1")
	}
	if p.MinOrderQuantity > 1 && l.Quantity < p.MinOrderQuantity {
		verr.Add("quantity", "below minimum order quantity")
	}
	if p.HasMount && l.Quantity > domain.MaxMountQuantity {
		verr.Add("quantity", "at most 10 pieces per line")
	}
	if p.RequiresCustomization() {
		if l.CustomDimensions == "" {
			verr.Add("customDimensions", "required")
		}
		if l.CustomImageURL == "" {
			verr.Add("customImageUrl", "required")
		}
	}
	if !p.Active {
		verr.Add("productId", "product is not available")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
