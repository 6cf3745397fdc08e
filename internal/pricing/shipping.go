package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type ShippingSettings struct {
	BaseCost      decimal.Decimal `json:"shippingCost"`
	FreeThreshold decimal.Decimal `json:"freeShippingThreshold"`
}

var DefaultShipping = ShippingSettings{
	BaseCost:      decimal.RequireFromString("10.99"),
	FreeThreshold: decimal.RequireFromString("200.00"),
}

// FromSettings falls back to DefaultShipping when no settings row exists.
func FromSettings(s *domain.Settings) ShippingSettings {
	if s == nil {
		return DefaultShipping
	}
	return ShippingSettings{BaseCost: s.ShippingCost, FreeThreshold: s.FreeShippingThreshold}
}

// Cost is free at or above the threshold.
func (s ShippingSettings) Cost(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.FreeThreshold) {
		return decimal.Zero
	}
	return s.BaseCost
}

type Quote struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shippingCost"`
	Total        decimal.Decimal `json:"total"`
}

func Subtotal(items []domain.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// QuoteItems computes the authoritative totals for an item snapshot.
func (s ShippingSettings) QuoteItems(items []domain.OrderItem) Quote {
	sub := Subtotal(items)
	ship := s.Cost(sub)
	return Quote{Subtotal: sub, ShippingCost: ship, Total: sub.Add(ship)}
}
