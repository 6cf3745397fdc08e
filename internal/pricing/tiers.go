// Package pricing holds the pure money rules of the shop: quantity tiers and shipping.
package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
)

// UnitPrice returns the price of one unit when qty units are bought.
// The tier with the highest MinQuantity not above qty wins; below every tier the base price applies.
func UnitPrice(base decimal.Decimal, tiers []domain.PricingTier, qty int) (decimal.Decimal, error) {
	if qty < 1 {
		return decimal.Zero, domain.ErrInvalidQuantity
	}
	if len(tiers) == 0 {
		return base, nil
	}
	sorted := make([]domain.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MinQuantity > sorted[j].MinQuantity })
	for _, t := range sorted {
		if t.MinQuantity <= qty {
			return t.Price, nil
		}
	}
	return base, nil
}

// ProductUnitPrice is UnitPrice applied to a catalog product.
func ProductUnitPrice(p *domain.Product, qty int) (decimal.Decimal, error) {
	return UnitPrice(p.BasePrice, p.Pricing, qty)
}

// ValidateTiers rejects tier tables that cannot be resolved deterministically.
// Suspicious but legal tables (a tier above the base price, a larger tier priced
// above a smaller one) are reported as warnings.
func ValidateTiers(base decimal.Decimal, tiers []domain.PricingTier) ([]string, error) {
	var warnings []string
	seen := make(map[int]struct{}, len(tiers))
	for _, t := range tiers {
		if t.MinQuantity < 1 {
			return nil, fmt.Errorf("tier min quantity %d: %w", t.MinQuantity, domain.ErrInvalidQuantity)
		}
		if t.Price.IsNegative() {
			return nil, fmt.Errorf("tier %d: negative price", t.MinQuantity)
		}
		if _, dup := seen[t.MinQuantity]; dup {
			return nil, fmt.Errorf("tier %d: %w", t.MinQuantity, domain.ErrDuplicateTier)
		}
		seen[t.MinQuantity] = struct{}{}
		if t.Price.GreaterThan(base) {
			warnings = append(warnings, fmt.Sprintf("tier %d+ price %s is above base price %s", t.MinQuantity, t.Price.StringFixed(2), base.StringFixed(2)))
		}
	}

	sorted := make([]domain.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinQuantity < sorted[j].MinQuantity })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Price.GreaterThan(sorted[i-1].Price) {
			warnings = append(warnings, fmt.Sprintf("tier %d+ costs more than tier %d+", sorted[i].MinQuantity, sorted[i-1].MinQuantity))
		}
	}
	return warnings, nil
}
