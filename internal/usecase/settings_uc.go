package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/pricing"
)

type SettingsUC struct {
	Settings domain.SettingsRepo
	// Defaults apply while no settings row exists.
	Defaults pricing.ShippingSettings
}

func (uc *SettingsUC) defaults() pricing.ShippingSettings {
	if uc.Defaults.BaseCost.IsZero() && uc.Defaults.FreeThreshold.IsZero() {
		return pricing.DefaultShipping
	}
	return uc.Defaults
}

// Shipping loads the current shipping rules once; callers pass the value on.
func (uc *SettingsUC) Shipping(ctx context.Context) (pricing.ShippingSettings, error) {
	s, err := uc.Settings.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return uc.defaults(), nil
	}
	if err != nil {
		return pricing.ShippingSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return pricing.FromSettings(s), nil
}

func (uc *SettingsUC) Update(ctx context.Context, shippingCost, freeThreshold decimal.Decimal) (pricing.ShippingSettings, error) {
	verr := &domain.ValidationError{}
	if shippingCost.IsNegative() {
		verr.Add("shippingCost", "must not be negative")
	}
	if freeThreshold.IsNegative() {
		verr.Add("freeShippingThreshold", "must not be negative")
	}
	if !verr.Empty() {
		return pricing.ShippingSettings{}, verr
	}
	s, err := uc.Settings.Get(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		s = &domain.Settings{ID: uuid.New()}
	} else if err != nil {
		return pricing.ShippingSettings{}, fmt.Errorf("load settings: %w", err)
	}
	s.ShippingCost = shippingCost
	s.FreeShippingThreshold = freeThreshold
	if err := uc.Settings.Save(ctx, s); err != nil {
		return pricing.ShippingSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return pricing.FromSettings(s), nil
}
