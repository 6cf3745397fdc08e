package postgres

import (
	"gorm.io/gorm"

	"github.com/phenrril/drukuje3d/internal/domain"
)

// Migrate creates or updates every table the shop uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Product{}, &domain.PricingTier{}, &domain.Image{},
		&domain.Order{}, &domain.OrderItem{}, &domain.Settings{},
		&domain.User{}, &domain.PushSubscription{}, &domain.VerificationToken{},
	); err != nil {
		return err
	}

	_ = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_pricing_tiers_product_min ON pricing_tiers (product_id, min_quantity)").Error
	_ = db.Exec("CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC)").Error
	return nil
}
