package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings is a single-row table edited from the back-office.
type Settings struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShippingCost          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FreeShippingThreshold decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
