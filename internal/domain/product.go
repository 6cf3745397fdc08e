package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Slug             string          `gorm:"uniqueIndex;size:140" json:"slug"`
	Name             string          `gorm:"size:180;not null" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	BasePrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	MinOrderQuantity int             `gorm:"not null;default:1" json:"minOrderQuantity"`
	HasMount         bool            `gorm:"not null;default:false" json:"hasMount"`
	IsLarge          bool            `gorm:"not null;default:false" json:"isLarge"`
	Active           bool            `gorm:"not null;index" json:"active"`
	Pricing          []PricingTier   `gorm:"constraint:OnDelete:CASCADE" json:"pricing"`
	Images           []Image         `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// PricingTier applies its Price to every unit once the requested quantity reaches MinQuantity.
type PricingTier struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"-"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index" json:"-"`
	MinQuantity int             `gorm:"not null" json:"minQuantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"-"`
	URL       string    `gorm:"size:255" json:"url"`
	CreatedAt time.Time `json:"-"`
}

// MaxMountQuantity caps a single cart line of a mount product (keychains etc.).
const MaxMountQuantity = 10

// RequiresCustomization reports whether a cart line for this product must carry
// dimensions and a design file.
func (p *Product) RequiresCustomization() bool {
	return !p.HasMount
}

type ProductFilter struct {
	Query      string
	OnlyActive bool
	Page       int
	PageSize   int
}
