package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusPaid        OrderStatus = "PAID"
	OrderStatusProcessing  OrderStatus = "PROCESSING"
	OrderStatusCompleted   OrderStatus = "COMPLETED"
	OrderStatusReadyToShip OrderStatus = "READY_TO_SHIP"
	OrderStatusShipped     OrderStatus = "SHIPPED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
)

var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusCompleted,
	OrderStatusReadyToShip,
	OrderStatusShipped,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:     {OrderStatusPaid},
	OrderStatusPaid:        {OrderStatusProcessing},
	OrderStatusProcessing:  {OrderStatusCompleted},
	OrderStatusCompleted:   {OrderStatusReadyToShip},
	OrderStatusReadyToShip: {OrderStatusShipped},
}

// CanTransition checks the strict workflow. CANCELLED is reachable from every non-terminal status.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

type ShippingMethod string

const (
	ShippingCourier ShippingMethod = "COURIER"
	ShippingLocker  ShippingMethod = "LOCKER"
)

type PaymentMethod string

const (
	PaymentPayPal PaymentMethod = "PAYPAL"
	PaymentBLIK   PaymentMethod = "BLIK"
)

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         *uuid.UUID      `gorm:"type:uuid;index" json:"userId,omitempty"`
	Email          string          `gorm:"size:140;not null" json:"email"`
	Phone          string          `gorm:"size:50" json:"phone"`
	FullName       string          `gorm:"size:140" json:"fullName"`
	AddressLine1   string          `gorm:"size:255" json:"addressLine1"`
	City           string          `gorm:"size:120" json:"city"`
	PostalCode     string          `gorm:"size:20" json:"postalCode"`
	Country        string          `gorm:"size:2;default:PL" json:"country"`
	ShippingMethod ShippingMethod  `gorm:"type:varchar(20)" json:"shippingMethod"`
	PaymentMethod  PaymentMethod   `gorm:"type:varchar(20);index" json:"paymentMethod"`
	Items          []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shippingCost"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status         OrderStatus     `gorm:"type:varchar(30);index;not null" json:"status"`
	PaymentStatus  PaymentStatus   `gorm:"type:varchar(20);index;not null" json:"paymentStatus"`
	TrackingNumber *string         `gorm:"size:120" json:"trackingNumber,omitempty"`
	PayPalOrderID  string          `gorm:"column:paypal_order_id;size:64;index" json:"paypalOrderId,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// OrderItem is a snapshot taken at checkout; it is never re-read from the catalog.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index" json:"productId"`
	Name             string          `gorm:"size:180" json:"name"`
	Quantity         int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CustomDimensions string          `gorm:"size:255" json:"customDimensions,omitempty"`
	CustomImageURL   string          `gorm:"size:512" json:"customImageUrl,omitempty"`
}

func (it OrderItem) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ShortID is the suffix shown to customers in emails and transfer titles.
func (o *Order) ShortID() string {
	s := o.ID.String()
	return s[len(s)-8:]
}

type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	UserID        *uuid.UUID
	Page          int
	PageSize      int
}
