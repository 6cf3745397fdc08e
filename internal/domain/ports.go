package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []PricingTier) error
	AddImages(ctx context.Context, productID uuid.UUID, imgs []Image) error
	DeleteImages(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderRepo interface {
	// Create writes the order and all of its items or nothing.
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, f OrderFilter) ([]Order, int64, error)
	Latest(ctx context.Context) (*Order, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// MarkPaymentPaid flips payment_status to PAID only if it was UNPAID and reports
	// whether this call performed the change. When status is non-empty it is written too.
	MarkPaymentPaid(ctx context.Context, id uuid.UUID, status OrderStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SettingsRepo interface {
	// Get returns ErrNotFound when the row was never written.
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

type UserRepo interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListAdmins(ctx context.Context) ([]User, error)
}

type PushSubscriptionRepo interface {
	Upsert(ctx context.Context, s *PushSubscription) error
	ListForAdmins(ctx context.Context) ([]PushSubscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type TokenRepo interface {
	Create(ctx context.Context, t *VerificationToken) error
	FindValid(ctx context.Context, identifier, token string) (*VerificationToken, error)
	Delete(ctx context.Context, identifier, token string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// PushSender returns ErrSubscriptionGone (wrapped) when the endpoint no longer exists.
type PushSender interface {
	Send(ctx context.Context, sub PushSubscription, msg PushMessage) error
}

// PaymentCapture is the gateway's view of an order. Amount sums the completed
// captures and stays zero until something was captured.
type PaymentCapture struct {
	GatewayOrderID string
	Status         string
	Amount         decimal.Decimal
	Currency       string
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, o *Order) (string, error)
	Capture(ctx context.Context, gatewayOrderID string) (*PaymentCapture, error)
	GetOrder(ctx context.Context, gatewayOrderID string) (*PaymentCapture, error)
}

type NotificationEvent string

const (
	EventOrderCreated     NotificationEvent = "order_created"
	EventPaymentConfirmed NotificationEvent = "payment_confirmed"
)

// Notifier is best-effort: implementations log failures and never report them.
type Notifier interface {
	Notify(ctx context.Context, event NotificationEvent, o *Order)
}

// FileStorage keeps uploaded files and returns the public URL path they are served under.
type FileStorage interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}
