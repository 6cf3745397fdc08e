package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/cart"
	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/metrics"
	"github.com/phenrril/drukuje3d/internal/pricing"
)

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Settings *SettingsUC
	Notifier domain.Notifier
}

type ItemInput struct {
	ProductID        uuid.UUID       `json:"productId" validate:"required"`
	Name             string          `json:"name" validate:"required,max=180"`
	Quantity         int             `json:"quantity" validate:"min=1"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	CustomDimensions string          `json:"customDimensions" validate:"max=255"`
	CustomImageURL   string          `json:"customImageUrl" validate:"max=512"`
}

type CreateOrderInput struct {
	Email          string      `json:"email" validate:"required,email"`
	Phone          string      `json:"phone" validate:"required,min=9,max=50"`
	FullName       string      `json:"fullName" validate:"required,min=3,max=140"`
	AddressLine1   string      `json:"addressLine1" validate:"required,min=3,max=255"`
	City           string      `json:"city" validate:"required,min=2,max=120"`
	PostalCode     string      `json:"postalCode" validate:"required,min=5,max=20"`
	Country        string      `json:"country" validate:"omitempty,len=2"`
	ShippingMethod string      `json:"shippingMethod" validate:"required,oneof=COURIER LOCKER"`
	PaymentMethod  string      `json:"paymentMethod" validate:"required,oneof=PAYPAL BLIK"`
	Items          []ItemInput `json:"items" validate:"required,min=1,dive"`
	Notes          string      `json:"notes" validate:"max=2000"`

	// Client-side figures are accepted on the wire and ignored.
	ShippingCost *decimal.Decimal `json:"shippingCost,omitempty"`
	Total        *decimal.Decimal `json:"total,omitempty"`

	UserID *uuid.UUID `json:"-"`
}

// ItemsFromCart turns cart lines into checkout items.
func ItemsFromCart(c cart.Cart) []ItemInput {
	items := make([]ItemInput, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, ItemInput{
			ProductID:        l.ProductID,
			Name:             l.Name,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			CustomDimensions: l.CustomDimensions,
			CustomImageURL:   l.CustomImageURL,
		})
	}
	return items
}

// Create validates the input, recomputes every money figure on the server and
// persists the order with its items atomically. Notifications never fail the call.
func (uc *OrderUC) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	items, err := uc.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	shipping, err := uc.Settings.Shipping(ctx)
	if err != nil {
		return nil, err
	}
	q := shipping.QuoteItems(items)

	country := strings.ToUpper(strings.TrimSpace(in.Country))
	if country == "" {
		country = "PL"
	}
	o := &domain.Order{
		ID:             uuid.New(),
		UserID:         in.UserID,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		FullName:       strings.TrimSpace(in.FullName),
		AddressLine1:   strings.TrimSpace(in.AddressLine1),
		City:           strings.TrimSpace(in.City),
		PostalCode:     strings.TrimSpace(in.PostalCode),
		Country:        country,
		ShippingMethod: domain.ShippingMethod(in.ShippingMethod),
		PaymentMethod:  domain.PaymentMethod(in.PaymentMethod),
		Subtotal:       q.Subtotal,
		ShippingCost:   q.ShippingCost,
		Total:          q.Total,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusUnpaid,
		Notes:          strings.TrimSpace(in.Notes),
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = o.ID
	}
	o.Items = items

	if err := uc.Orders.Create(ctx, o); err != nil {
		log.Error().Err(err).Str("email", o.Email).Msg("create order")
		return nil, fmt.Errorf("create order: %w", err)
	}
	metrics.OrdersCreated.WithLabelValues(string(o.PaymentMethod)).Inc()
	log.Info().Str("order_id", o.ID.String()).Str("total", o.Total.StringFixed(2)).Str("payment_method", string(o.PaymentMethod)).Msg("order created")

	if uc.Notifier != nil {
		uc.Notifier.Notify(ctx, domain.EventOrderCreated, o)
	}
	return o, nil
}

// buildItems checks every line against the catalog. The submitted unit price must
// equal the tier price for that line's quantity.
func (uc *OrderUC) buildItems(ctx context.Context, in []ItemInput) ([]domain.OrderItem, error) {
	verr := &domain.ValidationError{}
	items := make([]domain.OrderItem, 0, len(in))
	for i, it := range in {
		prefix := fmt.Sprintf("items[%d].", i)
		p, err := uc.Products.FindByID(ctx, it.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			verr.Add(prefix+"productId", "product not found")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product: %w", err)
		}
		line := cart.Line{ProductID: p.ID, Quantity: it.Quantity, CustomDimensions: it.CustomDimensions, CustomImageURL: it.CustomImageURL}
		var lineErr *domain.ValidationError
		if err := cart.CheckLine(p, line); errors.As(err, &lineErr) {
			for f, msg := range lineErr.Fields {
				verr.Add(prefix+f, msg)
			}
			continue
		}
		unit, err := pricing.ProductUnitPrice(p, it.Quantity)
		if err != nil {
			verr.Add(prefix+"quantity", err.Error())
			continue
		}
		if !unit.Equal(it.UnitPrice) {
			verr.Add(prefix+"unitPrice", "price changed, current price is "+unit.StringFixed(2))
			continue
		}
		pid := p.ID
		items = append(items, domain.OrderItem{
			ProductID:        &pid,
			Name:             p.Name,
			Quantity:         it.Quantity,
			Price:            unit,
			CustomDimensions: it.CustomDimensions,
			CustomImageURL:   it.CustomImageURL,
		})
	}
	if !verr.Empty() {
		return nil, verr
	}
	return items, nil
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

// GetForUser hides orders of other customers behind ErrNotFound.
func (uc *OrderUC) GetForUser(ctx context.Context, id uuid.UUID, userID uuid.UUID, admin bool) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin {
		return o, nil
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (uc *OrderUC) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, domain.NewValidationError("status", "unknown status")
	}
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Orders.List(ctx, f)
}

func (uc *OrderUC) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	list, _, err := uc.Orders.List(ctx, domain.OrderFilter{UserID: &userID, PageSize: -1})
	return list, err
}

func (uc *OrderUC) Latest(ctx context.Context) (*domain.Order, error) {
	return uc.Orders.Latest(ctx)
}

// MarkPaid records a confirmed payment. Repeated calls are no-ops and notify once.
func (uc *OrderUC) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.confirm(ctx, id, "")
}

// ApproveBlik is the admin's confirmation that the BLIK transfer arrived.
func (uc *OrderUC) ApproveBlik(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != domain.PaymentBLIK {
		return nil, domain.ErrPaymentMethod
	}
	return uc.confirm(ctx, id, domain.OrderStatusPaid)
}

func (uc *OrderUC) confirm(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	changed, err := uc.Orders.MarkPaymentPaid(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}
	metrics.PaymentsConfirmed.WithLabelValues(string(o.PaymentMethod)).Inc()
	log.Info().Str("order_id", o.ID.String()).Str("payment_method", string(o.PaymentMethod)).Msg("payment confirmed")
	if uc.Notifier != nil {
		uc.Notifier.Notify(ctx, domain.EventPaymentConfirmed, o)
	}
	return o, nil
}

// SetStatus overwrites the status without consulting the workflow. A nil
// tracking leaves the stored tracking number untouched.
func (uc *OrderUC) SetStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, tracking *string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	fields := map[string]any{"status": status}
	if tracking != nil {
		fields["tracking_number"] = trackingValue(*tracking)
	}
	if err := uc.Orders.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("set status: %w", err)
	}
	return uc.Orders.FindByID(ctx, id)
}

// Transition moves the order along the workflow and rejects illegal steps.
func (uc *OrderUC) Transition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, domain.NewValidationError("status", "unknown status")
	}
	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, o.Status, to)
	}
	if to == domain.OrderStatusPaid {
		return uc.confirm(ctx, id, domain.OrderStatusPaid)
	}
	if err := uc.Orders.UpdateFields(ctx, id, map[string]any{"status": to}); err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	o.Status = to
	return o, nil
}

// SetTracking sets the tracking number, or clears it when empty.
func (uc *OrderUC) SetTracking(ctx context.Context, id uuid.UUID, tracking string) (*domain.Order, error) {
	if len(tracking) > 120 {
		return nil, domain.NewValidationError("trackingNumber", "must be at most 120 characters")
	}
	if err := uc.Orders.UpdateFields(ctx, id, map[string]any{"tracking_number": trackingValue(tracking)}); err != nil {
		return nil, fmt.Errorf("set tracking: %w", err)
	}
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Orders.Delete(ctx, id)
}

func trackingValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
