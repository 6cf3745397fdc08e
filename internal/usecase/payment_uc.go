package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/drukuje3d/internal/domain"
)

const captureCompleted = "COMPLETED"

type PaymentUC struct {
	Orders  domain.OrderRepo
	Gateway domain.PaymentGateway
	OrderUC *OrderUC
	// Currency is the expected capture currency; empty skips the check.
	Currency string
}

// CreatePayPalOrder opens a PayPal order for the stored total of an unpaid order.
func (uc *PaymentUC) CreatePayPalOrder(ctx context.Context, orderID uuid.UUID) (string, error) {
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if o.PaymentMethod != domain.PaymentPayPal {
		return "", domain.ErrPaymentMethod
	}
	if o.PaymentStatus == domain.PaymentStatusPaid {
		return "", domain.NewValidationError("orderId", "order already paid")
	}
	id, err := uc.Gateway.CreateOrder(ctx, o)
	if err != nil {
		log.Error().Err(err).Str("order_id", o.ID.String()).Msg("paypal create order")
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if err := uc.Orders.UpdateFields(ctx, o.ID, map[string]any{"paypal_order_id": id}); err != nil {
		return "", fmt.Errorf("store paypal order id: %w", err)
	}
	return id, nil
}

// CapturePayPal captures the buyer-approved PayPal order and marks ours paid
// only when PayPal reports the capture as completed for the full total.
func (uc *PaymentUC) CapturePayPal(ctx context.Context, orderID uuid.UUID, paypalOrderID string) (*domain.Order, error) {
	o, err := uc.boundOrder(ctx, orderID, paypalOrderID)
	if err != nil {
		return nil, err
	}
	c, err := uc.Gateway.Capture(ctx, paypalOrderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).Str("paypal_order_id", paypalOrderID).Msg("paypal capture")
		return nil, fmt.Errorf("paypal capture: %w", err)
	}
	if err := uc.checkCapture(o, c); err != nil {
		return nil, err
	}
	return uc.OrderUC.MarkPaid(ctx, orderID)
}

// ConfirmPayPal handles a client-relayed approval. The PayPal order is fetched
// again and must already be completed.
func (uc *PaymentUC) ConfirmPayPal(ctx context.Context, orderID uuid.UUID, paypalOrderID string) (*domain.Order, error) {
	o, err := uc.boundOrder(ctx, orderID, paypalOrderID)
	if err != nil {
		return nil, err
	}
	c, err := uc.Gateway.GetOrder(ctx, paypalOrderID)
	if err != nil {
		return nil, fmt.Errorf("paypal get order: %w", err)
	}
	if err := uc.checkCapture(o, c); err != nil {
		return nil, err
	}
	return uc.OrderUC.MarkPaid(ctx, orderID)
}

// boundOrder loads the order and requires paypalOrderID to be the PayPal order
// created for it by CreatePayPalOrder.
func (uc *PaymentUC) boundOrder(ctx context.Context, orderID uuid.UUID, paypalOrderID string) (*domain.Order, error) {
	if paypalOrderID == "" {
		return nil, domain.NewValidationError("paypalOrderId", "required")
	}
	o, err := uc.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.PaymentMethod != domain.PaymentPayPal {
		return nil, domain.ErrPaymentMethod
	}
	if o.PayPalOrderID == "" {
		return nil, domain.NewValidationError("paypalOrderId", "no PayPal order was opened for this order")
	}
	if o.PayPalOrderID != paypalOrderID {
		return nil, domain.NewValidationError("paypalOrderId", "does not belong to this order")
	}
	return o, nil
}

func (uc *PaymentUC) checkCapture(o *domain.Order, c *domain.PaymentCapture) error {
	if c.Status != captureCompleted {
		log.Warn().Str("order_id", o.ID.String()).Str("status", c.Status).Msg("paypal capture not completed")
		return domain.ErrPaymentNotCaptured
	}
	if !c.Amount.Equal(o.Total) || (uc.Currency != "" && c.Currency != uc.Currency) {
		log.Error().Str("order_id", o.ID.String()).Str("paypal_order_id", c.GatewayOrderID).
			Str("captured", c.Amount.StringFixed(2)+" "+c.Currency).Str("total", o.Total.StringFixed(2)).
			Msg("paypal capture does not match order")
		return domain.ErrPaymentMismatch
	}
	return nil
}
