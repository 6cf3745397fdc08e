package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/mocks"
)

func newPaymentUC(t *testing.T) (*PaymentUC, *mocks.OrderRepo, *mocks.PaymentGateway, *mocks.Notifier) {
	orders := mocks.NewOrderRepo(t)
	gw := mocks.NewPaymentGateway(t)
	notifier := mocks.NewNotifier(t)
	ouc := &OrderUC{Orders: orders, Notifier: notifier}
	return &PaymentUC{Orders: orders, Gateway: gw, OrderUC: ouc, Currency: "PLN"}, orders, gw, notifier
}

func paypalOrder() *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		PaymentMethod: domain.PaymentPayPal,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Total:         dec("55.99"),
	}
}

func TestPaymentUC_CreatePayPalOrder(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("CreateOrder", mock.Anything, o).Return("PP-1", nil).Once()
	orders.On("UpdateFields", mock.Anything, o.ID, map[string]any{"paypal_order_id": "PP-1"}).Return(nil).Once()

	id, err := uc.CreatePayPalOrder(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "PP-1", id)
}

func TestPaymentUC_CreatePayPalOrder_RejectsBlikAndPaid(t *testing.T) {
	uc, orders, _, _ := newPaymentUC(t)
	blik := paypalOrder()
	blik.PaymentMethod = domain.PaymentBLIK
	paid := paypalOrder()
	paid.PaymentStatus = domain.PaymentStatusPaid

	orders.On("FindByID", mock.Anything, blik.ID).Return(blik, nil)
	orders.On("FindByID", mock.Anything, paid.ID).Return(paid, nil)

	_, err := uc.CreatePayPalOrder(context.Background(), blik.ID)
	require.ErrorIs(t, err, domain.ErrPaymentMethod)

	_, err = uc.CreatePayPalOrder(context.Background(), paid.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPaymentUC_Capture_Completed(t *testing.T) {
	uc, orders, gw, notifier := newPaymentUC(t)
	o := paypalOrder()
	o.PayPalOrderID = "PP-1"

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("Capture", mock.Anything, "PP-1").Return(&domain.PaymentCapture{GatewayOrderID: "PP-1", Status: "COMPLETED", Amount: dec("55.99"), Currency: "PLN"}, nil).Once()
	orders.On("MarkPaymentPaid", mock.Anything, o.ID, domain.OrderStatus("")).Return(true, nil).Once()
	notifier.On("Notify", mock.Anything, domain.EventPaymentConfirmed, o).Once()

	_, err := uc.CapturePayPal(context.Background(), o.ID, "PP-1")
	require.NoError(t, err)
}

func TestPaymentUC_Capture_NotCompleted(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()
	o.PayPalOrderID = "PP-2"

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("Capture", mock.Anything, "PP-2").Return(&domain.PaymentCapture{GatewayOrderID: "PP-2", Status: "PENDING"}, nil).Once()

	_, err := uc.CapturePayPal(context.Background(), o.ID, "PP-2")
	require.ErrorIs(t, err, domain.ErrPaymentNotCaptured)
	orders.AssertNotCalled(t, "MarkPaymentPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentUC_Capture_ForeignPayPalOrder(t *testing.T) {
	uc, orders, _, _ := newPaymentUC(t)
	o := paypalOrder()
	o.PayPalOrderID = "PP-1"
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := uc.CapturePayPal(context.Background(), o.ID, "PP-OTHER")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestPaymentUC_Confirm_ReverifiesWithGateway(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()
	o.PayPalOrderID = "PP-3"
	gwErr := errors.New("paypal down")

	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("GetOrder", mock.Anything, "PP-3").Return(nil, gwErr).Once()

	_, err := uc.ConfirmPayPal(context.Background(), o.ID, "PP-3")
	require.ErrorIs(t, err, gwErr)
}

func TestPaymentUC_UnboundOrderCannotBeSettled(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()
	o.Total = dec("999.00")
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := uc.ConfirmPayPal(context.Background(), o.ID, "PP-CHEAP")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "paypalOrderId")

	_, err = uc.CapturePayPal(context.Background(), o.ID, "PP-CHEAP")
	require.ErrorAs(t, err, &verr)

	gw.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
	gw.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "MarkPaymentPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentUC_Confirm_RejectsAmountMismatch(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()
	o.Total = dec("999.00")
	o.PayPalOrderID = "PP-1"
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("GetOrder", mock.Anything, "PP-1").
		Return(&domain.PaymentCapture{GatewayOrderID: "PP-1", Status: "COMPLETED", Amount: dec("5.00"), Currency: "PLN"}, nil).Once()

	_, err := uc.ConfirmPayPal(context.Background(), o.ID, "PP-1")
	require.ErrorIs(t, err, domain.ErrPaymentMismatch)
	orders.AssertNotCalled(t, "MarkPaymentPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentUC_Capture_RejectsCurrencyMismatch(t *testing.T) {
	uc, orders, gw, _ := newPaymentUC(t)
	o := paypalOrder()
	o.PayPalOrderID = "PP-1"
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	gw.On("Capture", mock.Anything, "PP-1").
		Return(&domain.PaymentCapture{GatewayOrderID: "PP-1", Status: "COMPLETED", Amount: dec("55.99"), Currency: "EUR"}, nil).Once()

	_, err := uc.CapturePayPal(context.Background(), o.ID, "PP-1")
	require.ErrorIs(t, err, domain.ErrPaymentMismatch)
	orders.AssertNotCalled(t, "MarkPaymentPaid", mock.Anything, mock.Anything, mock.Anything)
}
