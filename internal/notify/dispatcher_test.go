package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/mocks"
)

func testOrder(pm domain.PaymentMethod) *domain.Order {
	return &domain.Order{
		ID:            uuid.New(),
		Email:         "klient@example.com",
		FullName:      "Jan Kowalski",
		PaymentMethod: pm,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Total:         decimal.RequireFromString("55.99"),
		ShippingCost:  decimal.RequireFromString("10.99"),
	}
}

func TestDispatcher_OrderCreated_GoneSubscriptionDoesNotBlockOthers(t *testing.T) {
	mail := mocks.NewMailer(t)
	push := mocks.NewPushSender(t)
	subs := mocks.NewPushSubscriptionRepo(t)

	gone := domain.PushSubscription{ID: uuid.New(), Endpoint: "https://push.example/gone"}
	alive := domain.PushSubscription{ID: uuid.New(), Endpoint: "https://push.example/alive"}

	o := testOrder(domain.PaymentPayPal)
	mail.On("Send", mock.Anything, o.Email, mock.Anything, mock.Anything).Return(nil).Once()
	mail.On("Send", mock.Anything, "admin@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	subs.On("ListForAdmins", mock.Anything).Return([]domain.PushSubscription{gone, alive}, nil)
	push.On("Send", mock.Anything, gone, mock.Anything).Return(fmt.Errorf("status 410: %w", domain.ErrSubscriptionGone)).Once()
	push.On("Send", mock.Anything, alive, mock.Anything).Return(nil).Once()
	subs.On("Delete", mock.Anything, gone.ID).Return(nil).Once()

	d := NewDispatcher(mail, push, subs, Options{AdminEmail: "admin@example.com"})
	d.Notify(context.Background(), domain.EventOrderCreated, o)

	subs.AssertNotCalled(t, "Delete", mock.Anything, alive.ID)
}

func TestDispatcher_TransientPushErrorKeepsSubscription(t *testing.T) {
	push := mocks.NewPushSender(t)
	subs := mocks.NewPushSubscriptionRepo(t)
	sub := domain.PushSubscription{ID: uuid.New(), Endpoint: "https://push.example/a"}

	subs.On("ListForAdmins", mock.Anything).Return([]domain.PushSubscription{sub}, nil)
	push.On("Send", mock.Anything, sub, mock.Anything).Return(errors.New("timeout"))

	d := NewDispatcher(nil, push, subs, Options{})
	d.Notify(context.Background(), domain.EventOrderCreated, testOrder(domain.PaymentPayPal))

	subs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDispatcher_EmailFailureIsSwallowed(t *testing.T) {
	mail := mocks.NewMailer(t)
	o := testOrder(domain.PaymentBLIK)
	mail.On("Send", mock.Anything, o.Email, mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "BLIK")
	})).Return(errors.New("smtp down")).Once()

	d := NewDispatcher(mail, nil, nil, Options{BlikPhone: "+48 515 000 000"})
	d.Notify(context.Background(), domain.EventOrderCreated, o)
}

func TestDispatcher_PaymentConfirmedEmailsCustomerOnly(t *testing.T) {
	mail := mocks.NewMailer(t)
	push := mocks.NewPushSender(t)
	subs := mocks.NewPushSubscriptionRepo(t)
	o := testOrder(domain.PaymentPayPal)
	mail.On("Send", mock.Anything, o.Email, mock.MatchedBy(func(s string) bool {
		return strings.Contains(s, o.ShortID())
	}), mock.Anything).Return(nil).Once()

	d := NewDispatcher(mail, push, subs, Options{AdminEmail: "admin@example.com"})
	d.Notify(context.Background(), domain.EventPaymentConfirmed, o)

	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_CanceledRequestContextStillDelivers(t *testing.T) {
	mail := mocks.NewMailer(t)
	o := testOrder(domain.PaymentPayPal)
	mail.On("Send", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), o.Email, mock.Anything, mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewDispatcher(mail, nil, nil, Options{}).Notify(ctx, domain.EventPaymentConfirmed, o)
}
