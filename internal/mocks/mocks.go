// Package mocks holds testify mocks for the domain ports.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(t testingT, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// ProductRepo

type ProductRepo struct{ mock.Mock }

func NewProductRepo(t testingT) *ProductRepo {
	m := &ProductRepo{}
	register(t, &m.Mock)
	return m
}

func (m *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepo) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []domain.PricingTier) error {
	return m.Called(ctx, productID, tiers).Error(0)
}

func (m *ProductRepo) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.Image) error {
	return m.Called(ctx, productID, imgs).Error(0)
}

func (m *ProductRepo) DeleteImages(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, productID, ids).Error(0)
}

func (m *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	ret := m.Called(ctx, id)
	p, _ := ret.Get(0).(*domain.Product)
	return p, ret.Error(1)
}

func (m *ProductRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	ret := m.Called(ctx, slug)
	p, _ := ret.Get(0).(*domain.Product)
	return p, ret.Error(1)
}

func (m *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	ret := m.Called(ctx, f)
	list, _ := ret.Get(0).([]domain.Product)
	return list, ret.Get(1).(int64), ret.Error(2)
}

func (m *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// OrderRepo

type OrderRepo struct{ mock.Mock }

func NewOrderRepo(t testingT) *OrderRepo {
	m := &OrderRepo{}
	register(t, &m.Mock)
	return m
}

func (m *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *OrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	ret := m.Called(ctx, id)
	o, _ := ret.Get(0).(*domain.Order)
	return o, ret.Error(1)
}

func (m *OrderRepo) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	ret := m.Called(ctx, f)
	list, _ := ret.Get(0).([]domain.Order)
	return list, ret.Get(1).(int64), ret.Error(2)
}

func (m *OrderRepo) Latest(ctx context.Context) (*domain.Order, error) {
	ret := m.Called(ctx)
	o, _ := ret.Get(0).(*domain.Order)
	return o, ret.Error(1)
}

func (m *OrderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *OrderRepo) MarkPaymentPaid(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (bool, error) {
	ret := m.Called(ctx, id, status)
	return ret.Bool(0), ret.Error(1)
}

func (m *OrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// SettingsRepo

type SettingsRepo struct{ mock.Mock }

func NewSettingsRepo(t testingT) *SettingsRepo {
	m := &SettingsRepo{}
	register(t, &m.Mock)
	return m
}

func (m *SettingsRepo) Get(ctx context.Context) (*domain.Settings, error) {
	ret := m.Called(ctx)
	s, _ := ret.Get(0).(*domain.Settings)
	return s, ret.Error(1)
}

func (m *SettingsRepo) Save(ctx context.Context, s *domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}

// UserRepo

type UserRepo struct{ mock.Mock }

func NewUserRepo(t testingT) *UserRepo {
	m := &UserRepo{}
	register(t, &m.Mock)
	return m
}

func (m *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepo) Save(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	ret := m.Called(ctx, id)
	u, _ := ret.Get(0).(*domain.User)
	return u, ret.Error(1)
}

func (m *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ret := m.Called(ctx, email)
	u, _ := ret.Get(0).(*domain.User)
	return u, ret.Error(1)
}

func (m *UserRepo) ListAdmins(ctx context.Context) ([]domain.User, error) {
	ret := m.Called(ctx)
	list, _ := ret.Get(0).([]domain.User)
	return list, ret.Error(1)
}

// PushSubscriptionRepo

type PushSubscriptionRepo struct{ mock.Mock }

func NewPushSubscriptionRepo(t testingT) *PushSubscriptionRepo {
	m := &PushSubscriptionRepo{}
	register(t, &m.Mock)
	return m
}

func (m *PushSubscriptionRepo) Upsert(ctx context.Context, s *domain.PushSubscription) error {
	return m.Called(ctx, s).Error(0)
}

func (m *PushSubscriptionRepo) ListForAdmins(ctx context.Context) ([]domain.PushSubscription, error) {
	ret := m.Called(ctx)
	list, _ := ret.Get(0).([]domain.PushSubscription)
	return list, ret.Error(1)
}

func (m *PushSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PushSubscriptionRepo) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return m.Called(ctx, userID, endpoint).Error(0)
}

// TokenRepo

type TokenRepo struct{ mock.Mock }

func NewTokenRepo(t testingT) *TokenRepo {
	m := &TokenRepo{}
	register(t, &m.Mock)
	return m
}

func (m *TokenRepo) Create(ctx context.Context, tok *domain.VerificationToken) error {
	return m.Called(ctx, tok).Error(0)
}

func (m *TokenRepo) FindValid(ctx context.Context, identifier, token string) (*domain.VerificationToken, error) {
	ret := m.Called(ctx, identifier, token)
	v, _ := ret.Get(0).(*domain.VerificationToken)
	return v, ret.Error(1)
}

func (m *TokenRepo) Delete(ctx context.Context, identifier, token string) error {
	return m.Called(ctx, identifier, token).Error(0)
}

// Mailer

type Mailer struct{ mock.Mock }

func NewMailer(t testingT) *Mailer {
	m := &Mailer{}
	register(t, &m.Mock)
	return m
}

func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	return m.Called(ctx, to, subject, html).Error(0)
}

// PushSender

type PushSender struct{ mock.Mock }

func NewPushSender(t testingT) *PushSender {
	m := &PushSender{}
	register(t, &m.Mock)
	return m
}

func (m *PushSender) Send(ctx context.Context, sub domain.PushSubscription, msg domain.PushMessage) error {
	return m.Called(ctx, sub, msg).Error(0)
}

// PaymentGateway

type PaymentGateway struct{ mock.Mock }

func NewPaymentGateway(t testingT) *PaymentGateway {
	m := &PaymentGateway{}
	register(t, &m.Mock)
	return m
}

func (m *PaymentGateway) CreateOrder(ctx context.Context, o *domain.Order) (string, error) {
	ret := m.Called(ctx, o)
	return ret.String(0), ret.Error(1)
}

func (m *PaymentGateway) Capture(ctx context.Context, gatewayOrderID string) (*domain.PaymentCapture, error) {
	ret := m.Called(ctx, gatewayOrderID)
	c, _ := ret.Get(0).(*domain.PaymentCapture)
	return c, ret.Error(1)
}

func (m *PaymentGateway) GetOrder(ctx context.Context, gatewayOrderID string) (*domain.PaymentCapture, error) {
	ret := m.Called(ctx, gatewayOrderID)
	c, _ := ret.Get(0).(*domain.PaymentCapture)
	return c, ret.Error(1)
}

// Notifier

type Notifier struct{ mock.Mock }

func NewNotifier(t testingT) *Notifier {
	m := &Notifier{}
	register(t, &m.Mock)
	return m
}

func (m *Notifier) Notify(ctx context.Context, event domain.NotificationEvent, o *domain.Order) {
	m.Called(ctx, event, o)
}

// FileStorage

type FileStorage struct{ mock.Mock }

func NewFileStorage(t testingT) *FileStorage {
	m := &FileStorage{}
	register(t, &m.Mock)
	return m
}

func (m *FileStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	ret := m.Called(ctx, filename, data)
	return ret.String(0), ret.Error(1)
}
