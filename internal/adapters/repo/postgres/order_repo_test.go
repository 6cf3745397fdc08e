package postgres

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func (s *RepoSuite) newOrder(items ...domain.OrderItem) *domain.Order {
	return &domain.Order{
		ID:             uuid.New(),
		Email:          "klient@example.com",
		FullName:       "Jan Kowalski",
		Country:        "PL",
		ShippingMethod: domain.ShippingCourier,
		PaymentMethod:  domain.PaymentBLIK,
		Items:          items,
		Subtotal:       decimal.RequireFromString("45.00"),
		ShippingCost:   decimal.RequireFromString("10.99"),
		Total:          decimal.RequireFromString("55.99"),
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusUnpaid,
	}
}

func item(qty int) domain.OrderItem {
	return domain.OrderItem{Name: "Brelok NFC", Quantity: qty, Price: decimal.RequireFromString("15.00")}
}

func (s *RepoSuite) TestOrderCreate_PersistsItems() {
	repo := NewOrderRepo(s.db)
	o := s.newOrder(item(3), item(1))
	s.Require().NoError(repo.Create(s.ctx, o))

	got, err := repo.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Len(got.Items, 2)
	s.Equal("55.99", got.Total.StringFixed(2))
	s.Nil(got.TrackingNumber)
}

func (s *RepoSuite) TestOrderCreate_ItemFailureRollsBackOrder() {
	repo := NewOrderRepo(s.db)
	o := s.newOrder(item(2), item(0))

	s.Require().Error(repo.Create(s.ctx, o))

	_, err := repo.FindByID(s.ctx, o.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	var n int64
	s.Require().NoError(s.db.Model(&domain.OrderItem{}).Where("order_id = ?", o.ID).Count(&n).Error)
	s.Zero(n)
}

func (s *RepoSuite) TestMarkPaymentPaid_OnlyOnce() {
	repo := NewOrderRepo(s.db)
	o := s.newOrder(item(1))
	s.Require().NoError(repo.Create(s.ctx, o))

	changed, err := repo.MarkPaymentPaid(s.ctx, o.ID, domain.OrderStatusPaid)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = repo.MarkPaymentPaid(s.ctx, o.ID, domain.OrderStatusPaid)
	s.Require().NoError(err)
	s.False(changed)

	got, err := repo.FindByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusPaid, got.PaymentStatus)
	s.Equal(domain.OrderStatusPaid, got.Status)

	_, err = repo.MarkPaymentPaid(s.ctx, uuid.New(), "")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepoSuite) TestOrderUpdateListAndDelete() {
	repo := NewOrderRepo(s.db)
	user := uuid.New()
	a := s.newOrder(item(1))
	a.UserID = &user
	b := s.newOrder(item(2))
	s.Require().NoError(repo.Create(s.ctx, a))
	s.Require().NoError(repo.Create(s.ctx, b))

	s.Require().NoError(repo.UpdateFields(s.ctx, a.ID, map[string]any{"status": domain.OrderStatusShipped, "tracking_number": "INPOST1"}))
	got, err := repo.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusShipped, got.Status)
	s.Require().NotNil(got.TrackingNumber)
	s.Equal("INPOST1", *got.TrackingNumber)

	list, total, err := repo.List(s.ctx, domain.OrderFilter{UserID: &user, PageSize: -1})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Len(list, 1)

	list, total, err = repo.List(s.ctx, domain.OrderFilter{Status: domain.OrderStatusPending})
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Equal(b.ID, list[0].ID)

	s.Require().NoError(repo.Delete(s.ctx, a.ID))
	_, err = repo.FindByID(s.ctx, a.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(repo.Delete(s.ctx, a.ID), domain.ErrNotFound)
	s.ErrorIs(repo.UpdateFields(s.ctx, a.ID, map[string]any{"status": domain.OrderStatusPaid}), domain.ErrNotFound)
}
