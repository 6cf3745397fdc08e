package postgres

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
)

func (s *RepoSuite) TestProductSaveFindAndReplaceTiers() {
	repo := NewProductRepo(s.db)
	id := uuid.New()
	p := &domain.Product{
		ID:               id,
		Slug:             "brelok-nfc-0001",
		Name:             "Brelok NFC",
		BasePrice:        decimal.RequireFromString("15.00"),
		MinOrderQuantity: 1,
		HasMount:         true,
		Active:           false,
		Pricing: []domain.PricingTier{
			{ID: uuid.New(), ProductID: id, MinQuantity: 10, Price: decimal.RequireFromString("12.00")},
			{ID: uuid.New(), ProductID: id, MinQuantity: 5, Price: decimal.RequireFromString("13.00")},
		},
	}
	s.Require().NoError(repo.Save(s.ctx, p))

	got, err := repo.FindBySlug(s.ctx, "brelok-nfc-0001")
	s.Require().NoError(err)
	s.False(got.Active)
	s.Require().Len(got.Pricing, 2)
	s.Equal(5, got.Pricing[0].MinQuantity)

	s.Require().NoError(repo.ReplaceTiers(s.ctx, id, []domain.PricingTier{{MinQuantity: 50, Price: decimal.RequireFromString("9.00")}}))
	got, err = repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(got.Pricing, 1)
	s.Equal(50, got.Pricing[0].MinQuantity)

	s.Require().NoError(repo.AddImages(s.ctx, id, []domain.Image{{URL: "/uploads/a.webp"}, {URL: "/uploads/b.webp"}}))
	got, err = repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(got.Images, 2)
	s.Require().NoError(repo.DeleteImages(s.ctx, id, []uuid.UUID{got.Images[0].ID}))
	got, err = repo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Len(got.Images, 1)

	list, total, err := repo.List(s.ctx, domain.ProductFilter{OnlyActive: true})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(list)

	s.Require().NoError(repo.Delete(s.ctx, id))
	_, err = repo.FindByID(s.ctx, id)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepoSuite) TestSettingsAndPushSubscriptions() {
	settings := NewSettingsRepo(s.db)
	_, err := settings.Get(s.ctx)
	s.ErrorIs(err, domain.ErrNotFound)
	s.Require().NoError(settings.Save(s.ctx, &domain.Settings{ShippingCost: decimal.RequireFromString("12.00"), FreeShippingThreshold: decimal.RequireFromString("150.00")}))
	st, err := settings.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal("150.00", st.FreeShippingThreshold.StringFixed(2))

	users := NewUserRepo(s.db)
	admin := &domain.User{Name: "Admin", Email: "Admin@Example.com", Role: domain.RoleAdmin}
	customer := &domain.User{Name: "Ala", Email: "ala@example.com", Role: domain.RoleUser}
	s.Require().NoError(users.Create(s.ctx, admin))
	s.Require().NoError(users.Create(s.ctx, customer))

	found, err := users.FindByEmail(s.ctx, "ADMIN@example.com")
	s.Require().NoError(err)
	s.Equal(admin.ID, found.ID)

	subs := NewPushSubscriptionRepo(s.db)
	s.Require().NoError(subs.Upsert(s.ctx, &domain.PushSubscription{UserID: admin.ID, Endpoint: "https://push.example/1", Auth: "a", P256dh: "p"}))
	s.Require().NoError(subs.Upsert(s.ctx, &domain.PushSubscription{UserID: admin.ID, Endpoint: "https://push.example/1", Auth: "a2", P256dh: "p2"}))
	s.Require().NoError(subs.Upsert(s.ctx, &domain.PushSubscription{UserID: customer.ID, Endpoint: "https://push.example/2", Auth: "a", P256dh: "p"}))

	list, err := subs.ListForAdmins(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("a2", list[0].Auth)

	s.Require().NoError(subs.Delete(s.ctx, list[0].ID))
	list, err = subs.ListForAdmins(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}
