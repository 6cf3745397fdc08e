package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/mocks"
	"github.com/phenrril/drukuje3d/internal/pricing"
)

func TestSlugify(t *testing.T) {
	at := time.UnixMilli(1715342400123)
	assert.Equal(t, "zolty-brelok-nfc-0123", slugify("  Żółty brelok  NFC! ", at))
	assert.Equal(t, "produkt-0123", slugify("???", at))
}

func TestProductUC_CreateReturnsTierWarnings(t *testing.T) {
	repo := mocks.NewProductRepo(t)
	uc := &ProductUC{Products: repo, Now: func() time.Time { return time.UnixMilli(1715342400123) }}

	var saved *domain.Product
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Product")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Product) }).
		Return(nil).Once()

	p, warnings, err := uc.Create(context.Background(), ProductInput{
		Name:      "Stojak NFC",
		BasePrice: dec("20.00"),
		HasMount:  true,
		Active:    true,
		Pricing: []TierInput{
			{MinQuantity: 10, Price: dec("25.00")},
		},
		ImageURLs: []string{"/uploads/a.webp"},
	})
	require.NoError(t, err)
	require.Same(t, saved, p)
	assert.Equal(t, "stojak-nfc-0123", p.Slug)
	assert.Equal(t, 1, p.MinOrderQuantity)
	require.Len(t, p.Pricing, 1)
	assert.Equal(t, p.ID, p.Pricing[0].ProductID)
	require.Len(t, p.Images, 1)
	assert.NotEmpty(t, warnings)
}

func TestProductUC_CreateRejectsDuplicateTiers(t *testing.T) {
	uc := &ProductUC{Products: mocks.NewProductRepo(t)}

	_, _, err := uc.Create(context.Background(), ProductInput{
		Name:      "Brelok",
		BasePrice: dec("15.00"),
		Pricing: []TierInput{
			{MinQuantity: 5, Price: dec("13.00")},
			{MinQuantity: 5, Price: dec("12.00")},
		},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "pricing")
}

func TestProductUC_CreateRejectsNonPositiveBase(t *testing.T) {
	uc := &ProductUC{Products: mocks.NewProductRepo(t)}

	_, _, err := uc.Create(context.Background(), ProductInput{Name: "Brelok", BasePrice: dec("0")})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "basePrice")
}

func TestProductUC_UpdateReplacesTiersAndImages(t *testing.T) {
	repo := mocks.NewProductRepo(t)
	uc := &ProductUC{Products: repo}
	p := keychain()
	drop := uuid.New()

	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("Save", mock.Anything, p).Return(nil).Once()
	repo.On("ReplaceTiers", mock.Anything, p.ID, mock.MatchedBy(func(ts []domain.PricingTier) bool {
		return len(ts) == 1 && ts[0].MinQuantity == 50
	})).Return(nil).Once()
	repo.On("DeleteImages", mock.Anything, p.ID, []uuid.UUID{drop}).Return(nil).Once()
	repo.On("AddImages", mock.Anything, p.ID, []domain.Image{{URL: "/uploads/b.webp"}}).Return(nil).Once()

	_, _, err := uc.Update(context.Background(), p.ID, ProductInput{
		Name:            "Brelok NFC",
		BasePrice:       dec("15.00"),
		HasMount:        true,
		Active:          true,
		Pricing:         []TierInput{{MinQuantity: 50, Price: dec("10.00")}},
		ImageURLs:       []string{"/uploads/b.webp"},
		DeletedImageIDs: []uuid.UUID{drop},
	})
	require.NoError(t, err)
}

func TestProductUC_PriceFor(t *testing.T) {
	repo := mocks.NewProductRepo(t)
	uc := &ProductUC{Products: repo}
	p := keychain()
	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	q, err := uc.PriceFor(context.Background(), p.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, "13.00", q.UnitPrice.StringFixed(2))
	assert.Equal(t, "91.00", q.Total.StringFixed(2))

	_, err = uc.PriceFor(context.Background(), p.ID, 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSettingsUC(t *testing.T) {
	repo := mocks.NewSettingsRepo(t)
	uc := &SettingsUC{Settings: repo}

	repo.On("Get", mock.Anything).Return(nil, domain.ErrNotFound).Twice()
	s, err := uc.Shipping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pricing.DefaultShipping, s)

	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Settings")).Return(nil).Once()
	s, err = uc.Update(context.Background(), dec("14.99"), dec("250.00"))
	require.NoError(t, err)
	assert.Equal(t, "14.99", s.BaseCost.StringFixed(2))
	assert.Equal(t, "250.00", s.FreeThreshold.StringFixed(2))

	_, err = uc.Update(context.Background(), dec("-1"), dec("250.00"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shippingCost")
}
