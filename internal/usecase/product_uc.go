package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/pricing"
)

type ProductUC struct {
	Products domain.ProductRepo
	Now      func() time.Time
}

type TierInput struct {
	MinQuantity int             `json:"minQuantity" validate:"min=1"`
	Price       decimal.Decimal `json:"price"`
}

type ProductInput struct {
	Name             string          `json:"name" validate:"required,min=2,max=180"`
	Description      string          `json:"description" validate:"max=10000"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	MinOrderQuantity int             `json:"minOrderQuantity" validate:"min=0"`
	HasMount         bool            `json:"hasMount"`
	IsLarge          bool            `json:"isLarge"`
	Active           bool            `json:"active"`
	Pricing          []TierInput     `json:"pricing" validate:"dive"`
	ImageURLs        []string        `json:"imageUrls" validate:"dive,max=255"`
	DeletedImageIDs  []uuid.UUID     `json:"deletedImageIds"`
}

type PriceQuote struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

func (uc *ProductUC) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, errors.New("empty slug")
	}
	return uc.Products.FindBySlug(ctx, slug)
}

func (uc *ProductUC) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if id == uuid.Nil {
		return nil, domain.ErrNotFound
	}
	return uc.Products.FindByID(ctx, id)
}

// PriceFor resolves the tiered unit price the shop displays for qty units.
func (uc *ProductUC) PriceFor(ctx context.Context, id uuid.UUID, qty int) (*PriceQuote, error) {
	p, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unit, err := pricing.ProductUnitPrice(p, qty)
	if err != nil {
		return nil, err
	}
	return &PriceQuote{ProductID: p.ID, Quantity: qty, UnitPrice: unit, Total: unit.Mul(decimal.NewFromInt(int64(qty)))}, nil
}

// Create stores a new product. Returned warnings flag suspicious tier prices.
func (uc *ProductUC) Create(ctx context.Context, in ProductInput) (*domain.Product, []string, error) {
	tiers, warnings, err := uc.checkInput(in)
	if err != nil {
		return nil, nil, err
	}
	p := &domain.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		BasePrice:        in.BasePrice,
		MinOrderQuantity: max(in.MinOrderQuantity, 1),
		HasMount:         in.HasMount,
		IsLarge:          in.IsLarge,
		Active:           in.Active,
		Pricing:          tiers,
	}
	p.Slug = slugify(p.Name, uc.now())
	for i := range p.Pricing {
		p.Pricing[i].ProductID = p.ID
	}
	for _, u := range in.ImageURLs {
		p.Images = append(p.Images, domain.Image{ID: uuid.New(), ProductID: p.ID, URL: u, CreatedAt: uc.now()})
	}
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("save product: %w", err)
	}
	logWarnings(p, warnings)
	return p, warnings, nil
}

// Update replaces scalar fields and the whole tier table, drops the listed images
// and appends new ones.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, []string, error) {
	tiers, warnings, err := uc.checkInput(in)
	if err != nil {
		return nil, nil, err
	}
	p, err := uc.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.BasePrice = in.BasePrice
	p.MinOrderQuantity = max(in.MinOrderQuantity, 1)
	p.HasMount = in.HasMount
	p.IsLarge = in.IsLarge
	p.Active = in.Active
	p.Pricing = nil
	p.Images = nil
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, nil, fmt.Errorf("save product: %w", err)
	}
	if err := uc.Products.ReplaceTiers(ctx, id, tiers); err != nil {
		return nil, nil, fmt.Errorf("replace tiers: %w", err)
	}
	if len(in.DeletedImageIDs) > 0 {
		if err := uc.Products.DeleteImages(ctx, id, in.DeletedImageIDs); err != nil {
			return nil, nil, fmt.Errorf("delete images: %w", err)
		}
	}
	if len(in.ImageURLs) > 0 {
		imgs := make([]domain.Image, 0, len(in.ImageURLs))
		for _, u := range in.ImageURLs {
			imgs = append(imgs, domain.Image{URL: u})
		}
		if err := uc.Products.AddImages(ctx, id, imgs); err != nil {
			return nil, nil, fmt.Errorf("add images: %w", err)
		}
	}
	logWarnings(p, warnings)
	p, err = uc.Products.FindByID(ctx, id)
	return p, warnings, err
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return domain.ErrNotFound
	}
	return uc.Products.Delete(ctx, id)
}

func (uc *ProductUC) checkInput(in ProductInput) ([]domain.PricingTier, []string, error) {
	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}
	if !in.BasePrice.IsPositive() {
		return nil, nil, domain.NewValidationError("basePrice", "must be greater than 0")
	}
	tiers := make([]domain.PricingTier, 0, len(in.Pricing))
	for _, t := range in.Pricing {
		tiers = append(tiers, domain.PricingTier{ID: uuid.New(), MinQuantity: t.MinQuantity, Price: t.Price})
	}
	warnings, err := pricing.ValidateTiers(in.BasePrice, tiers)
	if err != nil {
		return nil, nil, &domain.ValidationError{Fields: map[string]string{"pricing": err.Error()}}
	}
	return tiers, warnings, nil
}

func logWarnings(p *domain.Product, warnings []string) {
	for _, w := range warnings {
		log.Warn().Str("product_id", p.ID.String()).Str("slug", p.Slug).Msg(w)
	}
}

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes = regexp.MustCompile(`-{2,}`)
	plFold     = strings.NewReplacer("ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z")
)

// slugify builds a URL slug with a short time suffix so equal names do not collide.
func slugify(name string, now time.Time) string {
	s := plFold.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.Trim(slugDashes.ReplaceAllString(s, "-"), "-")
	if s == "" {
		s = "produkt"
	}
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return s + "-" + ms[len(ms)-4:]
}
