package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

// Save inserts a new product together with its tiers and images. For an existing
// product only the product row is written; tiers and images have their own methods.
func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return tx.Create(p).Error
		}
		return tx.Omit("Pricing", "Images").Save(p).Error
	})
}

// ReplaceTiers swaps the whole tier table of a product in one transaction.
func (r *ProductRepo) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []domain.PricingTier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&domain.PricingTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		for i := range tiers {
			if tiers[i].ID == uuid.Nil {
				tiers[i].ID = uuid.New()
			}
			tiers[i].ProductID = productID
		}
		return tx.Create(&tiers).Error
	})
}

func (r *ProductRepo) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.Image) error {
	if len(imgs) == 0 {
		return nil
	}
	for i := range imgs {
		if imgs[i].ID == uuid.Nil {
			imgs[i].ID = uuid.New()
		}
		imgs[i].ProductID = productID
		if imgs[i].CreatedAt.IsZero() {
			imgs[i].CreatedAt = time.Now()
		}
	}
	return r.db.WithContext(ctx).Create(&imgs).Error
}

func (r *ProductRepo) DeleteImages(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("product_id = ? AND id IN ?", productID, ids).Delete(&domain.Image{}).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *ProductRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, "slug = ?", slug)
}

func (r *ProductRepo) findOne(ctx context.Context, cond string, arg any) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Pricing", func(db *gorm.DB) *gorm.DB { return db.Order("min_quantity asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&p, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	var list []domain.Product
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.OnlyActive {
		q = q.Where("active = ?", true)
	}
	if query := strings.TrimSpace(f.Query); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	offset := (f.Page - 1) * f.PageSize
	err := q.Order("created_at desc").Offset(offset).Limit(f.PageSize).
		Preload("Pricing", func(db *gorm.DB) *gorm.DB { return db.Order("min_quantity asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// Delete removes the product with its tiers and images. Order items keep their
// snapshot and lose the product reference.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.Image{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.PricingTier{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}
