// Package rediscache keeps hot catalog reads in Redis in front of the database.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/drukuje3d/internal/domain"
)

const defaultTTL = 10 * time.Minute

type ProductRepo struct {
	next domain.ProductRepo
	rdb  *redis.Client
	ttl  time.Duration
}

func NewProductRepo(next domain.ProductRepo, rdb *redis.Client, ttl time.Duration) *ProductRepo {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ProductRepo{next: next, rdb: rdb, ttl: ttl}
}

func idKey(id uuid.UUID) string { return "product:id:" + id.String() }

func slugKey(slug string) string { return "product:slug:" + slug }

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if p, ok := r.get(ctx, idKey(id)); ok {
		return p, nil
	}
	p, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, p)
	return p, nil
}

func (r *ProductRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if p, ok := r.get(ctx, slugKey(slug)); ok {
		return p, nil
	}
	p, err := r.next.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.put(ctx, p)
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	return r.next.List(ctx, f)
}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	old := r.slugOf(ctx, p.ID)
	if err := r.next.Save(ctx, p); err != nil {
		return err
	}
	r.evict(ctx, p.ID, p.Slug, old)
	return nil
}

func (r *ProductRepo) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []domain.PricingTier) error {
	if err := r.next.ReplaceTiers(ctx, productID, tiers); err != nil {
		return err
	}
	r.evict(ctx, productID, r.slugOf(ctx, productID))
	return nil
}

func (r *ProductRepo) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.Image) error {
	if err := r.next.AddImages(ctx, productID, imgs); err != nil {
		return err
	}
	r.evict(ctx, productID, r.slugOf(ctx, productID))
	return nil
}

func (r *ProductRepo) DeleteImages(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) error {
	if err := r.next.DeleteImages(ctx, productID, ids); err != nil {
		return err
	}
	r.evict(ctx, productID, r.slugOf(ctx, productID))
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	slug := r.slugOf(ctx, id)
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id, slug)
	return nil
}

func (r *ProductRepo) get(ctx context.Context, key string) (*domain.Product, bool) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis get")
		}
		return nil, false
	}
	var p domain.Product
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (r *ProductRepo) put(ctx context.Context, p *domain.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, idKey(p.ID), data, r.ttl)
	pipe.Set(ctx, slugKey(p.Slug), data, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID.String()).Msg("redis set")
	}
}

// slugOf reads the slug from a cached entry so both keys can be dropped.
func (r *ProductRepo) slugOf(ctx context.Context, id uuid.UUID) string {
	p, ok := r.get(ctx, idKey(id))
	if !ok {
		return ""
	}
	return p.Slug
}

func (r *ProductRepo) evict(ctx context.Context, id uuid.UUID, slugs ...string) {
	keys := []string{idKey(id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, slugKey(s))
		}
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("redis evict")
	}
}
