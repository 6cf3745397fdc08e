package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

func (r *TokenRepo) Create(ctx context.Context, t *domain.VerificationToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindValid ignores expired tokens.
func (r *TokenRepo) FindValid(ctx context.Context, identifier, token string) (*domain.VerificationToken, error) {
	var t domain.VerificationToken
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND token = ? AND expires > ?", identifier, token, time.Now()).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TokenRepo) Delete(ctx context.Context, identifier, token string) error {
	return r.db.WithContext(ctx).Where("identifier = ? AND token = ?", identifier, token).Delete(&domain.VerificationToken{}).Error
}
