package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type PushSubscriptionRepo struct{ db *gorm.DB }

func NewPushSubscriptionRepo(db *gorm.DB) *PushSubscriptionRepo {
	return &PushSubscriptionRepo{db: db}
}

// Upsert refreshes the keys when the user already registered this endpoint.
func (r *PushSubscriptionRepo) Upsert(ctx context.Context, s *domain.PushSubscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.PushSubscription
		err := tx.Where("user_id = ? AND endpoint = ?", s.UserID, s.Endpoint).First(&existing).Error
		if err == nil {
			s.ID = existing.ID
			return tx.Model(&existing).Updates(map[string]any{"auth": s.Auth, "p256dh": s.P256dh}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		return tx.Create(s).Error
	})
}

func (r *PushSubscriptionRepo) ListForAdmins(ctx context.Context) ([]domain.PushSubscription, error) {
	var list []domain.PushSubscription
	err := r.db.WithContext(ctx).
		Table("push_subscriptions").
		Select("push_subscriptions.*").
		Joins("INNER JOIN users ON users.id = push_subscriptions.user_id").
		Where("users.role = ?", domain.RoleAdmin).
		Order("push_subscriptions.created_at asc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PushSubscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PushSubscription{}, "id = ?", id).Error
}

func (r *PushSubscriptionRepo) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&domain.PushSubscription{}).Error
}
