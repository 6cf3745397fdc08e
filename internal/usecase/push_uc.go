package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type PushUC struct {
	Subs           domain.PushSubscriptionRepo
	VAPIDPublicKey string
}

type SubscriptionInput struct {
	Endpoint string `json:"endpoint" validate:"required,url,max=1024"`
	Keys     struct {
		Auth   string `json:"auth" validate:"required,max=255"`
		P256dh string `json:"p256dh" validate:"required,max=255"`
	} `json:"keys"`
}

// Subscribe stores the browser subscription; the same endpoint for a user is updated in place.
func (uc *PushUC) Subscribe(ctx context.Context, userID uuid.UUID, in SubscriptionInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	s := &domain.PushSubscription{
		ID:        uuid.New(),
		UserID:    userID,
		Endpoint:  in.Endpoint,
		Auth:      in.Keys.Auth,
		P256dh:    in.Keys.P256dh,
		CreatedAt: time.Now(),
	}
	if err := uc.Subs.Upsert(ctx, s); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	return nil
}

func (uc *PushUC) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	if endpoint == "" {
		return domain.NewValidationError("endpoint", "is required")
	}
	return uc.Subs.DeleteByEndpoint(ctx, userID, endpoint)
}
