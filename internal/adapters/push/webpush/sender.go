// Package webpush delivers browser notifications signed with VAPID keys.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/phenrril/drukuje3d/internal/domain"
)

type Config struct {
	PublicKey  string
	PrivateKey string
	Subject    string
	TTL        int
}

type Sender struct {
	cfg    Config
	client *http.Client
}

func NewSender(cfg Config) *Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = 60 * 60 * 24
	}
	// The library adds the mailto: scheme itself.
	cfg.Subject = strings.TrimPrefix(cfg.Subject, "mailto:")
	return &Sender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

// Send returns domain.ErrSubscriptionGone when the push service reports 404 or 410.
func (s *Sender) Send(ctx context.Context, sub domain.PushSubscription, msg domain.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	resp, err := wp.SendNotificationWithContext(ctx, payload, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     wp.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, &wp.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
		Urgency:         wp.UrgencyHigh,
	})
	if err != nil {
		return fmt.Errorf("webpush: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("webpush status %d: %w", resp.StatusCode, domain.ErrSubscriptionGone)
	case resp.StatusCode >= 400:
		return fmt.Errorf("webpush status %d", resp.StatusCode)
	}
	return nil
}
