// Package notify fans order events out to email and admin push subscriptions.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/metrics"
)

type Options struct {
	AdminEmail    string
	BlikPhone     string
	BlikRecipient string
	// Parallel bounds concurrent deliveries within one dispatch.
	Parallel int
	Timeout  time.Duration
}

type Dispatcher struct {
	mail domain.Mailer
	push domain.PushSender
	subs domain.PushSubscriptionRepo
	opts Options
}

// NewDispatcher accepts a nil push sender when VAPID keys are not configured.
func NewDispatcher(mail domain.Mailer, push domain.PushSender, subs domain.PushSubscriptionRepo, opts Options) *Dispatcher {
	if opts.Parallel <= 0 {
		opts.Parallel = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	return &Dispatcher{mail: mail, push: push, subs: subs, opts: opts}
}

func (d *Dispatcher) Notify(ctx context.Context, event domain.NotificationEvent, o *domain.Order) {
	if o == nil {
		return
	}
	// Deliveries outlive the request that triggered them.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Parallel)

	switch event {
	case domain.EventOrderCreated:
		d.goMail(g, gctx, o, o.Email, fmt.Sprintf("Potwierdzenie zamówienia #%s", o.ShortID()), customerOrderBody(o, d.opts))
		if d.opts.AdminEmail != "" {
			d.goMail(g, gctx, o, d.opts.AdminEmail, fmt.Sprintf("Nowe zamówienie #%s (%s)", o.ShortID(), o.PaymentMethod), adminOrderBody(o))
		}
		d.goPush(g, gctx, o, domain.PushMessage{
			Title: "Nowe Zamówienie! 💰",
			Body:  fmt.Sprintf("Zamówienie od %s na kwotę %s zł", o.FullName, o.Total.StringFixed(2)),
			URL:   "/admin/orders/" + o.ID.String(),
		})
	case domain.EventPaymentConfirmed:
		d.goMail(g, gctx, o, o.Email, fmt.Sprintf("Płatność przyjęta - zamówienie #%s", o.ShortID()),
			"<p>Twoja płatność została zaksięgowana.</p><p>Zamówienie przekazane do realizacji.</p>")
	default:
		log.Warn().Str("event", string(event)).Msg("unknown notification event")
	}
	_ = g.Wait()
}

func (d *Dispatcher) goMail(g *errgroup.Group, ctx context.Context, o *domain.Order, to, subject, body string) {
	if d.mail == nil || to == "" {
		return
	}
	g.Go(func() error {
		err := d.mail.Send(ctx, to, subject, body)
		metrics.NotificationResult("email", err)
		if err != nil {
			log.Error().Err(err).Str("order_id", o.ID.String()).Str("to", to).Msg("email notification failed")
		}
		return nil
	})
}

func (d *Dispatcher) goPush(g *errgroup.Group, ctx context.Context, o *domain.Order, msg domain.PushMessage) {
	if d.push == nil || d.subs == nil {
		return
	}
	subs, err := d.subs.ListForAdmins(ctx)
	if err != nil {
		log.Error().Err(err).Str("order_id", o.ID.String()).Msg("list push subscriptions")
		return
	}
	for _, sub := range subs {
		g.Go(func() error {
			err := d.push.Send(ctx, sub, msg)
			metrics.NotificationResult("push", err)
			if err == nil {
				return nil
			}
			if errors.Is(err, domain.ErrSubscriptionGone) {
				if derr := d.subs.Delete(ctx, sub.ID); derr != nil {
					log.Error().Err(derr).Str("subscription_id", sub.ID.String()).Msg("prune push subscription")
				} else {
					metrics.PushPruned.Inc()
				}
			}
			log.Warn().Err(err).Str("order_id", o.ID.String()).Str("endpoint", sub.Endpoint).Msg("push notification failed")
			return nil
		})
	}
}

func customerOrderBody(o *domain.Order, opts Options) string {
	body := fmt.Sprintf(`<p>Dziękujemy za zamówienie w 3dprint!</p>
<p>Twoje zamówienie o wartości %s zł zostało przyjęte.</p>
<p>Status: <strong>%s</strong></p>`, o.Total.StringFixed(2), o.Status)
	if o.PaymentMethod == domain.PaymentBLIK && o.Status == domain.OrderStatusPending {
		body += fmt.Sprintf(`
<p>Prosimy o wykonanie przelewu BLIK na numer telefonu: <strong>%s</strong> (%s). W tytule wpisz numer zamówienia: <strong>%s</strong>.</p>`,
			html.EscapeString(opts.BlikPhone), html.EscapeString(opts.BlikRecipient), o.ShortID())
	}
	return body
}

func adminOrderBody(o *domain.Order) string {
	body := fmt.Sprintf(`<p>Nowe zamówienie od %s (%s, %s)</p>
<p>Kwota: %s zł (wysyłka %s zł, %s)</p>
<p>Status: %s</p>
<p>Metoda płatności: %s</p>
<ul>`, html.EscapeString(o.FullName), html.EscapeString(o.Email), html.EscapeString(o.Phone),
		o.Total.StringFixed(2), o.ShippingCost.StringFixed(2), o.ShippingMethod, o.Status, o.PaymentMethod)
	for _, it := range o.Items {
		body += fmt.Sprintf("<li>%s x%d — %s zł", html.EscapeString(it.Name), it.Quantity, it.Price.StringFixed(2))
		if it.CustomDimensions != "" {
			body += " · " + html.EscapeString(it.CustomDimensions)
		}
		if it.CustomImageURL != "" {
			body += fmt.Sprintf(` · <a href="%s">projekt</a>`, html.EscapeString(it.CustomImageURL))
		}
		body += "</li>"
	}
	return body + "</ul>"
}
