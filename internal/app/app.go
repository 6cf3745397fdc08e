package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/drukuje3d/internal/adapters/httpserver"
	"github.com/phenrril/drukuje3d/internal/adapters/mail/smtp"
	"github.com/phenrril/drukuje3d/internal/adapters/payments/paypal"
	"github.com/phenrril/drukuje3d/internal/adapters/push/webpush"
	"github.com/phenrril/drukuje3d/internal/adapters/repo/postgres"
	"github.com/phenrril/drukuje3d/internal/adapters/repo/rediscache"
	"github.com/phenrril/drukuje3d/internal/adapters/storage/localfs"
	"github.com/phenrril/drukuje3d/internal/config"
	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/notify"
	"github.com/phenrril/drukuje3d/internal/pricing"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

const productCacheTTL = 5 * time.Minute

type App struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Redis *redis.Client

	Products   domain.ProductRepo
	ProductUC  *usecase.ProductUC
	SettingsUC *usecase.SettingsUC
	OrderUC    *usecase.OrderUC
	PaymentUC  *usecase.PaymentUC
	AuthUC     *usecase.AuthUC
	PushUC     *usecase.PushUC

	Storage     domain.FileStorage
	OAuthConfig *oauth2.Config
}

func NewApp(cfg *config.Config, db *gorm.DB) (*App, error) {
	if cfg.SessionKey == "dev-insecure" && !cfg.IsDev() {
		return nil, fmt.Errorf("SESSION_KEY must be set outside development")
	}
	app := &App{Cfg: cfg, DB: db}

	var prodRepo domain.ProductRepo = postgres.NewProductRepo(db)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		app.Redis = redis.NewClient(opts)
		prodRepo = rediscache.NewProductRepo(prodRepo, app.Redis, productCacheTTL)
	}
	app.Products = prodRepo
	orderRepo := postgres.NewOrderRepo(db)
	userRepo := postgres.NewUserRepo(db)
	subRepo := postgres.NewPushSubscriptionRepo(db)

	mailer := smtp.NewMailer(smtp.Config{
		Host: cfg.SMTP.Host,
		Port: cfg.SMTP.Port,
		User: cfg.SMTP.User,
		Pass: cfg.SMTP.Pass,
		From: cfg.SMTP.From,
	})
	if mailer.Simulated() {
		zlog.Warn().Msg("SMTP not configured, emails will only be logged")
	}

	var push domain.PushSender
	if cfg.Push.Enabled() {
		push = webpush.NewSender(webpush.Config{
			PublicKey:  cfg.Push.VAPIDPublicKey,
			PrivateKey: cfg.Push.VAPIDPrivateKey,
			Subject:    cfg.Push.Subject,
		})
	} else {
		zlog.Warn().Msg("VAPID keys missing, push notifications disabled")
	}

	if cfg.PayPal.ClientID == "" || cfg.PayPal.ClientSecret == "" {
		zlog.Warn().Msg("PayPal credentials missing, PayPal payments will fail")
	}
	gateway := paypal.NewGateway(paypal.Config{
		ClientID:     cfg.PayPal.ClientID,
		ClientSecret: cfg.PayPal.ClientSecret,
		APIURL:       cfg.PayPal.APIURL,
		Currency:     cfg.PayPal.Currency,
	})

	dispatcher := notify.NewDispatcher(mailer, push, subRepo, notify.Options{
		AdminEmail:    cfg.Shop.NotifyEmail,
		BlikPhone:     cfg.Shop.BlikPhone,
		BlikRecipient: cfg.Shop.BlikRecipient,
	})

	app.ProductUC = &usecase.ProductUC{Products: prodRepo}
	app.SettingsUC = &usecase.SettingsUC{
		Settings: postgres.NewSettingsRepo(db),
		Defaults: pricing.ShippingSettings{
			BaseCost:      cfg.Shop.DefaultShippingCost,
			FreeThreshold: cfg.Shop.DefaultFreeThreshold,
		},
	}
	app.OrderUC = &usecase.OrderUC{Orders: orderRepo, Products: prodRepo, Settings: app.SettingsUC, Notifier: dispatcher}
	app.PaymentUC = &usecase.PaymentUC{Orders: orderRepo, Gateway: gateway, OrderUC: app.OrderUC, Currency: cfg.PayPal.Currency}
	app.AuthUC = &usecase.AuthUC{Users: userRepo, Tokens: postgres.NewTokenRepo(db), Mailer: mailer, BaseURL: cfg.BaseURL}
	app.PushUC = &usecase.PushUC{Subs: subRepo, VAPIDPublicKey: cfg.Push.VAPIDPublicKey}
	app.Storage = localfs.New(cfg.Shop.UploadDir)

	if cfg.Google.ClientID != "" && cfg.Google.ClientSecret != "" {
		app.OAuthConfig = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Products:       a.ProductUC,
		Orders:         a.OrderUC,
		Payments:       a.PaymentUC,
		Auth:           a.AuthUC,
		Settings:       a.SettingsUC,
		Push:           a.PushUC,
		Storage:        a.Storage,
		OAuth:          a.OAuthConfig,
		SessionKey:     []byte(a.Cfg.SessionKey),
		SecureCookies:  !a.Cfg.IsDev(),
		PayPalClientID: a.Cfg.PayPal.ClientID,
		UploadDir:      a.Cfg.Shop.UploadDir,
		RateLimit:      120,
		TrustedProxies: a.Cfg.TrustedProxies,
	})
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := postgres.Migrate(a.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := seedProducts(ctx, a.Products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if err := a.AuthUC.EnsureAdmin(ctx, a.Cfg.Admin.Email, a.Cfg.Admin.Password); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// seedProducts fills an empty catalogue with a few sample items.
func seedProducts(ctx context.Context, repo domain.ProductRepo) error {
	_, total, err := repo.List(ctx, domain.ProductFilter{PageSize: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	tier := func(minQty int, price string) domain.PricingTier {
		return domain.PricingTier{ID: uuid.New(), MinQuantity: minQty, Price: decimal.RequireFromString(price)}
	}
	prods := []domain.Product{
		{Slug: "duze-serce-kocham-cie", Name: `Duże Serce "Kocham Cię"`, Description: "Wolnostojące, eleganckie serce 3D. Idealne na prezent.", BasePrice: decimal.RequireFromString("40.00"), IsLarge: true},
		{Slug: "brelok-serce", Name: "Brelok Serce", Description: "Mały brelok w kształcie serca z mocowaniem.", BasePrice: decimal.RequireFromString("5.00"), HasMount: true,
			Pricing: []domain.PricingTier{tier(10, "4.50"), tier(50, "4.00")}},
		{Slug: "wizytowka-nfc-standard", Name: "Wizytówka NFC Standard", Description: "Nowoczesna wizytówka z chipem NFC.", BasePrice: decimal.RequireFromString("8.00")},
	}
	for i := range prods {
		p := &prods[i]
		p.ID = uuid.New()
		p.MinOrderQuantity = 1
		p.Active = true
		if err := repo.Save(ctx, p); err != nil {
			return err
		}
	}
	zlog.Info().Int("count", len(prods)).Msg("seeded sample products")
	return nil
}
