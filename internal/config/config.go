package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv     string
	Port       string
	BaseURL    string
	SessionKey string
	DB         DBConfig
	SMTP       SMTPConfig
	PayPal     PayPalConfig
	Push       PushConfig
	Google     GoogleConfig
	RedisURL   string
	// TrustedProxies lists reverse proxies whose forwarding headers are believed.
	TrustedProxies []netip.Prefix
	Shop           ShopConfig
	Admin          AdminConfig
}

type DBConfig struct {
	DSN      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Pass != ""
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	Currency     string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
}

func (c PushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type ShopConfig struct {
	NotifyEmail          string
	BlikPhone            string
	BlikRecipient        string
	DefaultShippingCost  decimal.Decimal
	DefaultFreeThreshold decimal.Decimal
	UploadDir            string
}

type AdminConfig struct {
	Email    string
	Password string
}

// Load reads the environment. Call godotenv.Load beforehand to pick up a .env file.
func Load() *Config {
	return &Config{
		AppEnv:     strings.ToLower(getEnv("APP_ENV", "development")),
		Port:       getEnv("PORT", "8080"),
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		SessionKey: getEnv("SESSION_KEY", "dev-insecure"),
		DB: DBConfig{
			DSN:      os.Getenv("DB_DSN"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     firstEnv("postgres", "DB_USER", "POSTGRES_USER"),
			Password: firstEnv("postgres", "DB_PASSWORD", "POSTGRES_PASSWORD"),
			Name:     firstEnv("drukuje3d", "DB_NAME", "POSTGRES_DB"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SMTP: SMTPConfig{
			Host: os.Getenv("SMTP_HOST"),
			Port: getEnvInt("SMTP_PORT", 587),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getEnv("SMTP_FROM", `"3dprint" <noreply@3dprint.pl>`),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			APIURL:       strings.TrimRight(getEnv("PAYPAL_API_URL", "https://api-m.paypal.com"), "/"),
			Currency:     getEnv("PAYPAL_CURRENCY", "PLN"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subject:         getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		RedisURL:       os.Getenv("REDIS_URL"),
		TrustedProxies: parsePrefixes(os.Getenv("TRUSTED_PROXIES")),
		Shop: ShopConfig{
			NotifyEmail:          getEnv("ORDER_NOTIFY_EMAIL", "zamowienia@3dprint.pl"),
			BlikPhone:            getEnv("BLIK_PHONE", "+48 000 000 000"),
			BlikRecipient:        getEnv("BLIK_RECIPIENT", "3dprint"),
			DefaultShippingCost:  getEnvDecimal("DEFAULT_SHIPPING_COST", "10.99"),
			DefaultFreeThreshold: getEnvDecimal("DEFAULT_FREE_SHIPPING_THRESHOLD", "200.00"),
			UploadDir:            getEnv("STORAGE_DIR", "uploads"),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "" || c.AppEnv == "development" || c.AppEnv == "dev"
}

// ConnString builds a libpq connection string unless DB_DSN is set.
func (c DBConfig) ConnString() string {
	if strings.TrimSpace(c.DSN) != "" {
		return c.DSN
	}
	return "host=" + c.Host + " user=" + c.User + " password=" + c.Password + " dbname=" + c.Name + " port=" + c.Port + " sslmode=" + c.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(defaultValue string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// parsePrefixes reads a comma separated list of CIDRs or bare IPs. Invalid
// entries are logged and skipped.
func parsePrefixes(s string) []netip.Prefix {
	var out []netip.Prefix
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(part); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		log.Warn().Str("entry", part).Msg("ignoring invalid TRUSTED_PROXIES entry")
	}
	return out
}

func getEnvDecimal(key, defaultValue string) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return decimal.RequireFromString(defaultValue)
}
