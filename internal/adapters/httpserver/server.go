package httpserver

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

type Deps struct {
	Products *usecase.ProductUC
	Orders   *usecase.OrderUC
	Payments *usecase.PaymentUC
	Auth     *usecase.AuthUC
	Settings *usecase.SettingsUC
	Push     *usecase.PushUC
	Storage  domain.FileStorage
	OAuth    *oauth2.Config

	SessionKey     []byte
	SecureCookies  bool
	PayPalClientID string
	UploadDir      string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	// TrustedProxies may set X-Forwarded-For / X-Real-IP for rate limiting.
	TrustedProxies []netip.Prefix
	Now            func() time.Time
}

type Server struct {
	Deps
	mux *http.ServeMux
}

func New(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.UploadDir == "" {
		d.UploadDir = "uploads"
	}
	s := &Server{Deps: d, mux: http.NewServeMux()}
	s.routes()

	mws := []Middleware{SecurityHeaders, RequestID, Recovery, Logging}
	if d.RateLimit > 0 {
		mws = append([]Middleware{RateLimit(d.RateLimit, d.TrustedProxies...)}, mws...)
	}
	return Chain(s.mux, mws...)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.UploadDir))))

	// shop
	s.mux.HandleFunc("GET /api/products", s.apiProducts)
	s.mux.HandleFunc("GET /api/products/{slug}", s.apiProductBySlug)
	s.mux.HandleFunc("GET /api/products/{id}/price", s.apiProductPrice)
	s.mux.HandleFunc("GET /api/settings/shipping", s.apiShipping)
	s.mux.HandleFunc("POST /api/upload", s.apiUpload)

	s.mux.HandleFunc("GET /api/cart", s.apiCartGet)
	s.mux.HandleFunc("POST /api/cart", s.apiCartAdd)
	s.mux.HandleFunc("PATCH /api/cart", s.apiCartUpdate)
	s.mux.HandleFunc("POST /api/cart/remove", s.apiCartRemove)
	s.mux.HandleFunc("DELETE /api/cart", s.apiCartClear)

	s.mux.HandleFunc("POST /api/orders", s.apiCreateOrder)
	s.mux.HandleFunc("GET /api/orders/{id}", s.apiGetOrder)
	s.mux.HandleFunc("POST /api/paypal/orders", s.apiPayPalCreate)
	s.mux.HandleFunc("POST /api/paypal/orders/{paypalID}/capture", s.apiPayPalCapture)
	s.mux.HandleFunc("POST /api/paypal/orders/{paypalID}/confirm", s.apiPayPalConfirm)
	s.mux.HandleFunc("GET /api/paypal/config", s.apiPayPalConfig)

	// auth
	s.mux.HandleFunc("POST /api/auth/register", s.apiRegister)
	s.mux.HandleFunc("POST /api/auth/verify", s.apiVerify)
	s.mux.HandleFunc("POST /api/auth/signin", s.apiSignIn)
	s.mux.HandleFunc("POST /api/auth/signout", s.apiSignOut)
	s.mux.HandleFunc("POST /api/auth/forgot-password", s.apiForgotPassword)
	s.mux.HandleFunc("POST /api/auth/reset-password", s.apiResetPassword)
	s.mux.HandleFunc("GET /api/auth/me", s.apiMe)
	s.mux.HandleFunc("PUT /api/auth/me/password", s.apiChangePassword)
	s.mux.HandleFunc("PUT /api/auth/me/email", s.apiChangeEmail)
	s.mux.HandleFunc("GET /api/auth/me/orders", s.apiMyOrders)
	s.mux.HandleFunc("GET /auth/google/login", s.handleGoogleLogin)
	s.mux.HandleFunc("GET /auth/google/callback", s.handleGoogleCallback)

	// admin
	s.mux.HandleFunc("GET /api/admin/products", s.apiAdminProducts)
	s.mux.HandleFunc("POST /api/admin/products", s.apiAdminCreateProduct)
	s.mux.HandleFunc("GET /api/admin/products/{id}", s.apiAdminProduct)
	s.mux.HandleFunc("PUT /api/admin/products/{id}", s.apiAdminUpdateProduct)
	s.mux.HandleFunc("DELETE /api/admin/products/{id}", s.apiAdminDeleteProduct)
	s.mux.HandleFunc("POST /api/admin/uploads", s.apiAdminUpload)

	s.mux.HandleFunc("GET /api/admin/orders", s.apiAdminOrders)
	s.mux.HandleFunc("GET /api/admin/orders.xlsx", s.apiAdminOrdersExport)
	s.mux.HandleFunc("GET /api/admin/orders/{id}", s.apiAdminOrder)
	s.mux.HandleFunc("PUT /api/admin/orders/{id}/status", s.apiAdminSetStatus)
	s.mux.HandleFunc("POST /api/admin/orders/{id}/transition", s.apiAdminTransition)
	s.mux.HandleFunc("PUT /api/admin/orders/{id}/tracking", s.apiAdminSetTracking)
	s.mux.HandleFunc("POST /api/admin/orders/{id}/paid", s.apiAdminMarkPaid)
	s.mux.HandleFunc("POST /api/admin/orders/{id}/approve-blik", s.apiAdminApproveBlik)
	s.mux.HandleFunc("DELETE /api/admin/orders/{id}", s.apiAdminDeleteOrder)
	s.mux.HandleFunc("GET /api/admin/latest-order", s.apiAdminLatestOrder)

	s.mux.HandleFunc("GET /api/admin/settings", s.apiAdminSettings)
	s.mux.HandleFunc("PUT /api/admin/settings", s.apiAdminUpdateSettings)
	s.mux.HandleFunc("GET /api/admin/push/vapid-public-key", s.apiVAPIDKey)
	s.mux.HandleFunc("POST /api/admin/push/subscribe", s.apiPushSubscribe)
	s.mux.HandleFunc("DELETE /api/admin/push/subscribe", s.apiPushUnsubscribe)
}
