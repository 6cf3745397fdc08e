package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/mocks"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

var testKey = []byte("test-session-key")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	h        http.Handler
	srv      *Server
	products *mocks.ProductRepo
	orders   *mocks.OrderRepo
	settings *mocks.SettingsRepo
	users    *mocks.UserRepo
	subs     *mocks.PushSubscriptionRepo
	gateway  *mocks.PaymentGateway
	notifier *mocks.Notifier
	storage  *mocks.FileStorage
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		products: mocks.NewProductRepo(t),
		orders:   mocks.NewOrderRepo(t),
		settings: mocks.NewSettingsRepo(t),
		users:    mocks.NewUserRepo(t),
		subs:     mocks.NewPushSubscriptionRepo(t),
		gateway:  mocks.NewPaymentGateway(t),
		notifier: mocks.NewNotifier(t),
		storage:  mocks.NewFileStorage(t),
	}
	settingsUC := &usecase.SettingsUC{Settings: f.settings}
	orderUC := &usecase.OrderUC{Orders: f.orders, Products: f.products, Settings: settingsUC, Notifier: f.notifier}
	d := Deps{
		Products:   &usecase.ProductUC{Products: f.products},
		Orders:     orderUC,
		Payments:   &usecase.PaymentUC{Orders: f.orders, Gateway: f.gateway, OrderUC: orderUC},
		Auth:       &usecase.AuthUC{Users: f.users, Cost: bcrypt.MinCost},
		Settings:   settingsUC,
		Push:       &usecase.PushUC{Subs: f.subs, VAPIDPublicKey: "BPUB"},
		Storage:    f.storage,
		SessionKey: testKey,
		UploadDir:  t.TempDir(),
	}
	f.h = New(d)
	f.srv = &Server{Deps: d}
	f.srv.Now = time.Now
	return f
}

func keychain() *domain.Product {
	id := uuid.New()
	return &domain.Product{
		ID:               id,
		Slug:             "brelok-nfc",
		Name:             "Brelok NFC",
		BasePrice:        dec("15.00"),
		MinOrderQuantity: 1,
		HasMount:         true,
		Active:           true,
		Pricing: []domain.PricingTier{
			{ProductID: id, MinQuantity: 5, Price: dec("13.00")},
			{ProductID: id, MinQuantity: 10, Price: dec("12.00")},
		},
	}
}

func customer() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Jan", Email: "jan@example.com", Role: domain.RoleUser}
}

func admin() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
}

func (f *fixture) token(t *testing.T, u *domain.User) string {
	tok, _, err := f.srv.issueSession(u)
	require.NoError(t, err)
	return tok
}

type call struct {
	method  string
	path    string
	body    any
	user    *domain.User
	cookies []*http.Cookie
}

func (f *fixture) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.user != nil {
		req.Header.Set("Authorization", "Bearer "+f.token(t, c.user))
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, call{method: http.MethodGet, path: "/healthz"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
