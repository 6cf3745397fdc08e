// Package paypal talks to the PayPal Orders v2 REST API.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/metrics"
)

var ErrMissingCredentials = errors.New("paypal credentials missing")

type Config struct {
	ClientID     string
	ClientSecret string
	APIURL       string
	Currency     string
}

type Gateway struct {
	baseURL    string
	currency   string
	configured bool
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

func NewGateway(cfg Config) *Gateway {
	base := strings.TrimRight(cfg.APIURL, "/")
	if base == "" {
		base = "https://api-m.paypal.com"
	}
	if cfg.Currency == "" {
		cfg.Currency = "PLN"
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     base + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// The token source caches the access token until it expires.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})
	client := cc.Client(ctx)
	client.Timeout = 15 * time.Second

	settings := gobreaker.Settings{
		Name:        "paypal",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("name", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}
	return &Gateway{
		baseURL:    base,
		currency:   cfg.Currency,
		configured: cfg.ClientID != "" && cfg.ClientSecret != "",
		httpClient: client,
		cb:         gobreaker.NewCircuitBreaker(settings),
	}
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id,omitempty"`
	CustomID    string `json:"custom_id,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type createOrderReq struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type orderResp struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Status string `json:"status"`
				Amount amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// capture sums the completed captures of every purchase unit.
func (r orderResp) capture() (*domain.PaymentCapture, error) {
	c := &domain.PaymentCapture{GatewayOrderID: r.ID, Status: r.Status}
	for _, pu := range r.PurchaseUnits {
		for _, cp := range pu.Payments.Captures {
			if cp.Status != "COMPLETED" {
				continue
			}
			v, err := decimal.NewFromString(cp.Amount.Value)
			if err != nil {
				return nil, fmt.Errorf("paypal: capture amount %q: %w", cp.Amount.Value, err)
			}
			if c.Currency != "" && c.Currency != cp.Amount.CurrencyCode {
				return nil, fmt.Errorf("paypal: mixed capture currencies %s and %s", c.Currency, cp.Amount.CurrencyCode)
			}
			c.Currency = cp.Amount.CurrencyCode
			c.Amount = c.Amount.Add(v)
		}
	}
	return c, nil
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// CreateOrder opens a CAPTURE intent for the order total as stored on our side.
func (g *Gateway) CreateOrder(ctx context.Context, o *domain.Order) (string, error) {
	if o == nil {
		return "", errors.New("nil order")
	}
	body := createOrderReq{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: o.ID.String(),
			CustomID:    o.ID.String(),
			Description: "Zamówienie #" + o.ShortID(),
			Amount:      amount{CurrencyCode: g.currency, Value: o.Total.StringFixed(2)},
		}},
	}
	var out orderResp
	if err := g.call(ctx, "create", http.MethodPost, "/v2/checkout/orders", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("paypal: empty order id")
	}
	return out.ID, nil
}

func (g *Gateway) Capture(ctx context.Context, gatewayOrderID string) (*domain.PaymentCapture, error) {
	var out orderResp
	if err := g.call(ctx, "capture", http.MethodPost, "/v2/checkout/orders/"+gatewayOrderID+"/capture", nil, &out); err != nil {
		return nil, err
	}
	return out.capture()
}

func (g *Gateway) GetOrder(ctx context.Context, gatewayOrderID string) (*domain.PaymentCapture, error) {
	var out orderResp
	if err := g.call(ctx, "get", http.MethodGet, "/v2/checkout/orders/"+gatewayOrderID, nil, &out); err != nil {
		return nil, err
	}
	return out.capture()
}

func (g *Gateway) call(ctx context.Context, op, method, path string, in, out any) error {
	if !g.configured {
		return ErrMissingCredentials
	}
	_, err := g.cb.Execute(func() (interface{}, error) {
		return nil, g.do(ctx, op, method, path, in, out)
	})
	return err
}

func (g *Gateway) do(ctx context.Context, op, method, path string, in, out any) error {
	var rd io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("paypal: encode %s: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := g.httpClient.Do(req)
	if err != nil {
		metrics.GatewayCalls.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("paypal %s: %w", op, err)
	}
	defer res.Body.Close()
	metrics.GatewayCalls.WithLabelValues(op, strconv.Itoa(res.StatusCode)).Inc()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		var ae apiError
		if json.Unmarshal(b, &ae) == nil && ae.Name != "" {
			return fmt.Errorf("paypal %s status %d: %s: %s", op, res.StatusCode, ae.Name, ae.Message)
		}
		return fmt.Errorf("paypal %s status %d: %s", op, res.StatusCode, string(b))
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("paypal: decode %s: %w", op, err)
	}
	return nil
}
