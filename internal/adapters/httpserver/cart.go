package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/drukuje3d/internal/cart"
	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/pricing"
)

const (
	cartCookie = "cart"
	cartTTL    = 60 * 60 * 24 * 7
)

type cartLineRequest struct {
	ProductID        uuid.UUID `json:"productId"`
	Quantity         int       `json:"quantity"`
	CustomDimensions string    `json:"customDimensions"`
	CustomImageURL   string    `json:"customImageUrl"`
}

func (in cartLineRequest) key() cart.Key {
	return cart.Key{ProductID: in.ProductID, CustomDimensions: in.CustomDimensions, CustomImageURL: in.CustomImageURL}
}

type cartView struct {
	Items                 []cart.Line     `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	ShippingCost          decimal.Decimal `json:"shippingCost"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	Total                 decimal.Decimal `json:"total"`
}

// readCart treats a missing or tampered cookie as an empty cart.
func (s *Server) readCart(r *http.Request) cart.Cart {
	c, err := r.Cookie(cartCookie)
	if err != nil || c.Value == "" {
		return cart.Cart{}
	}
	ct, err := cart.Decode(s.SessionKey, c.Value)
	if err != nil {
		return cart.Cart{}
	}
	return ct
}

func (s *Server) writeCart(w http.ResponseWriter, ct cart.Cart) error {
	if ct.Empty() {
		http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: s.SecureCookies})
		return nil
	}
	val, err := cart.Encode(s.SessionKey, ct)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{Name: cartCookie, Value: val, Path: "/", MaxAge: cartTTL, HttpOnly: true, Secure: s.SecureCookies, SameSite: http.SameSiteLaxMode})
	return nil
}

func (s *Server) view(ctx context.Context, ct cart.Cart) (cartView, error) {
	sh, err := s.Settings.Shipping(ctx)
	if err != nil {
		return cartView{}, err
	}
	sub := ct.Subtotal()
	ship := decimal.Zero
	if !ct.Empty() {
		ship = sh.Cost(sub)
	}
	lines := ct.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{
		Items:                 lines,
		Subtotal:              sub,
		ShippingCost:          ship,
		FreeShippingThreshold: sh.FreeThreshold,
		Total:                 sub.Add(ship),
	}, nil
}

// refresh reprices every line from the catalog and checks the lines in keys.
func (s *Server) refresh(ctx context.Context, ct *cart.Cart, keys ...cart.Key) error {
	products := map[uuid.UUID]*domain.Product{}
	load := func(id uuid.UUID) (*domain.Product, error) {
		if p, ok := products[id]; ok {
			return p, nil
		}
		p, err := s.Products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		products[id] = p
		return p, nil
	}
	kept := ct.Lines[:0]
	for _, l := range ct.Lines {
		_, err := load(l.ProductID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		kept = append(kept, l)
	}
	ct.Lines = kept

	err := ct.Reprice(func(id uuid.UUID, qty int) (decimal.Decimal, error) {
		p, err := load(id)
		if err != nil {
			return decimal.Zero, err
		}
		return pricing.ProductUnitPrice(p, qty)
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		for _, l := range ct.Lines {
			if l.Key() != k {
				continue
			}
			p, err := load(l.ProductID)
			if err != nil {
				return err
			}
			if err := cart.CheckLine(p, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) respondCart(w http.ResponseWriter, r *http.Request, ct cart.Cart) {
	if err := s.writeCart(w, ct); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.view(r.Context(), ct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) apiCartGet(w http.ResponseWriter, r *http.Request) {
	v, err := s.view(r.Context(), s.readCart(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) apiCartAdd(w http.ResponseWriter, r *http.Request) {
	var in cartLineRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := s.Products.GetByID(r.Context(), in.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ct := s.readCart(r)
	line := cart.Line{
		ProductID:        p.ID,
		Slug:             p.Slug,
		Name:             p.Name,
		Quantity:         in.Quantity,
		CustomDimensions: in.CustomDimensions,
		CustomImageURL:   in.CustomImageURL,
	}
	if err := ct.Add(line); err != nil {
		writeError(w, r, domain.NewValidationError("quantity", "must be at least 1"))
		return
	}
	if err := s.refresh(r.Context(), &ct, line.Key()); err != nil {
		writeError(w, r, err)
		return
	}
	s.respondCart(w, r, ct)
}

func (s *Server) apiCartUpdate(w http.ResponseWriter, r *http.Request) {
	var in cartLineRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ct := s.readCart(r)
	if err := ct.SetQuantity(in.key(), in.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.refresh(r.Context(), &ct, in.key()); err != nil {
		writeError(w, r, err)
		return
	}
	s.respondCart(w, r, ct)
}

func (s *Server) apiCartRemove(w http.ResponseWriter, r *http.Request) {
	var in cartLineRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ct := s.readCart(r)
	if !ct.Remove(in.key()) {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	if err := s.refresh(r.Context(), &ct); err != nil {
		writeError(w, r, err)
		return
	}
	s.respondCart(w, r, ct)
}

func (s *Server) apiCartClear(w http.ResponseWriter, r *http.Request) {
	s.respondCart(w, r, cart.Cart{})
}
