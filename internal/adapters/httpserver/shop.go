package httpserver

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/drukuje3d/internal/cart"
	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

const maxUpload = 10 << 20

// Extensions accepted for customer design files.
var designExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".svg": true,
	".pdf": true, ".stl": true, ".3mf": true, ".obj": true,
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	list, total, err := s.Products.List(r.Context(), domain.ProductFilter{
		Query:      r.URL.Query().Get("q"),
		OnlyActive: true,
		Page:       page,
		PageSize:   queryInt(r, "pageSize", 24),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": total, "page": page})
}

func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := s.Products.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !p.Active {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiProductPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q, err := s.Products.PriceFor(r.Context(), id, queryInt(r, "qty", 1))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) apiShipping(w http.ResponseWriter, r *http.Request) {
	sh, err := s.Settings.Shipping(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// apiUpload stores the design file a customer attaches to a custom-made line.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	url, err := s.saveUpload(w, r, "file", designExt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, field string, allowed map[string]bool) (string, error) {
	if s.Storage == nil {
		return "", errors.New("file storage not configured")
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(1<<20))
	f, fh, err := r.FormFile(field)
	if err != nil {
		return "", domain.NewValidationError(field, "file is required (max 10 MB)")
	}
	defer f.Close()
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed[ext] {
		return "", domain.NewValidationError(field, "unsupported file type")
	}
	data, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data) > maxUpload {
		return "", domain.NewValidationError(field, "file must be between 1 byte and 10 MB")
	}
	return s.Storage.Save(r.Context(), fh.Filename, data)
}

// apiCreateOrder falls back to the cart cookie when the body carries no items.
func (s *Server) apiCreateOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var in usecase.CreateOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	fromCart := false
	if len(in.Items) == 0 {
		in.Items = usecase.ItemsFromCart(s.readCart(r))
		fromCart = true
	}
	if strings.TrimSpace(in.Email) == "" {
		in.Email = sess.Email
	}
	in.UserID = &sess.UserID

	o, err := s.Orders.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if fromCart {
		_ = s.writeCart(w, cart.Cart{})
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := s.Orders.GetForUser(r.Context(), id, sess.UserID, sess.admin())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type paypalRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

// ownOrder checks that the caller may pay for the order.
func (s *Server) ownOrder(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sess, ok := s.requireUser(w, r)
	if !ok {
		return uuid.Nil, false
	}
	var in paypalRequest
	if !decodeJSON(w, r, &in) {
		return uuid.Nil, false
	}
	if in.OrderID == uuid.Nil {
		writeError(w, r, domain.NewValidationError("orderId", "is required"))
		return uuid.Nil, false
	}
	if _, err := s.Orders.GetForUser(r.Context(), in.OrderID, sess.UserID, sess.admin()); err != nil {
		writeError(w, r, err)
		return uuid.Nil, false
	}
	return in.OrderID, true
}

func (s *Server) apiPayPalCreate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	id, err := s.Payments.CreatePayPalOrder(r.Context(), orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) apiPayPalCapture(w http.ResponseWriter, r *http.Request) {
	orderID, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	o, err := s.Payments.CapturePayPal(r.Context(), orderID, r.PathValue("paypalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiPayPalConfirm(w http.ResponseWriter, r *http.Request) {
	orderID, ok := s.ownOrder(w, r)
	if !ok {
		return
	}
	o, err := s.Payments.ConfirmPayPal(r.Context(), orderID, r.PathValue("paypalID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiPayPalConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"clientId": s.PayPalClientID})
}
