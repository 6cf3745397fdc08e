package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/drukuje3d/internal/domain"
	"github.com/phenrril/drukuje3d/internal/usecase"
)

var imageExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

func (s *Server) apiAdminProducts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	page := queryInt(r, "page", 1)
	list, total, err := s.Products.List(r.Context(), domain.ProductFilter{
		Query:    r.URL.Query().Get("q"),
		Page:     page,
		PageSize: queryInt(r, "pageSize", 50),
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

func (s *Server) apiAdminProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := s.Products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) apiAdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in usecase.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, warnings, err := s.Products.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": p, "warnings": nonNil(warnings)})
}

func (s *Server) apiAdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in usecase.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, warnings, err := s.Products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": p, "warnings": nonNil(warnings)})
}

func (s *Server) apiAdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Products.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiAdminUpload stores a product photo; the returned URL goes into imageUrls.
func (s *Server) apiAdminUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	url, err := s.saveUpload(w, r, "image", imageExt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func orderFilter(r *http.Request) domain.OrderFilter {
	q := r.URL.Query()
	return domain.OrderFilter{
		Status:        domain.OrderStatus(q.Get("status")),
		PaymentStatus: domain.PaymentStatus(q.Get("paymentStatus")),
		Page:          queryInt(r, "page", 1),
		PageSize:      queryInt(r, "pageSize", 20),
	}
}

func (s *Server) apiAdminOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	f := orderFilter(r)
	list, total, err := s.Orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": total, "page": f.Page})
}

func (s *Server) apiAdminOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := s.Orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status         domain.OrderStatus `json:"status"`
	TrackingNumber *string            `json:"trackingNumber"`
}

// apiAdminSetStatus overwrites the status without workflow checks.
func (s *Server) apiAdminSetStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in statusRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	o, err := s.Orders.SetStatus(r.Context(), id, in.Status, in.TrackingNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiAdminTransition(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in statusRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	o, err := s.Orders.Transition(r.Context(), id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiAdminSetTracking(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		TrackingNumber string `json:"trackingNumber"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	o, err := s.Orders.SetTracking(r.Context(), id, in.TrackingNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiAdminMarkPaid(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := s.Orders.MarkPaid(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiAdminApproveBlik(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := s.Orders.ApproveBlik(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) apiAdminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiAdminLatestOrder is polled by the back-office to announce new orders.
func (s *Server) apiAdminLatestOrder(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	o, err := s.Orders.Latest(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"latestOrder": nil})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"latestOrder": map[string]any{
		"id":        o.ID,
		"createdAt": o.CreatedAt,
		"fullName":  o.FullName,
		"total":     o.Total,
	}})
}

var exportHeader = []any{"ID", "Data", "Klient", "Email", "Telefon", "Adres", "Miasto", "Kod", "Dostawa", "Płatność", "Status", "Status płatności", "Produkty", "Wysyłka", "Suma", "Nr przesyłki"}

func (s *Server) apiAdminOrdersExport(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	f := orderFilter(r)
	f.PageSize = -1
	list, _, err := s.Orders.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	x := excelize.NewFile()
	defer x.Close()
	const sheet = "Zamówienia"
	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		writeError(w, r, err)
		return
	}
	if err := x.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		writeError(w, r, err)
		return
	}
	for i, o := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			writeError(w, r, err)
			return
		}
		row := exportRow(o)
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			writeError(w, r, err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="zamowienia-%s.xlsx"`, s.Now().Format("2006-01-02")))
	if err := x.Write(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("write xlsx")
	}
}

func exportRow(o domain.Order) []any {
	items := ""
	for i, it := range o.Items {
		if i > 0 {
			items += "; "
		}
		items += fmt.Sprintf("%s x%d", it.Name, it.Quantity)
	}
	tracking := ""
	if o.TrackingNumber != nil {
		tracking = *o.TrackingNumber
	}
	total, _ := o.Total.Float64()
	shipping, _ := o.ShippingCost.Float64()
	return []any{
		o.ID.String(), o.CreatedAt.Format(time.DateTime), o.FullName, o.Email, o.Phone,
		o.AddressLine1, o.City, o.PostalCode, string(o.ShippingMethod), string(o.PaymentMethod),
		string(o.Status), string(o.PaymentStatus), items, shipping, total, tracking,
	}
}

func (s *Server) apiAdminSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	sh, err := s.Settings.Shipping(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) apiAdminUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var in struct {
		ShippingCost          decimal.Decimal `json:"shippingCost"`
		FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	sh, err := s.Settings.Update(r.Context(), in.ShippingCost, in.FreeShippingThreshold)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) apiVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.Push.VAPIDPublicKey})
}

func (s *Server) apiPushSubscribe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	var in usecase.SubscriptionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Push.Subscribe(r.Context(), sess.UserID, in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) apiPushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	var in struct {
		Endpoint string `json:"endpoint"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := s.Push.Unsubscribe(r.Context(), sess.UserID, in.Endpoint); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
