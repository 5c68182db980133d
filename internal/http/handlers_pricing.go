package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	applog "gasdash/internal/log"
	"gasdash/internal/storage"
)

type priceRequest struct {
	Customer string          `json:"customer"`
	Product  string          `json:"product"`
	Price    decimal.Decimal `json:"price"`
}

func (s *Server) handleSyncCustomers(w http.ResponseWriter, r *http.Request) {
	added, err := s.svc.Pricing.SyncCustomers(r.Context())
	if err != nil {
		writeError(w, r, applog.OpSync, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Pricing.Customers(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prices, err := s.svc.Pricing.Prices(r.Context(), storage.PriceFilter{
		Customer: sanitizeInput(q.Get(ParamCustomer)),
		Product:  sanitizeInput(q.Get(ParamProduct)),
	})
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	p, err := s.svc.Pricing.SetPrice(r.Context(), sanitizeInput(req.Customer), sanitizeInput(req.Product), req.Price)
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
