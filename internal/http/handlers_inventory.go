package http

import (
	"net/http"

	applog "gasdash/internal/log"
)

type productRequest struct {
	Name string `json:"name"`
}

type inventoryRequest struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Inventory.Products(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	p, err := s.svc.Inventory.AddProduct(r.Context(), sanitizeInput(req.Name))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Inventory.Inventory(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSetInventory(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	level, err := s.svc.Inventory.SetInventory(r.Context(), sanitizeInput(req.Product), req.Quantity)
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

func (s *Server) handleRemaining(w http.ResponseWriter, r *http.Request) {
	product := sanitizeInput(r.PathValue("product"))
	left, err := s.svc.Inventory.Remaining(r.Context(), product)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product, "remaining": left})
}

// handleImportSales answers 202 when the import was queued and 200 with
// the result when it ran inline.
func (s *Server) handleImportSales(w http.ResponseWriter, r *http.Request) {
	vehicle, err := ParseVehicle(r)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	req, err := s.svc.Inventory.RequestSalesImport(r.Context(), vehicle)
	if err != nil {
		writeError(w, r, applog.OpImport, err)
		return
	}
	status := http.StatusOK
	if req.Queued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, req)
}

func (s *Server) handleProductSummary(w http.ResponseWriter, r *http.Request) {
	vehicle, err := ParseVehicle(r)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	g, err := ParseGranularity(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	rep, err := s.svc.Inventory.ProductSummary(r.Context(), vehicle, g)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
