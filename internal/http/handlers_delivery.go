package http

import (
	"net/http"

	applog "gasdash/internal/log"
)

// handleDeliveries serves the filtered records, the period report and the
// totals of one vehicle.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
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
	filter, err := ParseDeliveryFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}

	dash, err := s.svc.Deliveries.Dashboard(r.Context(), vehicle, filter, g)
	if err != nil {
		writeError(w, r, applog.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleDeliveryOptions(w http.ResponseWriter, r *http.Request) {
	vehicle, err := ParseVehicle(r)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	opts, err := s.svc.Deliveries.Options(r.Context(), vehicle)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

// handleRefreshDeliveries forces the next read of a vehicle to hit the source.
func (s *Server) handleRefreshDeliveries(w http.ResponseWriter, r *http.Request) {
	vehicle, err := ParseVehicle(r)
	if err != nil {
		writeError(w, r, applog.OpSync, err)
		return
	}
	n, err := s.svc.Deliveries.Refresh(r.Context(), vehicle)
	if err != nil {
		writeError(w, r, applog.OpSync, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicle": vehicle, "records": n})
}
