package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "gasdash/internal/log"
	"gasdash/internal/middleware/ratelimit"
	"gasdash/internal/middleware/security"
	"gasdash/internal/middleware/trace"
	"gasdash/internal/services"
)

// Services groups what the API serves. Ready may be nil.
type Services struct {
	Deliveries *services.DeliveryService
	Attendance *services.AttendanceService
	Pricing    *services.PricingService
	Inventory  *services.InventoryService
	Ready      func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc      Services
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		svc:      svc,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(logger),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/deliveries/{vehicle}", s.handleDeliveries)
	mux.HandleFunc("GET /api/deliveries/{vehicle}/options", s.handleDeliveryOptions)
	mux.HandleFunc("POST /api/deliveries/{vehicle}/refresh", s.handleRefreshDeliveries)

	mux.HandleFunc("GET /api/employees", s.handleListEmployees)
	mux.HandleFunc("POST /api/employees", s.handleCreateEmployee)
	mux.HandleFunc("GET /api/employees/{id}", s.handleGetEmployee)
	mux.HandleFunc("PUT /api/employees/{id}", s.handleUpdateEmployee)
	mux.HandleFunc("DELETE /api/employees/{id}", s.handleDeleteEmployee)

	mux.HandleFunc("GET /api/attendance/report/{year}/{month}", s.handleAttendanceReport)
	mux.HandleFunc("GET /api/attendance/{id}/{year}/{month}", s.handleMonthSheet)
	mux.HandleFunc("PUT /api/attendance/{id}/{year}/{month}", s.handleSaveMonth)

	mux.HandleFunc("POST /api/customers/sync", s.handleSyncCustomers)
	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("GET /api/prices", s.handleListPrices)
	mux.HandleFunc("PUT /api/prices", s.handleSetPrice)

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("POST /api/products", s.handleAddProduct)
	mux.HandleFunc("GET /api/inventory", s.handleListInventory)
	mux.HandleFunc("PUT /api/inventory", s.handleSetInventory)
	mux.HandleFunc("GET /api/inventory/remaining/{product}", s.handleRemaining)
	mux.HandleFunc("POST /api/inventory/sales/import/{vehicle}", s.handleImportSales)
	mux.HandleFunc("GET /api/inventory/summary/{vehicle}", s.handleProductSummary)

	var handler http.Handler = mux
	handler = s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server stopped",
			"requests", m.TotalRequests,
			"client_errors", m.ClientErrors,
			"server_errors", m.ServerErrors,
			"rate_limited", s.limiter.Hits(),
			"suspicious", s.detector.GetMetrics().SuspiciousRequests)
	})
	return err
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorResponse{
		Error:     "rate limit exceeded, try again later",
		RequestID: trace.GetRequestID(r.Context()),
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
