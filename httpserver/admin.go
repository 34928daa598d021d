package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/orderlog"
	"github.com/dispatch-mcp/swag-store-backend/registry"
)

// AdminHandler processes token-gated read access to the order log and
// the instance registry. The token is a single process-configured
// shared secret; with no secret configured all admin access fails
// closed with a setup hint.
type AdminHandler struct {
	token    string
	registry *registry.Registry
	orders   *orderlog.Log
	log      *slog.Logger
}

// NewAdminHandler creates the admin query handler.
func NewAdminHandler(token string, reg *registry.Registry, orders *orderlog.Log, log *slog.Logger) *AdminHandler {
	return &AdminHandler{
		token:    token,
		registry: reg,
		orders:   orders,
		log:      log,
	}
}

// Router returns the admin API router, mounted under /api/admin.
func (h *AdminHandler) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/orders", h.handleOrders)
	r.Get("/instances", h.handleInstances)

	return r
}

// handleOrders returns the full order log, newest first.
//
// Endpoint: GET /api/admin/orders
func (h *AdminHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	if err := checkAdminToken(r, h.token); err != nil {
		h.log.Warn("Admin orders access denied", "err", err, "remote", r.RemoteAddr)
		writeError(w, h.log, err)
		return
	}

	orders := h.orders.List()
	writeJSON(w, http.StatusOK, api.AdminOrdersResponse{
		Total:  len(orders),
		Orders: orders,
	})
}

// handleInstances returns all non-expired instance records.
//
// Endpoint: GET /api/admin/instances
func (h *AdminHandler) handleInstances(w http.ResponseWriter, r *http.Request) {
	if err := checkAdminToken(r, h.token); err != nil {
		h.log.Warn("Admin instances access denied", "err", err, "remote", r.RemoteAddr)
		writeError(w, h.log, err)
		return
	}

	instances := h.registry.Instances()
	writeJSON(w, http.StatusOK, api.AdminInstancesResponse{
		Total:     len(instances),
		Instances: instances,
	})
}
