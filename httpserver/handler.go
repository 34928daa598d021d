package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/cryptoutils"
	"github.com/dispatch-mcp/swag-store-backend/metrics"
	"github.com/dispatch-mcp/swag-store-backend/orderlog"
	"github.com/dispatch-mcp/swag-store-backend/registry"
)

const (
	// AdminTokenHeader carries the shared admin secret.
	AdminTokenHeader = "X-Admin-Token"

	// maxBodySize is the maximum allowed request body size (1MB).
	maxBodySize = 1024 * 1024
)

// Handler processes the public API requests: instance creation,
// instance detail, order submission and health.
type Handler struct {
	registry     *registry.Registry
	orders       *orderlog.Log
	adminToken   string
	storeURLBase string
	log          *slog.Logger
}

// NewHandler creates the public API handler.
//
// Parameters:
//   - reg: the instance registry
//   - orders: the order log
//   - adminToken: shared secret gating order submission; empty fails closed
//   - storeURLBase: base URL for per-instance storefront links; empty omits them
//   - log: structured logger
func NewHandler(reg *registry.Registry, orders *orderlog.Log, adminToken, storeURLBase string, log *slog.Logger) *Handler {
	return &Handler{
		registry:     reg,
		orders:       orders,
		adminToken:   adminToken,
		storeURLBase: storeURLBase,
		log:          log,
	}
}

// HandleCreateInstance provisions an instance for the submitted email,
// or returns the already-active one for it.
//
// URL format: POST /api/create-instance
// Request body: {"email": "user@example.com"}
// Response: JSON, see api.CreateInstanceResponse
func (h *Handler) HandleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req api.CreateInstanceRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	res, err := h.registry.CreateInstance(req.Email)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	if !res.Existing {
		metrics.InstancesCreated.Inc()
	}

	writeJSON(w, http.StatusOK, api.CreateInstanceResponse{
		InstanceID: res.InstanceID,
		Token:      res.Token,
		StoreURL:   h.storeURL(res.InstanceID),
		Existing:   res.Existing,
	})
}

// HandleInstance returns the instance view with the embedded MCP
// configuration. The bearer token must exactly match the one issued at
// creation.
//
// URL format: GET /api/instance/{id}
// Required headers: Authorization: Bearer <token>
func (h *Handler) HandleInstance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	view, err := h.registry.GetInstance(id, token)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleSubmitOrder validates and appends a storefront order. The
// endpoint is gated by the shared admin token; the storefront proxies
// submissions through the landing page backend which holds it.
//
// URL format: POST /api/orders
// Required headers: X-Admin-Token
func (h *Handler) HandleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	if err := checkAdminToken(r, h.adminToken); err != nil {
		writeError(w, h.log, err)
		return
	}

	var req api.OrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	order, err := h.orders.Append(&req)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	metrics.OrdersReceived.Inc()

	writeJSON(w, http.StatusOK, api.OrderResponse{
		Success: true,
		OrderID: order.OrderID,
	})
}

// HandleHealth reports liveness and current store sizes.
//
// URL format: GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Instances: h.registry.Len(),
		Orders:    h.orders.Len(),
	})
}

func (h *Handler) storeURL(instanceID string) string {
	if h.storeURLBase == "" {
		return ""
	}
	return fmt.Sprintf("%s/?instance=%s", strings.TrimSuffix(h.storeURLBase, "/"), instanceID)
}

// checkAdminToken verifies the caller-supplied admin token from the
// X-Admin-Token header or the token query parameter. With no secret
// configured, access fails closed.
func checkAdminToken(r *http.Request, configured string) error {
	if configured == "" {
		return api.ErrAdminTokenNotSet
	}

	token := r.Header.Get(AdminTokenHeader)
	if token == "" {
		token = r.URL.Query().Get("token")
	}

	if !cryptoutils.TokenEqual(configured, token) {
		return api.ErrUnauthorized
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return api.Validationf("invalid request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy to HTTP responses.
// Unrecognized errors become a generic 500 with no internal detail.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case api.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, api.ErrAdminTokenNotSet):
		writeJSON(w, http.StatusForbidden, map[string]string{
			"error": "Access denied",
			"setup": "admin token not configured",
		})
	case errors.Is(err, api.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Unauthorized - Invalid or missing token"})
	case errors.Is(err, api.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Instance not found"})
	default:
		log.Error("Request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
