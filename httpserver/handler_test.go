package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/orderlog"
	"github.com/dispatch-mcp/swag-store-backend/registry"
)

const testAdminToken = "test-admin-secret"

type testEnv struct {
	registry *registry.Registry
	orders   *orderlog.Log
	router   http.Handler
}

func newTestEnv(t *testing.T, adminToken string) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := registry.New(registry.Config{Log: logger})
	orders := orderlog.New(orderlog.Config{Log: logger})

	handler := NewHandler(reg, orders, adminToken, "https://store.example.com", logger)
	admin := NewAdminHandler(adminToken, reg, orders, logger)

	srv, err := New(&api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler, admin)
	require.NoError(t, err)

	return &testEnv{
		registry: reg,
		orders:   orders,
		router:   srv.getRouter(),
	}
}

func (env *testEnv) do(t *testing.T, method, target string, body any, header http.Header) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	resp := w.Result()
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	}
	return resp, result
}

// createInstance provisions an instance and waits for the background
// deployment to finish.
func (env *testEnv) createInstance(t *testing.T, email string) (id, token string) {
	t.Helper()

	resp, result := env.do(t, http.MethodPost, "/api/create-instance", api.CreateInstanceRequest{Email: email}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id, _ = result["instanceId"].(string)
	token, _ = result["token"].(string)
	require.NotEmpty(t, id)
	require.NotEmpty(t, token)

	require.Eventually(t, func() bool {
		view, err := env.registry.GetInstance(id, token)
		return err == nil && view.Status == api.StatusActive
	}, time.Second, 5*time.Millisecond)

	return id, token
}

func TestHandleCreateInstance(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodPost, "/api/create-instance", api.CreateInstanceRequest{Email: "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.True(t, strings.HasPrefix(result["instanceId"].(string), "id-"))
	assert.Len(t, result["token"], 64)
	assert.Equal(t, "https://store.example.com/?instance="+result["instanceId"].(string), result["storeUrl"])
	assert.NotEqual(t, true, result["existing"])
}

func TestHandleCreateInstance_InvalidEmail(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodPost, "/api/create-instance", api.CreateInstanceRequest{Email: "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid email address", result["error"])
}

func TestHandleCreateInstance_BadBody(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	req := httptest.NewRequest(http.MethodPost, "/api/create-instance", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateInstance_DedupByEmail(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	id, token := env.createInstance(t, "dedup@example.com")

	resp, result := env.do(t, http.MethodPost, "/api/create-instance", api.CreateInstanceRequest{Email: "dedup@example.com"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, id, result["instanceId"])
	assert.Equal(t, token, result["token"])
	assert.Equal(t, true, result["existing"])
}

func TestHandleInstance(t *testing.T) {
	env := newTestEnv(t, testAdminToken)
	id, token := env.createInstance(t, "view@example.com")

	header := http.Header{"Authorization": {"Bearer " + token}}
	resp, result := env.do(t, http.MethodGet, "/api/instance/"+id, nil, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, id, result["instanceId"])
	assert.Equal(t, "view@example.com", result["email"])
	assert.Equal(t, "active", result["status"])

	mcp := result["mcpConfig"].(map[string]interface{})
	datadog := mcp["mcpServers"].(map[string]interface{})["datadog"].(map[string]interface{})
	assert.Equal(t, "npx", datadog["command"])
	assert.Equal(t, []interface{}{"-y", "@datadog/datadog-mcp-server"}, datadog["args"])

	environ := datadog["env"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(environ["DD_API_KEY"].(string), "dd_api_"))
	assert.True(t, strings.HasPrefix(environ["DD_APP_KEY"].(string), "dd_app_"))
	assert.Equal(t, "datadoghq.com", environ["DD_SITE"])
}

func TestHandleInstance_BadToken(t *testing.T) {
	env := newTestEnv(t, testAdminToken)
	id, token := env.createInstance(t, "auth@example.com")

	// No Authorization header at all
	resp, result := env.do(t, http.MethodGet, "/api/instance/"+id, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized - Invalid or missing token", result["error"])

	// Wrong token
	header := http.Header{"Authorization": {"Bearer wrong-token"}}
	resp, _ = env.do(t, http.MethodGet, "/api/instance/"+id, nil, header)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown instance id
	header = http.Header{"Authorization": {"Bearer " + token}}
	resp, result = env.do(t, http.MethodGet, "/api/instance/id-00000000", nil, header)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Instance not found", result["error"])
}

func TestHandleSubmitOrder(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	order := api.OrderRequest{
		Email: "buyer@example.com",
		Items: []api.OrderItemRequest{{Name: "Hoodie", SelectedSize: "M"}},
		ShippingAddress: api.ShippingAddress{
			FirstName: "A",
			LastName:  "B",
			Address:   "1 Rd",
			City:      "X",
			ZipCode:   "00000",
			Country:   "US",
		},
	}

	header := http.Header{AdminTokenHeader: {testAdminToken}}
	resp, result := env.do(t, http.MethodPost, "/api/orders", order, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, result["success"])
	assert.True(t, strings.HasPrefix(result["orderId"].(string), "ORD-"))
	assert.Equal(t, 1, env.orders.Len())
}

func TestHandleSubmitOrder_QueryToken(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	order := api.OrderRequest{
		Email: "buyer@example.com",
		Items: []api.OrderItemRequest{{Name: "Tee", Size: "L"}},
		ShippingAddress: api.ShippingAddress{
			FirstName: "A",
			LastName:  "B",
			Address:   "1 Rd",
			City:      "X",
			ZipCode:   "00000",
			Country:   "US",
		},
	}

	resp, result := env.do(t, http.MethodPost, "/api/orders?token="+testAdminToken, order, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["success"])
}

func TestHandleSubmitOrder_MissingField(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	order := api.OrderRequest{
		Email: "buyer@example.com",
		Items: []api.OrderItemRequest{{Name: "Hoodie"}},
		ShippingAddress: api.ShippingAddress{
			FirstName: "A",
			LastName:  "B",
			Address:   "1 Rd",
			ZipCode:   "00000",
			Country:   "US",
		},
	}

	header := http.Header{AdminTokenHeader: {testAdminToken}}
	resp, result := env.do(t, http.MethodPost, "/api/orders", order, header)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "incomplete shipping address: city", result["error"])
	assert.Equal(t, 0, env.orders.Len())
}

func TestHandleSubmitOrder_NoToken(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodPost, "/api/orders", api.OrderRequest{}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized - Invalid or missing token", result["error"])
}

func TestHandleSubmitOrder_TokenNotConfigured(t *testing.T) {
	env := newTestEnv(t, "")

	header := http.Header{AdminTokenHeader: {"anything"}}
	resp, result := env.do(t, http.MethodPost, "/api/orders", api.OrderRequest{}, header)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", result["error"])
	assert.Equal(t, "admin token not configured", result["setup"])
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, testAdminToken)
	env.createInstance(t, "health@example.com")

	resp, result := env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, float64(1), result["instances"])
	assert.Equal(t, float64(0), result["orders"])
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodGet, "/livez", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", result["status"])

	resp, result = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", result["status"])

	resp, result = env.do(t, http.MethodGet, "/drain", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "draining", result["status"])

	resp, _ = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/undrain", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
