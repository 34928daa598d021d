package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-mcp/swag-store-backend/api"
)

func submitTestOrder(t *testing.T, env *testEnv, email string) string {
	t.Helper()

	order := api.OrderRequest{
		Email: email,
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
	return result["orderId"].(string)
}

func TestAdminOrders(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	first := submitTestOrder(t, env, "first@example.com")
	second := submitTestOrder(t, env, "second@example.com")

	header := http.Header{AdminTokenHeader: {testAdminToken}}
	resp, result := env.do(t, http.MethodGet, "/api/admin/orders", nil, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(2), result["total"])
	orders := result["orders"].([]interface{})
	require.Len(t, orders, 2)

	ids := []string{
		orders[0].(map[string]interface{})["orderId"].(string),
		orders[1].(map[string]interface{})["orderId"].(string),
	}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
}

func TestAdminOrders_QueryToken(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodGet, "/api/admin/orders?token="+testAdminToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), result["total"])
}

func TestAdminOrders_BadToken(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	resp, result := env.do(t, http.MethodGet, "/api/admin/orders", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Unauthorized - Invalid or missing token", result["error"])

	header := http.Header{AdminTokenHeader: {"wrong"}}
	resp, _ = env.do(t, http.MethodGet, "/api/admin/orders", nil, header)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminOrders_TokenNotConfigured(t *testing.T) {
	env := newTestEnv(t, "")

	header := http.Header{AdminTokenHeader: {"anything"}}
	resp, result := env.do(t, http.MethodGet, "/api/admin/orders", nil, header)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", result["error"])
	assert.Equal(t, "admin token not configured", result["setup"])
}

func TestAdminInstances(t *testing.T) {
	env := newTestEnv(t, testAdminToken)

	id, _ := env.createInstance(t, "admin-view@example.com")

	header := http.Header{AdminTokenHeader: {testAdminToken}}
	resp, result := env.do(t, http.MethodGet, "/api/admin/instances", nil, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(1), result["total"])
	instances := result["instances"].([]interface{})
	require.Len(t, instances, 1)

	record := instances[0].(map[string]interface{})
	assert.Equal(t, id, record["id"])
	assert.Equal(t, "admin-view@example.com", record["email"])
	assert.Equal(t, "active", record["status"])
}

func TestAdminInstances_TokenNotConfigured(t *testing.T) {
	env := newTestEnv(t, "")

	resp, result := env.do(t, http.MethodGet, "/api/admin/instances", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied", result["error"])
}
