package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dispatch-mcp/swag-store-backend/api"
)

// AdminTokenHeader carries the shared admin secret.
const AdminTokenHeader = "X-Admin-Token"

// AdminClient provides methods for the token-authenticated parts of
// the API: order submission and the admin query surface.
type AdminClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewAdminClient creates a new admin client.
//
// Parameters:
//   - baseURL: The base URL of the API (e.g., "http://localhost:3001")
//   - token: The shared admin secret
//   - timeout: Request timeout duration (optional, default 30 seconds)
//
// Returns:
//   - Configured AdminClient instance
func NewAdminClient(baseURL, token string, timeout ...time.Duration) *AdminClient {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &AdminClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// SubmitOrder submits a storefront order.
func (c *AdminClient) SubmitOrder(order *api.OrderRequest) (*api.OrderResponse, error) {
	reqJSON, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/api/orders", c.baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AdminTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, requestError(resp)
	}

	var result api.OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	return &result, nil
}

// Orders lists all recorded orders, newest first.
func (c *AdminClient) Orders() (*api.AdminOrdersResponse, error) {
	var result api.AdminOrdersResponse
	if err := c.get("/api/admin/orders", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Instances lists all non-expired instances.
func (c *AdminClient) Instances() (*api.AdminInstancesResponse, error) {
	var result api.AdminInstancesResponse
	if err := c.get("/api/admin/instances", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *AdminClient) get(path string, dst any) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set(AdminTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("admin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return requestError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to parse admin response: %w", err)
	}
	return nil
}
