package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dispatch-mcp/swag-store-backend/api"
)

// Client provides methods for the public store backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new public API client.
//
// Parameters:
//   - baseURL: The base URL of the API (e.g., "http://localhost:3001")
//   - timeout: Request timeout duration (optional, default 30 seconds)
//
// Returns:
//   - Configured Client instance
func NewClient(baseURL string, timeout ...time.Duration) *Client {
	clientTimeout := 30 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// CreateInstance provisions an instance for the given email address.
// If an active instance already exists for the email, the existing
// credentials are returned with Existing set.
func (c *Client) CreateInstance(email string) (*api.CreateInstanceResponse, error) {
	reqJSON, err := json.Marshal(api.CreateInstanceRequest{Email: email})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/api/create-instance", c.baseURL)
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("create instance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, requestError(resp)
	}

	var result api.CreateInstanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse create instance response: %w", err)
	}
	return &result, nil
}

// GetInstance retrieves the instance view, including the embedded MCP
// configuration, using the bearer token issued at creation.
func (c *Client) GetInstance(id, token string) (*api.InstanceResponse, error) {
	url := fmt.Sprintf("%s/api/instance/%s", c.baseURL, id)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instance request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, requestError(resp)
	}

	var result api.InstanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse instance response: %w", err)
	}
	return &result, nil
}

// Health queries the service health endpoint.
func (c *Client) Health() (*api.HealthResponse, error) {
	url := fmt.Sprintf("%s/health", c.baseURL)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, requestError(resp)
	}

	var result api.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &result, nil
}

func requestError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &api.RequestError{
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("request failed with code %d: %s", resp.StatusCode, string(body)),
	}
}
