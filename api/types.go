package api

import "time"

// InstanceStatus tracks the lifecycle of a provisioned instance.
type InstanceStatus string

const (
	// StatusProvisioning is the initial state while the background
	// deployment is still running.
	StatusProvisioning InstanceStatus = "provisioning"

	// StatusActive means the deployment completed successfully.
	StatusActive InstanceStatus = "active"

	// StatusFailed means the deployment returned an error.
	StatusFailed InstanceStatus = "failed"
)

// Instance is a per-user provisioning record. The registry owns all
// instances exclusively; no other component mutates them.
type Instance struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Token     string         `json:"token"`
	APIKey    string         `json:"apiKey"`
	AppKey    string         `json:"appKey"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Status    InstanceStatus `json:"status"`
}

// Expired reports whether the instance's expiry is strictly in the
// past at the given time.
func (i *Instance) Expired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// CreateInstanceRequest is the body of POST /api/create-instance.
type CreateInstanceRequest struct {
	Email string `json:"email"`
}

// CreateInstanceResponse is returned from instance creation. For an
// email that already has an active instance, the stored id and token
// are returned with Existing set.
type CreateInstanceResponse struct {
	InstanceID string `json:"instanceId"`
	Token      string `json:"token"`
	StoreURL   string `json:"storeUrl,omitempty"`
	Existing   bool   `json:"existing"`
}

// MCPConfig is the configuration payload embedded in the instance
// detail response. It describes how a client tool should launch the
// external integration server with the instance's credential pair.
type MCPConfig struct {
	MCPServers MCPServers `json:"mcpServers"`
}

// MCPServers holds the single configured integration server entry.
type MCPServers struct {
	Datadog MCPServer `json:"datadog"`
}

// MCPServer describes the launch command and environment for the
// integration server.
type MCPServer struct {
	Command string       `json:"command"`
	Args    []string     `json:"args"`
	Env     MCPServerEnv `json:"env"`
}

// MCPServerEnv carries the instance credential pair and the fixed site
// identifier.
type MCPServerEnv struct {
	APIKey string `json:"DD_API_KEY"`
	AppKey string `json:"DD_APP_KEY"`
	Site   string `json:"DD_SITE"`
}

// NewMCPConfig builds the MCP configuration payload for an instance's
// credential pair.
func NewMCPConfig(apiKey, appKey string) MCPConfig {
	return MCPConfig{
		MCPServers: MCPServers{
			Datadog: MCPServer{
				Command: "npx",
				Args:    []string{"-y", "@datadog/datadog-mcp-server"},
				Env: MCPServerEnv{
					APIKey: apiKey,
					AppKey: appKey,
					Site:   "datadoghq.com",
				},
			},
		},
	}
}

// InstanceResponse is the non-secret instance view returned from
// GET /api/instance/{id}, with the derived MCP configuration.
type InstanceResponse struct {
	InstanceID string         `json:"instanceId"`
	Email      string         `json:"email"`
	Status     InstanceStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
	ExpiresAt  time.Time      `json:"expiresAt"`
	MCPConfig  MCPConfig      `json:"mcpConfig"`
}

// OrderItemRequest is a single line item as submitted by the
// storefront. SelectedSize takes precedence over Size; quantity
// defaults to 1.
type OrderItemRequest struct {
	Name         string `json:"name"`
	Size         string `json:"size,omitempty"`
	SelectedSize string `json:"selectedSize,omitempty"`
	Quantity     int    `json:"quantity,omitempty"`
}

// OrderItem is a normalized line item as stored in the order log.
type OrderItem struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// ShippingAddress holds the delivery address for an order. FirstName,
// LastName, Address, City, ZipCode and Country are required; State and
// Apartment are optional and stored as empty strings when absent.
type ShippingAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

// OrderRequest is the body of POST /api/orders. Unknown client fields
// are dropped; only the fields below enter storage.
type OrderRequest struct {
	InstanceID      string             `json:"instanceId"`
	Email           string             `json:"email"`
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress ShippingAddress    `json:"shippingAddress"`
	BugsFixed       []string           `json:"bugsFixed"`
}

// Order is an immutable record in the append-only order log.
type Order struct {
	OrderID         string          `json:"orderId"`
	InstanceID      string          `json:"instanceId"`
	Email           string          `json:"email"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	BugsFixed       []string        `json:"bugsFixed"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	Status          string          `json:"status"`
}

// OrderResponse is returned from a successful order submission.
type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
}

// AdminOrdersResponse is the admin view of the order log, sorted
// newest-first.
type AdminOrdersResponse struct {
	Total  int     `json:"total"`
	Orders []Order `json:"orders"`
}

// AdminInstancesResponse is the admin view of the instance registry.
type AdminInstancesResponse struct {
	Total     int        `json:"total"`
	Instances []Instance `json:"instances"`
}

// HealthResponse reports process liveness and store sizes.
type HealthResponse struct {
	Status    string `json:"status"`
	Instances int    `json:"instances"`
	Orders    int    `json:"orders"`
}
