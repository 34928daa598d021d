/*
Package clients provides client libraries for the store backend API.

# Client Types

The package provides two client types:

1. Client - Public API client for instance provisioning and retrieval
2. AdminClient - Token-authenticated client for order submission and
admin queries

# Client Features

Client covers the unauthenticated and bearer-token endpoints:

- CreateInstance - Provision an instance for an email address
- GetInstance - Retrieve an instance view with its MCP configuration
- Health - Query service health and store sizes

# AdminClient Features

AdminClient sends the shared admin secret in the X-Admin-Token header:

- SubmitOrder - Submit a storefront order
- Orders - List all recorded orders, newest first
- Instances - List all non-expired instances

# Example Usage

	client := clients.NewClient("http://localhost:3001")
	created, err := client.CreateInstance("user@example.com")
	if err != nil {
	    log.Fatal(err)
	}

	view, err := client.GetInstance(created.InstanceID, created.Token)

	admin := clients.NewAdminClient("http://localhost:3001", os.Getenv("ADMIN_TOKEN"))
	orders, err := admin.Orders()
*/
package clients
