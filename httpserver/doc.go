/*
Package httpserver implements the HTTP surface of the swag store
backend.

It exposes three groups of endpoints:

 1. Public API - instance creation and bearer-token gated instance
    detail, consumed by the landing page and the storefront
 2. Order intake - order submission, gated by the shared admin token
 3. Admin API - read access to the order log and instance registry,
    gated by the same shared admin token

# Public API Endpoints

  - POST /api/create-instance - Provision (or return) the instance for an email
  - GET  /api/instance/{id}   - Instance view with embedded MCP configuration
  - GET  /health              - Store sizes and liveness

# Admin API Endpoints

  - POST /api/orders          - Submit a storefront order
  - GET  /api/admin/orders    - Full order log, newest first
  - GET  /api/admin/instances - All non-expired instances

The admin token is supplied in the X-Admin-Token header (or a token
query parameter for the GET endpoints). If the process has no admin
token configured, every gated endpoint fails closed with a
configuration hint rather than allowing access.

# Diagnostics

  - GET /livez, /readyz       - Liveness and readiness checks
  - GET /drain, /undrain      - Gracefully toggle readiness
  - /debug                    - pprof, when enabled

Metrics are served by a dedicated listener, see the metrics package.
*/
package httpserver
