// Package api defines the wire types shared by the HTTP server, the
// typed clients, and the in-memory stores: instance and order records,
// request/response payloads, the embedded MCP configuration, and the
// error taxonomy the handlers map to HTTP status codes.
//
// The JSON field names of these types are a compatibility surface. The
// storefront and the client tooling consume them as-is, in particular
// the MCPConfig payload whose nested field names (mcpServers, datadog,
// DD_API_KEY, DD_APP_KEY, DD_SITE) must not change.
package api
