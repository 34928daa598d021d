// Package main (cmd/admin) implements the command-line client for the swag store backend.
//
// The client wraps the public and admin HTTP APIs for operational use:
// inspecting service health, listing recorded orders and provisioned
// instances, and exercising the provisioning and order flows by hand.
//
// Commands:
//
//	health           - Print service health and store sizes
//	orders           - List all recorded orders, newest first
//	instances        - List all non-expired instances
//	create-instance  - Provision an instance for an email address
//	submit-order     - Submit an order from a JSON file
//
// The orders, instances and submit-order commands authenticate with the
// shared admin secret, passed via --admin-token or the ADMIN_TOKEN
// environment variable. With no secret configured on the server these
// commands are rejected.
//
// Example workflow:
//
//  1. Check the service is up:
//     admin health
//
//  2. Provision an instance:
//     admin create-instance --email=user@example.com
//
//  3. List recorded orders:
//     admin orders --admin-token=secret
package main
