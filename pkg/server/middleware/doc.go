// Package middleware provides the HTTP middleware chain for the truth
// engine API: request IDs, structured request logging, panic recovery,
// and actor identity extraction for write endpoints.
package middleware
