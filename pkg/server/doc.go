// Package server provides the HTTP server for the truth engine API.
//
// The server wires the resolution cascade, the version manager, and the
// observability endpoints behind one net/http server with graceful
// shutdown. Routing uses method-qualified mux patterns; the middleware
// chain (outermost first) is panic recovery, request logging, request
// ID assignment, and actor extraction.
package server
