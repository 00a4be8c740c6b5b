// Package logging builds the structured slog logger used across the
// truth engine.
//
// The logger is configured from config.LoggingConfig: level, output
// format (json, text, or console), optional source locations, and PII
// redaction. Redaction scrubs actor identifiers and other sensitive
// values from audit payloads before they reach the log stream.
//
// Request-scoped fields (request id, actor, resolution coordinates)
// travel through context.Context and are attached automatically by the
// *Context logging methods.
package logging
