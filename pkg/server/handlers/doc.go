// Package handlers implements the HTTP handlers of the truth engine
// API.
//
// Read surface:
//
//	GET /v1/resolve?vertical=&subVertical=&region=
//
// Write surface (every write requires an X-Actor header):
//
//	POST  /v1/verticals
//	POST  /v1/verticals/{id}/sub-verticals
//	POST  /v1/sub-verticals/{id}/mvt-versions
//	PATCH /v1/sub-verticals/{id}/mvt
//	POST  /v1/mvt-versions/{id}/activate
//	POST  /v1/mvt-versions/{id}/deprecate
//	PATCH /v1/sub-verticals/{id}/icp
//	PUT   /v1/sub-verticals/{id}/policy-text
//	POST  /v1/sub-verticals/{id}/policy-text/interpret
//	POST  /v1/policy-text-versions/{id}/approve
//	POST  /v1/policy-text-versions/{id}/reject
//	POST  /v1/policy-text-versions/{id}/deprecate
//	POST  /v1/sub-verticals/{id}/personas
//	POST  /v1/personas/{id}/policies
//	POST  /v1/persona-policies/{id}/activate
//
// Success responses wrap the result in {"success": true, ...}; expected
// failures return the stable failure envelope {"success": false,
// "error": CODE, "message": ..., ...context} with the status mapping
// defined by the truth package.
package handlers
