// Package version owns every state transition in the truth data model:
// the MVT version lifecycle, the policy-text version lifecycle with its
// approval contract, and the persona-policy activation swap. Each
// transition that changes which version is active executes inside a single
// store write transaction, so a reader never observes zero or two ACTIVE
// rows for the same parent.
//
// Every write is audit-logged with actor, action, target, payload, and
// outcome — on failure as well as success.
package version
