// Package store provides durable keyed storage for the truth data model
// with transactional read-modify-write support. Two backends exist: an
// in-memory backend for tests and ephemeral runs, and a SQLite backend for
// deployments, selectable between the cgo (mattn) and pure-Go (modernc)
// drivers.
//
// All multi-row invariants — the sub-vertical's active MVT pointer, the
// one-ACTIVE-per-persona policy constraint, and the one-approved-per-
// sub-vertical policy-text constraint — are maintained by the version
// manager inside a single WriteTx, so readers never observe torn state.
package store
