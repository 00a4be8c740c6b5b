// Package resolver implements the read path: it composes vertical,
// sub-vertical, active MVT version, persona, and active persona policy
// into one runtime-safe resolution, or fails with a precise typed failure
// naming the layer to fix. Every resolve runs inside one read transaction,
// so concurrent writers can never produce a torn mix of old and new truth
// within a single call.
//
// The resolver performs no writes, holds no state, and never substitutes a
// default for a missing layer.
package resolver
