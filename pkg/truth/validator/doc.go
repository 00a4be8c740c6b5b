// Package validator contains the pure validation functions for MVT
// candidates and compiled IPRs. Validation collects every violation rather
// than stopping at the first, so a single round-trip can fix everything.
// Nothing in this package performs I/O.
package validator
