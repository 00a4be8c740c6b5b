// Package truth defines the shared data model for the configuration truth
// engine: verticals, sub-verticals, MVT versions, personas, persona
// policies, policy-text versions, and the intermediate policy
// representation (IPR) produced by the compiler.
//
// The package also defines the stable failure taxonomy shared by the
// resolver, version manager, and HTTP surface. All expected conditions are
// reported as *Failure values with stable string codes; the engine never
// substitutes defaults for missing or invalid configuration.
package truth
