// Package types defines the core types and interfaces shared across the
// crossfold library.
//
// It exists as a separate package so that internal packages can depend on
// these definitions without importing the root crossfold package, avoiding
// import cycles. The root package re-exports the common types via aliases,
// so most users never import this package directly.
package types
