//go:build bvhdebug

package bvh

// Builds tagged with bvhdebug validate every hierarchy after construction and
// panic on invariant violations.
const debugChecks = true
