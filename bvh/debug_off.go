//go:build !bvhdebug

package bvh

const debugChecks = false
