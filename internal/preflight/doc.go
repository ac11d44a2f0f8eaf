// Package preflight provides readiness checks for the state directory, the
// snapshot backend, and the generation services reelsmith calls.
//
// The CLI "reelsmith doctor" command runs RunAll and prints one row per check.
// Service checks without credentials report what is missing instead of
// making a request.
package preflight
