// Package device wires every other package into the ≈80-entry-point Host
// API (spec §6, §9): one Init call constructs a Device explicitly and
// threads it through every call, replacing the teacher's package-level
// Global singleton (spec §9's redesign flag — "express as a
// process-scoped context created at initialization and passed explicitly
// into every entry point").
//
// A Device owns exactly one handle.Registry, one fabric.Group, and (on
// the host) one batch.Buffer; application code never touches those
// packages directly.
package device
