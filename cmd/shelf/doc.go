// Package main hosts the shelf CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once per invocation,
// applies flag overrides, and hands batch runs and watch sessions to the
// organizer under the cross-process run lock. History, status, and rule
// listings are read-only views over the same configuration and the history
// ledger.
//
// Add behaviour to the internal packages first and surface it here with a
// dedicated command or flag.
package main
