// Package main hosts the broll CLI entrypoint and command graph.
//
// The Cobra-based command tree covers one-shot processing, queue
// maintenance, plan inspection, provider and dependency checks, and
// the long-running watch daemon. It centralizes configuration
// resolution and logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
