// Package daemon runs the long-lived broll process: a single-instance lock,
// an incoming-directory watcher, and the workflow manager.
package daemon
