// Package preflight validates the runtime environment before processing
// begins: directory access, disk headroom, binary dependencies, and provider
// credentials.
package preflight
