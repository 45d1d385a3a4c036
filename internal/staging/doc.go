// Package staging reclaims disk from per-item staging directories once
// the queue no longer references them.
package staging
