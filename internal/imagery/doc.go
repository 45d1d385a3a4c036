// Package imagery finds stock images for transcript keywords. Search
// providers are tried in a fixed fallback order, ending with keyless
// placeholder sources so resolution degrades instead of failing.
package imagery
