// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// It lives under `internal` because callers should treat notification
// identifiers as opaque strings.
package idgen
