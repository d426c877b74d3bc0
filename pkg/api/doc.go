// Package api exposes the access engine and the user directory over HTTP.
//
// All routes live under /api/v1. The caller's identity arrives via the
// gateway header resolved by pkg/middleware; handlers read the profile
// from the request context and never touch credentials.
package api
