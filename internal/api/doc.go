// Package api is the typed HTTP client for the Codeset backend: API
// keys, billing, and the dataset/sample catalog. Every wrapper shares
// one request path that attaches the bearer token and answers a 401
// with exactly one token refresh and retry. There is no caching, no
// deduplication, and no backoff; each call is independent and
// idempotency is the caller's responsibility.
package api
