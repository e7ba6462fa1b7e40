// Package session owns the CLI's view of "who is logged in". The
// Manager wraps the auth service with an explicit lifecycle: Init
// resolves the stored tokens to a user at startup, Login runs the full
// interactive OAuth flow, and RefreshUser re-fetches the account after
// every mutation so the local state never drifts from the backend.
package session
