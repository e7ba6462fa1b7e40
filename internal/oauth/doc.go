// Package oauth implements the client side of Codeset's GitHub OAuth
// flow: durable token storage, the auth service that exchanges and
// refreshes tokens against the backend, a loopback callback server for
// receiving the provider redirect, and the one-shot callback handler
// state machine that guards the single-use authorization code.
//
// The actual code-for-token exchange happens in the Codeset backend
// (POST /auth/github); this package only constructs the authorization
// URL, collects the redirect, and talks to the backend.
package oauth
