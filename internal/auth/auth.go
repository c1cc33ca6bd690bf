// Package auth implements nickname/password authentication: a salted
// HMAC-SHA512 digest check backed by a small user store. The store is
// an external collaborator behind the Authenticator interface — the
// default implementation is Postgres-backed, but the dispatcher only
// ever depends on the interface.
package auth

import "context"

// Authenticator checks a nickname/password pair against the user store.
type Authenticator interface {
	// Authenticate reports whether password is correct for nick. A
	// nick unknown to the store is simply a failed authentication, not
	// a distinct error case — callers must not distinguish "no such
	// user" from "wrong password" in their reply to the client.
	Authenticate(ctx context.Context, nick, password string) (bool, error)
}
