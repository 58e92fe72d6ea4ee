// Package identity ties keys to the arena that minted them.
//
// An arena built with a [Dynamic] identity stamps every key it returns with
// the identity's token. Keys stamped by another arena are rejected instead of
// being looked up, so mixing up two arenas of the same type is detected.
package identity

import "sync/atomic"

// Token identifies an arena. The zero token means "no identity".
type Token uint64

// Identity is held by an arena and consulted when validating keys.
type Identity interface {
	// Token is stamped into keys minted by the arena.
	Token() Token

	// Owns reports whether a key stamped with t was minted under this identity.
	Owns(t Token) bool
}

// Anonymous is the identity of an unbranded arena.
type Anonymous struct{}

func (Anonymous) Token() Token   { return 0 }
func (Anonymous) Owns(Token) bool { return false }

// Dynamic is a process-unique runtime identity.
type Dynamic struct {
	token Token
}

var lastToken atomic.Uint64

// New mints a fresh identity. Tokens are never reused within a process.
func New() Dynamic {
	return Dynamic{token: Token(lastToken.Add(1))}
}

func (d Dynamic) Token() Token { return d.token }

func (d Dynamic) Owns(t Token) bool {
	return t != 0 && t == d.token
}
