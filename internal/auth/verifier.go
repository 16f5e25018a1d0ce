// Package auth holds the identity-verifier seam for the bearer gate.
//
// The default Passthrough verifier reproduces the documented contract:
// presence of a bearer token is required, its value is not checked, and
// the acting identity for authorization decisions comes from the
// firebaseUID field of the request body. A real verifier can be swapped
// in without touching any handler.
package auth

import "errors"

var ErrInvalidToken = errors.New("invalid token")

type Verifier interface {
	Verify(token string) error
}

// Passthrough accepts any non-empty token.
type Passthrough struct{}

func (Passthrough) Verify(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	return nil
}
