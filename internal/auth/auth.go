// Package auth guards the agent's admin surface.
//
// It validates tokens and nothing else; routing and policy stay with the
// caller.
package auth

import (
	"crypto/subtle"
	"errors"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator checks an admin access token.
type Validator interface {
	Validate(token string) error
}

// StaticToken validates against one shared token, the way bench rigs hand a
// single secret to their scrape jobs. An empty stored token denies everything.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) error

func (f FuncValidator) Validate(token string) error {
	return f(token)
}
