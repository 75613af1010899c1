// Package common defines shared constants and sentinel errors used across
// the backend layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors: malformed or missing input, rejected before any
	// repository lookup is attempted.
	ErrorValidation = errors.New("validation error")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Party protocol errors.
	ErrorAlreadyHosting     = errors.New("already hosting a party")
	ErrorNamespaceExhausted = errors.New("party code namespace exhausted")

	// Upstream collaborator errors (identity verifier, token exchange).
	ErrorUpstream = errors.New("upstream failure")
)
