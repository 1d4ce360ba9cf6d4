package domain

import "errors"

// Error taxonomy. Every failed operation leaves the prior state unchanged;
// all of these are recoverable at the request boundary.
var (
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrMismatch   = errors.New("code mismatch")
	ErrCooldown   = errors.New("resend cooldown active")
	ErrDelivery   = errors.New("mail delivery failed")
	ErrNotFound   = errors.New("not found")
)
