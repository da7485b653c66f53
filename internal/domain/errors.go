package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Provisioning-flow sentinels. Invalid/expired and already-consumed carry the
// same user-facing message (handlers collapse them) but stay distinct so log
// lines can tell a replay from a stale code.
var (
	ErrAlreadyRegistered    = errors.New("target already registered")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrCodeAlreadyConsumed  = errors.New("code already consumed")
	ErrCodeEmailMismatch    = errors.New("code issued for a different email")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrGenerationExhausted  = errors.New("code generation exhausted")
	ErrStoreUnavailable     = errors.New("store unavailable")
)
