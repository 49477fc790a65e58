package entity

import "errors"

// Session errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Gateway errors
var (
	ErrUnauthorized = errors.New("access password missing or incorrect")
)

// Validation errors
var (
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Upstream model errors
var (
	ErrUpstreamQuota       = errors.New("model quota exceeded")
	ErrUpstreamUnavailable = errors.New("model service unavailable")
	ErrMalformedResponse   = errors.New("malformed model response")
)

// Index errors
var (
	ErrIndexUnavailable = errors.New("passage index unavailable")
)
