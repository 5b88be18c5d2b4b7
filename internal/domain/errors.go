package domain

import "errors"

var (
	// ErrUpstreamUnavailable means the CMS could not be reached or answered non-2xx.
	// Callers recover locally with fallback content, it never reaches a page as an error.
	ErrUpstreamUnavailable = errors.New("upstream content service unavailable")

	// ErrNotFound means the CMS answered but no entity matched
	ErrNotFound = errors.New("entity not found")

	// ErrUnauthorized means the request carried no valid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired means the session token was valid but past its expiry
	ErrTokenExpired = errors.New("session token expired")

	// ErrSessionRevoked means the session was explicitly signed out
	ErrSessionRevoked = errors.New("session revoked")

	// ErrConfiguration means a required credential is missing server-side
	ErrConfiguration = errors.New("service is not configured")

	// ErrProcessing means the completion API failed; the upstream body is logged, never relayed
	ErrProcessing = errors.New("upstream processing failed")
)
