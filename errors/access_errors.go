// errors/access_errors.go
package errors

import "errors"

// Decision outcomes. The engine reports these as denial kinds on a
// PermissionDecision; they are exposed as errors for callers that prefer
// errors.Is over inspecting the kind list.
var (
	ErrResourceNotRecognized = errors.New("resource not recognized")
	ErrActionNotSupported    = errors.New("action not supported for resource")
	ErrRoleDenied            = errors.New("role explicitly denied")
	ErrRoleNotAuthorized     = errors.New("role not authorized")
	ErrConditionViolation    = errors.New("condition violated")
	ErrRiskTooHigh           = errors.New("risk too high")
	ErrRateLimited           = errors.New("action rate limit exceeded")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionExpired        = errors.New("session expired")
)

// Faults. These are surfaced next to a fail-closed decision.
var (
	ErrMalformedRequest     = errors.New("malformed access request")
	ErrRiskComputation      = errors.New("risk computation failed")
	ErrAuditSinkUnavailable = errors.New("audit sink unavailable")
	ErrInvalidVerification  = errors.New("invalid verification result")
)
