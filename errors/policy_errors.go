// errors/policy_errors.go
package errors

import "errors"

var (
	ErrInvalidMatrix         = errors.New("invalid permission matrix")
	ErrInvalidWeights        = errors.New("invalid risk weights")
	ErrInvalidSessionData    = errors.New("invalid session data")
	ErrInternalServer        = errors.New("internal server error")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrInvalidPagination     = errors.New("invalid pagination parameters")
	ErrInvalidSearchCriteria = errors.New("invalid search criteria")
	ErrQueryNotSupported     = errors.New("audit history query not supported")
)
