// api/errors/auth_errors.go
package errors

import "errors"

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrTokenNotFound     = errors.New("token not found")
	ErrTokenExpired      = errors.New("token expired")
	ErrScopeDenied       = errors.New("dataset not in token scope")
	ErrPolicyDenied      = errors.New("denied by dataset policy")
	ErrRateLimited       = errors.New("rate limit exceeded")

	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrOracleUnavailable  = errors.New("permission oracle unavailable")
	ErrPathEscape         = errors.New("path outside managed tree")
	ErrConfig             = errors.New("invalid configuration")
	ErrContentNotFound    = errors.New("content not found")
	ErrInvalidRequestData = errors.New("invalid request data")
	ErrInternalServer     = errors.New("internal server error")
)
