// api/errors/reasons.go
package errors

// Reason is the stable, enumerable code attached to every authorization
// decision. Callers see these codes, never internal errors or stack traces.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonRateLimited       Reason = "rate_limited"
	ReasonInvalidToken      Reason = "invalid_token"
	ReasonTokenNotFound     Reason = "token_not_found"
	ReasonTokenExpired      Reason = "token_expired"
	ReasonDatasetNotAllowed Reason = "dataset_not_allowed"
	ReasonPolicyViolation   Reason = "policy_violation"
	ReasonPathEscape        Reason = "path_escape"
	ReasonInternalError     Reason = "internal_error"
)

func (r Reason) String() string {
	return string(r)
}
