// api/audit/model.go
package audit

import (
	"time"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
)

// Actions recorded by the authorization core.
const (
	ActionGranted = "granted"
	ActionDenied  = "denied"
	ActionIssued  = "issued"
	ActionRevoked = "revoked"
)

type Entry struct {
	Timestamp   time.Time          `json:"timestamp"`
	UserEmail   string             `json:"user_email"`
	DatasetName string             `json:"dataset_name"`
	Action      string             `json:"action"`
	TokenID     string             `json:"token_id,omitempty"`
	Reason      gate_errors.Reason `json:"reason,omitempty"`
	Details     map[string]string  `json:"details,omitempty"`
}
