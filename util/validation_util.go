// api/util/validation_util.go

package util

import (
	"fmt"
	"strings"

	"github.com/dev-mohitbeniwal/datagate/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email: %q", email)
	}
	return nil
}

func (v *ValidationUtil) ValidatePolicy(policy model.AccessPolicy) error {
	if policy.DatasetName == "" {
		return fmt.Errorf("policy dataset name cannot be empty")
	}
	if err := v.ValidateEmail(policy.OwnerEmail); err != nil {
		return fmt.Errorf("policy owner: %w", err)
	}
	for _, u := range policy.AllowedUsers {
		if err := v.ValidateEmail(u); err != nil {
			return fmt.Errorf("allowed user: %w", err)
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateTokenRequest(userEmail string, datasets []string) error {
	if err := v.ValidateEmail(userEmail); err != nil {
		return err
	}
	if len(datasets) == 0 {
		return fmt.Errorf("token request must name at least one dataset")
	}
	for _, d := range datasets {
		if d == "" {
			return fmt.Errorf("dataset name cannot be empty")
		}
	}
	return nil
}
