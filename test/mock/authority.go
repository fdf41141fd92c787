// api/test/mock/authority.go
package mock

import (
	"context"
	"time"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	"github.com/stretchr/testify/mock"
)

// MockAuthority is a mock implementation of token.IAuthority
type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) Issue(ctx context.Context, userEmail string, datasets, permissions []string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, userEmail, datasets, permissions, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockAuthority) Verify(ctx context.Context, credential, datasetName string) (bool, gate_errors.Reason) {
	args := m.Called(ctx, credential, datasetName)
	return args.Bool(0), args.Get(1).(gate_errors.Reason)
}

func (m *MockAuthority) Revoke(ctx context.Context, tokenID string) bool {
	args := m.Called(ctx, tokenID)
	return args.Bool(0)
}
