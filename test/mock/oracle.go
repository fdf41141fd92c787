// api/test/mock/oracle.go
package mock

import (
	"context"

	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/stretchr/testify/mock"
)

// MockResolver is a mock implementation of oracle.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, userEmail, relPath string) (model.PermissionLevel, error) {
	args := m.Called(ctx, userEmail, relPath)
	return args.Get(0).(model.PermissionLevel), args.Error(1)
}
