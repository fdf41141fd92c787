// api/test/mock/proxy.go
package mock

import (
	"context"

	"github.com/dev-mohitbeniwal/datagate/api/model"
	"github.com/dev-mohitbeniwal/datagate/api/session"
	"github.com/stretchr/testify/mock"
)

// MockProxy is a mock implementation of session.IProxy
type MockProxy struct {
	mock.Mock
}

func (m *MockProxy) CreateSession(userEmail, clientIdentifier string) string {
	args := m.Called(userEmail, clientIdentifier)
	return args.String(0)
}

func (m *MockProxy) CheckPermission(ctx context.Context, sessionID, targetPath string, level model.PermissionLevel) bool {
	args := m.Called(ctx, sessionID, targetPath, level)
	return args.Bool(0)
}

func (m *MockProxy) ListAccessibleRoots(ctx context.Context, sessionID string) []session.RootInfo {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]session.RootInfo)
}

func (m *MockProxy) CleanupExpiredSessions() int {
	args := m.Called()
	return args.Int(0)
}
