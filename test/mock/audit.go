// api/test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	"github.com/stretchr/testify/mock"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, entry audit.Entry) {
	m.Called(ctx, entry)
}

func (m *MockAuditService) Query(userEmail, datasetName string, since time.Time) []audit.Entry {
	args := m.Called(userEmail, datasetName, since)
	return args.Get(0).([]audit.Entry)
}

func (m *MockAuditService) Prune(cutoff time.Time) int {
	args := m.Called(cutoff)
	return args.Int(0)
}
