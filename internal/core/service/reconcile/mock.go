package reconcile

import (
	"context"
	"tender-docs/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockReconcileService is a mock implementation of ReconcileService
type MockReconcileService struct {
	mock.Mock
}

// NewMockReconcileService creates a new MockReconcileService
func NewMockReconcileService() *MockReconcileService {
	return &MockReconcileService{}
}

func (m *MockReconcileService) Reconcile(ctx context.Context, threshold time.Duration) (*domain.ReconcileReport, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(*domain.ReconcileReport), args.Error(1)
}

// MockReportPublisher is a mock implementation of ReportPublisher
type MockReportPublisher struct {
	mock.Mock
}

// NewMockReportPublisher creates a new MockReportPublisher
func NewMockReportPublisher() *MockReportPublisher {
	return &MockReportPublisher{}
}

func (m *MockReportPublisher) PublishReport(ctx context.Context, report domain.ReconcileReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
