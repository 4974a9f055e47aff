package reconcile_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"tender-docs/internal/adapters/repository"
	"tender-docs/internal/adapters/storage"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/service/reconcile"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func incompleteDocument(age time.Duration) domain.Document {
	id := uuid.New()
	return domain.Document{
		ID:         id,
		Owners:     domain.OwnerChain{{Kind: domain.OwnerKindGara, ID: uuid.New()}},
		FileName:   "bando.pdf",
		ObjectKey:  "gara/x/" + id.String() + "-bando.pdf",
		SizeBytes:  42,
		UploadedAt: time.Now().UTC().Add(-age),
	}
}

func TestReconcileService_Reconcile_RemovesIncompleteUploads(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	mockPublisher := reconcile.NewMockReportPublisher()
	service := reconcile.NewReconcileService(mockUow, mockStorage, mockPublisher, 100, slog.Default())

	withObject := incompleteDocument(48 * time.Hour)
	withoutObject := incompleteDocument(30 * time.Hour)
	mockDocRepo := mockUow.GetDocumentRepoMock()

	mockDocRepo.On("FindIncompleteOlderThan", ctx, mock.AnythingOfType("time.Time"), 100).
		Return([]domain.Document{withObject, withoutObject}, nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockDocRepo.On("ClaimIncomplete", ctx, withObject.ID, mock.AnythingOfType("time.Time")).Return(&withObject, nil)
	mockDocRepo.On("ClaimIncomplete", ctx, withoutObject.ID, mock.AnythingOfType("time.Time")).Return(&withoutObject, nil)
	mockStorage.On("Delete", ctx, withObject.ObjectKey).Return(nil)
	mockStorage.On("Delete", ctx, withoutObject.ObjectKey).Return(domain.ErrObjectNotFound)
	mockDocRepo.On("HardDelete", ctx, withObject.ID).Return(nil)
	mockDocRepo.On("HardDelete", ctx, withoutObject.ID).Return(nil)
	mockPublisher.On("PublishReport", ctx, mock.AnythingOfType("domain.ReconcileReport")).Return(nil)

	// Act
	report, err := service.Reconcile(ctx, 24*time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Failed)
	assert.Equal(t, report.StartedAt.Add(-24*time.Hour), report.Cutoff)
	assert.False(t, report.CompletedAt.Before(report.StartedAt))
	mockDocRepo.AssertCalled(t, "FindIncompleteOlderThan", ctx, report.Cutoff, 100)
	mockDocRepo.AssertExpectations(t)
	mockStorage.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestReconcileService_Reconcile_SkipsDocumentsCompletedMeanwhile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := reconcile.NewReconcileService(mockUow, mockStorage, nil, 0, slog.Default())

	doc := incompleteDocument(72 * time.Hour)
	mockDocRepo := mockUow.GetDocumentRepoMock()

	mockDocRepo.On("FindIncompleteOlderThan", ctx, mock.Anything, reconcile.DefaultBatchSize).Return([]domain.Document{doc}, nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	// the upload flipped its flag after the listing
	mockDocRepo.On("ClaimIncomplete", ctx, doc.ID, mock.Anything).Return((*domain.Document)(nil), nil)

	// Act
	report, err := service.Reconcile(ctx, time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Found)
	assert.Equal(t, 0, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	mockStorage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mockDocRepo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestReconcileService_Reconcile_NeverRemovesClaimedCompletedDocument(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := reconcile.NewReconcileService(mockUow, mockStorage, nil, 0, slog.Default())

	doc := incompleteDocument(72 * time.Hour)
	completed := doc
	completed.UploadComplete = true
	mockDocRepo := mockUow.GetDocumentRepoMock()

	mockDocRepo.On("FindIncompleteOlderThan", ctx, mock.Anything, reconcile.DefaultBatchSize).Return([]domain.Document{doc}, nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	mockDocRepo.On("ClaimIncomplete", ctx, doc.ID, mock.Anything).Return(&completed, nil)

	report, err := service.Reconcile(ctx, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Processed)
	mockStorage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	mockDocRepo.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestReconcileService_Reconcile_NothingToDo(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := reconcile.NewReconcileService(mockUow, mockStorage, nil, 10, slog.Default())

	mockUow.GetDocumentRepoMock().On("FindIncompleteOlderThan", ctx, mock.Anything, 10).Return([]domain.Document{}, nil)

	report, err := service.Reconcile(ctx, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Found)
	assert.Equal(t, 0, report.Processed)
	mockUow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestReconcileService_Reconcile_FailuresDoNotStopTheRun(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	service := reconcile.NewReconcileService(mockUow, mockStorage, nil, 10, slog.Default())

	storageFails := incompleteDocument(48 * time.Hour)
	dbFails := incompleteDocument(48 * time.Hour)
	ok := incompleteDocument(48 * time.Hour)
	mockDocRepo := mockUow.GetDocumentRepoMock()

	mockDocRepo.On("FindIncompleteOlderThan", ctx, mock.Anything, 10).Return([]domain.Document{storageFails, dbFails, ok}, nil)
	mockUow.On("Execute", ctx, mock.Anything).Return(nil)
	for _, doc := range []domain.Document{storageFails, dbFails, ok} {
		d := doc
		mockDocRepo.On("ClaimIncomplete", ctx, d.ID, mock.Anything).Return(&d, nil)
	}
	mockStorage.On("Delete", ctx, storageFails.ObjectKey).Return(errors.New("503"))
	mockStorage.On("Delete", ctx, dbFails.ObjectKey).Return(nil)
	mockStorage.On("Delete", ctx, ok.ObjectKey).Return(nil)
	mockDocRepo.On("HardDelete", ctx, dbFails.ID).Return(errors.New("db down"))
	mockDocRepo.On("HardDelete", ctx, ok.ID).Return(nil)

	// Act
	report, err := service.Reconcile(ctx, time.Hour)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, report.Found)
	assert.Equal(t, 1, report.Processed)
	assert.ElementsMatch(t, []uuid.UUID{storageFails.ID, dbFails.ID}, report.Failed)
	// the record of a failed object delete is kept for the next run
	mockDocRepo.AssertNotCalled(t, "HardDelete", ctx, storageFails.ID)
}

func TestReconcileService_Reconcile_ListFailure(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := reconcile.NewReconcileService(mockUow, storage.NewMockStorage(), nil, 10, slog.Default())

	mockUow.GetDocumentRepoMock().On("FindIncompleteOlderThan", ctx, mock.Anything, 10).Return([]domain.Document(nil), errors.New("db down"))

	report, err := service.Reconcile(ctx, time.Hour)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Nil(t, report)
}

func TestReconcileService_Reconcile_InvalidThreshold(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := reconcile.NewReconcileService(mockUow, storage.NewMockStorage(), nil, 10, slog.Default())

	for _, threshold := range []time.Duration{0, -time.Hour} {
		_, err := service.Reconcile(ctx, threshold)
		assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	}
	mockUow.GetDocumentRepoMock().AssertNotCalled(t, "FindIncompleteOlderThan", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileService_Reconcile_PublishFailureIsIgnored(t *testing.T) {
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockPublisher := reconcile.NewMockReportPublisher()
	service := reconcile.NewReconcileService(mockUow, storage.NewMockStorage(), mockPublisher, 10, slog.Default())

	mockUow.GetDocumentRepoMock().On("FindIncompleteOlderThan", ctx, mock.Anything, 10).Return([]domain.Document{}, nil)
	mockPublisher.On("PublishReport", ctx, mock.Anything).Return(errors.New("nats down"))

	report, err := service.Reconcile(ctx, time.Hour)

	require.NoError(t, err)
	assert.NotNil(t, report)
	mockPublisher.AssertExpectations(t)
}

func TestReconcileService_Reconcile_RejectsConcurrentRun(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	service := reconcile.NewReconcileService(mockUow, storage.NewMockStorage(), nil, 10, slog.Default())

	started := make(chan struct{})
	release := make(chan struct{})
	mockUow.GetDocumentRepoMock().On("FindIncompleteOlderThan", ctx, mock.Anything, 10).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return([]domain.Document{}, nil).Once()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = service.Reconcile(ctx, time.Hour)
	}()
	<-started

	// Act
	_, err := service.Reconcile(ctx, time.Hour)
	close(release)
	wg.Wait()

	// Assert
	assert.ErrorIs(t, err, domain.ErrReconcileInProgress)
	assert.NoError(t, firstErr)
}

func TestReconcileService_Reconcile_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockUow := repository.NewMockUnitOfWork()
	service := reconcile.NewReconcileService(mockUow, storage.NewMockStorage(), nil, 10, slog.Default())

	docs := []domain.Document{incompleteDocument(48 * time.Hour), incompleteDocument(48 * time.Hour)}
	mockUow.GetDocumentRepoMock().On("FindIncompleteOlderThan", ctx, mock.Anything, 10).
		Run(func(mock.Arguments) { cancel() }).
		Return(docs, nil)

	report, err := service.Reconcile(ctx, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Found)
	assert.Equal(t, 0, report.Processed)
	mockUow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
