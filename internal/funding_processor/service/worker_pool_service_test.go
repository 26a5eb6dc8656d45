package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFundingService mocks the FundingService interface
type MockFundingService struct {
	mock.Mock
}

func (m *MockFundingService) ProcessFunding(ctx context.Context, request *shared.FundingRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func TestWorkerPoolFundingService_ProcessFunding(t *testing.T) {
	request := validRequest()

	tests := []struct {
		name          string
		baseErr       error
		expectedError error
	}{
		{name: "successful processing", baseErr: nil},
		{name: "processing error", baseErr: errors.New("processing error"), expectedError: errors.New("processing error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBase := &MockFundingService{}
			svc, err := NewWorkerPoolFundingService(mockBase, WorkerPoolConfig{Size: 2}, slog.Default())
			require.NoError(t, err)
			defer svc.Shutdown()

			mockBase.On("ProcessFunding", mock.Anything, mock.MatchedBy(func(r *shared.FundingRequest) bool {
				return r.RequestID == request.RequestID
			})).Return(tt.baseErr).Once()

			err = svc.ProcessFunding(context.Background(), request)
			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
			mockBase.AssertExpectations(t)
		})
	}
}

// slowService counts the fundings running at the same time
type slowService struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (s *slowService) ProcessFunding(context.Context, *shared.FundingRequest) error {
	n := s.running.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	s.running.Add(-1)
	return nil
}

func TestWorkerPoolFundingService_BoundsConcurrency(t *testing.T) {
	base := &slowService{}
	svc, err := NewWorkerPoolFundingService(base, WorkerPoolConfig{Size: 2}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	assert.Equal(t, 2, svc.Capacity())

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.ProcessFunding(context.Background(), validRequest()))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, base.peak.Load(), int32(2))
}

func TestWorkerPoolFundingService_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	mockBase := &MockFundingService{}
	mockBase.On("ProcessFunding", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	svc, err := NewWorkerPoolFundingService(mockBase, WorkerPoolConfig{Size: 1}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = svc.ProcessFunding(ctx, validRequest())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type panickingService struct{}

func (panickingService) ProcessFunding(context.Context, *shared.FundingRequest) error {
	panic("nil balance")
}

func TestWorkerPoolFundingService_PanicBecomesError(t *testing.T) {
	svc, err := NewWorkerPoolFundingService(panickingService{}, WorkerPoolConfig{Size: 1}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	err = svc.ProcessFunding(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker panic: nil balance")

	// The pool keeps serving after a panic.
	mockBase := &MockFundingService{}
	mockBase.On("ProcessFunding", mock.Anything, mock.Anything).Return(nil).Once()
	svc.next = mockBase
	assert.NoError(t, svc.ProcessFunding(context.Background(), validRequest()))
}

func TestWorkerPoolFundingService_RejectsAfterShutdown(t *testing.T) {
	mockBase := &MockFundingService{}
	svc, err := NewWorkerPoolFundingService(mockBase, WorkerPoolConfig{Size: 1}, slog.Default())
	require.NoError(t, err)
	svc.Shutdown()

	err = svc.ProcessFunding(context.Background(), validRequest())
	assert.ErrorContains(t, err, "submitting funding request")
	mockBase.AssertNotCalled(t, "ProcessFunding", mock.Anything, mock.Anything)
}

func TestWorkerPoolFundingService_CancelledBeforeSubmit(t *testing.T) {
	mockBase := &MockFundingService{}
	svc, err := NewWorkerPoolFundingService(mockBase, WorkerPoolConfig{Size: 1}, slog.Default())
	require.NoError(t, err)
	defer svc.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.ProcessFunding(ctx, validRequest()), context.Canceled)
	mockBase.AssertNotCalled(t, "ProcessFunding", mock.Anything, mock.Anything)
}
