package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/domain/shared"
	"github.com/panjf2000/ants/v2"
)

// releaseTimeout bounds how long Shutdown waits for in-flight fundings.
const releaseTimeout = 10 * time.Second

type WorkerPoolConfig struct {
	Size int
}

// WorkerPoolFundingService caps how many fundings run at once. Callers
// still block until their own request finishes, so the consumer commits
// offsets only for completed work.
type WorkerPoolFundingService struct {
	next   FundingService
	pool   *ants.Pool
	logger *slog.Logger
}

// poolLogger routes ants' internal messages into slog.
type poolLogger struct{ logger *slog.Logger }

func (l poolLogger) Printf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func NewWorkerPoolFundingService(next FundingService, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolFundingService, error) {
	pool, err := ants.NewPool(config.Size, ants.WithLogger(poolLogger{logger}))
	if err != nil {
		return nil, fmt.Errorf("creating worker pool of size %d: %w", config.Size, err)
	}
	return &WorkerPoolFundingService{next: next, pool: pool, logger: logger}, nil
}

func (s *WorkerPoolFundingService) ProcessFunding(ctx context.Context, request *shared.FundingRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// The worker may outlive this call when ctx ends first.
	req := *request
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Funding worker panicked", "request_id", req.RequestID.String(), "panic", r)
				done <- fmt.Errorf("funding request %s: worker panic: %v", req.RequestID, r)
			}
		}()
		done <- s.next.ProcessFunding(ctx, &req)
	}

	if err := s.pool.Submit(task); err != nil {
		s.logger.Error("Worker pool rejected funding request",
			"request_id", req.RequestID.String(),
			"correlation_id", req.CorrelationID,
			"error", err,
		)
		return fmt.Errorf("submitting funding request %s: %w", req.RequestID, err)
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting work and waits up to releaseTimeout for
// running fundings.
func (s *WorkerPoolFundingService) Shutdown() {
	running := s.pool.Running()
	if err := s.pool.ReleaseTimeout(releaseTimeout); err != nil {
		s.logger.Warn("Worker pool released with fundings still running", "running", s.pool.Running(), "error", err)
		return
	}
	s.logger.Info("Worker pool released", "drained", running)
}

func (s *WorkerPoolFundingService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolFundingService) Capacity() int {
	return s.pool.Cap()
}
