package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/account-ledger/internal/config"
	"github.com/account-ledger/internal/domain/outbox"
	"github.com/account-ledger/internal/domain/shared"
)

// Poller drains the transaction outbox in batches. A message whose relay
// keeps failing is parked as FAILED_TO_PUBLISH once its attempts run out.
type Poller struct {
	repo        outbox.Repository
	relay       EventRelay
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

func NewPoller(cfg *config.OutboxConfig, repo outbox.Repository, relay EventRelay, logger *slog.Logger) *Poller {
	return &Poller{
		repo:        repo,
		relay:       relay,
		logger:      logger.With("component", "outbox_poller"),
		interval:    cfg.PollingInterval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxRetryAttempts,
	}
}

// Start blocks until ctx is done.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("outbox poller running",
		"interval", p.interval.String(),
		"batch_size", p.batchSize,
		"max_attempts", p.maxAttempts,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("outbox poller stopped")
			return
		case <-ticker.C:
		}

		relayed, err := p.drain(ctx)
		if err != nil {
			p.logger.Error("outbox batch aborted", "relayed", relayed, "error", err)
		}
	}
}

// drain relays one batch and reports how many messages went out.
func (p *Poller) drain(ctx context.Context) (int, error) {
	batch, err := p.repo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetching pending outbox batch: %w", err)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	p.logger.Debug("outbox batch fetched", "size", len(batch))

	relayed := 0
	for _, msg := range batch {
		if err := ctx.Err(); err != nil {
			return relayed, err
		}
		if p.relayMessage(ctx, msg) {
			relayed++
		}
	}
	return relayed, nil
}

func (p *Poller) relayMessage(ctx context.Context, msg *outbox.Message) bool {
	log := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID)
	if event, err := msg.FundingEvent(); err == nil && event.CorrelationID != "" {
		log = log.With("correlation_id", event.CorrelationID)
	}

	relayErr := p.relay.Relay(ctx, msg)
	if relayErr == nil {
		log.Info("outbox message relayed")
		return true
	}

	log.Warn("outbox relay failed", "attempts", msg.Attempts, "error", relayErr)
	if err := p.repo.IncrementAttempts(ctx, msg.ID); err != nil {
		log.Error("could not record relay attempt", "error", err)
		return false
	}
	if !msg.AttemptsExhausted(p.maxAttempts) {
		return false
	}

	log.Error("outbox message parked after exhausting attempts", "attempts", msg.Attempts+1)
	if err := p.repo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
		log.Error("could not park outbox message", "error", err)
	}
	return false
}
