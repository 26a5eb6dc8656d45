package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/account-ledger/internal/config"
	"github.com/account-ledger/internal/data/memory"
	"github.com/account-ledger/internal/data/mongo"
	"github.com/account-ledger/internal/data/postgres"
	"github.com/account-ledger/internal/domain/uow"
	"github.com/account-ledger/internal/funding_processor/components"
	"github.com/account-ledger/internal/funding_processor/consumer"
	"github.com/account-ledger/internal/funding_processor/outbox_poller"
	"github.com/account-ledger/internal/funding_processor/service"
	"github.com/account-ledger/internal/logger"
	"github.com/account-ledger/internal/platform/messaging/consumers"
	"github.com/account-ledger/internal/platform/messaging/producers"
	"github.com/account-ledger/internal/platform/persistence"
)

const drainTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig("funding_processor")
	if err != nil {
		// No logger yet.
		fmt.Fprintf(os.Stderr, "funding_processor: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Configuration loaded", "file", cfg.SourceFile, "env", cfg.Application.Env)

	if err := run(log, cfg); err != nil {
		log.Error("funding_processor exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("funding_processor stopped")
}

// closers run in reverse registration order on shutdown.
type closers []func() error

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, func() error {
		if err := fn(); err != nil {
			return fmt.Errorf("closing %s: %w", name, err)
		}
		return nil
	})
}

func (c closers) closeAll() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		errs = append(errs, c[i]())
	}
	return errors.Join(errs...)
}

func run(log *slog.Logger, cfg *config.Config) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	var cleanup closers
	defer func() { err = errors.Join(err, cleanup.closeAll()) }()

	store, closeStore, err := openStore(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("opening %s ledger store: %w", cfg.Ledger.Store, err)
	}
	cleanup.add("ledger store", func() error { closeStore(); return nil })

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	cleanup.add("mongodb", func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
		defer cancel()
		return mongoDB.Close(closeCtx)
	})

	archive := mongo.NewFundingEventRepository(log, mongoDB.Database())
	if err := archive.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensuring funding event indexes: %w", err)
	}

	publisher, err := producers.NewEventPublisher(log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	cleanup.add("event publisher", publisher.Close)

	dlq, err := producers.NewDLQProducer(log, &cfg.Kafka)
	if err != nil {
		return fmt.Errorf("creating DLQ producer: %w", err)
	}
	// A nil *DLQProducer must stay out of the interface.
	var deadLetters producers.DeadLetterPublisher
	if dlq != nil {
		deadLetters = dlq
		cleanup.add("DLQ producer", dlq.Close)
	}

	fundingService := components.CreateFundingService(store, log, cfg)
	handler := consumer.NewFundingRequestHandler(log, fundingService, deadLetters)

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	cleanup.add("kafka consumer", kafkaConsumer.Close)
	if deadLetters != nil {
		kafkaConsumer.OnGiveUp(handler.GiveUp)
	}
	if err := kafkaConsumer.Subscribe(ctx, handler.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", cfg.Kafka.FundingTopic, err)
	}

	relay := outbox_poller.NewEventRelay(store.Outbox(), publisher, archive, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, store.Outbox(), relay, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(ctx)
	}()

	log.Info("funding_processor running",
		"app_name", cfg.Application.Name,
		"store", cfg.Ledger.Store,
		"funding_topic", cfg.Kafka.FundingTopic,
	)
	<-ctx.Done()
	log.Info("Shutdown signal received")

	if pool, ok := fundingService.(*service.WorkerPoolFundingService); ok {
		log.Info("Draining worker pool", "running_workers", pool.Running())
		pool.Shutdown()
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		log.Warn("Outbox poller did not stop in time", "timeout", drainTimeout)
	}
	return nil
}

func openStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (uow.Store, func(), error) {
	if !cfg.UsesPostgres() {
		log.Warn("Using in-memory ledger store, only requests consumed by this process are visible")
		return memory.NewStore(log.With("component", "memory_store")), func() {}, nil
	}

	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(log, postgresDB), postgresDB.Close, nil
}
