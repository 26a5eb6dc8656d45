package core

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/account-ledger/internal/domain/account"
)

const (
	minAccountNumber = 1_000_000_000
	maxAccountNumber = 9_999_999_999

	// DefaultAllocationAttempts bounds Allocate when no limit is configured
	DefaultAllocationAttempts = 10
)

var accountNumberSpan = big.NewInt(maxAccountNumber - minAccountNumber + 1)

// NumberGenerator produces account number candidates
type NumberGenerator func() (string, error)

// RandomAccountNumber draws a 10 digit number uniformly from a
// cryptographically secure source
func RandomAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpan)
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%010d", n.Int64()+minAccountNumber), nil
}

// AllocatorImpl implements NumberAllocator with bounded retries
type AllocatorImpl struct {
	generate    NumberGenerator
	maxAttempts int
	logger      *slog.Logger
}

// NewAllocator creates an allocator drawing from RandomAccountNumber
func NewAllocator(logger *slog.Logger, maxAttempts int) NumberAllocator {
	return NewAllocatorWithGenerator(logger, maxAttempts, RandomAccountNumber)
}

// NewAllocatorWithGenerator creates an allocator with a custom candidate source
func NewAllocatorWithGenerator(logger *slog.Logger, maxAttempts int, generate NumberGenerator) NumberAllocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAllocationAttempts
	}
	return &AllocatorImpl{
		generate:    generate,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Allocate tries up to maxAttempts candidates. Only a taken number leads to
// another attempt; the claim itself is the uniqueness check.
func (a *AllocatorImpl) Allocate(ctx context.Context, claim func(ctx context.Context, number string) error) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		number, err := a.generate()
		if err != nil {
			return "", err
		}

		err = claim(ctx, number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, account.ErrAccountNumberTaken) {
			return "", err
		}

		a.logger.Debug("Account number collision, drawing another candidate", "attempt", attempt)
	}

	a.logger.Error("Account number allocation exhausted", "attempts", a.maxAttempts)
	return "", account.ErrAllocationFailed{Attempts: a.maxAttempts}
}
