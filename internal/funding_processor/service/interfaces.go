package service

import (
	"context"

	"github.com/account-ledger/internal/domain/shared"
)

// FundingService applies funding requests received from the settlement feed
type FundingService interface {
	ProcessFunding(ctx context.Context, request *shared.FundingRequest) error
}
