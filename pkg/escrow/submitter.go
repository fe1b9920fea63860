package escrow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"go.uber.org/zap"
)

// Pending is the non-blocking result of a submission: the broadcast
// transaction plus the inputs that produced it. Confirmation is the
// monitor's job.
type Pending struct {
	Tx      adapter.TxHandle
	Desc    order.Descriptor
	Factory adapter.FactoryHandle
}

// Submitter broadcasts escrow creation orders through the chain adapters.
// It never retries a rejected order; the orchestrator rebuilds with a fresh
// order id if it wants another attempt.
type Submitter struct {
	adapters *adapter.Registry
	locator  *Locator
	logger   *zap.Logger
}

func NewSubmitter(adapters *adapter.Registry, locator *Locator, logger *zap.Logger) *Submitter {
	return &Submitter{
		adapters: adapters,
		locator:  locator,
		logger:   logger.With(zap.String("service", "submitter")),
	}
}

// Submit resolves the chain's factory and broadcasts the order. An
// unambiguous rejection surfaces as adapter.RejectedError untouched. Any
// other failure gets exactly one more attempt against a force-resolved
// factory, in case the cached one was stale; the order was never accepted
// by the chain, so resubmitting the identical descriptor is safe here.
func (s *Submitter) Submit(ctx context.Context, desc order.Descriptor) (Pending, error) {
	chainAdapter, err := s.adapters.Get(desc.Chain)
	if err != nil {
		return Pending{}, err
	}

	factory, err := s.locator.Resolve(ctx, desc.Chain)
	if err != nil {
		return Pending{}, err
	}

	tx, err := chainAdapter.SignAndSubmit(ctx, desc, factory)
	if err == nil {
		return Pending{Tx: tx, Desc: desc, Factory: factory}, nil
	}

	var rejected adapter.RejectedError
	if errors.As(err, &rejected) {
		return Pending{}, err
	}

	s.logger.Warn("submission failed, re-resolving factory",
		zap.String("chain", string(desc.Chain)),
		zap.String("order-id", desc.OrderID),
		zap.Error(err))

	factory, rerr := s.locator.ForceResolve(ctx, desc.Chain)
	if rerr != nil {
		return Pending{}, fmt.Errorf("%w: %v", ErrFactoryUnavailable, rerr)
	}
	tx, err = chainAdapter.SignAndSubmit(ctx, desc, factory)
	if err != nil {
		if errors.As(err, &rejected) {
			return Pending{}, err
		}
		return Pending{}, fmt.Errorf("%w: %v", ErrFactoryUnavailable, err)
	}
	return Pending{Tx: tx, Desc: desc, Factory: factory}, nil
}
