// Package monitor normalizes each chain's confirmation model into one
// lifecycle vocabulary. A watch is a cancellable goroutine per pending
// handle; watches for different handles never block each other.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// ErrMonitoringTimeout means a handle could not be resolved to a terminal
// status within the monitoring horizon. It is operator-alertable and
// distinct from any refund path; it does not by itself imply fund loss.
var ErrMonitoringTimeout = errors.New("monitoring horizon exceeded")

const (
	DefaultPollInterval  = 15 * time.Second
	DefaultConfirmations = 1
	DefaultHorizon       = 24 * time.Hour
)

// Policy is the per-chain confirmation model: how often to poll, how many
// confirmations constitute a lock, and how long to keep watching before
// alerting. These are operational parameters, never inferred.
type Policy struct {
	PollInterval  time.Duration
	Confirmations uint64
	Horizon       time.Duration
}

func (p Policy) pollInterval() time.Duration {
	if p.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return p.PollInterval
}

func (p Policy) confirmations() uint64 {
	if p.Confirmations == 0 {
		return DefaultConfirmations
	}
	return p.Confirmations
}

func (p Policy) horizon() time.Duration {
	if p.Horizon <= 0 {
		return DefaultHorizon
	}
	return p.Horizon
}

// Policies maps chains to their confirmation models. Chains without an
// entry fall back to the zero Policy's defaults.
type Policies map[swap.Chain]Policy

func (ps Policies) For(chain swap.Chain) Policy {
	return ps[chain]
}

// Event is one normalized observation of an escrow. Err is only set for
// ErrMonitoringTimeout; transient query failures never produce events.
type Event struct {
	Status swap.EscrowStatus
	Secret []byte
	Err    error
}

// Watcher turns pending handles into status event streams.
type Watcher struct {
	adapters *adapter.Registry
	policies Policies
	clock    swap.Clock
	logger   *zap.Logger
}

func NewWatcher(adapters *adapter.Registry, policies Policies, clock swap.Clock, logger *zap.Logger) *Watcher {
	return &Watcher{
		adapters: adapters,
		policies: policies,
		clock:    clock,
		logger:   logger.With(zap.String("service", "monitor")),
	}
}

// Watch streams status events for the handle until a terminal status, the
// horizon, or context cancellation, whichever comes first. The returned
// channel is closed when the watch ends. Each status is emitted at most
// once, in lifecycle order.
func (w *Watcher) Watch(ctx context.Context, handle adapter.TxHandle) <-chan Event {
	events := make(chan Event, 8)
	// The horizon anchors at the Watch call, not at whenever the goroutine
	// first runs, so capture the deadline before spawning.
	deadline := w.clock.Now().Add(w.policies.For(handle.Chain).horizon())
	go w.watch(ctx, handle, deadline, events)
	return events
}

func (w *Watcher) watch(ctx context.Context, handle adapter.TxHandle, deadline time.Time, events chan<- Event) {
	defer close(events)

	logger := w.logger.With(
		zap.String("chain", string(handle.Chain)),
		zap.String("tx", handle.TxID))

	chainAdapter, err := w.adapters.Get(handle.Chain)
	if err != nil {
		logger.Error("no adapter for watched handle", zap.Error(err))
		events <- Event{Status: swap.EscrowFailed, Err: err}
		return
	}

	policy := w.policies.For(handle.Chain)
	ticker := time.NewTicker(policy.pollInterval())
	defer ticker.Stop()

	locked := false
	for {
		raw, err := chainAdapter.QueryStatus(ctx, handle)
		if err != nil {
			// A single failed poll is retried on the next tick, never
			// surfaced as Failed.
			logger.Debug("status query failed, will retry", zap.Error(err))
		} else {
			switch {
			case raw.Redeemed:
				events <- Event{Status: swap.EscrowRevealed, Secret: raw.Secret}
				return
			case raw.Refunded:
				events <- Event{Status: swap.EscrowRefunded}
				return
			case raw.Rejected:
				logger.Info("escrow rejected on chain", zap.String("reason", raw.RejectReason))
				events <- Event{Status: swap.EscrowFailed}
				return
			case raw.Funded && raw.Confirmations >= policy.confirmations():
				if !locked {
					locked = true
					events <- Event{Status: swap.EscrowLocked}
				}
			}
		}

		// Expiry crossing is judged against the trusted clock, not the
		// polling cadence.
		if w.clock.Now().After(handle.Escrow.Expiry) {
			events <- Event{Status: swap.EscrowExpired}
			return
		}
		if w.clock.Now().After(deadline) {
			events <- Event{Status: swap.EscrowFailed, Err: ErrMonitoringTimeout}
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
