// Package orchestrator owns the cross-chain swap state machine. Exactly one
// worker goroutine advances a given swap record; every transition is
// persisted through the store's guarded update before the worker moves on,
// so a process restart resumes each swap exactly where it stopped.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/alert"
	"github.com/rachelyongies/Lockedin-sub005/pkg/escrow"
	"github.com/rachelyongies/Lockedin-sub005/pkg/monitor"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/quote"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

var (
	// ErrAlreadyRunning means a second worker was requested for a swap id
	// that already has one. Single-writer discipline per swap.
	ErrAlreadyRunning = errors.New("swap already has a running worker")

	// ErrNotCancellable means the swap has passed the point where a chain
	// may have irrevocably locked funds.
	ErrNotCancellable = errors.New("swap can no longer be cancelled")

	// ErrNotInitiator means the cancel request did not come from the swap's
	// initiator.
	ErrNotInitiator = errors.New("only the initiator may cancel")
)

const (
	DefaultRetryInterval    = 10 * time.Second
	DefaultMaxRetryInterval = 5 * time.Minute
	DefaultAlertThreshold   = 5
)

// Signers exposes the service-side settlement address per chain. The
// orchestrator never sees key material; signing happens inside the chain
// adapters.
type Signers interface {
	Address(chain swap.Chain) (string, error)
}

// Config carries the orchestration policy knobs.
type Config struct {
	Policy order.TimelockPolicy

	// DigestAlgos picks the commitment digest per destination chain.
	// Chains without an entry use SHA256, which every supported settlement
	// layer verifies.
	DigestAlgos map[swap.Chain]secret.Algo

	// RetryInterval is the base backoff for post-lock retries; it doubles
	// per attempt up to MaxRetryInterval.
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration

	// AlertThreshold is the attempt count past which stuck retries are
	// surfaced to the alert channel. Retries continue regardless.
	AlertThreshold int
}

func (c Config) retryInterval() time.Duration {
	if c.RetryInterval <= 0 {
		return DefaultRetryInterval
	}
	return c.RetryInterval
}

func (c Config) maxRetryInterval() time.Duration {
	if c.MaxRetryInterval <= 0 {
		return DefaultMaxRetryInterval
	}
	return c.MaxRetryInterval
}

func (c Config) alertThreshold() int {
	if c.AlertThreshold <= 0 {
		return DefaultAlertThreshold
	}
	return c.AlertThreshold
}

func (c Config) digestAlgo(chain swap.Chain) secret.Algo {
	if algo, ok := c.DigestAlgos[chain]; ok {
		return algo
	}
	return secret.SHA256
}

// Orchestrator sequences secret generation, escrow submission, monitoring,
// reveal and refund for every swap it owns.
type Orchestrator struct {
	cfg       Config
	storage   store.Store
	builder   *order.Builder
	adapters  *adapter.Registry
	submitter *escrow.Submitter
	watcher   *monitor.Watcher
	journal   Journal
	vault     *secret.Vault
	quotes    quote.Provider
	signers   Signers
	alerts    alert.Notifier
	clock     swap.Clock
	logger    *zap.Logger

	mu      sync.Mutex
	workers map[string]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(
	cfg Config,
	storage store.Store,
	builder *order.Builder,
	adapters *adapter.Registry,
	submitter *escrow.Submitter,
	watcher *monitor.Watcher,
	journal Journal,
	vault *secret.Vault,
	quotes quote.Provider,
	signers Signers,
	alerts alert.Notifier,
	clock swap.Clock,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if err := validateTransitionTable(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:       cfg,
		storage:   storage,
		builder:   builder,
		adapters:  adapters,
		submitter: submitter,
		watcher:   watcher,
		journal:   journal,
		vault:     vault,
		quotes:    quotes,
		signers:   signers,
		alerts:    alerts,
		clock:     clock,
		logger:    logger.With(zap.String("service", "orchestrator")),
		workers:   map[string]struct{}{},
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start resumes every non-terminal swap from the store. It is not
// blocking; each resumed swap gets its own worker.
func (o *Orchestrator) Start() error {
	active, err := o.storage.ActiveSwaps()
	if err != nil {
		return fmt.Errorf("load active swaps: %w", err)
	}
	for _, record := range active {
		if err := o.spawn(record.SwapID); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			return err
		}
		o.logger.Info("resumed swap",
			zap.String("swap-id", record.SwapID),
			zap.String("state", string(record.State)))
	}
	return nil
}

// Stop cancels every worker and waits for them to drain. Swaps resume from
// their persisted state on the next Start.
func (o *Orchestrator) Stop() {
	o.cancel()
	o.wg.Wait()
}

// Submit validates the intent, generates and seals the secret, persists
// the swap record and spawns its worker. The record is durable before
// anything reaches a chain.
func (o *Orchestrator) Submit(ctx context.Context, intent swap.Intent) (string, error) {
	if err := o.builder.ValidateIntent(intent); err != nil {
		return "", err
	}

	algo := o.cfg.digestAlgo(intent.DestinationChain)
	material, err := secret.Generate(algo)
	if err != nil {
		return "", err
	}
	sealed, err := o.vault.Seal(material.Secret)
	if err != nil {
		return "", err
	}

	q, err := o.quotes.Quote(ctx, quote.Pair{
		SourceChain:      intent.SourceChain,
		DestinationChain: intent.DestinationChain,
		SourceAsset:      intent.SourceAsset,
		DestinationAsset: intent.DestinationAsset,
	}, intent.Amount)
	if err != nil {
		return "", fmt.Errorf("quote destination leg: %w", err)
	}

	record := &store.Swap{
		SwapID:            uuid.NewString(),
		State:             swap.StateInitiated,
		SourceChain:       intent.SourceChain,
		DestinationChain:  intent.DestinationChain,
		SourceAsset:       intent.SourceAsset,
		DestinationAsset:  intent.DestinationAsset,
		SourceAmount:      intent.Amount.String(),
		DestinationAmount: q.DestinationAmount.String(),
		Initiator:         intent.Initiator,
		Recipient:         intent.RecipientOrInitiator(),
		TimelockSeconds:   int64(intent.Timelock / time.Second),
		DigestAlgo:        algo,
		SecretHash:        material.HashHex(),
		SealedSecret:      sealed,
	}
	if err := o.storage.CreateSwap(record); err != nil {
		return "", err
	}

	if err := o.spawn(record.SwapID); err != nil {
		return "", err
	}
	return record.SwapID, nil
}

// Cancel requests initiator cancellation. Honored only before any chain
// may hold locked funds; once the source escrow is confirmed the swap can
// only complete or expire into a refund.
func (o *Orchestrator) Cancel(swapID, initiator string) error {
	record, err := o.storage.SwapByID(swapID)
	if err != nil {
		return err
	}
	if record.Initiator != initiator {
		return ErrNotInitiator
	}
	if !record.State.Cancellable() {
		return fmt.Errorf("%w: state %s", ErrNotCancellable, record.State)
	}
	return o.storage.RequestCancel(swapID)
}

// Status returns the current swap record.
func (o *Orchestrator) Status(swapID string) (store.Swap, error) {
	return o.storage.SwapByID(swapID)
}

func (o *Orchestrator) spawn(swapID string) error {
	o.mu.Lock()
	if _, ok := o.workers[swapID]; ok {
		o.mu.Unlock()
		return ErrAlreadyRunning
	}
	o.workers[swapID] = struct{}{}
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			o.mu.Lock()
			delete(o.workers, swapID)
			o.mu.Unlock()
		}()
		o.run(swapID)
	}()
	return nil
}

// run drives one swap from its persisted state to a terminal state. Each
// iteration reloads the record and executes the step for its state, so a
// crash between steps is harmless.
func (o *Orchestrator) run(swapID string) {
	logger := o.logger.With(zap.String("swap-id", swapID))
	for {
		select {
		case <-o.ctx.Done():
			return
		default:
		}

		record, err := o.storage.SwapByID(swapID)
		if err != nil {
			logger.Error("failed to load swap record", zap.Error(err))
			return
		}
		if record.State.IsTerminal() {
			logger.Info("swap reached terminal state", zap.String("state", string(record.State)))
			return
		}

		if err := o.step(record, logger); err != nil {
			if errors.Is(err, context.Canceled) || o.ctx.Err() != nil {
				return
			}
			if errors.Is(err, store.ErrStateConflict) {
				// Another writer moved the record; reload and re-dispatch.
				logger.Warn("state conflict, reloading", zap.Error(err))
				continue
			}
			logger.Error("step failed, retrying", zap.String("state", string(record.State)), zap.Error(err))
			if !o.sleep(o.cfg.retryInterval()) {
				return
			}
		}
	}
}

func (o *Orchestrator) step(record store.Swap, logger *zap.Logger) error {
	switch record.State {
	case swap.StateInitiated:
		return o.submitSource(record, logger)
	case swap.StateSourceEscrowSubmitted:
		return o.awaitSourceLock(record, logger)
	case swap.StateSourceLocked:
		return o.submitDestination(record, logger)
	case swap.StateDestinationEscrowSubmitted:
		return o.awaitDestinationLock(record, logger)
	case swap.StateDestinationLocked:
		return o.beginReveal(record, logger)
	case swap.StateSecretRevealing:
		return o.reveal(record, logger)
	case swap.StateExpired:
		return o.submitRefunds(record, logger)
	case swap.StateRefundSubmitted:
		return o.awaitRefund(record, logger)
	default:
		return fmt.Errorf("no step for state %q", record.State)
	}
}

func (o *Orchestrator) transition(swapID string, from, to swap.State) error {
	if !validTransition(from, to) {
		return fmt.Errorf("illegal transition %s -> %s", from, to)
	}
	return o.storage.UpdateState(swapID, from, to)
}

// fail terminates a swap that holds no locked funds.
func (o *Orchestrator) fail(record store.Swap, cause error, logger *zap.Logger) error {
	logger.Error("swap failed with no funds locked", zap.Error(cause))
	if err := o.storage.PutError(record.SwapID, cause); err != nil {
		logger.Error("failed to record error", zap.Error(err))
	}
	return o.transition(record.SwapID, record.State, swap.StateFailed)
}

// sleep waits for d real time, returning false if the orchestrator is
// shutting down.
func (o *Orchestrator) sleep(d time.Duration) bool {
	select {
	case <-o.ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// waitUntil blocks until the trusted clock passes t.
func (o *Orchestrator) waitUntil(t time.Time) bool {
	for o.clock.Now().Before(t) {
		if !o.sleep(o.cfg.retryInterval()) {
			return false
		}
	}
	return true
}

func (o *Orchestrator) backoff(attempt int) time.Duration {
	d := o.cfg.retryInterval()
	for i := 0; i < attempt && d < o.cfg.maxRetryInterval(); i++ {
		d *= 2
	}
	if d > o.cfg.maxRetryInterval() {
		d = o.cfg.maxRetryInterval()
	}
	return d
}

func (o *Orchestrator) notify(kind alert.Kind, record store.Swap, chain swap.Chain, attempts int, message string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.alerts.Notify(ctx, alert.Alert{
		Kind:     kind,
		SwapID:   record.SwapID,
		Chain:    chain,
		Attempts: attempts,
		Message:  message,
		Err:      cause,
	}); err != nil {
		o.logger.Error("alert delivery failed", zap.Error(err))
	}
}

func parseAmount(amount string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("malformed stored amount %q", amount)
	}
	return value, nil
}
