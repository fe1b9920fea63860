package orchestrator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/alert"
	"github.com/rachelyongies/Lockedin-sub005/pkg/monitor"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/quote"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// submitSource drives Initiated -> SourceEscrowSubmitted. A rejection here
// terminates the swap cleanly: nothing is locked yet.
func (o *Orchestrator) submitSource(record store.Swap, logger *zap.Logger) error {
	if record.CancelRequested {
		logger.Info("cancel honored before any submission")
		return o.transition(record.SwapID, swap.StateInitiated, swap.StateCancelled)
	}

	done, err := o.journal.Done(swap.ActionInitiate, record.SwapID, swap.SideSource)
	if err != nil {
		return err
	}
	if done {
		return o.transition(record.SwapID, swap.StateInitiated, swap.StateSourceEscrowSubmitted)
	}

	serviceAddr, err := o.signers.Address(record.SourceChain)
	if err != nil {
		return o.fail(record, err, logger)
	}
	desc, esc, err := o.prepareEscrow(record, swap.SideSource, record.Initiator, serviceAddr, nil)
	if err != nil {
		return o.fail(record, err, logger)
	}
	if esc.InitiateTxHash != "" {
		// A previous run already broadcast and recorded this escrow.
		return o.transition(record.SwapID, swap.StateInitiated, swap.StateSourceEscrowSubmitted)
	}

	pending, err := o.submitter.Submit(o.ctx, desc)
	if err != nil {
		// Rule 1: rejection before any lock discards the swap.
		return o.fail(record, err, logger)
	}
	logger.Info("source escrow submitted",
		zap.String("chain", string(desc.Chain)),
		zap.String("tx", pending.Tx.TxID),
		zap.String("escrow", pending.Tx.Escrow.Address))

	// The row lands before the journal mark: the resume path rebuilds
	// chain handles from the stored identifiers.
	if err := o.storage.UpdateEscrowSubmitted(esc.ID, pending.Tx.Escrow.Address, pending.Tx.Escrow.OrderID, pending.Tx.TxID); err != nil {
		return err
	}
	if err := o.journal.Record(swap.ActionInitiate, record.SwapID, swap.SideSource); err != nil {
		logger.Error("journal write failed", zap.Error(err))
	}
	return o.transition(record.SwapID, swap.StateInitiated, swap.StateSourceEscrowSubmitted)
}

// awaitSourceLock drives SourceEscrowSubmitted -> SourceLocked.
func (o *Orchestrator) awaitSourceLock(record store.Swap, logger *zap.Logger) error {
	esc, err := o.storage.Escrow(record.SwapID, swap.SideSource)
	if err != nil {
		return err
	}
	event, err := o.awaitLock(record, esc)
	if err != nil {
		return err
	}
	if event == nil {
		// shutdown or monitoring timeout already handled; re-enter state
		return nil
	}

	switch event.Status {
	case swap.EscrowLocked:
		if err := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowLocked); err != nil {
			return err
		}
		fresh, err := o.storage.SwapByID(record.SwapID)
		if err != nil {
			return err
		}
		if fresh.CancelRequested {
			// Too late to cancel cleanly: funds are locked, so route
			// through the refund path once the timelock passes.
			logger.Info("cancel after source lock, driving refund")
			return o.transition(record.SwapID, swap.StateSourceEscrowSubmitted, swap.StateExpired)
		}
		return o.transition(record.SwapID, swap.StateSourceEscrowSubmitted, swap.StateSourceLocked)
	case swap.EscrowRevealed:
		// The secret is already public on this chain, so the refund
		// branch is closed for good. Resume from the locked state.
		logger.Warn("source escrow already redeemed while awaiting lock")
		if err := o.storage.MarkRevealStarted(record.SwapID); err != nil {
			return err
		}
		if err := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRevealed); err != nil {
			return err
		}
		return o.transition(record.SwapID, swap.StateSourceEscrowSubmitted, swap.StateSourceLocked)
	case swap.EscrowRefunded:
		// The initiator claimed the timelock branch, most likely while
		// the daemon was down. Close the record out through the refund
		// path so the escrow row settles as refunded.
		logger.Warn("source escrow refunded while awaiting lock")
		if err := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRefunded); err != nil {
			return err
		}
		return o.transition(record.SwapID, swap.StateSourceEscrowSubmitted, swap.StateExpired)
	case swap.EscrowExpired:
		// The creation transaction may still be in flight, so sweep
		// through the refund path rather than abandoning outright.
		logger.Warn("source escrow expired before locking")
		return o.transition(record.SwapID, swap.StateSourceEscrowSubmitted, swap.StateExpired)
	case swap.EscrowFailed: // unambiguous rejection, nothing locked
		return o.fail(record, fmt.Errorf("source escrow rejected on chain"), logger)
	default:
		logger.Warn("unhandled escrow status while awaiting source lock",
			zap.String("status", string(event.Status)))
		o.sleep(o.cfg.retryInterval())
		return nil
	}
}

// submitDestination drives SourceLocked -> DestinationEscrowSubmitted,
// reusing the exact commitment hash and a strictly earlier expiry. Any
// failure here routes to the refund path: the source side is already
// locked and must stay recoverable.
func (o *Orchestrator) submitDestination(record store.Swap, logger *zap.Logger) error {
	if record.CancelRequested {
		logger.Info("cancel after source lock, driving refund")
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateExpired)
	}

	done, err := o.journal.Done(swap.ActionInitiate, record.SwapID, swap.SideDestination)
	if err != nil {
		return err
	}
	if done {
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateDestinationEscrowSubmitted)
	}

	serviceAddr, err := o.signers.Address(record.DestinationChain)
	if err != nil {
		logger.Error("no destination signer", zap.Error(err))
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateExpired)
	}

	// Auction metadata is refreshed at submission time; the settlement
	// amount itself was fixed when the swap was accepted.
	var q *quote.Quote
	if srcAmount, perr := parseAmount(record.SourceAmount); perr != nil {
		logger.Error("stored source amount unreadable, skipping quote refresh", zap.Error(perr))
	} else if fresh, qerr := o.quotes.Quote(o.ctx, quote.Pair{
		SourceChain:      record.SourceChain,
		DestinationChain: record.DestinationChain,
		SourceAsset:      record.SourceAsset,
		DestinationAsset: record.DestinationAsset,
	}, srcAmount); qerr != nil {
		logger.Warn("quote refresh failed, submitting without auction metadata", zap.Error(qerr))
	} else {
		q = &fresh
	}

	desc, esc, err := o.prepareEscrow(record, swap.SideDestination, serviceAddr, record.Recipient, q)
	if err != nil {
		logger.Error("destination order build failed", zap.Error(err))
		if perr := o.storage.PutError(record.SwapID, err); perr != nil {
			logger.Error("failed to record error", zap.Error(perr))
		}
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateExpired)
	}
	if esc.InitiateTxHash != "" {
		// A previous run already broadcast and recorded this escrow.
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateDestinationEscrowSubmitted)
	}

	pending, err := o.submitter.Submit(o.ctx, desc)
	if err != nil {
		// Rule 3: the source is locked, never fall through to Failed.
		logger.Error("destination submission failed, driving refund", zap.Error(err))
		if perr := o.storage.PutError(record.SwapID, err); perr != nil {
			logger.Error("failed to record error", zap.Error(perr))
		}
		return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateExpired)
	}
	logger.Info("destination escrow submitted",
		zap.String("chain", string(desc.Chain)),
		zap.String("tx", pending.Tx.TxID),
		zap.String("escrow", pending.Tx.Escrow.Address))

	if err := o.storage.UpdateEscrowSubmitted(esc.ID, pending.Tx.Escrow.Address, pending.Tx.Escrow.OrderID, pending.Tx.TxID); err != nil {
		return err
	}
	if err := o.journal.Record(swap.ActionInitiate, record.SwapID, swap.SideDestination); err != nil {
		logger.Error("journal write failed", zap.Error(err))
	}
	return o.transition(record.SwapID, swap.StateSourceLocked, swap.StateDestinationEscrowSubmitted)
}

// awaitDestinationLock drives DestinationEscrowSubmitted ->
// DestinationLocked, or into the refund path if the destination never
// locks.
func (o *Orchestrator) awaitDestinationLock(record store.Swap, logger *zap.Logger) error {
	esc, err := o.storage.Escrow(record.SwapID, swap.SideDestination)
	if err != nil {
		return err
	}
	event, err := o.awaitLock(record, esc)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	switch event.Status {
	case swap.EscrowLocked:
		if err := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowLocked); err != nil {
			return err
		}
		return o.transition(record.SwapID, swap.StateDestinationEscrowSubmitted, swap.StateDestinationLocked)
	case swap.EscrowRevealed:
		// Redeemed before the lock was observed: the secret is public,
		// so refunds are off the table and the reveal flow takes over.
		logger.Warn("destination escrow already redeemed while awaiting lock")
		if err := o.storage.MarkRevealStarted(record.SwapID); err != nil {
			return err
		}
		if err := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRevealed); err != nil {
			return err
		}
		return o.transition(record.SwapID, swap.StateDestinationEscrowSubmitted, swap.StateDestinationLocked)
	case swap.EscrowExpired, swap.EscrowRefunded, swap.EscrowFailed:
		// The source escrow holds funds, refund it.
		logger.Warn("destination escrow never locked, driving refund",
			zap.String("status", string(event.Status)))
		return o.transition(record.SwapID, swap.StateDestinationEscrowSubmitted, swap.StateExpired)
	default:
		logger.Warn("unhandled escrow status while awaiting destination lock",
			zap.String("status", string(event.Status)))
		o.sleep(o.cfg.retryInterval())
		return nil
	}
}

// awaitLock watches an escrow until it locks or terminally fails. A nil
// event with nil error means the caller should re-enter the same state
// (shutdown, or monitoring timeout after the operator was alerted).
func (o *Orchestrator) awaitLock(record store.Swap, esc store.Escrow) (*monitor.Event, error) {
	handle, err := o.escrowHandle(record, esc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(o.ctx)
	defer cancel()
	for event := range o.watcher.Watch(ctx, handle) {
		if errors.Is(event.Err, monitor.ErrMonitoringTimeout) {
			o.notify(alert.KindMonitorTimeout, record, esc.Chain, 0,
				"escrow status unresolved within monitoring horizon", event.Err)
			return nil, nil
		}
		event := event
		return &event, nil
	}
	return nil, nil
}

// beginReveal drives DestinationLocked -> SecretRevealing, unless the
// destination window already closed without any reveal, in which case the
// only safe move is the refund path.
func (o *Orchestrator) beginReveal(record store.Swap, logger *zap.Logger) error {
	esc, err := o.storage.Escrow(record.SwapID, swap.SideDestination)
	if err != nil {
		return err
	}
	if !record.RevealStarted && o.clock.Now().After(esc.Expiry) {
		logger.Warn("destination window closed before reveal, driving refund")
		return o.transition(record.SwapID, swap.StateDestinationLocked, swap.StateExpired)
	}
	return o.transition(record.SwapID, swap.StateDestinationLocked, swap.StateSecretRevealing)
}

// reveal submits the secret to the destination chain first (the earlier
// expiry), then the source chain. Once any submission may have reached a
// chain the secret is treated as public: the remaining reveal is retried
// forever and no refund is ever attempted again.
func (o *Orchestrator) reveal(record store.Swap, logger *zap.Logger) error {
	sec, err := o.vault.Open(record.SealedSecret)
	if err != nil {
		return fmt.Errorf("unseal secret: %w", err)
	}
	wantHash, err := hex.DecodeString(record.SecretHash)
	if err != nil {
		return err
	}
	ok, err := secret.Verify(record.DigestAlgo, sec, wantHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unsealed secret does not match commitment for swap %s", record.SwapID)
	}

	if err := o.revealSide(record, swap.SideDestination, sec, logger); err != nil {
		return err
	}
	if err := o.revealSide(record, swap.SideSource, sec, logger); err != nil {
		return err
	}
	return o.transition(record.SwapID, swap.StateSecretRevealing, swap.StateCompleted)
}

func (o *Orchestrator) revealSide(record store.Swap, side swap.Side, sec []byte, logger *zap.Logger) error {
	done, err := o.journal.Done(swap.ActionRedeem, record.SwapID, side)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	esc, err := o.storage.Escrow(record.SwapID, side)
	if err != nil {
		return err
	}
	if esc.Status == swap.EscrowRevealed {
		// already redeemed on chain, nothing left to publish here
		return nil
	}
	handle, err := o.escrowHandle(record, esc)
	if err != nil {
		return err
	}
	chainAdapter, err := o.adapters.Get(esc.Chain)
	if err != nil {
		return err
	}

	// The first submission attempt may publish the secret even if it
	// errors, so the sticky reveal flag goes down before the attempt.
	if !record.RevealStarted {
		if err := o.storage.MarkRevealStarted(record.SwapID); err != nil {
			return err
		}
		record.RevealStarted = true
	}

	for attempt := 1; ; attempt++ {
		tx, err := chainAdapter.SubmitSecret(o.ctx, handle.Escrow, sec)
		if err == nil {
			logger.Info("secret revealed",
				zap.String("side", string(side)),
				zap.String("chain", string(esc.Chain)),
				zap.String("tx", tx.TxID))
			if jerr := o.journal.Record(swap.ActionRedeem, record.SwapID, side); jerr != nil {
				logger.Error("journal write failed", zap.Error(jerr))
			}
			if uerr := o.storage.UpdateEscrowTx(esc.ID, swap.ActionRedeem, tx.TxID); uerr != nil {
				logger.Error("failed to record redeem tx", zap.Error(uerr))
			}
			if uerr := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRevealed); uerr != nil {
				logger.Error("failed to update escrow status", zap.Error(uerr))
			}
			return nil
		}

		// Highest-severity path: the secret may already be public on the
		// counter chain. Retried without any timeout, never abandoned.
		logger.Error("secret submission failed",
			zap.String("side", string(side)),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if perr := o.storage.PutError(record.SwapID, err); perr != nil {
			logger.Error("failed to record error", zap.Error(perr))
		}
		if attempt >= o.cfg.alertThreshold() {
			o.notify(alert.KindRevealStuck, record, esc.Chain, attempt,
				"secret public but reveal keeps failing", err)
		}
		if !o.sleep(o.backoff(attempt)) {
			return o.ctx.Err()
		}
	}
}

// submitRefunds drives Expired -> RefundSubmitted. Escrows are swept in
// expiry order; claims are never attempted before the timelock passes and
// are retried until the chain accepts them.
func (o *Orchestrator) submitRefunds(record store.Swap, logger *zap.Logger) error {
	escrows, err := o.storage.EscrowsBySwap(record.SwapID)
	if err != nil {
		return err
	}
	// destination first: its timelock is strictly earlier
	for _, side := range []swap.Side{swap.SideDestination, swap.SideSource} {
		for _, esc := range escrows {
			if esc.Side != side {
				continue
			}
			if err := o.refundEscrow(record, esc, logger); err != nil {
				return err
			}
		}
	}
	return o.transition(record.SwapID, swap.StateExpired, swap.StateRefundSubmitted)
}

func (o *Orchestrator) refundEscrow(record store.Swap, esc store.Escrow, logger *zap.Logger) error {
	if esc.Status.Final() || esc.RefundTxHash != "" {
		return nil
	}
	if esc.InitiateTxHash == "" {
		// never broadcast, nothing on chain to claim back
		return o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowFailed)
	}

	handle, err := o.escrowHandle(record, esc)
	if err != nil {
		return err
	}
	chainAdapter, err := o.adapters.Get(esc.Chain)
	if err != nil {
		return err
	}

	raw, err := chainAdapter.QueryStatus(o.ctx, handle)
	if err != nil {
		return err
	}
	switch {
	case raw.Redeemed:
		// Claimed with the secret; nothing left to refund on this side.
		return o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRevealed)
	case raw.Refunded:
		return o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRefunded)
	case !raw.Funded:
		// The creation transaction never confirmed; no funds to recover.
		return o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowFailed)
	}

	done, err := o.journal.Done(swap.ActionRefund, record.SwapID, esc.Side)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	// The escrow rejects early refunds; wait out the timelock against the
	// trusted clock.
	if !o.waitUntil(esc.Expiry) {
		return o.ctx.Err()
	}

	for attempt := 1; ; attempt++ {
		tx, err := chainAdapter.SubmitRefund(o.ctx, handle.Escrow)
		if err == nil {
			logger.Info("refund submitted",
				zap.String("side", string(esc.Side)),
				zap.String("chain", string(esc.Chain)),
				zap.String("tx", tx.TxID))
			if jerr := o.journal.Record(swap.ActionRefund, record.SwapID, esc.Side); jerr != nil {
				logger.Error("journal write failed", zap.Error(jerr))
			}
			if uerr := o.storage.UpdateEscrowTx(esc.ID, swap.ActionRefund, tx.TxID); uerr != nil {
				logger.Error("failed to record refund tx", zap.Error(uerr))
			}
			return nil
		}

		logger.Error("refund submission failed",
			zap.String("side", string(esc.Side)),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if perr := o.storage.PutError(record.SwapID, err); perr != nil {
			logger.Error("failed to record error", zap.Error(perr))
		}
		if attempt >= o.cfg.alertThreshold() {
			o.notify(alert.KindRefundStuck, record, esc.Chain, attempt,
				"refund claim keeps getting rejected after expiry", err)
		}
		if !o.sleep(o.backoff(attempt)) {
			return o.ctx.Err()
		}
	}
}

// awaitRefund drives RefundSubmitted -> Refunded, polling each refunded
// escrow until the chain confirms the claim.
func (o *Orchestrator) awaitRefund(record store.Swap, logger *zap.Logger) error {
	escrows, err := o.storage.EscrowsBySwap(record.SwapID)
	if err != nil {
		return err
	}

	for _, esc := range escrows {
		if esc.Status.Final() || esc.RefundTxHash == "" {
			continue
		}
		handle, err := o.escrowHandle(record, esc)
		if err != nil {
			return err
		}
		chainAdapter, err := o.adapters.Get(esc.Chain)
		if err != nil {
			return err
		}

		for attempt := 1; ; attempt++ {
			raw, err := chainAdapter.QueryStatus(o.ctx, handle)
			if err == nil && raw.Refunded {
				if uerr := o.storage.UpdateEscrowStatus(esc.ID, swap.EscrowRefunded); uerr != nil {
					return uerr
				}
				break
			}
			if err != nil {
				logger.Debug("refund confirmation query failed", zap.Error(err))
			}
			if attempt >= o.cfg.alertThreshold() {
				o.notify(alert.KindRefundStuck, record, esc.Chain, attempt,
					"refund claim not confirming", err)
			}
			if !o.sleep(o.backoff(attempt)) {
				return o.ctx.Err()
			}
		}
	}
	if err := o.storage.PutError(record.SwapID, nil); err != nil {
		logger.Error("failed to clear error", zap.Error(err))
	}
	return o.transition(record.SwapID, swap.StateRefundSubmitted, swap.StateRefunded)
}

// prepareEscrow builds the order descriptor for one side and makes sure
// its durable escrow row exists before anything is broadcast. On resume an
// existing row's expiry wins over a freshly derived one so the timelock
// invariant judged at first build stays authoritative.
func (o *Orchestrator) prepareEscrow(record store.Swap, side swap.Side, initiator, redeemer string, q *quote.Quote) (order.Descriptor, store.Escrow, error) {
	chain, asset, amountStr := record.SourceChain, record.SourceAsset, record.SourceAmount
	if side == swap.SideDestination {
		chain, asset, amountStr = record.DestinationChain, record.DestinationAsset, record.DestinationAmount
	}
	amount, err := parseAmount(amountStr)
	if err != nil {
		return order.Descriptor{}, store.Escrow{}, err
	}
	secretHash, err := hex.DecodeString(record.SecretHash)
	if err != nil {
		return order.Descriptor{}, store.Escrow{}, err
	}

	now := o.clock.Now()
	var expiry time.Time
	newRow := false
	esc, err := o.storage.Escrow(record.SwapID, side)
	switch {
	case err == nil:
		expiry = esc.Expiry
	case errors.Is(err, store.ErrNotFound):
		newRow = true
		timelock := time.Duration(record.TimelockSeconds) * time.Second
		if side == swap.SideSource {
			expiry = o.cfg.Policy.SourceExpiry(now, timelock)
		} else {
			srcEsc, serr := o.storage.Escrow(record.SwapID, swap.SideSource)
			if serr != nil {
				return order.Descriptor{}, store.Escrow{}, serr
			}
			expiry = o.cfg.Policy.DestinationExpiry(now, timelock, srcEsc.Expiry)
			if verr := o.cfg.Policy.ValidatePair(expiry, srcEsc.Expiry); verr != nil {
				return order.Descriptor{}, store.Escrow{}, verr
			}
		}
	default:
		return order.Descriptor{}, store.Escrow{}, err
	}

	desc, err := o.builder.Build(order.BuildParams{
		SwapID:     record.SwapID,
		Side:       side,
		Chain:      chain,
		Asset:      asset,
		Amount:     amount,
		SecretHash: secretHash,
		Algo:       record.DigestAlgo,
		Initiator:  initiator,
		Redeemer:   redeemer,
		Expiry:     expiry,
		Now:        now,
		Quote:      q,
	})
	if err != nil {
		return order.Descriptor{}, store.Escrow{}, err
	}

	if newRow {
		row := &store.Escrow{
			SwapID:     record.SwapID,
			Side:       side,
			Chain:      chain,
			Asset:      asset,
			Amount:     amountStr,
			SecretHash: record.SecretHash,
			Initiator:  initiator,
			Redeemer:   redeemer,
			Expiry:     expiry,
			Status:     swap.EscrowPending,
		}
		if err := o.storage.PutEscrow(row); err != nil {
			return order.Descriptor{}, store.Escrow{}, err
		}
		esc = *row
	}
	return desc, esc, nil
}

// escrowHandle rebuilds the chain handle from the durable escrow row.
func (o *Orchestrator) escrowHandle(record store.Swap, esc store.Escrow) (adapter.TxHandle, error) {
	amount, err := parseAmount(esc.Amount)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	secretHash, err := hex.DecodeString(esc.SecretHash)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	return adapter.TxHandle{
		Chain: esc.Chain,
		TxID:  esc.InitiateTxHash,
		Escrow: adapter.EscrowHandle{
			Chain:      esc.Chain,
			Address:    esc.EscrowAddress,
			OrderID:    esc.OrderID,
			Asset:      esc.Asset,
			Amount:     amount,
			SecretHash: secretHash,
			Algo:       record.DigestAlgo,
			Initiator:  esc.Initiator,
			Redeemer:   esc.Redeemer,
			Expiry:     esc.Expiry,
		},
	}, nil
}
