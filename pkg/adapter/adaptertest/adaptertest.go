// Package adaptertest provides a scripted in-memory ChainAdapter. Tests
// describe the chain's behavior up front (confirmation schedules, forced
// rejections, flaky submissions) and the orchestrator, monitor and escrow
// packages run against it through the same interface as a real chain.
package adaptertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

// Escrow is the fake chain's view of one submitted escrow.
type Escrow struct {
	TxID   string
	Desc   order.Descriptor
	Status adapter.RawStatus
}

// Adapter is a scripted ChainAdapter for one chain. All methods are safe
// for concurrent use.
type Adapter struct {
	chain swap.Chain

	mu      sync.Mutex
	escrows map[string]*Escrow

	// scripted failures, consumed in order
	submitErrs []error
	secretErrs []error
	refundErrs []error

	queryErrs int

	submitted []order.Descriptor
	secrets   map[string][]byte
	refunds   map[string]bool
}

func New(chain swap.Chain) *Adapter {
	return &Adapter{
		chain:   chain,
		escrows: map[string]*Escrow{},
		secrets: map[string][]byte{},
		refunds: map[string]bool{},
	}
}

// FailNextSubmit scripts errors for upcoming SignAndSubmit calls, consumed
// first in, first out.
func (a *Adapter) FailNextSubmit(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.submitErrs = append(a.submitErrs, errs...)
}

// FailNextSecret scripts errors for upcoming SubmitSecret calls.
func (a *Adapter) FailNextSecret(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.secretErrs = append(a.secretErrs, errs...)
}

// FailNextRefund scripts errors for upcoming SubmitRefund calls.
func (a *Adapter) FailNextRefund(errs ...error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refundErrs = append(a.refundErrs, errs...)
}

// FailQueries makes the next n QueryStatus calls return a transient error.
func (a *Adapter) FailQueries(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queryErrs = n
}

func (a *Adapter) SignAndSubmit(_ context.Context, desc order.Descriptor, _ adapter.FactoryHandle) (adapter.TxHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.submitErrs) > 0 {
		err := a.submitErrs[0]
		a.submitErrs = a.submitErrs[1:]
		if err != nil {
			return adapter.TxHandle{}, err
		}
	}

	txID := uuid.NewString()
	handle := adapter.TxHandle{
		Chain: a.chain,
		TxID:  txID,
		Escrow: adapter.EscrowHandle{
			Chain:      a.chain,
			Address:    "escrow-" + txID[:8],
			OrderID:    desc.OrderID,
			Asset:      desc.Asset,
			Amount:     desc.Amount,
			SecretHash: desc.SecretHash,
			Algo:       desc.Algo,
			Initiator:  desc.Initiator,
			Redeemer:   desc.Redeemer,
			Expiry:     desc.Expiry,
		},
	}
	a.escrows[txID] = &Escrow{TxID: txID, Desc: desc, Status: adapter.RawStatus{Found: true}}
	a.submitted = append(a.submitted, desc)
	return handle, nil
}

func (a *Adapter) QueryStatus(_ context.Context, handle adapter.TxHandle) (adapter.RawStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.queryErrs > 0 {
		a.queryErrs--
		return adapter.RawStatus{}, fmt.Errorf("rpc endpoint unreachable")
	}

	esc, ok := a.escrows[handle.TxID]
	if !ok {
		return adapter.RawStatus{}, nil
	}
	return esc.Status, nil
}

func (a *Adapter) SubmitSecret(_ context.Context, escrow adapter.EscrowHandle, sec []byte) (adapter.TxHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.secretErrs) > 0 {
		err := a.secretErrs[0]
		a.secretErrs = a.secretErrs[1:]
		if err != nil {
			return adapter.TxHandle{}, err
		}
	}

	a.secrets[escrow.Address] = append([]byte(nil), sec...)
	for _, esc := range a.escrows {
		if esc.Desc.OrderID == escrow.OrderID {
			esc.Status.Redeemed = true
			esc.Status.Secret = append([]byte(nil), sec...)
		}
	}
	return adapter.TxHandle{Chain: a.chain, TxID: uuid.NewString(), Escrow: escrow}, nil
}

func (a *Adapter) SubmitRefund(_ context.Context, escrow adapter.EscrowHandle) (adapter.TxHandle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.refundErrs) > 0 {
		err := a.refundErrs[0]
		a.refundErrs = a.refundErrs[1:]
		if err != nil {
			return adapter.TxHandle{}, err
		}
	}

	a.refunds[escrow.Address] = true
	for _, esc := range a.escrows {
		if esc.Desc.OrderID == escrow.OrderID {
			esc.Status.Refunded = true
		}
	}
	return adapter.TxHandle{Chain: a.chain, TxID: uuid.NewString(), Escrow: escrow}, nil
}

// Confirm marks the escrow behind the handle as funded with the given
// confirmation count.
func (a *Adapter) Confirm(handle adapter.TxHandle, confirmations uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if esc, ok := a.escrows[handle.TxID]; ok {
		esc.Status.Funded = true
		esc.Status.Confirmations = confirmations
	}
}

// ConfirmLatest confirms the most recently submitted escrow.
func (a *Adapter) ConfirmLatest(confirmations uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.submitted) == 0 {
		return
	}
	last := a.submitted[len(a.submitted)-1]
	for _, esc := range a.escrows {
		if esc.Desc.OrderID == last.OrderID {
			esc.Status.Funded = true
			esc.Status.Confirmations = confirmations
		}
	}
}

// RedeemLatest marks the most recently submitted escrow as claimed with
// the secret, the way a counterparty spends the redeem branch directly.
func (a *Adapter) RedeemLatest(sec []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.submitted) == 0 {
		return
	}
	last := a.submitted[len(a.submitted)-1]
	for _, esc := range a.escrows {
		if esc.Desc.OrderID == last.OrderID {
			esc.Status.Redeemed = true
			esc.Status.Secret = append([]byte(nil), sec...)
		}
	}
}

// RefundLatest marks the most recently submitted escrow as claimed back
// through the timelock branch, without any refund call on this adapter.
func (a *Adapter) RefundLatest() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.submitted) == 0 {
		return
	}
	last := a.submitted[len(a.submitted)-1]
	for _, esc := range a.escrows {
		if esc.Desc.OrderID == last.OrderID {
			esc.Status.Refunded = true
		}
	}
}

// Reject flips the escrow to an unambiguous on-chain rejection.
func (a *Adapter) Reject(handle adapter.TxHandle, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if esc, ok := a.escrows[handle.TxID]; ok {
		esc.Status.Rejected = true
		esc.Status.RejectReason = reason
	}
}

// Submitted returns every descriptor that reached the chain, in order.
func (a *Adapter) Submitted() []order.Descriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]order.Descriptor, len(a.submitted))
	copy(out, a.submitted)
	return out
}

// RevealedSecret returns the secret submitted against the escrow address,
// or nil if no reveal happened.
func (a *Adapter) RevealedSecret(escrowAddress string) []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.secrets[escrowAddress]
}

// Refunded reports whether a refund claim reached the escrow address.
func (a *Adapter) Refunded(escrowAddress string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refunds[escrowAddress]
}
