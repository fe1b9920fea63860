package adapter

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

// FactoryHandle is the per-chain account responsible for escrow creation:
// the HTLC contract on EVM chains, the script derivation anchor on bitcoin
// chains. Resolved by the escrow locator.
type FactoryHandle struct {
	Chain   swap.Chain
	Address string
}

// EscrowHandle identifies a specific escrow on a specific chain together
// with everything needed to redeem or refund it.
type EscrowHandle struct {
	Chain swap.Chain

	// Address is the escrow script address on bitcoin chains and the HTLC
	// contract address on EVM chains.
	Address string

	// OrderID is the chain-assigned escrow identifier: the contract-side
	// order id on EVM chains (hex encoded), the script timelock in blocks
	// on bitcoin chains. The adapter that created the escrow knows how to
	// read it back.
	OrderID string

	Asset      swap.Asset
	Amount     *big.Int
	SecretHash []byte
	Algo       secret.Algo
	Initiator  string
	Redeemer   string
	Expiry     time.Time
}

// TxHandle identifies a submitted transaction and carries the escrow it
// acts on, so a status query needs no other context.
type TxHandle struct {
	Chain  swap.Chain
	TxID   string
	Escrow EscrowHandle
}

// RawStatus is the chain-specific raw view of an escrow. It is a closed
// struct on purpose; only the monitor turns it into lifecycle statuses.
type RawStatus struct {
	// Found is false while the chain does not know the transaction yet.
	Found         bool
	Confirmations uint64

	// Funded means the escrow holds at least the required amount.
	Funded bool

	Redeemed bool
	// Secret is set when the redeem was observed on chain.
	Secret []byte

	Refunded bool

	// Rejected means the chain refused the transaction for good. Transient
	// query failures are errors, not rejections.
	Rejected     bool
	RejectReason string
}

// RejectedError is an unambiguous submission rejection reported by the
// chain. It is never retried with the same order.
type RejectedError struct {
	Reason string
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

// ChainAdapter hides every chain-family detail behind four operations. All
// implementations must be safe for concurrent use.
type ChainAdapter interface {
	// SignAndSubmit signs and broadcasts an escrow creation order against
	// the given factory. It does not wait for confirmation.
	SignAndSubmit(ctx context.Context, desc order.Descriptor, factory FactoryHandle) (TxHandle, error)

	// QueryStatus reports the raw chain view of the escrow behind a handle.
	QueryStatus(ctx context.Context, handle TxHandle) (RawStatus, error)

	// SubmitSecret broadcasts the claim transaction revealing the secret.
	SubmitSecret(ctx context.Context, escrow EscrowHandle, sec []byte) (TxHandle, error)

	// SubmitRefund broadcasts the refund claim. Callers must not invoke it
	// before the escrow's expiry.
	SubmitRefund(ctx context.Context, escrow EscrowHandle) (TxHandle, error)
}

// Registry holds the adapter for each configured chain.
type Registry struct {
	mu       sync.RWMutex
	adapters map[swap.Chain]ChainAdapter
}

func NewRegistry() *Registry {
	return &Registry{adapters: map[swap.Chain]ChainAdapter{}}
}

func (r *Registry) Register(chain swap.Chain, a ChainAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[chain] = a
}

func (r *Registry) Get(chain swap.Chain) (ChainAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[chain]
	if !ok {
		return nil, fmt.Errorf("no adapter for chain %q", chain)
	}
	return a, nil
}

func (r *Registry) Chains() []swap.Chain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chains := make([]swap.Chain, 0, len(r.adapters))
	for chain := range r.adapters {
		chains = append(chains, chain)
	}
	return chains
}
