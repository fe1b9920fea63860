package swap

import (
	"math/big"
	"time"
)

// Action is a chain-bound operation carried out for one leg of a swap.
type Action string

var (
	ActionInitiate Action = "initiate"
	ActionRedeem   Action = "redeem"
	ActionRefund   Action = "refund"
)

// Side distinguishes the two escrows of a swap.
type Side string

const (
	SideSource      Side = "source"
	SideDestination Side = "destination"
)

// State is the lifecycle state of a swap record. Transitions are owned by
// the orchestrator; everything else treats states as read-only.
type State string

const (
	StateInitiated                  State = "initiated"
	StateSourceEscrowSubmitted      State = "source_escrow_submitted"
	StateSourceLocked               State = "source_locked"
	StateDestinationEscrowSubmitted State = "destination_escrow_submitted"
	StateDestinationLocked          State = "destination_locked"
	StateSecretRevealing            State = "secret_revealing"
	StateCompleted                  State = "completed"
	StateExpired                    State = "expired"
	StateRefundSubmitted            State = "refund_submitted"
	StateRefunded                   State = "refunded"
	StateCancelled                  State = "cancelled"
	StateFailed                     State = "failed"
)

// IsTerminal reports whether no further transitions are allowed.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateRefunded, StateCancelled, StateFailed:
		return true
	}
	return false
}

// Cancellable reports whether an initiator cancellation may still be
// honored. Once a chain may have irrevocably locked funds the answer is no.
func (s State) Cancellable() bool {
	return s == StateInitiated || s == StateSourceEscrowSubmitted
}

// RevealStarted reports whether the secret may already be public. From any
// of these states a refund transition is forbidden.
func (s State) RevealStarted() bool {
	switch s {
	case StateSecretRevealing, StateCompleted:
		return true
	}
	return false
}

// EscrowStatus is the monitor's normalized view of a single escrow.
type EscrowStatus string

const (
	EscrowPending  EscrowStatus = "pending"
	EscrowLocked   EscrowStatus = "locked"
	EscrowRevealed EscrowStatus = "revealed"
	EscrowRefunded EscrowStatus = "refunded"
	EscrowExpired  EscrowStatus = "expired"
	EscrowFailed   EscrowStatus = "failed"
)

// Final reports whether the monitor stops watching at this status.
func (s EscrowStatus) Final() bool {
	switch s {
	case EscrowRevealed, EscrowRefunded, EscrowExpired, EscrowFailed:
		return true
	}
	return false
}

// Intent is the immutable description of what the initiator wants swapped.
// It never carries secret material.
type Intent struct {
	SourceChain      Chain
	DestinationChain Chain
	SourceAsset      Asset
	DestinationAsset Asset
	Amount           *big.Int
	Initiator        string
	Recipient        string
	Timelock         time.Duration
}

// RecipientOrInitiator returns the destination-side beneficiary.
func (i Intent) RecipientOrInitiator() string {
	if i.Recipient != "" {
		return i.Recipient
	}
	return i.Initiator
}
