package orchestrator

import (
	"fmt"

	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

// transitions is the closed set of legal state moves. Workers only ever
// advance a swap along an edge listed here, and the store's guarded update
// enforces the expected source state, so two workers can never push the
// same record different ways.
var transitions = map[swap.State][]swap.State{
	swap.StateInitiated: {
		swap.StateSourceEscrowSubmitted,
		swap.StateCancelled,
		swap.StateFailed,
	},
	swap.StateSourceEscrowSubmitted: {
		swap.StateSourceLocked,
		swap.StateExpired,
		swap.StateFailed,
	},
	swap.StateSourceLocked: {
		swap.StateDestinationEscrowSubmitted,
		swap.StateExpired,
	},
	swap.StateDestinationEscrowSubmitted: {
		swap.StateDestinationLocked,
		swap.StateExpired,
	},
	swap.StateDestinationLocked: {
		swap.StateSecretRevealing,
		swap.StateExpired,
	},
	swap.StateSecretRevealing: {
		swap.StateCompleted,
	},
	swap.StateExpired: {
		swap.StateRefundSubmitted,
	},
	swap.StateRefundSubmitted: {
		swap.StateRefunded,
	},
}

func validTransition(from, to swap.State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// validateTransitionTable is run once at construction. Every non-terminal
// state must have a way out and no terminal state may have one.
func validateTransitionTable() error {
	states := []swap.State{
		swap.StateInitiated, swap.StateSourceEscrowSubmitted, swap.StateSourceLocked,
		swap.StateDestinationEscrowSubmitted, swap.StateDestinationLocked,
		swap.StateSecretRevealing, swap.StateCompleted, swap.StateExpired,
		swap.StateRefundSubmitted, swap.StateRefunded, swap.StateCancelled, swap.StateFailed,
	}
	for _, state := range states {
		exits := transitions[state]
		if state.IsTerminal() && len(exits) > 0 {
			return fmt.Errorf("terminal state %q has transitions", state)
		}
		if !state.IsTerminal() && len(exits) == 0 {
			return fmt.Errorf("state %q has no exit", state)
		}
		for _, next := range exits {
			if state.RevealStarted() && refundState(next) {
				return fmt.Errorf("transition %q -> %q would refund after reveal", state, next)
			}
		}
	}
	return nil
}

func refundState(state swap.State) bool {
	switch state {
	case swap.StateExpired, swap.StateRefundSubmitted, swap.StateRefunded:
		return true
	}
	return false
}
