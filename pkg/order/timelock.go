package order

import (
	"fmt"
	"time"
)

const (
	DefaultMinMargin           = 10 * time.Minute
	DefaultDestinationDivisor  = 2
	destinationExpiryClearance = time.Minute
)

// TimelockPolicy derives the absolute expiries of both escrows from the
// intent's timelock. The destination escrow always expires strictly before
// the source escrow so the counterparty's claim window closes while the
// initiator can still be refunded.
type TimelockPolicy struct {
	// MinMargin is the closest an expiry may be to now at build time.
	MinMargin time.Duration

	// DestinationDivisor shortens the destination window relative to the
	// source window. 2 halves it.
	DestinationDivisor int64
}

func (p TimelockPolicy) minMargin() time.Duration {
	if p.MinMargin <= 0 {
		return DefaultMinMargin
	}
	return p.MinMargin
}

func (p TimelockPolicy) divisor() int64 {
	if p.DestinationDivisor < 2 {
		return DefaultDestinationDivisor
	}
	return p.DestinationDivisor
}

// SourceExpiry is the absolute instant after which the source escrow
// becomes refundable.
func (p TimelockPolicy) SourceExpiry(now time.Time, timelock time.Duration) time.Time {
	return now.UTC().Add(timelock)
}

// DestinationExpiry computes the destination escrow expiry at submission
// time and clamps it strictly below the already fixed source expiry.
func (p TimelockPolicy) DestinationExpiry(now time.Time, timelock time.Duration, sourceExpiry time.Time) time.Time {
	expiry := now.UTC().Add(timelock / time.Duration(p.divisor()))
	if !expiry.Before(sourceExpiry) {
		expiry = sourceExpiry.Add(-destinationExpiryClearance)
	}
	return expiry
}

// ValidatePair enforces the strict ordering between the two expiries. It
// runs before every destination submission; a violation means the swap can
// not be made safe and must not reach the chain.
func (p TimelockPolicy) ValidatePair(destinationExpiry, sourceExpiry time.Time) error {
	if !destinationExpiry.Before(sourceExpiry) {
		return fmt.Errorf("destination expiry %s not before source expiry %s",
			destinationExpiry.Format(time.RFC3339), sourceExpiry.Format(time.RFC3339))
	}
	return nil
}
