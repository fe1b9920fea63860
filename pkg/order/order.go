package order

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rachelyongies/Lockedin-sub005/pkg/quote"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/rachelyongies/Lockedin-sub005/pkg/util"
)

var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidAssetIdentifier = errors.New("invalid asset identifier")
	ErrTimelockTooSoon        = errors.New("timelock too soon")
)

// Descriptor is a fully specified escrow creation order, ready for the
// submitter. Each build gets a fresh OrderID so a retried submission is a
// new order, never a duplicate of a possibly in-flight one.
type Descriptor struct {
	OrderID string
	SwapID  string
	Side    swap.Side

	Chain  swap.Chain
	Asset  swap.Asset
	Amount *big.Int

	SecretHash []byte
	Algo       secret.Algo

	// Initiator funds the escrow and is refunded after expiry. Redeemer
	// claims with the secret.
	Initiator string
	Redeemer  string

	Expiry time.Time

	// Auction is opaque settlement metadata, present only on chains whose
	// settlement layer prices fills by decay.
	Auction *quote.Auction
}

// BuildParams carries everything a single build needs. Now is passed in so
// the builder stays pure.
type BuildParams struct {
	SwapID     string
	Side       swap.Side
	Chain      swap.Chain
	Asset      swap.Asset
	Amount     *big.Int
	SecretHash []byte
	Algo       secret.Algo
	Initiator  string
	Redeemer   string
	Expiry     time.Time
	Now        time.Time
	Quote      *quote.Quote
}

// Builder validates intents and produces escrow order descriptors. It does
// no network traffic; malformed input fails here before anything reaches a
// chain.
type Builder struct {
	policy TimelockPolicy
}

func NewBuilder(policy TimelockPolicy) *Builder {
	return &Builder{policy: policy}
}

func (b *Builder) Policy() TimelockPolicy {
	return b.policy
}

// ValidateIntent rejects malformed intents before a swap record is created.
func (b *Builder) ValidateIntent(intent swap.Intent) error {
	if intent.Amount == nil || intent.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if err := intent.SourceChain.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if err := intent.DestinationChain.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if err := intent.SourceChain.ValidateAsset(intent.SourceAsset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if err := intent.DestinationChain.ValidateAsset(intent.DestinationAsset); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if err := util.ValidateAddress(intent.SourceChain, intent.Initiator); err != nil {
		return fmt.Errorf("%w: initiator: %v", ErrInvalidAssetIdentifier, err)
	}
	if intent.Recipient != "" {
		if err := util.ValidateAddress(intent.DestinationChain, intent.Recipient); err != nil {
			return fmt.Errorf("%w: recipient: %v", ErrInvalidAssetIdentifier, err)
		}
	}
	if intent.Timelock < b.policy.minMargin() {
		return fmt.Errorf("%w: %s < %s", ErrTimelockTooSoon, intent.Timelock, b.policy.minMargin())
	}
	return nil
}

// Build produces a descriptor for one side of the swap.
func (b *Builder) Build(p BuildParams) (Descriptor, error) {
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return Descriptor{}, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if err := p.Chain.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if err := p.Chain.ValidateAsset(p.Asset); err != nil {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidAssetIdentifier, err)
	}
	if len(p.SecretHash) == 0 {
		return Descriptor{}, fmt.Errorf("missing secret hash")
	}
	if p.Expiry.Sub(p.Now) < b.policy.minMargin() {
		return Descriptor{}, fmt.Errorf("%w: expiry %s within margin %s",
			ErrTimelockTooSoon, p.Expiry.Format(time.RFC3339), b.policy.minMargin())
	}

	return Descriptor{
		OrderID:    uuid.NewString(),
		SwapID:     p.SwapID,
		Side:       p.Side,
		Chain:      p.Chain,
		Asset:      p.Asset,
		Amount:     new(big.Int).Set(p.Amount),
		SecretHash: p.SecretHash,
		Algo:       p.Algo,
		Initiator:  p.Initiator,
		Redeemer:   p.Redeemer,
		Expiry:     p.Expiry.UTC(),
		Auction:    auctionMetadata(p.Chain, p.Quote),
	}, nil
}

// auctionMetadata keeps auction parameters only where the settlement layer
// understands them. Bitcoin escrows are plain HTLC scripts.
func auctionMetadata(chain swap.Chain, q *quote.Quote) *quote.Auction {
	if q == nil || !chain.IsEVM() {
		return nil
	}
	return q.Auction
}
