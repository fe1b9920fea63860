package quote

import (
	"context"
	"fmt"
	"math/big"
)

// Rate is a fixed numerator/denominator conversion plus optional auction
// spread in basis points.
type Rate struct {
	Num        *big.Int
	Denom      *big.Int
	AuctionBps int64
}

// FixedProvider prices pairs from a static table. Used for tests and for
// deployments where pricing is pinned by configuration.
type FixedProvider struct {
	rates map[string]Rate
}

func NewFixedProvider() *FixedProvider {
	return &FixedProvider{rates: map[string]Rate{}}
}

func (p *FixedProvider) SetRate(pair Pair, rate Rate) *FixedProvider {
	p.rates[pair.String()] = rate
	return p
}

func (p *FixedProvider) Quote(ctx context.Context, pair Pair, sourceAmount *big.Int) (Quote, error) {
	rate, ok := p.rates[pair.String()]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoQuote, pair)
	}
	if rate.Denom == nil || rate.Denom.Sign() == 0 {
		return Quote{}, fmt.Errorf("malformed rate for %s", pair)
	}

	amount := new(big.Int).Div(new(big.Int).Mul(sourceAmount, rate.Num), rate.Denom)
	q := Quote{DestinationAmount: amount}
	if rate.AuctionBps > 0 {
		spread := new(big.Int).Div(new(big.Int).Mul(amount, big.NewInt(rate.AuctionBps)), big.NewInt(10000))
		q.Auction = &Auction{
			StartAmount: new(big.Int).Add(amount, spread),
			FloorAmount: amount,
			Duration:    DefaultAuctionDuration,
		}
	}
	return q, nil
}
