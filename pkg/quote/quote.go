package quote

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

var ErrNoQuote = errors.New("no quote for pair")

// Pair identifies a priced swap direction.
type Pair struct {
	SourceChain      swap.Chain
	DestinationChain swap.Chain
	SourceAsset      swap.Asset
	DestinationAsset swap.Asset
}

func (p Pair) String() string {
	return fmt.Sprintf("%s:%s-%s:%s", p.SourceChain, p.SourceAsset, p.DestinationChain, p.DestinationAsset)
}

// Auction carries optional dutch auction parameters for settlement layers
// that price fills by decay. The order builder treats it as opaque metadata.
type Auction struct {
	StartAmount *big.Int
	FloorAmount *big.Int
	Duration    time.Duration
}

// Quote is the priced destination leg for a given source amount.
type Quote struct {
	DestinationAmount *big.Int
	Auction           *Auction
}

// Provider prices the destination leg of an intent. Implementations live
// outside the swap core; errors pass through untouched.
type Provider interface {
	Quote(ctx context.Context, pair Pair, sourceAmount *big.Int) (Quote, error)
}
