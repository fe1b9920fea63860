package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
)

// ErrFactoryUnavailable means the escrow factory for a chain could not be
// resolved, or a submission against the resolved factory kept failing even
// after a forced re-resolution.
var ErrFactoryUnavailable = errors.New("escrow factory unavailable")

// Source is where factory handles come from: static chain configuration in
// most deployments, a live registry query where a chain supports one.
type Source interface {
	Lookup(ctx context.Context, chain swap.Chain) (adapter.FactoryHandle, error)
}

// ConfigSource resolves factories from static configuration.
type ConfigSource map[swap.Chain]string

func (s ConfigSource) Lookup(_ context.Context, chain swap.Chain) (adapter.FactoryHandle, error) {
	addr, ok := s[chain]
	if !ok {
		return adapter.FactoryHandle{}, fmt.Errorf("%w: no factory configured for %q", ErrFactoryUnavailable, chain)
	}
	return adapter.FactoryHandle{Chain: chain, Address: addr}, nil
}

const (
	DefaultCacheTTL  = 10 * time.Minute
	defaultCacheSize = 32
)

// Locator resolves the escrow factory per chain and caches successful
// resolutions with a bounded TTL. Reads are cheap and concurrent; refreshes
// go through the source again.
type Locator struct {
	source Source
	cache  *expirable.LRU[swap.Chain, adapter.FactoryHandle]
}

func NewLocator(source Source, ttl time.Duration) *Locator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Locator{
		source: source,
		cache:  expirable.NewLRU[swap.Chain, adapter.FactoryHandle](defaultCacheSize, nil, ttl),
	}
}

// Resolve returns the factory for the chain, from cache when fresh.
func (l *Locator) Resolve(ctx context.Context, chain swap.Chain) (adapter.FactoryHandle, error) {
	if handle, ok := l.cache.Get(chain); ok {
		return handle, nil
	}
	return l.ForceResolve(ctx, chain)
}

// ForceResolve bypasses and refreshes the cache. The submitter uses it when
// a submission failure suggests the cached factory went stale.
func (l *Locator) ForceResolve(ctx context.Context, chain swap.Chain) (adapter.FactoryHandle, error) {
	l.cache.Remove(chain)
	handle, err := l.source.Lookup(ctx, chain)
	if err != nil {
		return adapter.FactoryHandle{}, err
	}
	l.cache.Add(chain, handle)
	return handle, nil
}
