// Package lockedin assembles the daemon: wallet, chain adapters, storage,
// journal, orchestrator and the RPC surface, all from one config file.
package lockedin

import (
	"fmt"
	"math/big"
	"time"

	"github.com/catalogfi/blockchain/btc"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	btcadapter "github.com/rachelyongies/Lockedin-sub005/pkg/adapter/btc"
	evmadapter "github.com/rachelyongies/Lockedin-sub005/pkg/adapter/evm"
	"github.com/rachelyongies/Lockedin-sub005/pkg/alert"
	"github.com/rachelyongies/Lockedin-sub005/pkg/escrow"
	"github.com/rachelyongies/Lockedin-sub005/pkg/monitor"
	"github.com/rachelyongies/Lockedin-sub005/pkg/orchestrator"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/quote"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpc"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/rachelyongies/Lockedin-sub005/pkg/util"
	"github.com/rachelyongies/Lockedin-sub005/pkg/wallet"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const feeEstimateWindow = 20 * time.Second

// Lockedind is the assembled daemon. Start brings up the orchestrator and
// the RPC server; Stop drains both.
type Lockedind struct {
	orch   *orchestrator.Orchestrator
	server *rpc.Server
	logger *zap.Logger
}

func New(config util.Config, logger *zap.Logger) (*Lockedind, error) {
	if len(config.Chains) == 0 {
		return nil, fmt.Errorf("no chains configured")
	}
	if config.Mnemonic == "" {
		return nil, fmt.Errorf("wallet mnemonic is not set")
	}

	hdWallet, err := wallet.FromMnemonic(config.Mnemonic)
	if err != nil {
		return nil, fmt.Errorf("load wallet: %w", err)
	}
	vault, err := secret.NewVault(hdWallet.Entropy())
	if err != nil {
		return nil, fmt.Errorf("open secret vault: %w", err)
	}

	db, err := openDB(config)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	storage, err := store.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	registry := adapter.NewRegistry()
	factories := escrow.ConfigSource{}
	policies := monitor.Policies{}
	chains := make([]swap.Chain, 0, len(config.Chains))
	for chain, chainConfig := range config.Chains {
		if err := chain.Validate(); err != nil {
			return nil, err
		}
		key, err := hdWallet.Key(chain)
		if err != nil {
			return nil, err
		}

		switch {
		case chain.IsBTC():
			indexer := btc.NewElectrsIndexerClient(logger, chainConfig.RPC, btc.DefaultRetryInterval)
			estimator := btc.NewBlockstreamFeeEstimator(chain.Params(), chainConfig.Mempool, feeEstimateWindow)
			opts := btcadapter.NewOptions(chain.Params())
			if chainConfig.FeeTier != "" {
				opts = opts.WithFeeTier(chainConfig.FeeTier)
			}
			chainAdapter, err := btcadapter.New(chain, opts, indexer, estimator, key.BtcKey(), logger)
			if err != nil {
				return nil, fmt.Errorf("bitcoin adapter for %s: %w", chain, err)
			}
			registry.Register(chain, chainAdapter)
		default:
			client, err := ethclient.Dial(chainConfig.RPC)
			if err != nil {
				return nil, fmt.Errorf("dial %s node: %w", chain, err)
			}
			ecdsaKey, err := key.ECDSA()
			if err != nil {
				return nil, err
			}
			chainAdapter, err := evmadapter.New(chain, client, ecdsaKey, logger)
			if err != nil {
				return nil, fmt.Errorf("evm adapter for %s: %w", chain, err)
			}
			registry.Register(chain, chainAdapter)
		}

		// Bitcoin escrows are per-swap scripts, so the factory entry stays
		// empty; the submitter still needs the chain to resolve.
		factories[chain] = chainConfig.HTLC
		policies[chain] = monitor.Policy{
			PollInterval:  chainConfig.PollInterval(),
			Confirmations: chainConfig.Confirmations,
			Horizon:       chainConfig.Horizon(),
		}
		chains = append(chains, chain)
	}

	quotes, err := quoteProvider(config)
	if err != nil {
		return nil, err
	}

	journal, err := newJournal(config, logger)
	if err != nil {
		return nil, err
	}

	notifiers := alert.Notifiers{alert.NewZapNotifier(logger)}
	if config.Discord != "" {
		discord, err := alert.NewDiscordNotifier(config.Discord)
		if err != nil {
			return nil, fmt.Errorf("discord notifier: %w", err)
		}
		notifiers = append(notifiers, discord)
	}

	locator := escrow.NewLocator(factories, escrow.DefaultCacheTTL)
	submitter := escrow.NewSubmitter(registry, locator, logger)
	clock := swap.SystemClock()
	watcher := monitor.NewWatcher(registry, policies, clock, logger)

	orch, err := orchestrator.New(
		orchestrator.Config{
			Policy:        order.TimelockPolicy{MinMargin: time.Duration(config.MinMarginMinutes) * time.Minute},
			RetryInterval: time.Duration(config.RetryIntervalSeconds) * time.Second,
		},
		storage,
		order.NewBuilder(order.TimelockPolicy{MinMargin: time.Duration(config.MinMarginMinutes) * time.Minute}),
		registry,
		submitter,
		watcher,
		journal,
		vault,
		quotes,
		hdWallet,
		notifiers,
		clock,
		logger,
	)
	if err != nil {
		return nil, err
	}

	server, err := rpc.NewServer(rpc.Config{
		Listen:    config.RPC.Listen,
		User:      config.RPC.User,
		Pass:      config.RPC.Pass,
		JWTSecret: config.RPC.JWTSecret,
	}, orch, storage, hdWallet, chains, logger)
	if err != nil {
		return nil, err
	}

	return &Lockedind{orch: orch, server: server, logger: logger}, nil
}

// Start resumes persisted swaps, then opens the RPC surface. Ordering
// matters: resumed workers must exist before new submissions arrive.
func (d *Lockedind) Start() error {
	if err := d.orch.Start(); err != nil {
		return err
	}
	return d.server.Start()
}

func (d *Lockedind) Stop() {
	d.server.Stop()
	d.orch.Stop()
}

func openDB(config util.Config) (*gorm.DB, error) {
	if config.Postgres != "" {
		return gorm.Open(postgres.Open(config.Postgres), &gorm.Config{
			NowFunc: func() time.Time { return time.Now().UTC() },
		})
	}
	path := config.DB
	if path == "" {
		path = util.DefaultStorePath()
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

func newJournal(config util.Config, logger *zap.Logger) (orchestrator.Journal, error) {
	if config.Redis == "" {
		logger.Warn("no redis configured, action journal is process local")
		return orchestrator.NewMemoryJournal(), nil
	}
	return orchestrator.NewRedisJournal(config.Redis)
}

func quoteProvider(config util.Config) (quote.Provider, error) {
	if len(config.Rates) > 0 {
		provider := quote.NewFixedProvider()
		for _, rate := range config.Rates {
			num, ok := new(big.Int).SetString(rate.Num, 10)
			if !ok {
				return nil, fmt.Errorf("malformed rate numerator %q", rate.Num)
			}
			denom, ok := new(big.Int).SetString(rate.Denom, 10)
			if !ok || denom.Sign() == 0 {
				return nil, fmt.Errorf("malformed rate denominator %q", rate.Denom)
			}
			provider.SetRate(quote.Pair{
				SourceChain:      rate.SourceChain,
				DestinationChain: rate.DestinationChain,
				SourceAsset:      rate.SourceAsset,
				DestinationAsset: rate.DestinationAsset,
			}, quote.Rate{Num: num, Denom: denom, AuctionBps: rate.AuctionBps})
		}
		return provider, nil
	}
	if config.Quote != "" {
		return quote.NewHTTPProvider(config.Quote), nil
	}
	return nil, fmt.Errorf("no pricing configured, set rates or a quote url")
}
