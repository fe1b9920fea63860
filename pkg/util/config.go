package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/tyler-smith/go-bip39"
)

var HomeDir string

func init() {
	var err error
	HomeDir, err = os.UserHomeDir()
	if err != nil {
		log.Fatal("failed to get $HOME value")
	}
}

func DefaultDirectory() string {
	return filepath.Join(HomeDir, ".lockedin")
}

func DefaultConfigPath() string {
	return filepath.Join(HomeDir, ".lockedin", "config.json")
}

func DefaultStorePath() string {
	return filepath.Join(HomeDir, ".lockedin", "data.db")
}

// ChainConfig is the per-network section of the config file. Durations are
// seconds; zero values fall back to each package's defaults.
type ChainConfig struct {
	// RPC is the EVM node URL or the electrs indexer URL for bitcoin.
	RPC string `json:"rpc"`

	// HTLC is the escrow factory: contract address on EVM networks, unused
	// on bitcoin networks where escrows are per-swap scripts.
	HTLC string `json:"htlc,omitempty"`

	// Mempool is the fee estimation endpoint for bitcoin networks.
	Mempool string `json:"mempool,omitempty"`

	Confirmations       uint64 `json:"confirmations,omitempty"`
	PollIntervalSeconds int64  `json:"pollIntervalSeconds,omitempty"`
	HorizonHours        int64  `json:"horizonHours,omitempty"`
	FeeTier             string `json:"feeTier,omitempty"`
}

// RPCConfig is the daemon's JSON-RPC listen config. Operator methods use
// basic auth; initiator methods authenticate with SIWE-issued tokens.
type RPCConfig struct {
	Listen    string `json:"listen"`
	User      string `json:"user"`
	Pass      string `json:"pass"`
	JWTSecret string `json:"jwtSecret"`
}

// RateConfig pins a fixed price for one swap direction. Num and Denom are
// decimal strings so rates survive JSON without float drift.
type RateConfig struct {
	SourceChain      swap.Chain `json:"sourceChain"`
	DestinationChain swap.Chain `json:"destinationChain"`
	SourceAsset      swap.Asset `json:"sourceAsset"`
	DestinationAsset swap.Asset `json:"destinationAsset"`
	Num              string     `json:"num"`
	Denom            string     `json:"denom"`
	AuctionBps       int64      `json:"auctionBps,omitempty"`
}

// Config is the daemon's JSON config file.
type Config struct {
	Chains map[swap.Chain]ChainConfig `json:"chains"`

	Mnemonic string `json:"mnemonic"`

	// DB is a sqlite path; Postgres, when set, wins over DB.
	DB       string `json:"db,omitempty"`
	Postgres string `json:"postgres,omitempty"`

	// Redis backs the action journal; empty falls back to the in-process
	// journal, which weakens idempotency across restarts.
	Redis string `json:"redis,omitempty"`

	Sentry  string `json:"sentry,omitempty"`
	Discord string `json:"discord,omitempty"`

	// Quote is a pricing service base URL. Rates pins static prices
	// instead; when both are set the static table wins.
	Quote string       `json:"quote,omitempty"`
	Rates []RateConfig `json:"rates,omitempty"`

	RPC RPCConfig `json:"rpc"`

	MinMarginMinutes     int64 `json:"minMarginMinutes,omitempty"`
	RetryIntervalSeconds int64 `json:"retryIntervalSeconds,omitempty"`
}

func (c ChainConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c ChainConfig) Horizon() time.Duration {
	return time.Duration(c.HorizonHours) * time.Hour
}

// LoadConfig reads the config file at path, or the default path when empty.
// A missing mnemonic is generated, printed once and written back, so a
// first run comes up with working keys.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	config := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, err
	}
	if err == nil {
		if uerr := json.Unmarshal(data, &config); uerr != nil {
			return config, fmt.Errorf("malformed config %s: %w", path, uerr)
		}
	}

	if config.Mnemonic == "" {
		entropy, err := bip39.NewEntropy(256)
		if err != nil {
			return config, err
		}
		mnemonic, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return config, err
		}
		config.Mnemonic = mnemonic
		color.Green("Generating new mnemonic:\n[ %v ]", mnemonic)

		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return config, err
		}
		out, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return config, err
		}
		if err := os.WriteFile(path, out, 0600); err != nil {
			return config, err
		}
	}
	return config, nil
}
