package swap

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
)

// Chain identifies a supported network. The zero value is invalid.
type Chain string

const (
	Bitcoin          Chain = "bitcoin"
	BitcoinTestnet   Chain = "bitcoin_testnet"
	BitcoinRegtest   Chain = "bitcoin_regtest"
	Ethereum         Chain = "ethereum"
	EthereumSepolia  Chain = "ethereum_sepolia"
	EthereumArbitrum Chain = "ethereum_arbitrum"
	EthereumLocalnet Chain = "ethereum_localnet"
)

func (c Chain) IsBTC() bool {
	return strings.HasPrefix(string(c), "bitcoin")
}

func (c Chain) IsEVM() bool {
	return strings.HasPrefix(string(c), "ethereum")
}

// Params returns the bitcoin network parameters. Callers must check IsBTC
// first; unknown chains map to mainnet params like any other wallet tooling.
func (c Chain) Params() *chaincfg.Params {
	switch c {
	case Bitcoin:
		return &chaincfg.MainNetParams
	case BitcoinTestnet:
		return &chaincfg.TestNet3Params
	case BitcoinRegtest:
		return &chaincfg.RegressionNetParams
	default:
		return &chaincfg.MainNetParams
	}
}

// ChainID returns the EVM chain id used for transaction signing.
func (c Chain) ChainID() *big.Int {
	switch c {
	case Ethereum:
		return big.NewInt(1)
	case EthereumSepolia:
		return big.NewInt(11155111)
	case EthereumArbitrum:
		return big.NewInt(42161)
	case EthereumLocalnet:
		return big.NewInt(31337)
	default:
		return nil
	}
}

func (c Chain) Validate() error {
	switch c {
	case Bitcoin, BitcoinTestnet, BitcoinRegtest,
		Ethereum, EthereumSepolia, EthereumArbitrum, EthereumLocalnet:
		return nil
	default:
		return fmt.Errorf("unknown chain %q", string(c))
	}
}

// Asset identifies what is being locked on a chain: Primary for the native
// asset, or a token contract address on EVM chains.
type Asset string

const Primary Asset = "primary"

func (a Asset) IsPrimary() bool {
	return a == Primary
}

// TokenAddress returns the ERC20 contract address of a secondary asset.
func (a Asset) TokenAddress() common.Address {
	return common.HexToAddress(string(a))
}

// ValidateAsset reports whether the asset identifier is well formed for this
// chain family. Bitcoin chains only carry the primary asset; EVM chains also
// accept a hex token address.
func (c Chain) ValidateAsset(a Asset) error {
	if a.IsPrimary() {
		return nil
	}
	if c.IsEVM() {
		if common.IsHexAddress(string(a)) {
			return nil
		}
		return fmt.Errorf("asset %q is not a hex token address", string(a))
	}
	return fmt.Errorf("asset %q is not supported on %s", string(a), string(c))
}
