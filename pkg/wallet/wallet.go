// Package wallet derives the daemon's per-chain signing keys from a single
// BIP39 mnemonic. Chain adapters pull keys from here; nothing else in the
// process touches key material.
package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// Key is one derived chain key. The same curve backs the bitcoin witness
// path and the EVM account path; which encoding applies depends on the chain
// it was derived for.
type Key struct {
	inner *bip32.Key
}

func (key *Key) BtcKey() *btcec.PrivateKey {
	privKey, _ := btcec.PrivKeyFromBytes(key.inner.Key)
	return privKey
}

func (key *Key) ECDSA() (*ecdsa.PrivateKey, error) {
	return crypto.ToECDSA(key.inner.Key)
}

func (key *Key) WitnessAddress(network *chaincfg.Params) (btcutil.Address, error) {
	keyBytesHash := btcutil.Hash160(key.BtcKey().PubKey().SerializeCompressed())
	return btcutil.NewAddressWitnessPubKeyHash(keyBytesHash, network)
}

func (key *Key) EvmAddress() (common.Address, error) {
	ecdsaKey, err := key.ECDSA()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(ecdsaKey.PublicKey), nil
}

// Address returns the chain-appropriate encoding of the key's address.
func (key *Key) Address(chain swap.Chain) (string, error) {
	switch {
	case chain.IsBTC():
		addr, err := key.WitnessAddress(chain.Params())
		if err != nil {
			return "", err
		}
		return addr.EncodeAddress(), nil
	case chain.IsEVM():
		addr, err := key.EvmAddress()
		if err != nil {
			return "", err
		}
		return addr.Hex(), nil
	default:
		return "", fmt.Errorf("unsupported chain %q", chain)
	}
}

// Wallet derives and caches one key per chain from the master entropy.
type Wallet struct {
	entropy []byte

	mu   sync.Mutex
	keys map[swap.Chain]*Key
}

// NewMnemonic draws fresh 256 bit entropy and encodes it as a mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// FromMnemonic builds a wallet from a BIP39 mnemonic.
func FromMnemonic(mnemonic string) (*Wallet, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return New(entropy)
}

// New builds a wallet from raw entropy.
func New(entropy []byte) (*Wallet, error) {
	if len(entropy) == 0 {
		return nil, fmt.Errorf("empty entropy")
	}
	return &Wallet{entropy: entropy, keys: map[swap.Chain]*Key{}}, nil
}

// Entropy exposes the master entropy for derived subsystems, the secret
// vault in particular. It never leaves the process.
func (w *Wallet) Entropy() []byte {
	return w.entropy
}

// Key derives the key for a chain, cached after the first derivation. Chains
// of the same family on different networks get distinct keys.
func (w *Wallet) Key(chain swap.Chain) (*Key, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if key, ok := w.keys[chain]; ok {
		return key, nil
	}

	masterKey, err := bip32.NewMasterKey(w.entropy)
	if err != nil {
		return nil, err
	}
	index, err := derivationIndex(chain)
	if err != nil {
		return nil, err
	}
	for _, idx := range []uint32{index, networkIndex(chain)} {
		masterKey, err = masterKey.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child key: %w", err)
		}
	}

	key := &Key{inner: masterKey}
	w.keys[chain] = key
	return key, nil
}

// Address satisfies the orchestrator's signer lookup.
func (w *Wallet) Address(chain swap.Chain) (string, error) {
	key, err := w.Key(chain)
	if err != nil {
		return "", err
	}
	return key.Address(chain)
}

func derivationIndex(chain swap.Chain) (uint32, error) {
	switch {
	case chain.IsBTC():
		return 0, nil
	case chain.IsEVM():
		return 60, nil
	default:
		return 0, fmt.Errorf("invalid chain: %s", chain)
	}
}

// networkIndex separates keys across networks of one chain family, so a
// testnet deployment never signs with a mainnet key.
func networkIndex(chain swap.Chain) uint32 {
	switch chain {
	case swap.Bitcoin, swap.Ethereum:
		return 0
	case swap.BitcoinTestnet, swap.EthereumSepolia:
		return 1
	case swap.BitcoinRegtest, swap.EthereumLocalnet:
		return 2
	default:
		return 3
	}
}
