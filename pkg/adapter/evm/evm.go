// Package evm implements the chain adapter for EVM networks. Escrows are
// orders inside a deployed HTLC contract; the factory handle resolved by the
// escrow locator is that contract's address.
package evm

import (
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// defaultFilterStep bounds each eth_getLogs range when scanning for the
// redeem event.
const defaultFilterStep = 500

const htlcABIJSON = `[
{"type":"function","name":"initiate","inputs":[{"name":"initiator","type":"address"},{"name":"redeemer","type":"address"},{"name":"expiry","type":"uint256"},{"name":"amount","type":"uint256"},{"name":"secretHash","type":"bytes32"}],"outputs":[]},
{"type":"function","name":"redeem","inputs":[{"name":"orderID","type":"bytes32"},{"name":"secret","type":"bytes"}],"outputs":[]},
{"type":"function","name":"refund","inputs":[{"name":"orderID","type":"bytes32"}],"outputs":[]},
{"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"orders","stateMutability":"view","inputs":[{"name":"","type":"bytes32"}],"outputs":[{"name":"initiator","type":"address"},{"name":"redeemer","type":"address"},{"name":"amount","type":"uint256"},{"name":"expiry","type":"uint256"},{"name":"initiatedAt","type":"uint256"},{"name":"fulfilled","type":"bool"}]},
{"type":"event","name":"Initiated","inputs":[{"name":"orderID","type":"bytes32","indexed":true},{"name":"secretHash","type":"bytes32","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
{"type":"event","name":"Redeemed","inputs":[{"name":"orderID","type":"bytes32","indexed":true},{"name":"secretHash","type":"bytes32","indexed":true},{"name":"secret","type":"bytes","indexed":false}]},
{"type":"event","name":"Refunded","inputs":[{"name":"orderID","type":"bytes32","indexed":true}]}]`

const erc20ABIJSON = `[
{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`

// orderView mirrors the contract's orders mapping entry. InitiatedAt is the
// block number of the initiation, used for confirmation depth.
type orderView struct {
	Initiator   common.Address
	Redeemer    common.Address
	Amount      *big.Int
	Expiry      *big.Int
	InitiatedAt *big.Int
	Fulfilled   bool
}

// Adapter drives one HTLC deployment per EVM network with one signing key.
type Adapter struct {
	chain      swap.Chain
	client     *ethclient.Client
	key        *ecdsa.PrivateKey
	addr       common.Address
	chainID    *big.Int
	htlcABI    abi.ABI
	erc20ABI   abi.ABI
	filterStep uint64
	logger     *zap.Logger
}

func New(chain swap.Chain, client *ethclient.Client, key *ecdsa.PrivateKey, logger *zap.Logger) (*Adapter, error) {
	if !chain.IsEVM() {
		return nil, fmt.Errorf("chain %q is not an EVM network", chain)
	}
	chainID := chain.ChainID()
	if chainID == nil {
		return nil, fmt.Errorf("no chain id for %q", chain)
	}
	htlcABI, err := abi.JSON(strings.NewReader(htlcABIJSON))
	if err != nil {
		return nil, err
	}
	erc20ABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, err
	}
	return &Adapter{
		chain:      chain,
		client:     client,
		key:        key,
		addr:       crypto.PubkeyToAddress(key.PublicKey),
		chainID:    chainID,
		htlcABI:    htlcABI,
		erc20ABI:   erc20ABI,
		filterStep: defaultFilterStep,
		logger:     logger.With(zap.String("service", "evm-adapter"), zap.String("chain", string(chain))),
	}, nil
}

func (a *Adapter) WalletAddress() common.Address {
	return a.addr
}

// contractOrderID derives the HTLC contract's order key the same way the
// contract does: sha256 over the commitment and the initiator address.
func contractOrderID(secretHash []byte, initiator common.Address) [32]byte {
	return sha256.Sum256(append(append([]byte{}, secretHash...), common.BytesToHash(initiator.Bytes()).Bytes()...))
}

func (a *Adapter) htlc(addr common.Address) *bind.BoundContract {
	return bind.NewBoundContract(addr, a.htlcABI, a.client, a.client, a.client)
}

func (a *Adapter) erc20(addr common.Address) *bind.BoundContract {
	return bind.NewBoundContract(addr, a.erc20ABI, a.client, a.client, a.client)
}

func (a *Adapter) transactor(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(a.key, a.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// SignAndSubmit pulls the settlement token allowance up if needed and calls
// initiate on the HTLC contract. It returns after broadcast; confirmation is
// the monitor's concern.
func (a *Adapter) SignAndSubmit(ctx context.Context, desc order.Descriptor, factory adapter.FactoryHandle) (adapter.TxHandle, error) {
	contractAddr := common.HexToAddress(factory.Address)
	contract := a.htlc(contractAddr)

	tokenAddr, err := a.settlementToken(ctx, contract, desc.Asset)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	if err := a.ensureAllowance(ctx, tokenAddr, contractAddr, desc.Amount); err != nil {
		return adapter.TxHandle{}, rejectedOrTransient(err)
	}

	opts, err := a.transactor(ctx)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	initiator := common.HexToAddress(desc.Initiator)
	redeemer := common.HexToAddress(desc.Redeemer)
	tx, err := contract.Transact(opts, "initiate",
		initiator, redeemer, big.NewInt(desc.Expiry.Unix()), desc.Amount, common.BytesToHash(desc.SecretHash))
	if err != nil {
		return adapter.TxHandle{}, rejectedOrTransient(err)
	}

	id := contractOrderID(desc.SecretHash, initiator)
	a.logger.Info("escrow initiated",
		zap.String("contract", contractAddr.Hex()),
		zap.String("order", common.Hash(id).Hex()),
		zap.String("tx", tx.Hash().Hex()))

	return adapter.TxHandle{
		Chain: a.chain,
		TxID:  tx.Hash().Hex(),
		Escrow: adapter.EscrowHandle{
			Chain:      a.chain,
			Address:    contractAddr.Hex(),
			OrderID:    common.Hash(id).Hex(),
			Asset:      desc.Asset,
			Amount:     desc.Amount,
			SecretHash: desc.SecretHash,
			Algo:       desc.Algo,
			Initiator:  desc.Initiator,
			Redeemer:   desc.Redeemer,
			Expiry:     desc.Expiry,
		},
	}, nil
}

// QueryStatus reads the order entry and, once fulfilled, scans the contract
// logs to tell a redeem (with its secret) apart from a refund.
func (a *Adapter) QueryStatus(ctx context.Context, handle adapter.TxHandle) (adapter.RawStatus, error) {
	contractAddr := common.HexToAddress(handle.Escrow.Address)
	id := contractOrderID(handle.Escrow.SecretHash, common.HexToAddress(handle.Escrow.Initiator))

	view, err := a.order(ctx, a.htlc(contractAddr), id)
	if err != nil {
		return adapter.RawStatus{}, err
	}

	status := adapter.RawStatus{}
	if view.InitiatedAt == nil || view.InitiatedAt.Sign() == 0 {
		// Not on chain yet, or the initiation reverted.
		rejected, reason, err := a.initiationRejected(ctx, handle.TxID)
		if err != nil {
			return adapter.RawStatus{}, err
		}
		status.Rejected = rejected
		status.RejectReason = reason
		status.Found = rejected
		return status, nil
	}

	status.Found = true
	status.Funded = true

	latest, err := a.client.BlockNumber(ctx)
	if err != nil {
		return adapter.RawStatus{}, err
	}
	initiatedAt := view.InitiatedAt.Uint64()
	if latest >= initiatedAt {
		status.Confirmations = latest - initiatedAt + 1
	}

	if view.Fulfilled {
		sec, err := a.redeemSecret(ctx, contractAddr, id, handle.Escrow.SecretHash, initiatedAt, latest)
		if err != nil {
			return adapter.RawStatus{}, err
		}
		if sec != nil {
			status.Redeemed = true
			status.Secret = sec
		} else {
			status.Refunded = true
		}
	}
	return status, nil
}

// SubmitSecret calls redeem. The contract pays the order's redeemer, so any
// key may send the claim.
func (a *Adapter) SubmitSecret(ctx context.Context, escrow adapter.EscrowHandle, sec []byte) (adapter.TxHandle, error) {
	contract := a.htlc(common.HexToAddress(escrow.Address))
	id := contractOrderID(escrow.SecretHash, common.HexToAddress(escrow.Initiator))

	opts, err := a.transactor(ctx)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	tx, err := contract.Transact(opts, "redeem", id, sec)
	if err != nil {
		return adapter.TxHandle{}, rejectedOrTransient(err)
	}
	return adapter.TxHandle{Chain: a.chain, TxID: tx.Hash().Hex(), Escrow: escrow}, nil
}

// SubmitRefund calls refund. The contract enforces the expiry and pays the
// order's initiator.
func (a *Adapter) SubmitRefund(ctx context.Context, escrow adapter.EscrowHandle) (adapter.TxHandle, error) {
	contract := a.htlc(common.HexToAddress(escrow.Address))
	id := contractOrderID(escrow.SecretHash, common.HexToAddress(escrow.Initiator))

	opts, err := a.transactor(ctx)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	tx, err := contract.Transact(opts, "refund", id)
	if err != nil {
		return adapter.TxHandle{}, rejectedOrTransient(err)
	}
	return adapter.TxHandle{Chain: a.chain, TxID: tx.Hash().Hex(), Escrow: escrow}, nil
}

// settlementToken resolves which ERC20 the escrow locks: an explicit token
// asset, or the deployment's configured token for the primary asset.
func (a *Adapter) settlementToken(ctx context.Context, contract *bind.BoundContract, asset swap.Asset) (common.Address, error) {
	if !asset.IsPrimary() {
		return asset.TokenAddress(), nil
	}
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "token"); err != nil {
		return common.Address{}, fmt.Errorf("resolve settlement token: %w", err)
	}
	return out[0].(common.Address), nil
}

func (a *Adapter) ensureAllowance(ctx context.Context, tokenAddr, spender common.Address, amount *big.Int) error {
	token := a.erc20(tokenAddr)
	var out []interface{}
	if err := token.Call(&bind.CallOpts{Context: ctx}, &out, "allowance", a.addr, spender); err != nil {
		return err
	}
	allowance := out[0].(*big.Int)
	if allowance.Cmp(amount) >= 0 {
		return nil
	}

	opts, err := a.transactor(ctx)
	if err != nil {
		return err
	}
	approveTx, err := token.Transact(opts, "approve", spender, amount)
	if err != nil {
		return err
	}
	if _, err := bind.WaitMined(ctx, a.client, approveTx); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) order(ctx context.Context, contract *bind.BoundContract, id [32]byte) (orderView, error) {
	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "orders", id); err != nil {
		return orderView{}, err
	}
	return orderView{
		Initiator:   out[0].(common.Address),
		Redeemer:    out[1].(common.Address),
		Amount:      out[2].(*big.Int),
		Expiry:      out[3].(*big.Int),
		InitiatedAt: out[4].(*big.Int),
		Fulfilled:   out[5].(bool),
	}, nil
}

// initiationRejected reports whether the initiation transaction was mined
// and reverted. A receipt that does not exist yet is neither.
func (a *Adapter) initiationRejected(ctx context.Context, txID string) (bool, string, error) {
	if txID == "" {
		return false, "", nil
	}
	receipt, err := a.client.TransactionReceipt(ctx, common.HexToHash(txID))
	if err != nil {
		if err == ethereum.NotFound {
			return false, "", nil
		}
		return false, "", err
	}
	if receipt.Status == 0 {
		return true, "initiation transaction reverted", nil
	}
	return false, "", nil
}

// redeemSecret scans Redeemed events in bounded ranges from the initiation
// block. A fulfilled order with no redeem event was refunded.
func (a *Adapter) redeemSecret(ctx context.Context, contractAddr common.Address, id [32]byte, secretHash []byte, from, to uint64) ([]byte, error) {
	event := a.htlcABI.Events["Redeemed"]
	for start := from; start <= to; start += a.filterStep {
		end := start + a.filterStep - 1
		if end > to {
			end = to
		}
		logs, err := a.client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(start),
			ToBlock:   new(big.Int).SetUint64(end),
			Addresses: []common.Address{contractAddr},
			Topics: [][]common.Hash{
				{event.ID},
				{common.Hash(id)},
				{common.BytesToHash(secretHash)},
			},
		})
		if err != nil {
			return nil, err
		}
		for _, entry := range logs {
			unpacked, err := a.htlcABI.Unpack("Redeemed", entry.Data)
			if err != nil {
				return nil, err
			}
			return unpacked[0].([]byte), nil
		}
	}
	return nil, nil
}

// rejectedOrTransient maps an unambiguous contract revert to RejectedError
// and leaves everything else (nonce races, RPC failures) transient.
func rejectedOrTransient(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "insufficient funds") {
		return adapter.RejectedError{Reason: msg}
	}
	return err
}
