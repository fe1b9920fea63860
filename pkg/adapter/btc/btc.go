// Package btc implements the chain adapter for bitcoin networks. Escrows
// are per-swap HTLC scripts behind P2WSH addresses; status comes from an
// electrs-style indexer, never from wall-clock guesses about the chain.
package btc

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/catalogfi/blockchain/btc"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// blockTime converts wall-clock windows into script timelocks. Bitcoin
// scripts count blocks, not seconds.
const blockTime = 10 * time.Minute

// Adapter funds, watches, redeems and refunds HTLC escrows on one bitcoin
// network with one wallet key. Safe for concurrent use; submissions are
// serialized so UTXO selection never double-spends.
type Adapter struct {
	chain        swap.Chain
	opts         Options
	client       btc.IndexerClient
	feeEstimator btc.FeeEstimator
	key          *btcec.PrivateKey
	address      btcutil.Address
	logger       *zap.Logger

	submitMu chan struct{}
}

func New(chain swap.Chain, opts Options, client btc.IndexerClient, estimator btc.FeeEstimator, key *btcec.PrivateKey, logger *zap.Logger) (*Adapter, error) {
	if !chain.IsBTC() {
		return nil, fmt.Errorf("chain %q is not a bitcoin network", chain)
	}
	addr, err := btc.PublicKeyAddress(opts.Network, opts.AddressType, key.PubKey())
	if err != nil {
		return nil, fmt.Errorf("parse wallet address: %w", err)
	}
	lock := make(chan struct{}, 1)
	lock <- struct{}{}
	return &Adapter{
		chain:        chain,
		opts:         opts,
		client:       client,
		feeEstimator: estimator,
		key:          key,
		address:      addr,
		logger:       logger.With(zap.String("service", "btc-adapter"), zap.String("chain", string(chain))),
		submitMu:     lock,
	}, nil
}

func (a *Adapter) WalletAddress() btcutil.Address {
	return a.address
}

func (a *Adapter) lock(ctx context.Context) error {
	select {
	case <-a.submitMu:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Adapter) unlock() {
	a.submitMu <- struct{}{}
}

// SignAndSubmit derives the swap's HTLC script, wraps it in a P2WSH address
// and funds it from the wallet. The script timelock is carried back on the
// handle so the escrow can be rebuilt from the durable record alone.
func (a *Adapter) SignAndSubmit(ctx context.Context, desc order.Descriptor, _ adapter.FactoryHandle) (adapter.TxHandle, error) {
	if desc.Algo != secret.SHA256 {
		return adapter.TxHandle{}, adapter.RejectedError{Reason: fmt.Sprintf("bitcoin scripts verify sha256 only, got %q", desc.Algo)}
	}
	if !desc.Amount.IsInt64() || desc.Amount.Int64() <= 0 {
		return adapter.TxHandle{}, adapter.RejectedError{Reason: "amount out of range for bitcoin"}
	}

	waitBlocks := int64(time.Until(desc.Expiry) / blockTime)
	if waitBlocks < 1 {
		return adapter.TxHandle{}, adapter.RejectedError{Reason: "expiry too close for a script timelock"}
	}

	escrow, err := a.escrow(desc.Initiator, desc.Redeemer, desc.SecretHash, waitBlocks)
	if err != nil {
		return adapter.TxHandle{}, adapter.RejectedError{Reason: err.Error()}
	}

	if err := a.lock(ctx); err != nil {
		return adapter.TxHandle{}, err
	}
	defer a.unlock()

	utxos, err := a.client.GetUTXOs(ctx, a.address)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	feeRate, err := a.feeRate()
	if err != nil {
		return adapter.TxHandle{}, err
	}

	recipients := []btc.Recipient{{
		To:     escrow.address.EncodeAddress(),
		Amount: desc.Amount.Int64(),
	}}
	tx, err := btc.BuildTransaction(a.opts.Network, feeRate, btc.NewRawInputs(), utxos, btc.P2wpkhUpdater, recipients, a.address)
	if err != nil {
		return adapter.TxHandle{}, err
	}

	walletScript, err := txscript.PayToAddrScript(a.address)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	fetcher, err := outputFetcher(utxos, walletScript)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	for i, in := range tx.TxIn {
		sigHashes := txscript.NewTxSigHashes(tx, fetcher)
		txOut := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		witness, err := txscript.WitnessSignature(tx, sigHashes, i, txOut.Value, walletScript, txscript.SigHashAll, a.key, true)
		if err != nil {
			return adapter.TxHandle{}, err
		}
		tx.TxIn[i].Witness = witness
	}

	if err := a.client.SubmitTx(ctx, tx); err != nil {
		return adapter.TxHandle{}, err
	}
	a.logger.Info("escrow funded",
		zap.String("escrow", escrow.address.EncodeAddress()),
		zap.String("tx", tx.TxHash().String()),
		zap.Int64("wait-blocks", waitBlocks))

	return adapter.TxHandle{
		Chain: a.chain,
		TxID:  tx.TxHash().String(),
		Escrow: adapter.EscrowHandle{
			Chain:      a.chain,
			Address:    escrow.address.EncodeAddress(),
			OrderID:    strconv.FormatInt(waitBlocks, 10),
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

// QueryStatus reports the raw escrow state from the indexer. Confirmations
// count from the newest confirmed funding UTXO.
func (a *Adapter) QueryStatus(ctx context.Context, handle adapter.TxHandle) (adapter.RawStatus, error) {
	escrow, err := a.escrowFromHandle(handle.Escrow)
	if err != nil {
		return adapter.RawStatus{}, err
	}

	status := adapter.RawStatus{}

	spent, witness, err := a.spendingWitness(ctx, escrow.address)
	if err != nil {
		return adapter.RawStatus{}, err
	}
	if spent {
		if sec := redeemSecret(witness); sec != nil {
			status.Found = true
			status.Redeemed = true
			status.Secret = sec
			return status, nil
		}
		status.Found = true
		status.Refunded = true
		return status, nil
	}

	utxos, err := a.client.GetUTXOs(ctx, escrow.address)
	if err != nil {
		return adapter.RawStatus{}, err
	}
	if len(utxos) == 0 {
		return status, nil
	}
	status.Found = true

	total, fundedHeight := int64(0), uint64(0)
	for _, utxo := range utxos {
		if utxo.Status != nil && utxo.Status.Confirmed {
			total += utxo.Amount
			if utxo.Status.BlockHeight != nil && *utxo.Status.BlockHeight > fundedHeight {
				fundedHeight = *utxo.Status.BlockHeight
			}
		}
	}
	if total >= handle.Escrow.Amount.Int64() {
		status.Funded = true
		tip, err := a.client.GetTipBlockHeight(ctx)
		if err != nil {
			return adapter.RawStatus{}, err
		}
		if tip >= fundedHeight {
			status.Confirmations = tip - fundedHeight + 1
		}
	}
	return status, nil
}

// SubmitSecret spends the escrow through the claim branch, publishing the
// secret in the witness. The adapter key must be the script's redeemer.
func (a *Adapter) SubmitSecret(ctx context.Context, escrowHandle adapter.EscrowHandle, sec []byte) (adapter.TxHandle, error) {
	escrow, err := a.escrowFromHandle(escrowHandle)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	if escrowHandle.Redeemer != a.address.EncodeAddress() {
		return adapter.TxHandle{}, fmt.Errorf("claim requires the redeemer key, wallet holds %s", a.address.EncodeAddress())
	}

	if err := a.lock(ctx); err != nil {
		return adapter.TxHandle{}, err
	}
	defer a.unlock()

	utxos, err := a.client.GetUTXOs(ctx, escrow.address)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	if len(utxos) == 0 {
		return adapter.TxHandle{}, fmt.Errorf("escrow %s holds no funds", escrow.address.EncodeAddress())
	}

	rawInputs := btc.RawInputs{
		VIN:        utxos,
		SegwitSize: len(utxos) * btc.RedeemHtlcRedeemSigScriptSize(len(sec)),
	}
	tx, err := a.spend(ctx, escrow, rawInputs, utxos, a.address.EncodeAddress(), sec, 0)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	return adapter.TxHandle{Chain: a.chain, TxID: tx.TxHash().String(), Escrow: escrowHandle}, nil
}

// SubmitRefund spends the escrow through the timelock branch back to the
// initiator. Callers wait out the expiry; the script enforces it anyway via
// the input sequence.
func (a *Adapter) SubmitRefund(ctx context.Context, escrowHandle adapter.EscrowHandle) (adapter.TxHandle, error) {
	escrow, err := a.escrowFromHandle(escrowHandle)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	if escrowHandle.Initiator != a.address.EncodeAddress() {
		return adapter.TxHandle{}, fmt.Errorf("refund requires the initiator key, wallet holds %s", a.address.EncodeAddress())
	}

	if err := a.lock(ctx); err != nil {
		return adapter.TxHandle{}, err
	}
	defer a.unlock()

	utxos, err := a.client.GetUTXOs(ctx, escrow.address)
	if err != nil {
		return adapter.TxHandle{}, err
	}
	if len(utxos) == 0 {
		return adapter.TxHandle{}, fmt.Errorf("escrow %s holds no funds", escrow.address.EncodeAddress())
	}

	rawInputs := btc.RawInputs{
		VIN:        utxos,
		SegwitSize: len(utxos) * btc.RedeemHtlcRefundSigScriptSize,
	}
	tx, err := a.spend(ctx, escrow, rawInputs, utxos, escrowHandle.Initiator, nil, uint32(escrow.waitBlocks))
	if err != nil {
		return adapter.TxHandle{}, err
	}
	return adapter.TxHandle{Chain: a.chain, TxID: tx.TxHash().String(), Escrow: escrowHandle}, nil
}

// spend builds, signs and broadcasts a transaction draining the escrow to
// target. A non-zero sequence selects the refund branch.
func (a *Adapter) spend(ctx context.Context, escrow *htlcEscrow, rawInputs btc.RawInputs, utxos []btc.UTXO, target string, sec []byte, sequence uint32) (*wire.MsgTx, error) {
	feeRate, err := a.feeRate()
	if err != nil {
		return nil, err
	}
	recipients := []btc.Recipient{{To: target, Amount: 0}}
	tx, err := btc.BuildTransaction(a.opts.Network, feeRate, rawInputs, nil, nil, recipients, nil)
	if err != nil {
		return nil, err
	}

	fromScript, err := txscript.PayToAddrScript(escrow.address)
	if err != nil {
		return nil, err
	}
	fetcher, err := outputFetcher(utxos, fromScript)
	if err != nil {
		return nil, err
	}
	if sequence > 0 {
		for i := range tx.TxIn {
			tx.TxIn[i].Sequence = sequence
		}
	}
	for i, in := range tx.TxIn {
		txOut := fetcher.FetchPrevOutput(in.PreviousOutPoint)
		sig, err := txscript.RawTxInWitnessSignature(tx, txscript.NewTxSigHashes(tx, fetcher), i, txOut.Value, escrow.script, txscript.SigHashAll, a.key)
		if err != nil {
			return nil, err
		}
		tx.TxIn[i].Witness = btc.HtlcWitness(escrow.script, a.key.PubKey().SerializeCompressed(), sig, sec)
	}

	if err := a.client.SubmitTx(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// htlcEscrow is a derived script plus its P2WSH address.
type htlcEscrow struct {
	script     []byte
	address    btcutil.Address
	waitBlocks int64
}

func (a *Adapter) escrow(initiator, redeemer string, secretHash []byte, waitBlocks int64) (*htlcEscrow, error) {
	initiatorAddr, err := btcutil.DecodeAddress(initiator, a.opts.Network)
	if err != nil {
		return nil, fmt.Errorf("decode initiator address: %w", err)
	}
	redeemerAddr, err := btcutil.DecodeAddress(redeemer, a.opts.Network)
	if err != nil {
		return nil, fmt.Errorf("decode redeemer address: %w", err)
	}
	script, err := btc.HtlcScript(initiatorAddr.ScriptAddress(), redeemerAddr.ScriptAddress(), secretHash, waitBlocks)
	if err != nil {
		return nil, err
	}
	addr, err := btc.P2wshAddress(script, a.opts.Network)
	if err != nil {
		return nil, err
	}
	return &htlcEscrow{script: script, address: addr, waitBlocks: waitBlocks}, nil
}

// escrowFromHandle rebuilds the script from the handle and checks it still
// derives the recorded address.
func (a *Adapter) escrowFromHandle(handle adapter.EscrowHandle) (*htlcEscrow, error) {
	waitBlocks, err := strconv.ParseInt(handle.OrderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed script timelock %q: %w", handle.OrderID, err)
	}
	escrow, err := a.escrow(handle.Initiator, handle.Redeemer, handle.SecretHash, waitBlocks)
	if err != nil {
		return nil, err
	}
	if escrow.address.EncodeAddress() != handle.Address {
		return nil, fmt.Errorf("rebuilt escrow address %s does not match record %s",
			escrow.address.EncodeAddress(), handle.Address)
	}
	return escrow, nil
}

// spendingWitness finds a transaction spending from the escrow address and
// returns its witness stack.
func (a *Adapter) spendingWitness(ctx context.Context, escrowAddr btcutil.Address) (bool, []string, error) {
	txs, err := a.client.GetAddressTxs(ctx, escrowAddr, "")
	if err != nil {
		return false, nil, err
	}
	for _, tx := range txs {
		for _, vin := range tx.VINs {
			if vin.Prevout.ScriptPubKeyAddress == escrowAddr.EncodeAddress() && vin.Witness != nil {
				return true, *vin.Witness, nil
			}
		}
	}
	return false, nil, nil
}

// redeemSecret extracts the secret from a claim witness. The claim branch
// carries five items with the secret third; the refund branch carries four.
func redeemSecret(witness []string) []byte {
	if len(witness) != 5 {
		return nil
	}
	sec, err := hex.DecodeString(witness[2])
	if err != nil {
		return nil
	}
	return sec
}

func outputFetcher(utxos []btc.UTXO, script []byte) (*txscript.MultiPrevOutFetcher, error) {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for _, utxo := range utxos {
		hash, err := chainhash.NewHashFromStr(utxo.TxID)
		if err != nil {
			return nil, err
		}
		fetcher.AddPrevOut(wire.OutPoint{
			Hash:  *hash,
			Index: utxo.Vout,
		}, wire.NewTxOut(utxo.Amount, script))
	}
	return fetcher, nil
}

func (a *Adapter) feeRate() (int, error) {
	feeRates, err := a.feeEstimator.FeeSuggestion()
	if err != nil {
		return 0, err
	}
	switch a.opts.FeeTier {
	case "minimum":
		return feeRates.Minimum, nil
	case "economy":
		return feeRates.Economy, nil
	case "low":
		return feeRates.Low, nil
	case "medium":
		return feeRates.Medium, nil
	case "high":
		return feeRates.High, nil
	default:
		return feeRates.High, nil
	}
}
