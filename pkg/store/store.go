package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"gorm.io/gorm"
)

var (
	// ErrStateConflict means a guarded transition found the record in a
	// different state than expected, or a refund was attempted after the
	// secret reveal had started.
	ErrStateConflict = errors.New("swap state conflict")

	ErrNotFound = errors.New("swap not found")
)

// Swap is the durable record of one cross-chain swap. Records are created
// before the first chain submission and never deleted; terminal states keep
// the full audit trail queryable.
type Swap struct {
	gorm.Model

	SwapID string     `gorm:"uniqueIndex"`
	State  swap.State `gorm:"index"`

	SourceChain      swap.Chain
	DestinationChain swap.Chain
	SourceAsset      swap.Asset
	DestinationAsset swap.Asset

	// Amounts are decimal strings, big.Int does not survive SQL columns.
	SourceAmount      string
	DestinationAmount string

	Initiator string `gorm:"index"`
	Recipient string

	TimelockSeconds int64
	DigestAlgo      secret.Algo
	SecretHash      string `gorm:"index"`
	SealedSecret    string

	RevealStarted   bool
	CancelRequested bool
	LastError       string

	SourceLockedAt      *time.Time
	DestinationLockedAt *time.Time
	RevealedAt          *time.Time
	RefundedAt          *time.Time
	CompletedAt         *time.Time
}

// Escrow is the durable record of a single on-chain escrow. Status moves
// only through monitor-observed transitions; rows are never deleted.
type Escrow struct {
	gorm.Model

	SwapID string    `gorm:"index:,composite:swap_side"`
	Side   swap.Side `gorm:"index:,composite:swap_side"`

	Chain         swap.Chain
	Asset         swap.Asset
	Amount        string
	EscrowAddress string
	OrderID       string
	SecretHash    string
	Initiator     string
	Redeemer      string
	Expiry        time.Time
	Status        swap.EscrowStatus

	InitiateTxHash string
	RedeemTxHash   string
	RefundTxHash   string
}

type Store interface {
	// CreateSwap persists a new record. The record must already carry its
	// sealed secret; this happens before any chain submission.
	CreateSwap(s *Swap) error

	SwapByID(swapID string) (Swap, error)

	SwapBySecretHash(secretHash string) (Swap, error)

	// Swaps lists records filtered by state, newest first. No states means
	// all records.
	Swaps(states ...swap.State) ([]Swap, error)

	SwapsByInitiator(initiator string) ([]Swap, error)

	// SwapsByParty matches either side of the swap. Address casing is not
	// significant; EVM checksums vary by client.
	SwapsByParty(address string) ([]Swap, error)

	// ActiveSwaps returns every non-terminal record, used to resume work
	// after a restart.
	ActiveSwaps() ([]Swap, error)

	// UpdateState performs the guarded transition from -> to. It fails with
	// ErrStateConflict if the record is not in the expected state, and
	// refuses refund-family targets once the reveal has started.
	UpdateState(swapID string, from, to swap.State) error

	// MarkRevealStarted sets the sticky reveal flag. After this no refund
	// transition will ever be accepted for the swap.
	MarkRevealStarted(swapID string) error

	RequestCancel(swapID string) error

	PutError(swapID string, cause error) error

	PutEscrow(e *Escrow) error

	Escrow(swapID string, side swap.Side) (Escrow, error)

	EscrowsBySwap(swapID string) ([]Escrow, error)

	UpdateEscrowStatus(id uint, status swap.EscrowStatus) error

	// UpdateEscrowSubmitted fills in the chain-assigned identifiers once
	// the creation transaction is broadcast.
	UpdateEscrowSubmitted(id uint, escrowAddress, orderID, txHash string) error

	UpdateEscrowTx(id uint, action swap.Action, txHash string) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&Swap{}, &Escrow{}); err != nil {
		return nil, err
	}

	// Set max connections
	sqlDb, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDb.SetMaxIdleConns(5)
	sqlDb.SetMaxOpenConns(5)
	sqlDb.SetConnMaxIdleTime(10 * time.Minute)
	return &store{db: db}, nil
}

func (store *store) CreateSwap(s *Swap) error {
	return store.db.Create(s).Error
}

func (store *store) SwapByID(swapID string) (Swap, error) {
	var s Swap
	err := store.db.Where("swap_id = ?", swapID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, ErrNotFound
	}
	return s, err
}

func (store *store) SwapBySecretHash(secretHash string) (Swap, error) {
	var s Swap
	err := store.db.Where("secret_hash = ?", secretHash).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s, ErrNotFound
	}
	return s, err
}

func (store *store) Swaps(states ...swap.State) ([]Swap, error) {
	var swaps []Swap
	query := store.db.Order("created_at DESC")
	if len(states) > 0 {
		query = query.Where("state IN ?", states)
	}
	err := query.Find(&swaps).Error
	return swaps, err
}

func (store *store) SwapsByInitiator(initiator string) ([]Swap, error) {
	var swaps []Swap
	err := store.db.Where("initiator = ?", initiator).Order("created_at DESC").Find(&swaps).Error
	return swaps, err
}

func (store *store) SwapsByParty(address string) ([]Swap, error) {
	var swaps []Swap
	err := store.db.
		Where("LOWER(initiator) = LOWER(?) OR LOWER(recipient) = LOWER(?)", address, address).
		Order("created_at DESC").Find(&swaps).Error
	return swaps, err
}

var terminalStates = []swap.State{
	swap.StateCompleted, swap.StateRefunded, swap.StateCancelled, swap.StateFailed,
}

func (store *store) ActiveSwaps() ([]Swap, error) {
	var swaps []Swap
	err := store.db.Where("state NOT IN ?", terminalStates).Order("created_at ASC").Find(&swaps).Error
	return swaps, err
}

func refundFamily(state swap.State) bool {
	switch state {
	case swap.StateExpired, swap.StateRefundSubmitted, swap.StateRefunded:
		return true
	}
	return false
}

func (store *store) UpdateState(swapID string, from, to swap.State) error {
	updates := map[string]interface{}{"state": to}
	now := time.Now().UTC()
	switch to {
	case swap.StateSourceLocked:
		updates["source_locked_at"] = &now
	case swap.StateDestinationLocked:
		updates["destination_locked_at"] = &now
	case swap.StateRefunded:
		updates["refunded_at"] = &now
	case swap.StateCompleted:
		updates["completed_at"] = &now
	}

	query := store.db.Model(&Swap{}).Where("swap_id = ? AND state = ?", swapID, from)
	if refundFamily(to) {
		query = query.Where("reveal_started = ?", false)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s -> %s", ErrStateConflict, from, to)
	}
	return nil
}

func (store *store) MarkRevealStarted(swapID string) error {
	now := time.Now().UTC()
	res := store.db.Model(&Swap{}).Where("swap_id = ?", swapID).
		Updates(map[string]interface{}{"reveal_started": true, "revealed_at": &now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (store *store) RequestCancel(swapID string) error {
	res := store.db.Model(&Swap{}).Where("swap_id = ?", swapID).Update("cancel_requested", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (store *store) PutError(swapID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return store.db.Model(&Swap{}).Where("swap_id = ?", swapID).Update("last_error", msg).Error
}

func (store *store) PutEscrow(e *Escrow) error {
	return store.db.Create(e).Error
}

func (store *store) Escrow(swapID string, side swap.Side) (Escrow, error) {
	var e Escrow
	err := store.db.Where("swap_id = ? AND side = ?", swapID, side).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return e, ErrNotFound
	}
	return e, err
}

func (store *store) EscrowsBySwap(swapID string) ([]Escrow, error) {
	var escrows []Escrow
	err := store.db.Where("swap_id = ?", swapID).Order("id ASC").Find(&escrows).Error
	return escrows, err
}

func (store *store) UpdateEscrowStatus(id uint, status swap.EscrowStatus) error {
	return store.db.Model(&Escrow{}).Where("id = ?", id).Update("status", status).Error
}

func (store *store) UpdateEscrowSubmitted(id uint, escrowAddress, orderID, txHash string) error {
	return store.db.Model(&Escrow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"escrow_address":   escrowAddress,
		"order_id":         orderID,
		"initiate_tx_hash": txHash,
	}).Error
}

func (store *store) UpdateEscrowTx(id uint, action swap.Action, txHash string) error {
	query := store.db.Model(&Escrow{}).Where("id = ?", id)
	switch action {
	case swap.ActionInitiate:
		return query.Update("initiate_tx_hash", txHash).Error
	case swap.ActionRedeem:
		return query.Update("redeem_tx_hash", txHash).Error
	case swap.ActionRefund:
		return query.Update("refund_tx_hash", txHash).Error
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
