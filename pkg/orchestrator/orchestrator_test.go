package orchestrator_test

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"path/filepath"
	"sync"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter/adaptertest"
	"github.com/rachelyongies/Lockedin-sub005/pkg/alert"
	"github.com/rachelyongies/Lockedin-sub005/pkg/escrow"
	"github.com/rachelyongies/Lockedin-sub005/pkg/monitor"
	"github.com/rachelyongies/Lockedin-sub005/pkg/orchestrator"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/quote"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	sourceChain      = swap.EthereumLocalnet
	destinationChain = swap.EthereumSepolia

	initiatorAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	recipientAddr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	serviceAddr   = "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixedSigners map[swap.Chain]string

func (s fixedSigners) Address(chain swap.Chain) (string, error) {
	addr, ok := s[chain]
	if !ok {
		return "", fmt.Errorf("no signer for %q", chain)
	}
	return addr, nil
}

// recordingNotifier captures alerts for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []alert.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, a alert.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) kinds() []alert.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]alert.Kind, 0, len(n.alerts))
	for _, a := range n.alerts {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

// failingJournal reads through to its inner journal but drops every mark,
// the way a journal backend outage would.
type failingJournal struct {
	inner orchestrator.Journal
}

func (j failingJournal) Done(action swap.Action, swapID string, side swap.Side) (bool, error) {
	return j.inner.Done(action, swapID, side)
}

func (j failingJournal) Record(swap.Action, string, swap.Side) error {
	return fmt.Errorf("journal backend unavailable")
}

// recordingQuotes captures every priced amount and never returns a quote.
type recordingQuotes struct {
	mu      sync.Mutex
	amounts []*big.Int
}

func (r *recordingQuotes) Quote(_ context.Context, _ quote.Pair, sourceAmount *big.Int) (quote.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.amounts = append(r.amounts, new(big.Int).Set(sourceAmount))
	return quote.Quote{}, quote.ErrNoQuote
}

func (r *recordingQuotes) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.amounts)
}

// harness wires a full orchestrator against two scripted chains.
type harness struct {
	storage  store.Store
	journal  orchestrator.Journal
	vault    *secret.Vault
	clock    *manualClock
	source   *adaptertest.Adapter
	dest     *adaptertest.Adapter
	alerts   *recordingNotifier
	orch     *orchestrator.Orchestrator
	policies monitor.Policies
	quotes   quote.Provider
}

func newHarness(dbPath string, horizon time.Duration) *harness {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	Expect(err).Should(BeNil())
	storage, err := store.NewStore(db)
	Expect(err).Should(BeNil())

	h := &harness{
		storage: storage,
		journal: orchestrator.NewMemoryJournal(),
		clock:   newManualClock(),
		source:  adaptertest.New(sourceChain),
		dest:    adaptertest.New(destinationChain),
		alerts:  &recordingNotifier{},
	}
	h.policies = monitor.Policies{
		sourceChain:      {PollInterval: 2 * time.Millisecond, Confirmations: 1, Horizon: horizon},
		destinationChain: {PollInterval: 2 * time.Millisecond, Confirmations: 1, Horizon: horizon},
	}
	h.vault, err = secret.NewVault([]byte("test harness entropy"))
	Expect(err).Should(BeNil())
	h.build()
	return h
}

// build constructs a fresh orchestrator over the harness' shared state,
// simulating a process (re)start.
func (h *harness) build() {
	registry := adapter.NewRegistry()
	registry.Register(sourceChain, h.source)
	registry.Register(destinationChain, h.dest)

	locator := escrow.NewLocator(escrow.ConfigSource{
		sourceChain:      "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		destinationChain: "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512",
	}, time.Minute)

	policy := order.TimelockPolicy{MinMargin: 10 * time.Minute, DestinationDivisor: 2}
	builder := order.NewBuilder(policy)
	logger := zap.NewNop()

	quotes := h.quotes
	if quotes == nil {
		quotes = quote.NewFixedProvider().SetRate(quote.Pair{
			SourceChain:      sourceChain,
			DestinationChain: destinationChain,
			SourceAsset:      swap.Primary,
			DestinationAsset: swap.Primary,
		}, quote.Rate{Num: big.NewInt(1), Denom: big.NewInt(1)})
	}

	orch, err := orchestrator.New(
		orchestrator.Config{
			Policy:           policy,
			RetryInterval:    2 * time.Millisecond,
			MaxRetryInterval: 10 * time.Millisecond,
			AlertThreshold:   3,
		},
		h.storage,
		builder,
		registry,
		escrow.NewSubmitter(registry, locator, logger),
		monitor.NewWatcher(registry, h.policies, h.clock, logger),
		h.journal,
		h.vault,
		quotes,
		fixedSigners{sourceChain: serviceAddr, destinationChain: serviceAddr},
		h.alerts,
		h.clock,
		logger,
	)
	Expect(err).Should(BeNil())
	h.orch = orch
}

func (h *harness) intent() swap.Intent {
	return swap.Intent{
		SourceChain:      sourceChain,
		DestinationChain: destinationChain,
		SourceAsset:      swap.Primary,
		DestinationAsset: swap.Primary,
		Amount:           big.NewInt(100),
		Initiator:        initiatorAddr,
		Recipient:        recipientAddr,
		Timelock:         time.Hour,
	}
}

func (h *harness) state(swapID string) func() swap.State {
	return func() swap.State {
		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		return record.State
	}
}

func (h *harness) waitState(swapID string, want swap.State) {
	Eventually(h.state(swapID), 5*time.Second, 2*time.Millisecond).Should(Equal(want))
}

var _ = Describe("Orchestrator", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness(filepath.Join(GinkgoT().TempDir(), "swaps.db"), 48*time.Hour)
	})

	AfterEach(func() {
		h.orch.Stop()
	})

	It("should complete the happy path destination-first", func() {
		By("submitting the intent")
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		By("locking the source escrow")
		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateSourceLocked)

		By("locking the destination escrow")
		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.dest.ConfirmLatest(1)

		By("revealing and completing")
		h.waitState(swapID, swap.StateCompleted)

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.RevealStarted).Should(BeTrue())
		Expect(record.CompletedAt).ShouldNot(BeNil())

		By("checking the invariants")
		srcEsc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		dstEsc, err := h.storage.Escrow(swapID, swap.SideDestination)
		Expect(err).Should(BeNil())

		// identical commitment hashes, strictly ordered expiries
		Expect(dstEsc.SecretHash).Should(Equal(srcEsc.SecretHash))
		Expect(dstEsc.Expiry.Before(srcEsc.Expiry)).Should(BeTrue())

		// the same secret reached both chains and matches the commitment
		dstSecret := h.dest.RevealedSecret(dstEsc.EscrowAddress)
		srcSecret := h.source.RevealedSecret(srcEsc.EscrowAddress)
		Expect(dstSecret).ShouldNot(BeEmpty())
		Expect(dstSecret).Should(Equal(srcSecret))
		ok, err := secret.Verify(record.DigestAlgo, dstSecret, mustHex(record.SecretHash))
		Expect(err).Should(BeNil())
		Expect(ok).Should(BeTrue())

		Expect(srcEsc.Status).Should(Equal(swap.EscrowRevealed))
		Expect(dstEsc.Status).Should(Equal(swap.EscrowRevealed))
	})

	It("should fail cleanly when the source submission is rejected", func() {
		h.source.FailNextSubmit(adapter.RejectedError{Reason: "insufficient funds"})

		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		h.waitState(swapID, swap.StateFailed)
		Expect(h.source.Submitted()).Should(BeEmpty())
		Expect(h.dest.Submitted()).Should(BeEmpty())

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.LastError).ShouldNot(BeEmpty())
	})

	It("should refund the source when the destination is permanently rejected", func() {
		h.dest.FailNextSubmit(
			adapter.RejectedError{Reason: "nonce conflict"},
		)

		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)

		By("routing to the refund path, not Failed")
		h.waitState(swapID, swap.StateExpired)

		By("waiting out the source timelock")
		srcEsc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		h.clock.Advance(srcEsc.Expiry.Sub(h.clock.Now()) + time.Minute)

		h.waitState(swapID, swap.StateRefunded)
		Expect(h.source.Refunded(refreshEscrow(h, swapID, swap.SideSource).EscrowAddress)).Should(BeTrue())

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.RevealStarted).Should(BeFalse())
	})

	It("should refund when the destination escrow never locks", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)

		By("letting the destination submission through but never confirming it")
		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState(swapID, swap.StateDestinationEscrowSubmitted)

		By("crossing the destination timelock")
		dstEsc, err := h.storage.Escrow(swapID, swap.SideDestination)
		Expect(err).Should(BeNil())
		h.clock.Advance(dstEsc.Expiry.Sub(h.clock.Now()) + time.Minute)

		h.waitState(swapID, swap.StateExpired)

		By("crossing the source timelock and refunding")
		srcEsc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		h.clock.Advance(srcEsc.Expiry.Sub(h.clock.Now()) + time.Minute)

		h.waitState(swapID, swap.StateRefunded)

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.State).ShouldNot(Equal(swap.StateCompleted))
	})

	It("should retry the source reveal forever and never refund once revealed", func() {
		h.source.FailNextSecret(
			fmt.Errorf("rpc timeout"), fmt.Errorf("rpc timeout"), fmt.Errorf("rpc timeout"),
			fmt.Errorf("rpc timeout"), fmt.Errorf("rpc timeout"),
		)

		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)
		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.dest.ConfirmLatest(1)

		By("completing despite five source-side failures")
		h.waitState(swapID, swap.StateCompleted)

		Expect(h.alerts.kinds()).Should(ContainElement(alert.KindRevealStuck))

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.State).Should(Equal(swap.StateCompleted))
		Expect(record.RevealStarted).Should(BeTrue())
	})

	It("should honor cancellation before any submission", func() {
		record := &store.Swap{
			SwapID:            "cancel-early",
			State:             swap.StateInitiated,
			SourceChain:       sourceChain,
			DestinationChain:  destinationChain,
			SourceAsset:       swap.Primary,
			DestinationAsset:  swap.Primary,
			SourceAmount:      "100",
			DestinationAmount: "100",
			Initiator:         initiatorAddr,
			Recipient:         recipientAddr,
			TimelockSeconds:   3600,
			DigestAlgo:        secret.SHA256,
			SecretHash:        "deadbeef",
			CancelRequested:   true,
		}
		Expect(h.storage.CreateSwap(record)).Should(Succeed())

		Expect(h.orch.Start()).Should(Succeed())
		h.waitState("cancel-early", swap.StateCancelled)
		Expect(h.source.Submitted()).Should(BeEmpty())
	})

	It("should drive a post-cancel source lock through the refund path", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState(swapID, swap.StateSourceEscrowSubmitted)

		By("cancelling while the source escrow is still unconfirmed")
		Expect(h.orch.Cancel(swapID, initiatorAddr)).Should(Succeed())

		By("confirming the source lock anyway")
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateExpired)
		Expect(h.dest.Submitted()).Should(BeEmpty())

		By("crossing the source timelock and refunding")
		srcEsc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		h.clock.Advance(srcEsc.Expiry.Sub(h.clock.Now()) + time.Minute)

		h.waitState(swapID, swap.StateRefunded)
	})

	It("should reject cancellation once funds may be locked", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateSourceLocked)

		err = h.orch.Cancel(swapID, initiatorAddr)
		Expect(err).Should(MatchError(orchestrator.ErrNotCancellable))
	})

	It("should reject cancellation by anyone but the initiator", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		err = h.orch.Cancel(swapID, recipientAddr)
		Expect(err).Should(MatchError(orchestrator.ErrNotInitiator))
	})

	It("should resume a swap across a restart without duplicate submissions", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateSourceLocked)

		By("stopping the process mid-swap")
		h.orch.Stop()

		By("starting a fresh orchestrator over the same store and journal")
		h.build()
		Expect(h.orch.Start()).Should(Succeed())

		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.dest.ConfirmLatest(1)
		h.waitState(swapID, swap.StateCompleted)

		// exactly one submission per side across both processes
		Expect(h.source.Submitted()).Should(HaveLen(1))
		Expect(h.dest.Submitted()).Should(HaveLen(1))
	})

	It("should settle as refunded when the initiator claims the timelock branch mid-wait", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState(swapID, swap.StateSourceEscrowSubmitted)

		By("spending the timelock branch out from under the daemon")
		h.source.RefundLatest()

		h.waitState(swapID, swap.StateRefunded)
		Expect(h.dest.Submitted()).Should(BeEmpty())

		esc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		Expect(esc.Status).Should(Equal(swap.EscrowRefunded))
	})

	It("should pick up an early reveal and finish without ever refunding", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState(swapID, swap.StateSourceEscrowSubmitted)

		By("observing a redeem before the lock confirmation")
		h.source.RedeemLatest([]byte("observed-on-chain"))

		By("locking the destination and completing")
		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.dest.ConfirmLatest(1)
		h.waitState(swapID, swap.StateCompleted)

		record, err := h.storage.SwapByID(swapID)
		Expect(err).Should(BeNil())
		Expect(record.RevealStarted).Should(BeTrue())

		// the already-spent source escrow saw neither a reveal nor a refund
		esc, err := h.storage.Escrow(swapID, swap.SideSource)
		Expect(err).Should(BeNil())
		Expect(h.source.RevealedSecret(esc.EscrowAddress)).Should(BeNil())
		Expect(h.source.Refunded(esc.EscrowAddress)).Should(BeFalse())
	})

	It("should recover the broadcast from the store when journal writes fail", func() {
		h.journal = failingJournal{inner: h.journal}
		h.build()

		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())
		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState(swapID, swap.StateSourceEscrowSubmitted)

		By("rewinding the record to before the state transition landed")
		h.orch.Stop()
		Expect(h.storage.UpdateState(swapID, swap.StateSourceEscrowSubmitted, swap.StateInitiated)).Should(Succeed())

		By("resuming over the same store with an empty journal")
		h.build()
		Expect(h.orch.Start()).Should(Succeed())

		h.waitState(swapID, swap.StateSourceEscrowSubmitted)
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateSourceLocked)

		// the stored identifiers stand in for the missing journal marks
		Expect(h.source.Submitted()).Should(HaveLen(1))
	})

	It("should skip the quote refresh when the stored amount is unreadable", func() {
		quotes := &recordingQuotes{}
		h.quotes = quotes
		h.build()

		now := h.clock.Now()
		record := &store.Swap{
			SwapID:            "corrupt-amount",
			State:             swap.StateSourceLocked,
			SourceChain:       sourceChain,
			DestinationChain:  destinationChain,
			SourceAsset:       swap.Primary,
			DestinationAsset:  swap.Primary,
			SourceAmount:      "not-a-number",
			DestinationAmount: "100",
			Initiator:         initiatorAddr,
			Recipient:         recipientAddr,
			TimelockSeconds:   3600,
			DigestAlgo:        secret.SHA256,
			SecretHash:        "deadbeef",
		}
		Expect(h.storage.CreateSwap(record)).Should(Succeed())
		Expect(h.storage.PutEscrow(&store.Escrow{
			SwapID:         "corrupt-amount",
			Side:           swap.SideSource,
			Chain:          sourceChain,
			Asset:          swap.Primary,
			Amount:         "100",
			SecretHash:     "deadbeef",
			Initiator:      initiatorAddr,
			Redeemer:       serviceAddr,
			Expiry:         now.Add(time.Hour),
			Status:         swap.EscrowLocked,
			InitiateTxHash: "0xabc",
		})).Should(Succeed())

		Expect(h.orch.Start()).Should(Succeed())

		Eventually(func() int { return len(h.dest.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.waitState("corrupt-amount", swap.StateDestinationEscrowSubmitted)
		Expect(quotes.calls()).Should(BeZero())
	})

	It("should refuse a second worker for the same swap", func() {
		swapID, err := h.orch.Submit(context.Background(), h.intent())
		Expect(err).Should(BeNil())

		// resuming while the original worker still runs must not double up
		Expect(h.orch.Start()).Should(Succeed())

		Eventually(func() int { return len(h.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h.source.ConfirmLatest(1)
		h.waitState(swapID, swap.StateSourceLocked)
		Expect(h.source.Submitted()).Should(HaveLen(1))
	})

	It("should alert on a monitoring timeout without moving the swap", func() {
		h2 := newHarness(filepath.Join(GinkgoT().TempDir(), "swaps2.db"), 30*time.Minute)
		defer h2.orch.Stop()

		swapID, err := h2.orch.Submit(context.Background(), h2.intent())
		Expect(err).Should(BeNil())
		Eventually(func() int { return len(h2.source.Submitted()) }, 5*time.Second).Should(Equal(1))
		h2.waitState(swapID, swap.StateSourceEscrowSubmitted)

		// never confirmed; cross the horizon but not the timelock
		h2.clock.Advance(31 * time.Minute)

		Eventually(h2.alerts.kinds, 5*time.Second).Should(ContainElement(alert.KindMonitorTimeout))
		Expect(h2.state(swapID)()).Should(Equal(swap.StateSourceEscrowSubmitted))
	})

	It("should reject malformed intents before touching any chain", func() {
		intent := h.intent()
		intent.Amount = big.NewInt(0)
		_, err := h.orch.Submit(context.Background(), intent)
		Expect(err).Should(MatchError(order.ErrInvalidAmount))

		intent = h.intent()
		intent.Timelock = time.Minute
		_, err = h.orch.Submit(context.Background(), intent)
		Expect(err).Should(MatchError(order.ErrTimelockTooSoon))

		Expect(h.source.Submitted()).Should(BeEmpty())
	})
})

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	Expect(err).Should(BeNil())
	return b
}

func refreshEscrow(h *harness, swapID string, side swap.Side) store.Escrow {
	esc, err := h.storage.Escrow(swapID, side)
	Expect(err).Should(BeNil())
	return esc
}
