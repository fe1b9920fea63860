package monitor_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter"
	"github.com/rachelyongies/Lockedin-sub005/pkg/adapter/adaptertest"
	"github.com/rachelyongies/Lockedin-sub005/pkg/monitor"
	"github.com/rachelyongies/Lockedin-sub005/pkg/order"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// manualClock is a settable trusted time source.
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

var _ = Describe("Watcher", func() {
	var (
		fake    *adaptertest.Adapter
		clock   *manualClock
		watcher *monitor.Watcher
		handle  adapter.TxHandle
	)

	submit := func(expiry time.Duration) adapter.TxHandle {
		material, err := secret.Generate(secret.SHA256)
		Expect(err).Should(BeNil())
		desc := order.Descriptor{
			OrderID:    "order-1",
			SwapID:     "swap-1",
			Side:       swap.SideSource,
			Chain:      swap.EthereumLocalnet,
			Asset:      swap.Primary,
			Amount:     big.NewInt(100),
			SecretHash: material.Hash,
			Algo:       secret.SHA256,
			Initiator:  "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
			Redeemer:   "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			Expiry:     clock.Now().Add(expiry),
		}
		h, err := fake.SignAndSubmit(context.Background(), desc, adapter.FactoryHandle{})
		Expect(err).Should(BeNil())
		return h
	}

	BeforeEach(func() {
		fake = adaptertest.New(swap.EthereumLocalnet)
		clock = newManualClock()
		registry := adapter.NewRegistry()
		registry.Register(swap.EthereumLocalnet, fake)
		watcher = monitor.NewWatcher(registry, monitor.Policies{
			swap.EthereumLocalnet: {
				PollInterval:  5 * time.Millisecond,
				Confirmations: 3,
				Horizon:       time.Hour,
			},
		}, clock, zap.NewNop())
		handle = submit(time.Hour)
	})

	It("should emit Locked only once the confirmation depth is reached", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := watcher.Watch(ctx, handle)

		Consistently(events, 50*time.Millisecond).ShouldNot(Receive())

		fake.Confirm(handle, 1)
		Consistently(events, 50*time.Millisecond).ShouldNot(Receive())

		fake.Confirm(handle, 3)
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowLocked))
	})

	It("should emit Revealed with the observed secret", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := watcher.Watch(ctx, handle)

		fake.Confirm(handle, 3)
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowLocked))

		sec := []byte("0123456789abcdef0123456789abcdef")
		_, err := fake.SubmitSecret(context.Background(), handle.Escrow, sec)
		Expect(err).Should(BeNil())

		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowRevealed))
		Expect(ev.Secret).Should(Equal(sec))

		// terminal status ends the watch
		Eventually(events, time.Second).Should(BeClosed())
	})

	It("should not surface transient poll failures", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		fake.FailQueries(5)
		events := watcher.Watch(ctx, handle)

		fake.Confirm(handle, 3)
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowLocked))
	})

	It("should emit Failed on an unambiguous on-chain rejection", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := watcher.Watch(ctx, handle)

		fake.Reject(handle, "nonce conflict")
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowFailed))
		Expect(ev.Err).Should(BeNil())
		Eventually(events, time.Second).Should(BeClosed())
	})

	It("should emit Expired when the trusted clock crosses the timelock", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := watcher.Watch(ctx, handle)

		fake.Confirm(handle, 3)
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowLocked))

		clock.Advance(61 * time.Minute)
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowExpired))
	})

	It("should surface a monitoring timeout at the horizon", func() {
		// never funded, expiry far beyond the horizon
		far := submit(48 * time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		events := watcher.Watch(ctx, far)

		clock.Advance(2 * time.Hour)
		var ev monitor.Event
		Eventually(events, time.Second).Should(Receive(&ev))
		Expect(ev.Status).Should(Equal(swap.EscrowFailed))
		Expect(ev.Err).Should(MatchError(monitor.ErrMonitoringTimeout))
	})

	It("should stop when the owning context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		events := watcher.Watch(ctx, handle)
		cancel()
		Eventually(events, time.Second).Should(BeClosed())
	})
})
