package rpcclient_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpc"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpcclient"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type staticCore struct{ storage store.Store }

func (c staticCore) Submit(context.Context, swap.Intent) (string, error) {
	return "", fmt.Errorf("not supported over the operator endpoint")
}

func (c staticCore) Cancel(string, string) error {
	return fmt.Errorf("not supported over the operator endpoint")
}

func (c staticCore) Status(swapID string) (store.Swap, error) {
	return c.storage.SwapByID(swapID)
}

type staticSigners map[swap.Chain]string

func (s staticSigners) Address(chain swap.Chain) (string, error) {
	return s[chain], nil
}

var _ = Describe("Client", Ordered, func() {
	var (
		c      rpcclient.Client
		server string
	)

	BeforeAll(func() {
		db, err := gorm.Open(sqlite.Open(filepath.Join(GinkgoT().TempDir(), "client.db")), &gorm.Config{})
		Expect(err).Should(BeNil())
		storage, err := store.NewStore(db)
		Expect(err).Should(BeNil())
		Expect(storage.CreateSwap(&store.Swap{
			SwapID:           "swap-1",
			State:            swap.StateCompleted,
			SourceChain:      swap.BitcoinRegtest,
			DestinationChain: swap.EthereumLocalnet,
			SourceAsset:      swap.Primary,
			DestinationAsset: swap.Primary,
			SourceAmount:     "100000",
			Initiator:        "0x0000000000000000000000000000000000000001",
		})).Should(BeNil())

		signers := staticSigners{swap.EthereumLocalnet: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"}
		srv, err := rpc.NewServer(rpc.Config{
			User:      "admin",
			Pass:      "pass",
			JWTSecret: "client test secret",
		}, staticCore{storage: storage}, storage, signers, []swap.Chain{swap.EthereumLocalnet}, zap.NewNop())
		Expect(err).Should(BeNil())

		gin.SetMode(gin.TestMode)
		router := gin.New()
		srv.Attach(router)
		ts := httptest.NewServer(router)
		DeferCleanup(ts.Close)

		server = strings.TrimPrefix(ts.URL, "http://")
		c = rpcclient.NewClient("admin", "pass", "http", server)
	})

	It("checks daemon health", func() {
		resp, err := c.Health()
		Expect(err).Should(BeNil())
		Expect(string(resp)).Should(ContainSubstring("ok"))
	})

	It("fetches settlement addresses", func() {
		addrs, err := c.Addresses()
		Expect(err).Should(BeNil())
		Expect(addrs[swap.EthereumLocalnet]).Should(Equal("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"))
	})

	It("lists swaps with a state filter", func() {
		views, err := c.ListSwaps(swap.StateCompleted)
		Expect(err).Should(BeNil())
		Expect(views).Should(HaveLen(1))
		Expect(views[0].SwapID).Should(Equal("swap-1"))

		views, err = c.ListSwaps(swap.StateFailed)
		Expect(err).Should(BeNil())
		Expect(views).Should(BeEmpty())
	})

	It("fetches a single swap", func() {
		view, err := c.SwapStatus("swap-1")
		Expect(err).Should(BeNil())
		Expect(view.State).Should(Equal(swap.StateCompleted))
	})

	It("surfaces wrong credentials as an error", func() {
		bad := rpcclient.NewClient("admin", "wrong", "http", server)
		_, err := bad.Health()
		Expect(err).ShouldNot(BeNil())
	})
})
