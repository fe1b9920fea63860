package rpc_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rachelyongies/Lockedin-sub005/pkg/rpc"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/spruceid/siwe-go"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fakeCore records submissions in the shared store so the list and status
// methods observe them the way the real orchestrator's storage would.
type fakeCore struct {
	mu      sync.Mutex
	storage store.Store
	seq     int
	intents []swap.Intent
}

func (c *fakeCore) Submit(_ context.Context, intent swap.Intent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.intents = append(c.intents, intent)
	swapID := fmt.Sprintf("swap-%d", c.seq)
	record := &store.Swap{
		SwapID:           swapID,
		State:            swap.StateInitiated,
		SourceChain:      intent.SourceChain,
		DestinationChain: intent.DestinationChain,
		SourceAsset:      intent.SourceAsset,
		DestinationAsset: intent.DestinationAsset,
		SourceAmount:     intent.Amount.String(),
		Initiator:        intent.Initiator,
		Recipient:        intent.RecipientOrInitiator(),
	}
	if err := c.storage.CreateSwap(record); err != nil {
		return "", err
	}
	return swapID, nil
}

func (c *fakeCore) Cancel(swapID, initiator string) error {
	record, err := c.storage.SwapByID(swapID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(record.Initiator, initiator) {
		return fmt.Errorf("only the initiator may cancel")
	}
	return nil
}

func (c *fakeCore) Status(swapID string) (store.Swap, error) {
	return c.storage.SwapByID(swapID)
}

type fixedSigners map[swap.Chain]string

func (s fixedSigners) Address(chain swap.Chain) (string, error) {
	addr, ok := s[chain]
	if !ok {
		return "", fmt.Errorf("no signer for %s", chain)
	}
	return addr, nil
}

var _ = Describe("RPC server", Ordered, func() {
	var (
		ts      *httptest.Server
		core    *fakeCore
		storage store.Store
		cfg     = rpc.Config{
			User:      "operator",
			Pass:      "s3cret",
			JWTSecret: "test jwt secret",
		}
		signers = fixedSigners{
			swap.EthereumLocalnet: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
			swap.BitcoinRegtest:   "bcrt1qw508d6qejxtdg4y5r3zarvary0c5xw7kygt080",
		}
	)

	BeforeAll(func() {
		db, err := gorm.Open(sqlite.Open(filepath.Join(GinkgoT().TempDir(), "rpc.db")), &gorm.Config{})
		Expect(err).Should(BeNil())
		storage, err = store.NewStore(db)
		Expect(err).Should(BeNil())
		core = &fakeCore{storage: storage}

		chains := []swap.Chain{swap.EthereumLocalnet, swap.BitcoinRegtest}
		server, err := rpc.NewServer(cfg, core, storage, signers, chains, zap.NewNop())
		Expect(err).Should(BeNil())

		gin.SetMode(gin.TestMode)
		router := gin.New()
		server.Attach(router)
		ts = httptest.NewServer(router)
		DeferCleanup(ts.Close)
	})

	call := func(path, authorization string, req rpc.Request) (rpc.Response, int) {
		body, err := json.Marshal(req)
		Expect(err).Should(BeNil())
		httpReq, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader(body))
		Expect(err).Should(BeNil())
		httpReq.Header.Set("Content-Type", "application/json")
		if authorization != "" {
			httpReq.Header.Set("Authorization", authorization)
		}
		httpResp, err := http.DefaultClient.Do(httpReq)
		Expect(err).Should(BeNil())
		defer httpResp.Body.Close()

		resp := rpc.Response{}
		Expect(json.NewDecoder(httpResp.Body).Decode(&resp)).Should(BeNil())
		return resp, httpResp.StatusCode
	}

	operatorAuth := func() string {
		req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
		Expect(err).Should(BeNil())
		req.SetBasicAuth(cfg.User, cfg.Pass)
		return req.Header.Get("Authorization")
	}

	login := func(key *ecdsa.PrivateKey) string {
		By("fetching a nonce")
		nonceResp, err := http.Get(ts.URL + "/nonce")
		Expect(err).Should(BeNil())
		defer nonceResp.Body.Close()
		nonceBody := struct {
			Nonce string `json:"nonce"`
		}{}
		Expect(json.NewDecoder(nonceResp.Body).Decode(&nonceBody)).Should(BeNil())
		Expect(nonceBody.Nonce).ShouldNot(BeEmpty())

		By("signing a sign-in message over the nonce")
		addr := crypto.PubkeyToAddress(key.PublicKey)
		message, err := siwe.InitMessage("localhost", addr.Hex(), "https://localhost/login", nonceBody.Nonce, map[string]interface{}{})
		Expect(err).Should(BeNil())
		messageStr := message.String()
		sig, err := crypto.Sign(accounts.TextHash([]byte(messageStr)), key)
		Expect(err).Should(BeNil())
		sig[64] += 27

		By("exchanging the signature for a token")
		body, err := json.Marshal(map[string]string{
			"message":   messageStr,
			"signature": hexutil.Encode(sig),
		})
		Expect(err).Should(BeNil())
		verifyResp, err := http.Post(ts.URL+"/verify", "application/json", bytes.NewReader(body))
		Expect(err).Should(BeNil())
		defer verifyResp.Body.Close()
		Expect(verifyResp.StatusCode).Should(Equal(http.StatusOK))
		verifyBody := struct {
			Token string `json:"token"`
		}{}
		Expect(json.NewDecoder(verifyResp.Body).Decode(&verifyBody)).Should(BeNil())
		Expect(verifyBody.Token).ShouldNot(BeEmpty())
		return "Bearer " + verifyBody.Token
	}

	Describe("operator endpoint", func() {
		It("rejects requests without credentials", func() {
			_, status := call("/", "", rpc.Request{Version: "2.0", ID: 1, Method: "health"})
			Expect(status).Should(Equal(http.StatusUnauthorized))
		})

		It("rejects wrong credentials", func() {
			req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
			Expect(err).Should(BeNil())
			req.SetBasicAuth("operator", "wrong")
			_, status := call("/", req.Header.Get("Authorization"), rpc.Request{Version: "2.0", ID: 1, Method: "health"})
			Expect(status).Should(Equal(http.StatusUnauthorized))
		})

		It("answers health checks", func() {
			resp, status := call("/", operatorAuth(), rpc.Request{Version: "2.0", ID: 1, Method: "health"})
			Expect(status).Should(Equal(http.StatusOK))
			Expect(resp.Error).Should(BeNil())
			Expect(string(resp.Result)).Should(ContainSubstring("ok"))
		})

		It("reports the service settlement addresses", func() {
			resp, status := call("/", operatorAuth(), rpc.Request{Version: "2.0", ID: 2, Method: "addresses"})
			Expect(status).Should(Equal(http.StatusOK))
			addrs := map[swap.Chain]string{}
			Expect(json.Unmarshal(resp.Result, &addrs)).Should(BeNil())
			Expect(addrs[swap.EthereumLocalnet]).Should(Equal(signers[swap.EthereumLocalnet]))
			Expect(addrs[swap.BitcoinRegtest]).Should(Equal(signers[swap.BitcoinRegtest]))
		})

		It("rejects unknown methods", func() {
			resp, status := call("/", operatorAuth(), rpc.Request{Version: "2.0", ID: 3, Method: "no_such_method"})
			Expect(status).Should(Equal(http.StatusNotFound))
			Expect(resp.Error).ShouldNot(BeNil())
			Expect(resp.Error.Code).Should(Equal(rpc.ErrorCodeMethodNotFound))
		})
	})

	Describe("initiator endpoint", func() {
		var (
			aliceKey *ecdsa.PrivateKey
			bobKey   *ecdsa.PrivateKey
			swapID   string
		)

		BeforeAll(func() {
			var err error
			aliceKey, err = crypto.GenerateKey()
			Expect(err).Should(BeNil())
			bobKey, err = crypto.GenerateKey()
			Expect(err).Should(BeNil())
		})

		It("rejects requests without a token", func() {
			_, status := call("/swaps", "", rpc.Request{Version: "2.0", ID: 1, Method: "swap_create"})
			Expect(status).Should(Equal(http.StatusUnauthorized))
		})

		It("rejects a forged token", func() {
			_, status := call("/swaps", "Bearer not.a.token", rpc.Request{Version: "2.0", ID: 1, Method: "swap_create"})
			Expect(status).Should(Equal(http.StatusUnauthorized))
		})

		It("creates a swap for the authenticated wallet", func() {
			token := login(aliceKey)
			refund := "bcrt1qw508d6qejxtdg4y5r3zarvary0c5xw7kygt080"
			params, err := json.Marshal(rpc.SwapRequest{
				SourceChain:      swap.BitcoinRegtest,
				DestinationChain: swap.EthereumLocalnet,
				SourceAsset:      swap.Primary,
				DestinationAsset: swap.Primary,
				Amount:           "100000",
				SourceAddress:    refund,
				TimelockMinutes:  120,
			})
			Expect(err).Should(BeNil())

			resp, status := call("/swaps", token, rpc.Request{Version: "2.0", ID: 1, Method: "swap_create", Params: params})
			Expect(status).Should(Equal(http.StatusOK))
			Expect(resp.Error).Should(BeNil())
			result := struct {
				SwapID string `json:"swapID"`
			}{}
			Expect(json.Unmarshal(resp.Result, &result)).Should(BeNil())
			Expect(result.SwapID).ShouldNot(BeEmpty())
			swapID = result.SwapID

			By("keeping the signing wallet on the swap as the recipient")
			alice := crypto.PubkeyToAddress(aliceKey.PublicKey).Hex()
			Expect(core.intents).Should(HaveLen(1))
			Expect(core.intents[0].Initiator).Should(Equal(refund))
			Expect(core.intents[0].Recipient).Should(Equal(alice))
		})

		It("rejects a reused nonce", func() {
			token := login(aliceKey)
			Expect(token).ShouldNot(BeEmpty())

			By("replaying an already consumed message")
			nonceResp, err := http.Get(ts.URL + "/nonce")
			Expect(err).Should(BeNil())
			nonceBody := struct {
				Nonce string `json:"nonce"`
			}{}
			Expect(json.NewDecoder(nonceResp.Body).Decode(&nonceBody)).Should(BeNil())
			nonceResp.Body.Close()

			addr := crypto.PubkeyToAddress(aliceKey.PublicKey)
			message, err := siwe.InitMessage("localhost", addr.Hex(), "https://localhost/login", nonceBody.Nonce, map[string]interface{}{})
			Expect(err).Should(BeNil())
			messageStr := message.String()
			sig, err := crypto.Sign(accounts.TextHash([]byte(messageStr)), aliceKey)
			Expect(err).Should(BeNil())
			sig[64] += 27
			body, err := json.Marshal(map[string]string{"message": messageStr, "signature": hexutil.Encode(sig)})
			Expect(err).Should(BeNil())

			first, err := http.Post(ts.URL+"/verify", "application/json", bytes.NewReader(body))
			Expect(err).Should(BeNil())
			first.Body.Close()
			Expect(first.StatusCode).Should(Equal(http.StatusOK))

			second, err := http.Post(ts.URL+"/verify", "application/json", bytes.NewReader(body))
			Expect(err).Should(BeNil())
			second.Body.Close()
			Expect(second.StatusCode).Should(Equal(http.StatusUnauthorized))
		})

		It("rejects a signature from the wrong wallet", func() {
			nonceResp, err := http.Get(ts.URL + "/nonce")
			Expect(err).Should(BeNil())
			nonceBody := struct {
				Nonce string `json:"nonce"`
			}{}
			Expect(json.NewDecoder(nonceResp.Body).Decode(&nonceBody)).Should(BeNil())
			nonceResp.Body.Close()

			alice := crypto.PubkeyToAddress(aliceKey.PublicKey)
			message, err := siwe.InitMessage("localhost", alice.Hex(), "https://localhost/login", nonceBody.Nonce, map[string]interface{}{})
			Expect(err).Should(BeNil())
			messageStr := message.String()
			sig, err := crypto.Sign(accounts.TextHash([]byte(messageStr)), bobKey)
			Expect(err).Should(BeNil())
			sig[64] += 27
			body, err := json.Marshal(map[string]string{"message": messageStr, "signature": hexutil.Encode(sig)})
			Expect(err).Should(BeNil())

			resp, err := http.Post(ts.URL+"/verify", "application/json", bytes.NewReader(body))
			Expect(err).Should(BeNil())
			resp.Body.Close()
			Expect(resp.StatusCode).Should(Equal(http.StatusUnauthorized))
		})

		It("hides swaps from other wallets", func() {
			token := login(bobKey)
			params, err := json.Marshal(rpc.SwapIDParams{SwapID: swapID})
			Expect(err).Should(BeNil())
			resp, _ := call("/swaps", token, rpc.Request{Version: "2.0", ID: 2, Method: "swap_status", Params: params})
			Expect(resp.Error).ShouldNot(BeNil())
		})

		It("refuses cancellation by a non-initiator", func() {
			token := login(bobKey)
			params, err := json.Marshal(rpc.SwapIDParams{SwapID: swapID})
			Expect(err).Should(BeNil())
			resp, _ := call("/swaps", token, rpc.Request{Version: "2.0", ID: 3, Method: "swap_cancel", Params: params})
			Expect(resp.Error).ShouldNot(BeNil())
			Expect(resp.Error.Data).Should(ContainSubstring("belong"))
		})

		It("lists only the caller's swaps", func() {
			aliceToken := login(aliceKey)
			resp, status := call("/swaps", aliceToken, rpc.Request{Version: "2.0", ID: 4, Method: "swap_list"})
			Expect(status).Should(Equal(http.StatusOK))
			var views []rpc.SwapView
			Expect(json.Unmarshal(resp.Result, &views)).Should(BeNil())
			Expect(views).Should(HaveLen(1))
			Expect(views[0].SwapID).Should(Equal(swapID))

			bobToken := login(bobKey)
			resp, _ = call("/swaps", bobToken, rpc.Request{Version: "2.0", ID: 5, Method: "swap_list"})
			Expect(json.Unmarshal(resp.Result, &views)).Should(BeNil())
			Expect(views).Should(BeEmpty())
		})
	})

	Describe("state stream", func() {
		It("pushes states until the swap turns terminal", func() {
			Expect(storage.CreateSwap(&store.Swap{
				SwapID:           "stream-1",
				State:            swap.StateCompleted,
				SourceChain:      swap.BitcoinRegtest,
				DestinationChain: swap.EthereumLocalnet,
				SourceAsset:      swap.Primary,
				DestinationAsset: swap.Primary,
				SourceAmount:     "1",
				Initiator:        "0x0000000000000000000000000000000000000001",
			})).Should(BeNil())

			wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?swapID=stream-1"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			Expect(err).Should(BeNil())
			defer conn.Close()

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			view := rpc.SwapView{}
			Expect(conn.ReadJSON(&view)).Should(BeNil())
			Expect(view.SwapID).Should(Equal("stream-1"))
			Expect(view.State).Should(Equal(swap.StateCompleted))

			By("closing once the terminal state was delivered")
			_, _, err = conn.ReadMessage()
			Expect(err).ShouldNot(BeNil())
		})
	})
})
