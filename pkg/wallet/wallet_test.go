package wallet_test

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"github.com/rachelyongies/Lockedin-sub005/pkg/wallet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wallet", func() {
	It("should roundtrip a mnemonic deterministically", func() {
		mnemonic, err := wallet.NewMnemonic()
		Expect(err).Should(BeNil())

		w1, err := wallet.FromMnemonic(mnemonic)
		Expect(err).Should(BeNil())
		w2, err := wallet.FromMnemonic(mnemonic)
		Expect(err).Should(BeNil())

		addr1, err := w1.Address(swap.Ethereum)
		Expect(err).Should(BeNil())
		addr2, err := w2.Address(swap.Ethereum)
		Expect(err).Should(BeNil())
		Expect(addr1).Should(Equal(addr2))
	})

	It("should reject a malformed mnemonic", func() {
		_, err := wallet.FromMnemonic("not a real mnemonic")
		Expect(err).ShouldNot(BeNil())
	})

	It("should produce chain-appropriate address encodings", func() {
		mnemonic, err := wallet.NewMnemonic()
		Expect(err).Should(BeNil())
		w, err := wallet.FromMnemonic(mnemonic)
		Expect(err).Should(BeNil())

		evmAddr, err := w.Address(swap.EthereumSepolia)
		Expect(err).Should(BeNil())
		Expect(common.IsHexAddress(evmAddr)).Should(BeTrue())

		btcAddr, err := w.Address(swap.Bitcoin)
		Expect(err).Should(BeNil())
		Expect(strings.HasPrefix(btcAddr, "bc1")).Should(BeTrue())

		testnetAddr, err := w.Address(swap.BitcoinTestnet)
		Expect(err).Should(BeNil())
		Expect(strings.HasPrefix(testnetAddr, "tb1")).Should(BeTrue())
	})

	It("should derive distinct keys per network of the same family", func() {
		mnemonic, err := wallet.NewMnemonic()
		Expect(err).Should(BeNil())
		w, err := wallet.FromMnemonic(mnemonic)
		Expect(err).Should(BeNil())

		mainnet, err := w.Address(swap.Ethereum)
		Expect(err).Should(BeNil())
		sepolia, err := w.Address(swap.EthereumSepolia)
		Expect(err).Should(BeNil())
		Expect(mainnet).ShouldNot(Equal(sepolia))
	})

	It("should keep the signing key consistent with the reported address", func() {
		mnemonic, err := wallet.NewMnemonic()
		Expect(err).Should(BeNil())
		w, err := wallet.FromMnemonic(mnemonic)
		Expect(err).Should(BeNil())

		key, err := w.Key(swap.EthereumLocalnet)
		Expect(err).Should(BeNil())
		evmAddr, err := key.EvmAddress()
		Expect(err).Should(BeNil())

		reported, err := w.Address(swap.EthereumLocalnet)
		Expect(err).Should(BeNil())
		Expect(evmAddr.Hex()).Should(Equal(reported))
	})
})
