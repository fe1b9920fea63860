package secret_test

import (
	"crypto/sha256"
	"testing/quick"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rachelyongies/Lockedin-sub005/pkg/secret"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Commitment generation", func() {
	for _, algo := range []secret.Algo{secret.SHA256, secret.Keccak256} {
		algo := algo
		Context(string(algo), func() {
			It("should generate a 32 byte secret committing to its own hash", func() {
				material, err := secret.Generate(algo)
				Expect(err).Should(BeNil())
				Expect(material.Secret).Should(HaveLen(secret.Size))
				Expect(material.Algo).Should(Equal(algo))

				ok, err := secret.Verify(algo, material.Secret, material.Hash)
				Expect(err).Should(BeNil())
				Expect(ok).Should(BeTrue())
			})

			It("should fail verification against a foreign commitment", func() {
				a, err := secret.Generate(algo)
				Expect(err).Should(BeNil())
				b, err := secret.Generate(algo)
				Expect(err).Should(BeNil())

				ok, err := secret.Verify(algo, a.Secret, b.Hash)
				Expect(err).Should(BeNil())
				Expect(ok).Should(BeFalse())
			})
		})
	}

	It("should draw distinct secrets", func() {
		seen := map[string]bool{}
		for i := 0; i < 64; i++ {
			material, err := secret.Generate(secret.SHA256)
			Expect(err).Should(BeNil())
			Expect(seen[material.SecretHex()]).Should(BeFalse())
			seen[material.SecretHex()] = true
		}
	})

	It("should reject unsupported digest algorithms", func() {
		_, err := secret.Generate(secret.Algo("ripemd160"))
		Expect(err).Should(MatchError(secret.ErrUnsupportedDigest))

		_, err = secret.Digest(secret.Algo(""), []byte{1})
		Expect(err).Should(MatchError(secret.ErrUnsupportedDigest))
	})

	It("should agree with the reference digests", func() {
		property := func(sec [32]byte) bool {
			shaHash, err := secret.Digest(secret.SHA256, sec[:])
			if err != nil {
				return false
			}
			want := sha256.Sum256(sec[:])
			if string(shaHash) != string(want[:]) {
				return false
			}
			kecHash, err := secret.Digest(secret.Keccak256, sec[:])
			if err != nil {
				return false
			}
			return string(kecHash) == string(crypto.Keccak256(sec[:]))
		}
		Expect(quick.Check(property, nil)).Should(Succeed())
	})
})

var _ = Describe("Vault", func() {
	It("should round-trip a sealed secret", func() {
		vault, err := secret.NewVault([]byte("master entropy"))
		Expect(err).Should(BeNil())

		material, err := secret.Generate(secret.SHA256)
		Expect(err).Should(BeNil())

		sealed, err := vault.Seal(material.Secret)
		Expect(err).Should(BeNil())
		Expect(sealed).ShouldNot(ContainSubstring(material.SecretHex()))

		opened, err := vault.Open(sealed)
		Expect(err).Should(BeNil())
		Expect(opened).Should(Equal(material.Secret))
	})

	It("should produce different blobs for the same secret", func() {
		vault, err := secret.NewVault([]byte("master entropy"))
		Expect(err).Should(BeNil())

		one, err := vault.Seal([]byte("0123456789abcdef0123456789abcdef"))
		Expect(err).Should(BeNil())
		two, err := vault.Seal([]byte("0123456789abcdef0123456789abcdef"))
		Expect(err).Should(BeNil())
		Expect(one).ShouldNot(Equal(two))
	})

	It("should refuse blobs sealed under a different key", func() {
		vault, err := secret.NewVault([]byte("master entropy"))
		Expect(err).Should(BeNil())
		other, err := secret.NewVault([]byte("other entropy"))
		Expect(err).Should(BeNil())

		sealed, err := vault.Seal([]byte("0123456789abcdef0123456789abcdef"))
		Expect(err).Should(BeNil())
		_, err = other.Open(sealed)
		Expect(err).Should(HaveOccurred())
	})

	It("should refuse tampered blobs", func() {
		vault, err := secret.NewVault([]byte("master entropy"))
		Expect(err).Should(BeNil())

		sealed, err := vault.Seal([]byte("0123456789abcdef0123456789abcdef"))
		Expect(err).Should(BeNil())

		tampered := []byte(sealed)
		if tampered[len(tampered)-1] == 'f' {
			tampered[len(tampered)-1] = '0'
		} else {
			tampered[len(tampered)-1] = 'f'
		}
		_, err = vault.Open(string(tampered))
		Expect(err).Should(HaveOccurred())

		_, err = vault.Open("zz")
		Expect(err).Should(HaveOccurred())
	})
})
