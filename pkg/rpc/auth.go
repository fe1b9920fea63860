package rpc

import (
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spruceid/siwe-go"
	"go.uber.org/zap"
)

// Initiator sessions last a day; a fresh SIWE login renews them.
const tokenValidity = 24 * time.Hour

// Nonces are single use and expire unconsumed after five minutes.
const nonceValidity = 5 * time.Minute

// Claims scopes a token to one wallet address.
type Claims struct {
	UserWallet string `json:"userWallet"`
	jwt.StandardClaims
}

type nonceCache = expirable.LRU[string, struct{}]

func newNonceCache() *nonceCache {
	return expirable.NewLRU[string, struct{}](4096, nil, nonceValidity)
}

// nonce hands out a SIWE nonce and remembers it until verify consumes it.
func (s *Server) nonce(ctx *gin.Context) {
	nonce := siwe.GenerateNonce()
	s.nonces.Add(nonce, struct{}{})
	ctx.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

type verifyRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// verify checks a signed SIWE message and issues a wallet-scoped JWT.
func (s *Server) verify(ctx *gin.Context) {
	req := verifyRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to decode request body %v", err)})
		return
	}

	message, err := siwe.ParseMessage(req.Message)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to parse siwe message %v", err)})
		return
	}
	if _, err := message.ValidNow(); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("message expired %v", err)})
		return
	}
	if _, ok := s.nonces.Get(message.GetNonce()); !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unknown or expired nonce"})
		return
	}

	pubkey, err := recoverSigner(req.Message, req.Signature)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("failed to verify signature %v", err)})
		return
	}
	wallet := crypto.PubkeyToAddress(*pubkey)
	if wallet != message.GetAddress() {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "signature does not match message address"})
		return
	}
	s.nonces.Remove(message.GetNonce())

	token, err := s.issueToken(wallet.Hex())
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) issueToken(wallet string) (string, error) {
	claims := Claims{
		UserWallet: wallet,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenValidity).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// recoverSigner recovers the EIP-191 personal-sign key from a signature.
func recoverSigner(message, signature string) (*ecdsa.PublicKey, error) {
	sigBytes, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sigBytes) != 65 {
		return nil, fmt.Errorf("signature must be 65 bytes, got %d", len(sigBytes))
	}
	if sigBytes[64] >= 27 {
		sigBytes[64] -= 27
	}
	return crypto.SigToPub(accounts.TextHash([]byte(message)), sigBytes)
}

// authenticateInitiator validates the bearer token and exposes the wallet
// to handlers as "userWallet".
func (s *Server) authenticateInitiator(ctx *gin.Context) {
	authhdr := ctx.GetHeader("Authorization")
	tokenStr := strings.TrimPrefix(authhdr, "Bearer ")
	if tokenStr == "" || tokenStr == authhdr {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
		return
	}
	wallet, ok := claims["userWallet"].(string)
	if !ok || wallet == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token carries no wallet"})
		return
	}
	ctx.Set("userWallet", wallet)
}
