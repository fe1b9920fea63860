// Package rpc exposes the daemon over JSON-RPC 2.0. Operator methods sit
// behind basic auth; initiator methods authenticate with a SIWE login that
// issues a wallet-scoped JWT. A websocket endpoint streams swap states.
package rpc

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rachelyongies/Lockedin-sub005/pkg/store"
	"github.com/rachelyongies/Lockedin-sub005/pkg/swap"
	"go.uber.org/zap"
)

// Request defines a JSON-RPC 2.0 request object.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response defines a JSON-RPC 2.0 response object.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error defines a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

const (
	ErrorCodeParseError        = -32700
	ErrorMessageParseError     = "Parse error"
	ErrorCodeMethodNotFound    = -32601
	ErrorMessageMethodNotFound = "Method not found"
	ErrorCodeInvalidParams     = -32602
	ErrorMessageInvalidParams  = "Invalid params"
	ErrorCodeInternalError     = -32603
	ErrorMessageInternalError  = "Internal error"
)

func NewResponse(id interface{}, result json.RawMessage, err *Error) Response {
	return Response{Version: "2.0", ID: id, Result: result, Error: err}
}

func NewError(code int, message string, data string) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// Core is the part of the orchestrator the RPC layer needs.
type Core interface {
	Submit(ctx context.Context, intent swap.Intent) (string, error)
	Cancel(swapID, initiator string) error
	Status(swapID string) (store.Swap, error)
}

// Signers reports the service-side settlement address per chain, surfaced
// to initiators so they know where counterparty funds come from.
type Signers interface {
	Address(chain swap.Chain) (string, error)
}

// Config carries listen address and credentials. User and Pass guard the
// operator endpoint; JWTSecret signs initiator tokens.
type Config struct {
	Listen    string
	User      string
	Pass      string
	JWTSecret string
}

// method handles one JSON-RPC call. caller is empty for operator calls and
// the authenticated wallet address for initiator calls.
type method func(ctx context.Context, caller string, params json.RawMessage) (json.RawMessage, error)

// Server is the JSON-RPC server. Start is non-blocking; Stop drains.
type Server struct {
	cfg       Config
	core      Core
	storage   store.Store
	signers   Signers
	chains    []swap.Chain
	logger    *zap.Logger
	authsha   [sha256.Size]byte
	nonces    *nonceCache
	operator  map[string]method
	initiator map[string]method
	server    *http.Server
}

func NewServer(cfg Config, core Core, storage store.Store, signers Signers, chains []swap.Chain, logger *zap.Logger) (*Server, error) {
	if cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("rpc user and password must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("rpc jwt secret must be set")
	}
	login := cfg.User + ":" + cfg.Pass
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))

	s := &Server{
		cfg:     cfg,
		core:    core,
		storage: storage,
		signers: signers,
		chains:  chains,
		logger:  logger.With(zap.String("service", "rpc")),
		authsha: sha256.Sum256([]byte(auth)),
		nonces:  newNonceCache(),
	}
	s.operator = map[string]method{
		"health":      s.health,
		"addresses":   s.addresses,
		"swap_list":   s.swapList,
		"swap_status": s.swapStatus,
	}
	s.initiator = map[string]method{
		"swap_create": s.swapCreate,
		"swap_cancel": s.swapCancel,
		"swap_status": s.swapStatus,
		"swap_list":   s.swapListMine,
	}
	return s, nil
}

// Start builds the router and listens in the background.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	s.Attach(router)

	s.server = &http.Server{Addr: s.cfg.Listen, Handler: router}
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("rpc server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("rpc server listening", zap.String("addr", s.cfg.Listen))
	return nil
}

// Attach registers the routes on a router. Split from Start so tests can
// mount the server on a test engine.
func (s *Server) Attach(router *gin.Engine) {
	router.GET("/nonce", s.nonce)
	router.POST("/verify", s.verify)
	router.GET("/ws", s.stream)

	operatorRoutes := router.Group("/")
	operatorRoutes.Use(s.authenticateOperator)
	operatorRoutes.POST("/", s.handle(s.operator, func(*gin.Context) string { return "" }))

	initiatorRoutes := router.Group("/swaps")
	initiatorRoutes.Use(s.authenticateInitiator)
	initiatorRoutes.POST("", s.handle(s.initiator, func(ctx *gin.Context) string {
		return ctx.GetString("userWallet")
	}))
}

func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("rpc shutdown failed", zap.Error(err))
	}
}

func (s *Server) handle(methods map[string]method, caller func(*gin.Context) string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		req := Request{}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, NewResponse(req.ID, nil, NewError(ErrorCodeParseError, ErrorMessageParseError, err.Error())))
			return
		}
		cmd, ok := methods[req.Method]
		if !ok {
			ctx.JSON(http.StatusNotFound, NewResponse(req.ID, nil, NewError(ErrorCodeMethodNotFound, ErrorMessageMethodNotFound, req.Method)))
			return
		}
		result, err := cmd(ctx.Request.Context(), caller(ctx), req.Params)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, NewResponse(req.ID, nil, NewError(ErrorCodeInternalError, ErrorMessageInternalError, err.Error())))
			return
		}
		ctx.JSON(http.StatusOK, NewResponse(req.ID, result, nil))
	}
}

func (s *Server) authenticateOperator(ctx *gin.Context) {
	authhdr := ctx.GetHeader("Authorization")
	if len(authhdr) == 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
		return
	}
	authsha := sha256.Sum256([]byte(authhdr))
	if subtle.ConstantTimeCompare(authsha[:], s.authsha[:]) != 1 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized Invalid credentials"})
		return
	}
}

// SwapRequest is the initiator-facing swap_create payload. The caller's
// wallet comes from the authenticated token; SourceAddress is only needed
// when the source chain cannot hold the wallet address itself, bitcoin
// being the one case today.
type SwapRequest struct {
	SourceChain      swap.Chain `json:"sourceChain"`
	DestinationChain swap.Chain `json:"destinationChain"`
	SourceAsset      swap.Asset `json:"sourceAsset"`
	DestinationAsset swap.Asset `json:"destinationAsset"`
	Amount           string     `json:"amount"`
	SourceAddress    string     `json:"sourceAddress,omitempty"`
	Recipient        string     `json:"recipient,omitempty"`
	TimelockMinutes  int64      `json:"timelockMinutes"`
}

type SwapIDParams struct {
	SwapID string `json:"swapID"`
}

func (s *Server) swapCreate(ctx context.Context, caller string, params json.RawMessage) (json.RawMessage, error) {
	req := SwapRequest{}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", req.Amount)
	}

	// The initiator is the source-side refund beneficiary. When the caller
	// supplies a separate source address, the wallet stays on the swap as
	// the default recipient so the record remains tied to the session.
	initiator := caller
	recipient := req.Recipient
	if req.SourceAddress != "" {
		initiator = req.SourceAddress
		if recipient == "" {
			recipient = caller
		}
	}

	swapID, err := s.core.Submit(ctx, swap.Intent{
		SourceChain:      req.SourceChain,
		DestinationChain: req.DestinationChain,
		SourceAsset:      req.SourceAsset,
		DestinationAsset: req.DestinationAsset,
		Amount:           amount,
		Initiator:        initiator,
		Recipient:        recipient,
		Timelock:         time.Duration(req.TimelockMinutes) * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(gin.H{"swapID": swapID})
}

func (s *Server) swapCancel(_ context.Context, caller string, params json.RawMessage) (json.RawMessage, error) {
	req := SwapIDParams{}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	record, err := s.core.Status(req.SwapID)
	if err != nil {
		return nil, err
	}
	if !owns(record, caller) {
		return nil, fmt.Errorf("swap %s does not belong to %s", req.SwapID, caller)
	}
	if err := s.core.Cancel(req.SwapID, record.Initiator); err != nil {
		return nil, err
	}
	return json.Marshal(gin.H{"swapID": req.SwapID, "cancelRequested": true})
}

func (s *Server) swapStatus(_ context.Context, caller string, params json.RawMessage) (json.RawMessage, error) {
	req := SwapIDParams{}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}
	record, err := s.core.Status(req.SwapID)
	if err != nil {
		return nil, err
	}
	if caller != "" && !owns(record, caller) {
		return nil, fmt.Errorf("swap %s does not belong to %s", req.SwapID, caller)
	}
	return json.Marshal(swapView(record))
}

// owns reports whether the wallet is a party to the swap, on either side.
func owns(record store.Swap, caller string) bool {
	return strings.EqualFold(record.Initiator, caller) || strings.EqualFold(record.Recipient, caller)
}

func (s *Server) swapList(_ context.Context, _ string, params json.RawMessage) (json.RawMessage, error) {
	req := struct {
		States []swap.State `json:"states,omitempty"`
	}{}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, err
		}
	}
	records, err := s.storage.Swaps(req.States...)
	if err != nil {
		return nil, err
	}
	return json.Marshal(swapViews(records))
}

func (s *Server) swapListMine(_ context.Context, caller string, _ json.RawMessage) (json.RawMessage, error) {
	records, err := s.storage.SwapsByParty(caller)
	if err != nil {
		return nil, err
	}
	return json.Marshal(swapViews(records))
}

func (s *Server) health(_ context.Context, _ string, _ json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(gin.H{"status": "ok"})
}

func (s *Server) addresses(_ context.Context, _ string, _ json.RawMessage) (json.RawMessage, error) {
	addrs := map[swap.Chain]string{}
	for _, chain := range s.chains {
		addr, err := s.signers.Address(chain)
		if err != nil {
			return nil, err
		}
		addrs[chain] = addr
	}
	return json.Marshal(addrs)
}

// SwapView is the externally visible swap record. Sealed secrets and retry
// internals never leave the daemon.
type SwapView struct {
	SwapID            string     `json:"swapID"`
	State             swap.State `json:"state"`
	SourceChain       swap.Chain `json:"sourceChain"`
	DestinationChain  swap.Chain `json:"destinationChain"`
	SourceAsset       swap.Asset `json:"sourceAsset"`
	DestinationAsset  swap.Asset `json:"destinationAsset"`
	SourceAmount      string     `json:"sourceAmount"`
	DestinationAmount string     `json:"destinationAmount"`
	Initiator         string     `json:"initiator"`
	Recipient         string     `json:"recipient"`
	SecretHash        string     `json:"secretHash"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastError         string     `json:"lastError,omitempty"`
}

func swapView(record store.Swap) SwapView {
	return SwapView{
		SwapID:            record.SwapID,
		State:             record.State,
		SourceChain:       record.SourceChain,
		DestinationChain:  record.DestinationChain,
		SourceAsset:       record.SourceAsset,
		DestinationAsset:  record.DestinationAsset,
		SourceAmount:      record.SourceAmount,
		DestinationAmount: record.DestinationAmount,
		Initiator:         record.Initiator,
		Recipient:         record.Recipient,
		SecretHash:        record.SecretHash,
		CreatedAt:         record.CreatedAt,
		LastError:         record.LastError,
	}
}

func swapViews(records []store.Swap) []SwapView {
	views := make([]SwapView, 0, len(records))
	for _, record := range records {
		views = append(views, swapView(record))
	}
	return views
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// stream pushes the swap's state over a websocket until it turns terminal.
func (s *Server) stream(ctx *gin.Context) {
	swapID := ctx.Query("swapID")
	if swapID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing swapID"})
		return
	}

	ws, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to upgrade to websocket %v", err)})
		return
	}
	defer ws.Close()

	last := swap.State("")
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		record, err := s.core.Status(swapID)
		if err != nil {
			s.logger.Debug("stream lookup failed", zap.String("swap-id", swapID), zap.Error(err))
			return
		}
		if record.State != last {
			last = record.State
			if err := ws.WriteJSON(swapView(record)); err != nil {
				s.logger.Debug("failed to write message", zap.Error(err))
				return
			}
		}
		if record.State.IsTerminal() {
			return
		}
		select {
		case <-ctx.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
