package rpc

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"passhub/core"
	"passhub/observability/metrics"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
	rateLimitWindow = time.Minute
	maxTxPerWindow  = 60
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeRateLimited    = -32020
)

type rateLimiter struct {
	count       int
	windowStart time.Time
}

// ServerConfig carries the HTTP toggles the RPC server honours.
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	node   *core.Node
	logger *slog.Logger

	mu           sync.Mutex
	rateLimiters map[string]*rateLimiter
	authToken    string
	metrics      *metrics.MarketMetrics

	httpMu     sync.Mutex
	httpServer *http.Server
	cfg        ServerConfig
}

func NewServer(node *core.Node, authToken string, cfg ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		node:         node,
		logger:       logger,
		rateLimiters: make(map[string]*rateLimiter),
		authToken:    strings.TrimSpace(authToken),
		metrics:      metrics.Market(),
		cfg:          cfg,
	}
}

// Start serves JSON-RPC on addr until Shutdown is called. The Prometheus
// scrape endpoint is mounted alongside at /metrics.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
	s.httpMu.Lock()
	s.httpServer = server
	s.httpMu.Unlock()

	s.logger.Info("starting JSON-RPC server", "addr", addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.httpMu.Lock()
	server := s.httpServer
	s.httpMu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// handle is the main request handler that routes to specific handlers.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	outcome := "ok"
	defer func() {
		s.metrics.ObserveRPCRequest(req.Method, outcome)
	}()

	switch req.Method {
	case "market_buyPass":
		if !s.dispatchSettlement(w, r, req) {
			outcome = "error"
			return
		}
		s.handleMarketBuyPass(w, r, req)
	case "market_sellPass":
		if !s.dispatchSettlement(w, r, req) {
			outcome = "error"
			return
		}
		s.handleMarketSellPass(w, r, req)
	case "market_quote":
		s.handleMarketQuote(w, r, req)
	case "market_stats":
		s.handleMarketStats(w, r, req)
	case "market_vault":
		s.handleMarketVault(w, r, req)
	case "outpost_create":
		s.handleOutpostCreate(w, r, req)
	case "outpost_get":
		s.handleOutpostGet(w, r, req)
	case "outpost_updatePrice":
		s.handleOutpostUpdatePrice(w, r, req)
	case "outpost_togglePause":
		s.handleOutpostTogglePause(w, r, req)
	case "outpost_transferOwnership":
		s.handleOutpostTransferOwnership(w, r, req)
	case "outpost_createTier":
		s.handleOutpostCreateTier(w, r, req)
	case "outpost_updateTier":
		s.handleOutpostUpdateTier(w, r, req)
	case "outpost_subscribe":
		s.handleOutpostSubscribe(w, r, req)
	case "outpost_cancelSubscription":
		s.handleOutpostCancelSubscription(w, r, req)
	case "outpost_subscriptionStatus":
		s.handleOutpostSubscriptionStatus(w, r, req)
	case "params_get":
		s.handleParamsGet(w, r, req)
	case "params_setTradeFees":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleParamsSetTradeFees(w, r, req)
	case "params_setSubscriptionFees":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleParamsSetSubscriptionFees(w, r, req)
	case "params_setCurveWeights":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleParamsSetCurveWeights(w, r, req)
	case "hub_getBalance":
		s.handleGetBalance(w, r, req)
	case "hub_credit":
		if authErr := s.requireAuth(r); authErr != nil {
			outcome = "unauthorized"
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
		s.handleCredit(w, r, req)
	case "hub_getEvents":
		s.handleGetEvents(w, r, req)
	default:
		outcome = "not_found"
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method %q not found", req.Method), nil)
	}
}

// dispatchSettlement applies the per-source rate limit shared by the
// funds-moving methods. It reports false when the request was rejected.
func (s *Server) dispatchSettlement(w http.ResponseWriter, r *http.Request, req *RPCRequest) bool {
	source, _, found := strings.Cut(r.RemoteAddr, ":")
	if !found {
		source = r.RemoteAddr
	}
	if !s.allowSource(source, time.Now()) {
		writeError(w, http.StatusTooManyRequests, req.ID, codeRateLimited, "rate limit exceeded", nil)
		return false
	}
	return true
}

func (s *Server) allowSource(source string, now time.Time) bool {
	if source == "" {
		source = "unknown"
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.rateLimiters[source]
	if !ok {
		limiter = &rateLimiter{windowStart: now}
		s.rateLimiters[source] = limiter
	}
	if now.Sub(limiter.windowStart) >= rateLimitWindow {
		limiter.windowStart = now
		limiter.count = 0
	}
	if limiter.count >= maxTxPerWindow {
		return false
	}
	limiter.count++
	return true
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}
