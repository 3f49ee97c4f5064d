package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// This file is the entry point for the API package: the APIHandler
// struct, its dependencies and the route table. Handlers, middleware and
// request validation live in their own files:
// - api.go: handler struct, dependencies, routes (this file)
// - handler.go: HTTP request handlers
// - middleware.go: middleware functions
// - validator.go: request validation

const (
	DefaultTimeout      = 30 * time.Second
	ServiceVersion      = "1.0.0"
	ServiceName         = "tradebot-core"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"

	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// CommandEngine processes voice commands and direct orders.
type CommandEngine interface {
	ProcessCommand(ctx context.Context, userID, rawText string) domain.CommandResult
	ExecuteOrder(ctx context.Context, userID string, order domain.PlaceOrder) domain.CommandResult
}

// AccountLedger exposes the read side of the per-user ledger.
type AccountLedger interface {
	Balances(ctx context.Context, userID string) (*domain.Account, error)
	History(ctx context.Context, userID string, limit, offset int) ([]domain.Trade, error)
	Stats(ctx context.Context, userID string) (domain.TradeStats, error)
}

// MarketReader serves cached quotes.
type MarketReader interface {
	Get(sym domain.Symbol) (domain.Quote, bool)
}

// APIHandler handles HTTP requests using the Gin framework.
type APIHandler struct {
	engine  CommandEngine
	ledger  AccountLedger
	market  MarketReader
	symbols *domain.SymbolSet
	logger  *slog.Logger
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(engine CommandEngine, ledger AccountLedger, market MarketReader, symbols *domain.SymbolSet, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		engine:  engine,
		ledger:  ledger,
		market:  market,
		symbols: symbols,
		logger:  logger,
	}
}

// StartServer starts the HTTP server on addr.
func (h *APIHandler) StartServer(addr string) error {
	router := h.SetupRoutes()
	return router.Run(addr)
}

// SetupRoutes configures all API routes.
func (h *APIHandler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogMiddleware(h.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/voice/process", h.ProcessVoiceCommand)
		api.POST("/trades/execute", h.ExecuteTrade)
		api.GET("/trades", h.GetTradeHistory)
		api.GET("/trades/stats", h.GetTradeStats)
		api.GET("/market-data/:symbol", h.GetMarketData)
		api.GET("/balances", h.GetBalances)
	}

	return router
}
