package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
	"github.com/Satwik-user/TradeBot-0/internal/respond"
)

var errMissingUserID = errors.New("user_id is required")

// VoiceCommandRequest is the POST /api/voice/process body.
type VoiceCommandRequest struct {
	Command string `json:"command" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
}

// TradeRequest is the POST /api/trades/execute body. Quantity and Price
// are strings to keep exact decimal values off the float path.
type TradeRequest struct {
	UserID    string `json:"user_id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	OrderType string `json:"order_type"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

// ProcessVoiceCommand handles POST /api/voice/process. The result is
// always 200: rejections are part of the conversation, carried in the
// response text, not HTTP failures.
func (h *APIHandler) ProcessVoiceCommand(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, err)
		return
	}

	res := h.engine.ProcessCommand(ctx, req.UserID, req.Command)
	c.JSON(http.StatusOK, res)
}

// ExecuteTrade handles POST /api/trades/execute: a direct order that
// bypasses the language parser.
func (h *APIHandler) ExecuteTrade(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	var req TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleValidationError(c, err)
		return
	}
	order, err := h.validateTradeRequest(req)
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	res := h.engine.ExecuteOrder(ctx, req.UserID, order)
	res.ResponseText = respond.Format(res)
	if res.Action == domain.ActionError {
		h.handleRejection(c, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trade":   res.Data,
		"message": res.ResponseText,
	})
}

// GetTradeHistory handles GET /api/trades, newest first.
func (h *APIHandler) GetTradeHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	userID := c.Query("user_id")
	if userID == "" {
		h.handleError(c, errMissingUserID, http.StatusBadRequest, "user_id is required")
		return
	}
	limit, offset, err := parsePaging(c.Query("limit"), c.Query("offset"))
	if err != nil {
		h.handleValidationError(c, err)
		return
	}

	trades, err := h.ledger.History(ctx, userID, limit, offset)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"count":  len(trades),
		"limit":  limit,
		"offset": offset,
	})
}

// GetTradeStats handles GET /api/trades/stats.
func (h *APIHandler) GetTradeStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	userID := c.Query("user_id")
	if userID == "" {
		h.handleError(c, errMissingUserID, http.StatusBadRequest, "user_id is required")
		return
	}

	stats, err := h.ledger.Stats(ctx, userID)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetMarketData handles GET /api/market-data/:symbol.
func (h *APIHandler) GetMarketData(c *gin.Context) {
	code := strings.ToUpper(c.Param("symbol"))

	sym, ok := h.symbols.Lookup(code)
	if !ok {
		h.handleError(c, domain.ErrUnknownSymbol, http.StatusBadRequest, "unsupported symbol: "+code)
		return
	}
	quote, ok := h.market.Get(sym)
	if !ok {
		h.handleError(c, domain.ErrMarketDataUnavailable, http.StatusServiceUnavailable, "market data unavailable for "+code)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     quote.Symbol.String(),
		"price":      quote.Price,
		"change_24h": quote.Change24h,
		"volume":     quote.Volume,
		"as_of":      quote.AsOf,
		"status":     "simulated",
	})
}

// GetBalances handles GET /api/balances.
func (h *APIHandler) GetBalances(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	userID := c.Query("user_id")
	if userID == "" {
		h.handleError(c, errMissingUserID, http.StatusBadRequest, "user_id is required")
		return
	}

	account, err := h.ledger.Balances(ctx, userID)
	if err != nil {
		h.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, account)
}

// HealthCheck handles GET /health requests.
func (h *APIHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// handleRejection maps a typed rejection to an HTTP status while keeping
// the formatted message and kind in the body.
func (h *APIHandler) handleRejection(c *gin.Context, res domain.CommandResult) {
	status := http.StatusBadRequest
	switch res.RejectKind {
	case domain.RejectMarketDataUnavailable:
		status = http.StatusServiceUnavailable
	case domain.RejectInsufficientFunds, domain.RejectInsufficientInventory:
		status = http.StatusUnprocessableEntity
	case domain.RejectLedgerInconsistency:
		status = http.StatusInternalServerError
	}
	h.handleError(c, res.Err, status, res.ResponseText)
}

// handleError logs the error and sends the HTTP response.
func (h *APIHandler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID, exists := c.Get(RequestIDContextKey)
	requestIDStr := "unknown"
	if exists {
		if id, ok := requestID.(string); ok {
			requestIDStr = id
		}
	}

	errText := ""
	if err != nil {
		errText = err.Error()
	}
	h.logger.Error("API error",
		slog.String("request_id", requestIDStr),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("error", errText),
		slog.Int("status_code", statusCode),
	)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestIDStr,
	})
}

// handleValidationError handles validation errors specifically.
func (h *APIHandler) handleValidationError(c *gin.Context, err error) {
	h.handleError(c, err, http.StatusBadRequest, err.Error())
}
