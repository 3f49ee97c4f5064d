package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// validateTradeRequest turns a raw execute-trade request into a typed
// order. Unknown symbols pass through so the engine can reject them with
// the proper kind; everything malformed fails here with a 400.
func (h *APIHandler) validateTradeRequest(req TradeRequest) (domain.PlaceOrder, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return domain.PlaceOrder{}, fmt.Errorf("user_id is required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if code == "" {
		return domain.PlaceOrder{}, fmt.Errorf("symbol is required")
	}
	sym, ok := h.symbols.Lookup(code)
	if !ok {
		// Preserve the requested pair so the rejection names it.
		sym = domain.Symbol{Base: strings.TrimSuffix(code, "USDT"), Quote: "USDT"}
	}

	var side domain.Side
	switch strings.ToLower(req.Side) {
	case "buy":
		side = domain.SideBuy
	case "sell":
		side = domain.SideSell
	default:
		return domain.PlaceOrder{}, fmt.Errorf("side must be buy or sell")
	}

	var kind domain.OrderKind
	switch strings.ToLower(req.OrderType) {
	case "", "market":
		kind = domain.OrderMarket
	case "limit":
		kind = domain.OrderLimit
	default:
		return domain.PlaceOrder{}, fmt.Errorf("order_type must be market or limit")
	}

	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return domain.PlaceOrder{}, fmt.Errorf("quantity %q is not a number", req.Quantity)
	}
	if !qty.IsPositive() {
		return domain.PlaceOrder{}, fmt.Errorf("quantity must be positive")
	}

	order := domain.PlaceOrder{
		Symbol:   sym,
		Side:     side,
		Kind:     kind,
		Quantity: qty,
	}

	if kind == domain.OrderLimit {
		if req.Price == "" {
			return domain.PlaceOrder{}, fmt.Errorf("price is required for limit orders")
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return domain.PlaceOrder{}, fmt.Errorf("price %q is not a number", req.Price)
		}
		if !price.IsPositive() {
			return domain.PlaceOrder{}, fmt.Errorf("price must be positive")
		}
		order.LimitPrice = price
	}

	return order, nil
}

// parsePaging reads limit/offset query values with the documented
// defaults and bounds.
func parsePaging(limitStr, offsetStr string) (limit, offset int, err error) {
	limit = DefaultHistoryLimit
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > MaxHistoryLimit {
			return 0, 0, fmt.Errorf("limit must be between 1 and %d", MaxHistoryLimit)
		}
	}
	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("offset must not be negative")
		}
	}
	return limit, offset, nil
}
