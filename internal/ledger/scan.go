package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

func nowUnixMicro() int64 {
	return time.Now().UnixMicro()
}

// scanTrades reads rows in the shared trade column order. Decimals travel
// as strings so both drivers stay exact.
func scanTrades(rows *sql.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		var (
			tr                     domain.Trade
			side, kind, status     string
			qty, price, total, fee string
			createdMicros          int64
		)
		if err := rows.Scan(&tr.ID, &tr.UserID, &tr.Symbol.Base, &tr.Symbol.Quote,
			&side, &kind, &qty, &price, &total, &fee, &status, &createdMicros); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		tr.Side = domain.Side(side)
		tr.Kind = domain.OrderKind(kind)
		tr.Status = domain.TradeStatus(status)
		tr.CreatedAt = time.UnixMicro(createdMicros)

		var err error
		if tr.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("corrupt quantity %q in trade %s: %w", qty, tr.ID, err)
		}
		if tr.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price %q in trade %s: %w", price, tr.ID, err)
		}
		if tr.TotalValue, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total %q in trade %s: %w", total, tr.ID, err)
		}
		if tr.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("corrupt fee %q in trade %s: %w", fee, tr.ID, err)
		}

		trades = append(trades, tr)
	}
	return trades, rows.Err()
}

// sumStats accumulates (side, total_value, fee) rows in Go so decimal
// addition stays exact instead of relying on driver-side SUM coercion.
func sumStats(rows *sql.Rows) (domain.TradeStats, error) {
	stats := domain.TradeStats{
		TotalValue: decimal.Zero,
		TotalFees:  decimal.Zero,
	}
	for rows.Next() {
		var side, total, fee string
		if err := rows.Scan(&side, &total, &fee); err != nil {
			return stats, fmt.Errorf("failed to scan stats row: %w", err)
		}

		totalDec, err := decimal.NewFromString(total)
		if err != nil {
			return stats, fmt.Errorf("corrupt total %q: %w", total, err)
		}
		feeDec, err := decimal.NewFromString(fee)
		if err != nil {
			return stats, fmt.Errorf("corrupt fee %q: %w", fee, err)
		}

		stats.TotalTrades++
		if domain.Side(side) == domain.SideBuy {
			stats.BuyCount++
		} else {
			stats.SellCount++
		}
		stats.TotalValue = stats.TotalValue.Add(totalDec)
		stats.TotalFees = stats.TotalFees.Add(feeDec)
	}
	return stats, rows.Err()
}
