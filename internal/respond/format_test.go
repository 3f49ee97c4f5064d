package respond

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPrice(t *testing.T) {
	tests := []struct {
		value  string
		places int32
		want   string
	}{
		{"58000", 2, "58,000.00"},
		{"58123.456", 2, "58,123.46"},
		{"1234567.8", 2, "1,234,567.80"},
		{"999", 2, "999.00"},
		{"0.12", 2, "0.12"},
		{"-5805.8", 2, "-5,805.80"},
		{"0.123456", 6, "0.123456"},
	}
	for _, tt := range tests {
		if got := Price(dec(tt.value), tt.places); got != tt.want {
			t.Errorf("Price(%s, %d) = %q, want %q", tt.value, tt.places, got, tt.want)
		}
	}
}

func TestSymbolPrecision(t *testing.T) {
	if got := SymbolPrecision("BTCUSDT"); got != 6 {
		t.Errorf("BTCUSDT precision = %d, want 6", got)
	}
	if got := SymbolPrecision("DOGEUSDT"); got != 1 {
		t.Errorf("DOGEUSDT precision = %d, want 1", got)
	}
	if got := SymbolPrecision("XRPUSDT"); got != 2 {
		t.Errorf("unknown symbol precision = %d, want 2", got)
	}
}

func TestFormatQuote(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionQuote,
		Data: domain.QuoteData{
			Quote: domain.Quote{
				Symbol:    domain.Symbol{Base: "BTC", Quote: "USDT"},
				Price:     dec("58123.45"),
				Change24h: dec("1.5"),
				AsOf:      time.Now(),
			},
		},
	}
	want := "The current price of BTC is $58,123.45. It has changed 1.50% in the last 24 hours."
	if got := Format(res); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatQuoteWithRSI(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionQuote,
		Data: domain.QuoteData{
			Quote: domain.Quote{
				Symbol: domain.Symbol{Base: "ETH", Quote: "USDT"},
				Price:  dec("3200"),
			},
			Indicator: &domain.IndicatorSnapshot{
				Name:           "RSI",
				Value:          dec("25.5"),
				Interpretation: "Oversold - potentially bullish signal",
			},
		},
	}
	want := "The RSI for ETH is currently at 25.50. Oversold - potentially bullish signal"
	if got := Format(res); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatQuoteWithBollinger(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionQuote,
		Data: domain.QuoteData{
			Quote: domain.Quote{
				Symbol: domain.Symbol{Base: "BTC", Quote: "USDT"},
				Price:  dec("58000"),
			},
			Indicator: &domain.IndicatorSnapshot{
				Name:           "Bollinger Bands",
				Value:          dec("58000"),
				Upper:          dec("60900"),
				Lower:          dec("55100"),
				Interpretation: "Price within bands - no strong signal",
			},
		},
	}
	want := "Bollinger Bands for BTC: Upper band at $60,900.00, middle band at $58,000.00, and lower band at $55,100.00. Price within bands - no strong signal"
	if got := Format(res); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatTrade(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionTrade,
		Data: domain.Trade{
			Symbol:     domain.Symbol{Base: "BTC", Quote: "USDT"},
			Side:       domain.SideBuy,
			Kind:       domain.OrderMarket,
			Quantity:   dec("0.1"),
			Price:      dec("58000"),
			TotalValue: dec("5800"),
		},
	}
	want := "Your BUY order for 0.100000 BTC has been simulated at $58,000.00, with a total value of $5,800.00."
	if got := Format(res); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatStopLoss(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionInfo,
		Data: domain.StopLossInfo{
			Symbol:       domain.Symbol{Base: "BTC", Quote: "USDT"},
			CurrentPrice: dec("58000"),
			Percent:      dec("5"),
			TriggerPrice: dec("55100"),
		},
	}
	want := "Setting a stop loss at 5% below current price. If BTC falls below $55,100.00, your position will be closed."
	if got := Format(res); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatRejections(t *testing.T) {
	tests := []struct {
		name string
		res  domain.CommandResult
		want string
	}{
		{
			name: "unparseable",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectUnparseableCommand,
			},
			want: "I'm sorry, I didn't understand that command.",
		},
		{
			name: "unknown symbol",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectUnknownSymbol,
			},
			want: "I don't recognize that as a supported trading pair.",
		},
		{
			name: "market data unavailable",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectMarketDataUnavailable,
			},
			want: "Market data is unavailable right now. Please try again in a moment.",
		},
		{
			name: "insufficient funds names the shortfall",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectInsufficientFunds,
				Err: &domain.InsufficientFundsError{
					Asset:     "USDT",
					Required:  dec("5805.8"),
					Available: dec("4194.2"),
				},
			},
			want: "Insufficient funds: this order requires 5,805.80 USDT but only 4,194.20 USDT is available.",
		},
		{
			name: "insufficient inventory names the shortfall",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectInsufficientInventory,
				Err: &domain.InsufficientInventoryError{
					Asset:     "BTC",
					Required:  dec("0.5"),
					Available: dec("0.1"),
				},
			},
			want: "Insufficient holdings: this order requires 0.5 BTC but only 0.1 BTC is available.",
		},
		{
			name: "ledger inconsistency",
			res: domain.CommandResult{
				Action:     domain.ActionError,
				RejectKind: domain.RejectLedgerInconsistency,
			},
			want: "An internal ledger error occurred. No changes were applied to your account.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.res); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDeterministic(t *testing.T) {
	res := domain.CommandResult{
		Action: domain.ActionQuote,
		Data: domain.QuoteData{
			Quote: domain.Quote{
				Symbol:    domain.Symbol{Base: "DOGE", Quote: "USDT"},
				Price:     dec("0.12"),
				Change24h: dec("-2.3"),
			},
		},
	}
	first := Format(res)
	for i := 0; i < 5; i++ {
		if got := Format(res); got != first {
			t.Fatalf("Format() varied between calls: %q vs %q", got, first)
		}
	}
}
