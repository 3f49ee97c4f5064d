package market

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// QuoteProvider is the external market-data collaborator. Implementations
// may hit the network; the cache is the only caller.
type QuoteProvider interface {
	FetchQuote(ctx context.Context, sym domain.Symbol) (domain.Quote, error)
}

// IndicatorProvider is optionally implemented by providers that can also
// produce technical indicator readings.
type IndicatorProvider interface {
	FetchIndicator(ctx context.Context, sym domain.Symbol, name string) (domain.IndicatorSnapshot, error)
}

// SimulatedProvider generates plausible market data without touching a
// real exchange: a random walk around fixed base prices. It stands in for
// the data vendor during demos and tests.
type SimulatedProvider struct {
	mu    sync.Mutex
	rng   *rand.Rand
	bases map[string]decimal.Decimal
	now   func() time.Time
}

// NewSimulatedProvider seeds the generator. Pass a fixed seed for
// reproducible tests, or time-derived for demos.
func NewSimulatedProvider(seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		rng: rand.New(rand.NewSource(seed)),
		bases: map[string]decimal.Decimal{
			"BTCUSDT":  decimal.NewFromInt(58000),
			"ETHUSDT":  decimal.NewFromInt(3200),
			"DOGEUSDT": decimal.NewFromFloat(0.12),
		},
		now: time.Now,
	}
}

// SetBasePrice registers or overrides the anchor price for a pair.
func (p *SimulatedProvider) SetBasePrice(sym domain.Symbol, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bases[sym.String()] = price
}

// FetchQuote returns a snapshot within ±2% of the pair's base price, with
// a ±5% 24h change and a 1M-10M volume, matching what the charting
// frontend expects.
func (p *SimulatedProvider) FetchQuote(ctx context.Context, sym domain.Symbol) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	base, ok := p.bases[sym.String()]
	if !ok {
		return domain.Quote{}, fmt.Errorf("no simulated market for %s", sym)
	}

	drift := decimal.NewFromFloat(1 + p.uniform(-0.02, 0.02))
	price := base.Mul(drift).Round(pricePrecision(base))

	return domain.Quote{
		Symbol:    sym,
		Price:     price,
		Change24h: decimal.NewFromFloat(p.uniform(-5, 5)).Round(2),
		Volume:    decimal.NewFromFloat(p.uniform(1_000_000, 10_000_000)).Round(2),
		AsOf:      p.now(),
	}, nil
}

// FetchIndicator produces a simulated reading for RSI, MACD, Bollinger
// Bands or Moving Average, with the interpretation text attached.
func (p *SimulatedProvider) FetchIndicator(ctx context.Context, sym domain.Symbol, name string) (domain.IndicatorSnapshot, error) {
	quote, err := p.FetchQuote(ctx, sym)
	if err != nil {
		return domain.IndicatorSnapshot{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "RSI":
		v := decimal.NewFromFloat(p.uniform(30, 70)).Round(2)
		return domain.IndicatorSnapshot{
			Name:           "RSI",
			Value:          v,
			Interpretation: RSIInterpretation(v),
		}, nil

	case "MACD":
		macd := decimal.NewFromFloat(p.uniform(-20, 20)).Round(2)
		signal := decimal.NewFromFloat(p.uniform(-20, 20)).Round(2)
		return domain.IndicatorSnapshot{
			Name:           "MACD",
			Value:          macd,
			Signal:         signal,
			Histogram:      macd.Sub(signal),
			Interpretation: MACDInterpretation(macd, signal),
		}, nil

	case "Bollinger Bands":
		middle := quote.Price
		width := middle.Mul(decimal.NewFromFloat(0.05))
		return domain.IndicatorSnapshot{
			Name:           "Bollinger Bands",
			Value:          middle,
			Upper:          middle.Add(width).Round(2),
			Lower:          middle.Sub(width).Round(2),
			Interpretation: BollingerInterpretation(quote.Price, middle, width),
		}, nil

	case "Moving Average":
		ma := quote.Price.Mul(decimal.NewFromFloat(1 + p.uniform(-0.01, 0.01))).Round(2)
		return domain.IndicatorSnapshot{
			Name:           "Moving Average (MA 20)",
			Value:          ma,
			Interpretation: MAInterpretation(quote.Price, ma),
		}, nil

	default:
		return domain.IndicatorSnapshot{}, fmt.Errorf("unknown indicator %q", name)
	}
}

func (p *SimulatedProvider) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

// pricePrecision keeps sub-dollar pairs from rounding to zero.
func pricePrecision(base decimal.Decimal) int32 {
	if base.LessThan(decimal.NewFromInt(1)) {
		return 6
	}
	return 2
}
