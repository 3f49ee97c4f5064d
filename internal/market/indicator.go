package market

import "github.com/shopspring/decimal"

var (
	rsiOversold   = decimal.NewFromInt(30)
	rsiOverbought = decimal.NewFromInt(70)
)

// RSIInterpretation maps an RSI reading to the phrasing used in spoken
// responses.
func RSIInterpretation(rsi decimal.Decimal) string {
	switch {
	case rsi.LessThan(rsiOversold):
		return "Oversold - potentially bullish signal"
	case rsi.GreaterThan(rsiOverbought):
		return "Overbought - potentially bearish signal"
	default:
		return "Neutral - no strong buy or sell signal"
	}
}

// MACDInterpretation compares the MACD line with its signal line.
func MACDInterpretation(macd, signal decimal.Decimal) string {
	if macd.GreaterThan(signal) {
		return "Bullish signal - MACD above signal line"
	}
	return "Bearish signal - MACD below signal line"
}

// BollingerInterpretation positions the price relative to the bands.
func BollingerInterpretation(price, middle, width decimal.Decimal) string {
	upper := middle.Add(width)
	lower := middle.Sub(width)
	switch {
	case price.GreaterThan(upper):
		return "Price above upper band - potentially overbought"
	case price.LessThan(lower):
		return "Price below lower band - potentially oversold"
	default:
		return "Price within bands - no strong signal"
	}
}

// MAInterpretation positions the price relative to its moving average.
func MAInterpretation(price, ma decimal.Decimal) string {
	if price.GreaterThan(ma) {
		return "Price above MA - generally bullish"
	}
	return "Price below MA - generally bearish"
}
