// Package parser turns raw spoken or typed command text into a typed
// Intent. Parsing is pure: no I/O, never an error, unparseable input
// yields domain.Unrecognized.
package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Satwik-user/TradeBot-0/internal/domain"
)

// Recognition regexes. Kept close to the phrasing the speech frontend
// actually produces.
var (
	orderRe = regexp.MustCompile(`\b(buy|purchase|sell)\s+(-?\d+(?:\.\d+)?)\s+(?:of\s+)?([a-z]+)`)
	placeRe = regexp.MustCompile(`\bplace\s+(?:a|an)\s+(buy|sell)\s+order\s+for\s+(-?\d+(?:\.\d+)?)\s+([a-z]+)`)
	sideRe  = regexp.MustCompile(`\b(buy|purchase|sell)\b`)
	limitRe = regexp.MustCompile(`(?:\bat\b|\bwhen\s+it\s+(?:hits|reaches|drops\s+to)\b|\bfor\b)\s*\$?(\d+(?:\.\d+)?)`)

	indicatorRe = regexp.MustCompile(`\b(rsi|macd|bollinger(?:\s+bands)?|moving\s+average|ma)\b`)
	quoteRe     = regexp.MustCompile(`\b(?:price|value|worth|chart|quote|market|what'?s|show\s+me|how\s+much)\b`)

	stopLossRe = regexp.MustCompile(`\bstop\s+loss\b`)
	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%?`)
)

// canonical indicator names as the UI displays them
var indicatorNames = map[string]string{
	"rsi":             "RSI",
	"macd":            "MACD",
	"bollinger":       "Bollinger Bands",
	"bollinger bands": "Bollinger Bands",
	"moving average":  "Moving Average",
	"ma":              "Moving Average",
}

// DefaultSynonyms maps spoken asset names to base asset codes.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		"bitcoin":  "BTC",
		"btc":      "BTC",
		"ethereum": "ETH",
		"eth":      "ETH",
		"ether":    "ETH",
		"dogecoin": "DOGE",
		"doge":     "DOGE",
	}
}

// Parser recognizes commands against a configured symbol set.
type Parser struct {
	symbols      *domain.SymbolSet
	synonyms     map[string]string
	wakePhrase   string
	defaultQuote string
}

// Option configures a Parser.
type Option func(*Parser)

// WithWakePhrase sets the optional leading wake phrase to strip,
// e.g. "hey tradebot".
func WithWakePhrase(phrase string) Option {
	return func(p *Parser) { p.wakePhrase = strings.ToLower(strings.TrimSpace(phrase)) }
}

// WithSynonyms replaces the asset synonym table.
func WithSynonyms(syn map[string]string) Option {
	return func(p *Parser) { p.synonyms = syn }
}

// WithDefaultQuoteAsset sets the quote asset used when a base asset has no
// configured pairing. Default USDT.
func WithDefaultQuoteAsset(asset string) Option {
	return func(p *Parser) { p.defaultQuote = strings.ToUpper(asset) }
}

// New creates a Parser over the supported symbol set.
func New(symbols *domain.SymbolSet, opts ...Option) *Parser {
	p := &Parser{
		symbols:      symbols,
		synonyms:     DefaultSynonyms(),
		defaultQuote: "USDT",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse interprets one command. Priority: order > indicator/quote >
// stop-loss > unrecognized. When both an order keyword and a quote
// keyword appear, the order intent wins ("buy bitcoin at the current
// price" is an order attempt, not a quote).
func (p *Parser) Parse(raw string) domain.Intent {
	text := p.normalize(raw)
	if text == "" {
		return domain.Unrecognized{RawText: raw}
	}

	if sideRe.MatchString(text) {
		return p.parseOrder(raw, text)
	}

	if m := indicatorRe.FindStringSubmatch(text); m != nil {
		return p.parseIndicatorQuery(text, m[1])
	}

	if quoteRe.MatchString(text) {
		if sym, ok := p.findSymbol(text); ok {
			return domain.QuoteRequest{Symbol: sym}
		}
	}

	if stopLossRe.MatchString(text) {
		if intent, ok := p.parseStopLoss(text); ok {
			return intent
		}
	}

	return domain.Unrecognized{RawText: raw}
}

// normalize lowercases and strips the optional wake phrase.
func (p *Parser) normalize(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if p.wakePhrase != "" && strings.HasPrefix(text, p.wakePhrase) {
		text = strings.TrimLeft(strings.TrimPrefix(text, p.wakePhrase), " ,.")
	}
	return text
}

// parseOrder extracts side, quantity, asset and an optional limit price.
// A side keyword with a missing or non-positive quantity is Unrecognized:
// a zero-quantity order must never reach the engine.
func (p *Parser) parseOrder(raw, text string) domain.Intent {
	m := orderRe.FindStringSubmatch(text)
	if m == nil {
		m = placeRe.FindStringSubmatch(text)
	}
	if m == nil {
		return domain.Unrecognized{RawText: raw}
	}

	side := domain.SideBuy
	if m[1] == "sell" {
		side = domain.SideSell
	}

	qty, err := decimal.NewFromString(m[2])
	if err != nil || !qty.IsPositive() {
		return domain.Unrecognized{RawText: raw}
	}

	sym, ok := p.resolveAsset(m[3])
	if !ok {
		// Asset token not in the order clause; look anywhere in the text
		// ("buy 2 of my favorite, bitcoin" style transcripts).
		sym, ok = p.findSymbol(text)
	}
	if !ok {
		return domain.Unrecognized{RawText: raw}
	}

	order := domain.PlaceOrder{
		Symbol:   sym,
		Side:     side,
		Kind:     domain.OrderMarket,
		Quantity: qty,
	}

	// Price qualifier after the asset token makes it a limit order.
	tail := text[strings.Index(text, m[0])+len(m[0]):]
	if lm := limitRe.FindStringSubmatch(tail); lm != nil {
		if price, err := decimal.NewFromString(lm[1]); err == nil && price.IsPositive() {
			order.Kind = domain.OrderLimit
			order.LimitPrice = price
		}
	}

	return order
}

func (p *Parser) parseIndicatorQuery(text, rawName string) domain.Intent {
	name := indicatorNames[strings.Join(strings.Fields(rawName), " ")]
	if name == "" {
		name = strings.ToUpper(rawName)
	}

	sym, ok := p.findSymbol(text)
	if !ok {
		// Indicator queries default to the first configured pair.
		all := p.symbols.All()
		if len(all) == 0 {
			return domain.Unrecognized{RawText: text}
		}
		sym = all[0]
	}
	return domain.QuoteRequest{Symbol: sym, Indicator: name}
}

func (p *Parser) parseStopLoss(text string) (domain.Intent, bool) {
	loc := stopLossRe.FindStringIndex(text)
	// The percentage may come before ("5% stop loss") or after
	// ("stop loss at 5%") the keyword.
	m := percentRe.FindStringSubmatch(text[loc[1]:])
	if m == nil {
		m = percentRe.FindStringSubmatch(text[:loc[0]])
	}
	if m == nil {
		return nil, false
	}
	pct, err := decimal.NewFromString(m[1])
	if err != nil || !pct.IsPositive() {
		return nil, false
	}

	sym, ok := p.findSymbol(text)
	if !ok {
		all := p.symbols.All()
		if len(all) == 0 {
			return nil, false
		}
		sym = all[0]
	}
	return domain.StopLoss{Symbol: sym, Percent: pct}, true
}

// resolveAsset maps one token to a supported symbol. Synonyms resolve to
// a base asset; the pair is the first configured one for that base, or
// base + the default quote asset when no pairing is configured.
func (p *Parser) resolveAsset(token string) (domain.Symbol, bool) {
	token = strings.ToLower(strings.TrimSpace(token))

	if base, ok := p.synonyms[token]; ok {
		if sym, ok := p.symbols.ByBase(base); ok {
			return sym, true
		}
		return domain.Symbol{Base: base, Quote: p.defaultQuote}, true
	}

	// Canonical pair code spoken directly ("btcusdt").
	if sym, ok := p.symbols.Lookup(token); ok {
		return sym, true
	}
	return domain.Symbol{}, false
}

// findSymbol scans the whole text for the first resolvable asset token.
func (p *Parser) findSymbol(text string) (domain.Symbol, bool) {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if sym, ok := p.resolveAsset(tok); ok {
			return sym, true
		}
	}
	return domain.Symbol{}, false
}
