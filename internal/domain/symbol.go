package domain

import "strings"

// Symbol identifies a trading pair as base + quote asset codes.
// The canonical wire form is the concatenation, e.g. "BTCUSDT".
type Symbol struct {
	Base  string `json:"base" yaml:"base"`
	Quote string `json:"quote" yaml:"quote"`
}

// String returns the canonical form, e.g. "BTCUSDT".
func (s Symbol) String() string {
	return s.Base + s.Quote
}

// Display returns the slash form used in responses, e.g. "BTC/USDT".
func (s Symbol) Display() string {
	return s.Base + "/" + s.Quote
}

// IsZero reports whether the symbol is unset.
func (s Symbol) IsZero() bool {
	return s.Base == "" && s.Quote == ""
}

// SymbolSet is the closed enumeration of supported trading pairs.
// The set is fixed at startup; lookups are case-insensitive on the
// canonical form.
type SymbolSet struct {
	ordered []Symbol
	byCode  map[string]Symbol
}

// NewSymbolSet builds a set preserving configuration order. Order matters:
// an ambiguous asset token resolves to the first configured match.
func NewSymbolSet(symbols []Symbol) *SymbolSet {
	set := &SymbolSet{
		ordered: make([]Symbol, 0, len(symbols)),
		byCode:  make(map[string]Symbol, len(symbols)),
	}
	for _, sym := range symbols {
		code := strings.ToUpper(sym.String())
		if _, dup := set.byCode[code]; dup {
			continue
		}
		set.byCode[code] = sym
		set.ordered = append(set.ordered, sym)
	}
	return set
}

// Lookup resolves a canonical code ("BTCUSDT", any case) to a Symbol.
func (ss *SymbolSet) Lookup(code string) (Symbol, bool) {
	sym, ok := ss.byCode[strings.ToUpper(code)]
	return sym, ok
}

// ByBase returns the first configured pair whose base asset matches.
func (ss *SymbolSet) ByBase(base string) (Symbol, bool) {
	base = strings.ToUpper(base)
	for _, sym := range ss.ordered {
		if sym.Base == base {
			return sym, true
		}
	}
	return Symbol{}, false
}

// All returns the symbols in configuration order.
func (ss *SymbolSet) All() []Symbol {
	out := make([]Symbol, len(ss.ordered))
	copy(out, ss.ordered)
	return out
}

// Contains reports whether the pair is part of the supported set.
func (ss *SymbolSet) Contains(sym Symbol) bool {
	_, ok := ss.byCode[strings.ToUpper(sym.String())]
	return ok
}

// DefaultSymbols is the pair set the simulator ships with.
func DefaultSymbols() []Symbol {
	return []Symbol{
		{Base: "BTC", Quote: "USDT"},
		{Base: "ETH", Quote: "USDT"},
		{Base: "DOGE", Quote: "USDT"},
	}
}
