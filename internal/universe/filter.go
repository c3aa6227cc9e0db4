// Package universe classifies the tradable ticker set into stable and alt
// buckets and ranks each by traded volume to pick which instruments flow
// through the analysis pipeline in a given cycle.
package universe

import (
	"sort"
	"strings"

	"github.com/acoopRD/poc-finance/internal/models"
)

// Default bucket sizes.
const (
	DefaultStableLimit = 5
	DefaultAltLimit    = 5
)

// DefaultStableTokens are the stable-asset substrings recognized in symbols.
var DefaultStableTokens = []string{"USDT", "USDC", "DAI", "BUSD", "UST"}

// DefaultQuoteCurrencies are the quote-currency substrings recognized in symbols.
var DefaultQuoteCurrencies = []string{"USD", "EUR", "JPY"}

// Filter classifies and ranks instruments. Classification works on raw
// substring containment: a symbol carrying both a stable token and a quote
// currency is "stable", one carrying only a quote currency is "alt", and
// anything else is excluded. The containment rule is deliberate and kept
// as documented even though incidental substrings can match.
type Filter struct {
	stableTokens    []string
	quoteCurrencies []string
	stableLimit     int
	altLimit        int
}

// Option configures a Filter.
type Option func(*Filter)

// WithTokens overrides the stable-asset and quote-currency token sets.
func WithTokens(stableTokens, quoteCurrencies []string) Option {
	return func(f *Filter) {
		if len(stableTokens) > 0 {
			f.stableTokens = stableTokens
		}
		if len(quoteCurrencies) > 0 {
			f.quoteCurrencies = quoteCurrencies
		}
	}
}

// WithLimits overrides the per-bucket result sizes.
func WithLimits(stableLimit, altLimit int) Option {
	return func(f *Filter) {
		if stableLimit > 0 {
			f.stableLimit = stableLimit
		}
		if altLimit > 0 {
			f.altLimit = altLimit
		}
	}
}

// NewFilter creates a Filter with the documented defaults.
func NewFilter(opts ...Option) *Filter {
	f := &Filter{
		stableTokens:    DefaultStableTokens,
		quoteCurrencies: DefaultQuoteCurrencies,
		stableLimit:     DefaultStableLimit,
		altLimit:        DefaultAltLimit,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Result holds the ranked bucket outputs of one filter pass.
type Result struct {
	Stable []string `json:"stable"`
	Alts   []string `json:"alts"`
}

// TopCoins buckets the tickers and returns the top stable and alt symbols by
// descending 24h volume. Ties keep the original input order (stable sort), so
// identical input always yields identical output.
func (f *Filter) TopCoins(tickers []models.TickerSnapshot) Result {
	type ranked struct {
		symbol string
		volume float64
	}

	var stable, alts []ranked
	for _, t := range tickers {
		switch {
		case containsAny(t.Symbol, f.stableTokens) && containsAny(t.Symbol, f.quoteCurrencies):
			stable = append(stable, ranked{t.Symbol, t.Volume24h.InexactFloat64()})
		case containsAny(t.Symbol, f.quoteCurrencies):
			alts = append(alts, ranked{t.Symbol, t.Volume24h.InexactFloat64()})
		}
	}

	byVolumeDesc := func(rs []ranked) {
		sort.SliceStable(rs, func(i, j int) bool { return rs[i].volume > rs[j].volume })
	}
	byVolumeDesc(stable)
	byVolumeDesc(alts)

	take := func(rs []ranked, limit int) []string {
		if limit > len(rs) {
			limit = len(rs)
		}
		out := make([]string, 0, limit)
		for _, r := range rs[:limit] {
			out = append(out, r.symbol)
		}
		return out
	}

	return Result{
		Stable: take(stable, f.stableLimit),
		Alts:   take(alts, f.altLimit),
	}
}

func containsAny(symbol string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(symbol, tok) {
			return true
		}
	}
	return false
}
