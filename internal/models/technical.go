package models

// RSI is a Relative Strength Index value. Valid is false when the price
// history is too short to compute the oscillator; callers must branch on it
// instead of treating zero as a reading.
type RSI struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// MACDData carries the MACD line, signal line and histogram. The all-zero
// value is the insufficient-data sentinel.
//
// The line uses fixed-window simple averages (12/26) rather than true
// exponential smoothing, and the signal line collapses to the line value:
// this reproduces the reference behavior and is documented as a
// simplification, not textbook MACD.
type MACDData struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// VolatilityData holds dispersion metrics for a price window. The all-zero
// value is the insufficient-data sentinel.
type VolatilityData struct {
	StdDev          float64 `json:"std_dev"`
	PriceRange      float64 `json:"price_range"`
	VolatilityIndex float64 `json:"volatility_index"`
}

// TrendDirection classifies the windowed price direction.
type TrendDirection string

const (
	TrendBullish TrendDirection = "bullish"
	TrendBearish TrendDirection = "bearish"
	TrendNeutral TrendDirection = "neutral"
)

// TrendData is the first-vs-last price trend with a relative strength.
// {neutral, 0} is the insufficient-data sentinel.
type TrendData struct {
	Direction TrendDirection `json:"direction"`
	Strength  float64        `json:"strength"`
}

// BollingerBands holds the band triple. The all-zero value is the
// insufficient-data sentinel.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// MovingAverages carries the short and long simple moving averages used by
// the crossover strategy. A zero value means "insufficient data", distinct
// from a genuine zero average only for non-degenerate price input.
type MovingAverages struct {
	Short float64 `json:"short"`
	Long  float64 `json:"long"`
}

// TechnicalSnapshot is the full derived indicator set for one instrument at
// one point in time. It is a pure function of the price series: computed
// once per cycle and never mutated afterwards.
type TechnicalSnapshot struct {
	RSI            RSI            `json:"rsi"`
	MACD           MACDData       `json:"macd"`
	Volatility     VolatilityData `json:"volatility"`
	Trend          TrendData      `json:"trend"`
	Bollinger      BollingerBands `json:"bollinger"`
	MovingAverages MovingAverages `json:"moving_averages"`
}

// LiquiditySnapshot is derived from an OrderBookSnapshot: depth on each side,
// top-of-book pressure, and spread metrics. Malformed books degrade to zeros
// per metric rather than failing.
type LiquiditySnapshot struct {
	BidDepth         float64 `json:"bid_depth"`
	AskDepth         float64 `json:"ask_depth"`
	PressureRatio    float64 `json:"pressure_ratio"`
	Spread           float64 `json:"spread"`
	SpreadPercentage float64 `json:"spread_percentage"`
}
