// Package indicators implements the technical indicator battery over a price
// series. Every function is total: insufficient or degenerate input yields the
// documented sentinel value, never an error, so callers can compose indicators
// without per-call error handling.
package indicators

import (
	"math"

	"github.com/acoopRD/poc-finance/internal/models"
)

// Default look-back windows.
const (
	DefaultRSIPeriod       = 14
	MACDFastPeriod         = 12
	MACDSlowPeriod         = 26
	MACDSignalPeriod       = 9
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
	ShortMAPeriod          = 50
	LongMAPeriod           = 200
)

// RSI computes the Relative Strength Index over the last period deltas.
// It returns the undefined sentinel (Valid=false) when fewer than period
// price points exist. A window with zero average loss reads 100 when gains
// are present and 50 when the market is flat; a flat market is neutral, not
// overbought.
func RSI(prices []float64, period int) models.RSI {
	if period <= 0 || len(prices) < period {
		return models.RSI{}
	}

	var gains, losses []float64
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains = append(gains, change)
		} else if change < 0 {
			losses = append(losses, -change)
		}
	}

	avgGain := tailSum(gains, period) / float64(period)
	avgLoss := tailSum(losses, period) / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return models.RSI{Value: 100, Valid: true}
		}
		return models.RSI{Value: 50, Valid: true}
	}

	rs := avgGain / avgLoss
	return models.RSI{Value: 100 - (100 / (1 + rs)), Valid: true}
}

// MACD computes the simplified MACD over the series. Fewer than 26 points
// yields the all-zero sentinel.
//
// The fast and slow lines are fixed-window simple averages rather than true
// EMAs, and the signal line is the line value itself, so the histogram
// collapses to zero. This reproduces the reference behavior and is kept as
// the reproducible contract; it is not textbook MACD.
func MACD(prices []float64) models.MACDData {
	if len(prices) < MACDSlowPeriod {
		return models.MACDData{}
	}

	fast := MovingAverage(prices, MACDFastPeriod)
	slow := MovingAverage(prices, MACDSlowPeriod)
	line := fast - slow
	signal := line

	return models.MACDData{
		MACD:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
}

// Volatility computes the sample standard deviation, price range and the
// normalized volatility index (std-dev over mean) of the series. Fewer than
// two points, or a zero mean, yields the all-zero sentinel.
func Volatility(prices []float64) models.VolatilityData {
	if len(prices) < 2 {
		return models.VolatilityData{}
	}

	mean := sum(prices) / float64(len(prices))
	if mean == 0 {
		return models.VolatilityData{}
	}

	stdDev := sampleStdDev(prices, mean)
	low, high := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}

	return models.VolatilityData{
		StdDev:          stdDev,
		PriceRange:      high - low,
		VolatilityIndex: stdDev / mean,
	}
}

// Trend compares the first and last price of the window. Fewer than two
// points yields {neutral, 0}. Strength is the relative move |last-first|/first,
// or 0 when the first price is 0.
func Trend(prices []float64) models.TrendData {
	if len(prices) < 2 {
		return models.TrendData{Direction: models.TrendNeutral}
	}

	first := prices[0]
	last := prices[len(prices)-1]

	direction := models.TrendNeutral
	switch {
	case last > first:
		direction = models.TrendBullish
	case last < first:
		direction = models.TrendBearish
	}

	strength := 0.0
	if first != 0 {
		strength = math.Abs(last-first) / first
	}

	return models.TrendData{Direction: direction, Strength: strength}
}

// BollingerBands computes the band triple over the last period points with k
// standard deviations. Fewer than period points yields the all-zero sentinel.
func BollingerBands(prices []float64, period int, k float64) models.BollingerBands {
	if period <= 0 || len(prices) < period {
		return models.BollingerBands{}
	}

	window := prices[len(prices)-period:]
	middle := sum(window) / float64(period)
	stdDev := sampleStdDev(window, middle)

	return models.BollingerBands{
		Upper:  middle + k*stdDev,
		Middle: middle,
		Lower:  middle - k*stdDev,
	}
}

// MovingAverage is the simple average of the last period points. It returns 0
// when fewer points exist than period; callers must treat that as
// "insufficient data", distinct from a true zero average.
func MovingAverage(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	return sum(prices[len(prices)-period:]) / float64(period)
}

// Snapshot derives the full TechnicalSnapshot for a price series using the
// default look-back windows. It is a pure function of the input: identical
// series yield identical snapshots.
func Snapshot(series models.PriceSeries) models.TechnicalSnapshot {
	prices := series.Prices()
	return models.TechnicalSnapshot{
		RSI:        RSI(prices, DefaultRSIPeriod),
		MACD:       MACD(prices),
		Volatility: Volatility(prices),
		Trend:      Trend(prices),
		Bollinger:  BollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerK),
		MovingAverages: models.MovingAverages{
			Short: MovingAverage(prices, ShortMAPeriod),
			Long:  MovingAverage(prices, LongMAPeriod),
		},
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// tailSum sums the last n values, or all of them when fewer exist.
func tailSum(values []float64, n int) float64 {
	if len(values) > n {
		values = values[len(values)-n:]
	}
	return sum(values)
}

// sampleStdDev is the n-1 denominator standard deviation around mean.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
