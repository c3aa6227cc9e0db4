// Package orderbook derives microstructure metrics from a bid/ask snapshot.
// Analysis never aborts the pipeline for one instrument's bad data: malformed
// or empty books degrade to zero values for the affected metrics.
package orderbook

import (
	"github.com/acoopRD/poc-finance/internal/models"
)

// DefaultDepthLevels is the number of levels per side summed for pressure.
const DefaultDepthLevels = 10

// PressureMetrics is the top-of-book pressure view of one snapshot.
type PressureMetrics struct {
	BidVolume     float64 `json:"bid_volume"`
	AskVolume     float64 `json:"ask_volume"`
	PressureRatio float64 `json:"pressure_ratio"`
	Spread        float64 `json:"spread"`
}

// AnalyzePressure sums size across the top topK levels on each side.
// The pressure ratio is bid volume over ask volume, 0 when ask volume is 0;
// the spread is best ask minus best bid, 0 when either side is empty.
func AnalyzePressure(book models.OrderBookSnapshot, topK int) PressureMetrics {
	if topK <= 0 {
		topK = DefaultDepthLevels
	}

	bidVolume := levelVolume(book.Bids, topK)
	askVolume := levelVolume(book.Asks, topK)

	ratio := 0.0
	if askVolume != 0 {
		ratio = bidVolume / askVolume
	}

	spread := 0.0
	if len(book.Bids) > 0 && len(book.Asks) > 0 {
		spread = book.Asks[0].Price.Sub(book.Bids[0].Price).InexactFloat64()
	}

	return PressureMetrics{
		BidVolume:     bidVolume,
		AskVolume:     askVolume,
		PressureRatio: ratio,
		Spread:        spread,
	}
}

// AnalyzeLiquidity sums size across all levels on each side and computes the
// relative spread. Spread percentage is (best ask − best bid) / best bid,
// 0 when either side is empty or the best bid is 0.
func AnalyzeLiquidity(book models.OrderBookSnapshot) models.LiquiditySnapshot {
	bidDepth := levelVolume(book.Bids, len(book.Bids))
	askDepth := levelVolume(book.Asks, len(book.Asks))

	spreadPct := 0.0
	if len(book.Bids) > 0 && len(book.Asks) > 0 {
		bestBid := book.Bids[0].Price.InexactFloat64()
		bestAsk := book.Asks[0].Price.InexactFloat64()
		if bestBid != 0 {
			spreadPct = (bestAsk - bestBid) / bestBid
		}
	}

	return models.LiquiditySnapshot{
		BidDepth:         bidDepth,
		AskDepth:         askDepth,
		SpreadPercentage: spreadPct,
	}
}

// Analyze combines pressure and liquidity into one LiquiditySnapshot.
func Analyze(book models.OrderBookSnapshot, topK int) models.LiquiditySnapshot {
	pressure := AnalyzePressure(book, topK)
	liquidity := AnalyzeLiquidity(book)
	liquidity.PressureRatio = pressure.PressureRatio
	liquidity.Spread = pressure.Spread
	return liquidity
}

func levelVolume(levels []models.PriceLevel, max int) float64 {
	if max > len(levels) {
		max = len(levels)
	}
	volume := 0.0
	for _, lvl := range levels[:max] {
		volume += lvl.Size.InexactFloat64()
	}
	return volume
}
