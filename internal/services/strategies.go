package services

import (
	"github.com/acoopRD/poc-finance/internal/models"
)

// BollingerBandStrategy votes sell above the upper band, buy below the lower
// band, hold between. The all-zero band sentinel (insufficient history) holds.
func BollingerBandStrategy(bands models.BollingerBands, currentPrice float64) models.StrategyVerdict {
	if bands == (models.BollingerBands{}) {
		return models.VerdictHold
	}
	switch {
	case currentPrice > bands.Upper:
		return models.VerdictSell
	case currentPrice < bands.Lower:
		return models.VerdictBuy
	default:
		return models.VerdictHold
	}
}

// MACrossoverStrategy votes buy when the short average sits above the long
// one and sell when below. A zero average means insufficient history for that
// window, which holds rather than voting on a sentinel.
func MACrossoverStrategy(ma models.MovingAverages) models.StrategyVerdict {
	if ma.Short == 0 || ma.Long == 0 {
		return models.VerdictHold
	}
	switch {
	case ma.Short > ma.Long:
		return models.VerdictBuy
	case ma.Short < ma.Long:
		return models.VerdictSell
	default:
		return models.VerdictHold
	}
}

// EvaluateStrategies bundles the advisory strategy verdicts for a snapshot.
func EvaluateStrategies(tech models.TechnicalSnapshot, currentPrice float64) models.StrategyVerdicts {
	return models.StrategyVerdicts{
		BollingerBand: BollingerBandStrategy(tech.Bollinger, currentPrice),
		MACrossover:   MACrossoverStrategy(tech.MovingAverages),
	}
}
