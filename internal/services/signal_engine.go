package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/models"
)

// Rule thresholds and weights for the signal battery.
const (
	RSIOversold       = 30.0
	RSINearOversold   = 45.0
	RSIOverbought     = 70.0
	RSINearOverbought = 65.0

	MACDNoiseFloor     = 0.01
	TrendStrengthFloor = 0.02

	weightStrong   = 3
	weightMomentum = 2
	weightWeak     = 1
)

// SignalEngine evaluates the fixed rule battery against a TechnicalSnapshot
// and aggregates the emitted signals into a Recommendation. It holds no
// state between cycles: the same snapshot always produces the same output.
type SignalEngine struct {
	logger *logrus.Logger
}

// NewSignalEngine creates a signal engine.
func NewSignalEngine(logger *logrus.Logger) *SignalEngine {
	return &SignalEngine{logger: logger}
}

// Evaluate runs the rule battery in fixed order (RSI, then MACD, then trend)
// so the emitted signal list is a deterministic audit trail. Undefined RSI or
// sentinel trend/MACD data suppresses the corresponding rule.
func (se *SignalEngine) Evaluate(tech models.TechnicalSnapshot) []models.Signal {
	var signals []models.Signal

	if tech.RSI.Valid {
		rsi := tech.RSI.Value
		switch {
		case rsi < RSIOversold:
			signals = append(signals, models.Signal{
				Direction: models.SignalBuy,
				Reason:    fmt.Sprintf("RSI oversold (%.2f)", rsi),
				Weight:    weightStrong,
			})
		case rsi < RSINearOversold:
			signals = append(signals, models.Signal{
				Direction: models.SignalBuy,
				Reason:    fmt.Sprintf("RSI approaching oversold (%.2f)", rsi),
				Weight:    weightWeak,
			})
		case rsi > RSIOverbought:
			signals = append(signals, models.Signal{
				Direction: models.SignalSell,
				Reason:    fmt.Sprintf("RSI overbought (%.2f)", rsi),
				Weight:    weightStrong,
			})
		case rsi > RSINearOverbought:
			signals = append(signals, models.Signal{
				Direction: models.SignalSell,
				Reason:    fmt.Sprintf("RSI approaching overbought (%.2f)", rsi),
				Weight:    weightWeak,
			})
		}
	}

	// Histogram magnitudes at or below the noise floor emit nothing.
	if histogram := tech.MACD.Histogram; histogram > MACDNoiseFloor {
		signals = append(signals, models.Signal{
			Direction: models.SignalBuy,
			Reason:    fmt.Sprintf("MACD positive momentum (%.2f)", histogram),
			Weight:    weightMomentum,
		})
	} else if histogram < -MACDNoiseFloor {
		signals = append(signals, models.Signal{
			Direction: models.SignalSell,
			Reason:    fmt.Sprintf("MACD negative momentum (%.2f)", histogram),
			Weight:    weightMomentum,
		})
	}

	if tech.Trend.Strength > TrendStrengthFloor {
		switch tech.Trend.Direction {
		case models.TrendBullish:
			signals = append(signals, models.Signal{
				Direction: models.SignalBuy,
				Reason:    fmt.Sprintf("Strong uptrend (%.2f%%)", tech.Trend.Strength*100),
				Weight:    weightStrong,
			})
		case models.TrendBearish:
			signals = append(signals, models.Signal{
				Direction: models.SignalSell,
				Reason:    fmt.Sprintf("Strong downtrend (%.2f%%)", tech.Trend.Strength*100),
				Weight:    weightStrong,
			})
		}
	}

	return signals
}

// Recommend aggregates the battery's signals into an action with a
// confidence. Confidence is the winning side's share of total weight; with no
// signals or a tied vote the action is HOLD at exactly 0.5.
func (se *SignalEngine) Recommend(tech models.TechnicalSnapshot) models.Recommendation {
	signals := se.Evaluate(tech)

	buyWeight, sellWeight := 0, 0
	for _, s := range signals {
		switch s.Direction {
		case models.SignalBuy:
			buyWeight += s.Weight
		case models.SignalSell:
			sellWeight += s.Weight
		}
	}

	action := models.ActionHold
	confidence := 0.5
	total := buyWeight + sellWeight
	switch {
	case buyWeight > sellWeight:
		action = models.ActionBuy
		confidence = float64(buyWeight) / float64(total)
	case sellWeight > buyWeight:
		action = models.ActionSell
		confidence = float64(sellWeight) / float64(total)
	}

	se.logger.WithFields(logrus.Fields{
		"action":      action,
		"confidence":  confidence,
		"buy_weight":  buyWeight,
		"sell_weight": sellWeight,
		"signals":     len(signals),
	}).Debug("Recommendation computed")

	return models.Recommendation{
		Action:     action,
		Confidence: confidence,
		Signals:    signals,
		Timestamp:  time.Now().UTC(),
	}
}

// Advisory market-condition thresholds. These tag the analysis output and do
// not feed the weighted vote.
const (
	HighLiquiditySpreadPct = 0.0005
	LowLiquiditySpreadPct  = 0.002
	HighVolatilityIndex    = 0.002
	LowVolatilityIndex     = 0.0005
)

// ClassifyConditions derives the advisory liquidity and volatility tags.
func ClassifyConditions(liquidity models.LiquiditySnapshot, volatility models.VolatilityData) models.MarketConditions {
	liquidityState := models.ConditionNormal
	if liquidity.SpreadPercentage < HighLiquiditySpreadPct {
		liquidityState = models.ConditionHigh
	} else if liquidity.SpreadPercentage > LowLiquiditySpreadPct {
		liquidityState = models.ConditionLow
	}

	volatilityState := models.ConditionNormal
	if volatility.VolatilityIndex > HighVolatilityIndex {
		volatilityState = models.ConditionHigh
	} else if volatility.VolatilityIndex < LowVolatilityIndex {
		volatilityState = models.ConditionLow
	}

	return models.MarketConditions{
		LiquidityState:  liquidityState,
		VolatilityState: volatilityState,
	}
}
