package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoopRD/poc-finance/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func validRSI(value float64) models.RSI {
	return models.RSI{Value: value, Valid: true}
}

func TestEvaluate_RSIRules(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	tests := []struct {
		name      string
		rsi       models.RSI
		direction models.SignalDirection
		weight    int
		emitted   bool
	}{
		{"oversold", validRSI(25), models.SignalBuy, 3, true},
		{"approaching oversold", validRSI(40), models.SignalBuy, 1, true},
		{"boundary 30 is near zone", validRSI(30), models.SignalBuy, 1, true},
		{"neutral 50", validRSI(50), "", 0, false},
		{"boundary 45 silent", validRSI(45), "", 0, false},
		{"boundary 65 silent", validRSI(65), "", 0, false},
		{"approaching overbought", validRSI(68), models.SignalSell, 1, true},
		{"boundary 70 is near zone", validRSI(70), models.SignalSell, 1, true},
		{"overbought", validRSI(75), models.SignalSell, 3, true},
		{"undefined suppressed", models.RSI{}, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := engine.Evaluate(models.TechnicalSnapshot{RSI: tt.rsi})
			if !tt.emitted {
				assert.Empty(t, signals)
				return
			}
			require.Len(t, signals, 1)
			assert.Equal(t, tt.direction, signals[0].Direction)
			assert.Equal(t, tt.weight, signals[0].Weight)
		})
	}
}

func TestEvaluate_MACDRules(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	tests := []struct {
		name      string
		histogram float64
		direction models.SignalDirection
		emitted   bool
	}{
		{"positive momentum", 0.02, models.SignalBuy, true},
		{"negative momentum", -0.02, models.SignalSell, true},
		{"at noise floor silent", 0.01, "", false},
		{"within noise floor silent", -0.005, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := engine.Evaluate(models.TechnicalSnapshot{
				MACD: models.MACDData{Histogram: tt.histogram},
			})
			if !tt.emitted {
				assert.Empty(t, signals)
				return
			}
			require.Len(t, signals, 1)
			assert.Equal(t, tt.direction, signals[0].Direction)
			assert.Equal(t, 2, signals[0].Weight)
		})
	}
}

func TestEvaluate_TrendRules(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	signals := engine.Evaluate(models.TechnicalSnapshot{
		Trend: models.TrendData{Direction: models.TrendBullish, Strength: 0.03},
	})
	require.Len(t, signals, 1)
	assert.Equal(t, models.SignalBuy, signals[0].Direction)
	assert.Equal(t, 3, signals[0].Weight)

	// Weak trends and neutral strong moves emit nothing.
	assert.Empty(t, engine.Evaluate(models.TechnicalSnapshot{
		Trend: models.TrendData{Direction: models.TrendBearish, Strength: 0.02},
	}))
	assert.Empty(t, engine.Evaluate(models.TechnicalSnapshot{
		Trend: models.TrendData{Direction: models.TrendNeutral, Strength: 0.5},
	}))
}

func TestEvaluate_FixedOrder(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	signals := engine.Evaluate(models.TechnicalSnapshot{
		RSI:   validRSI(25),
		MACD:  models.MACDData{Histogram: 0.02},
		Trend: models.TrendData{Direction: models.TrendBullish, Strength: 0.03},
	})

	require.Len(t, signals, 3)
	assert.Contains(t, signals[0].Reason, "RSI")
	assert.Contains(t, signals[1].Reason, "MACD")
	assert.Contains(t, signals[2].Reason, "uptrend")
}

func TestRecommend_UnanimousBuy(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	rec := engine.Recommend(models.TechnicalSnapshot{
		RSI:   validRSI(25),
		MACD:  models.MACDData{Histogram: 0.02},
		Trend: models.TrendData{Direction: models.TrendBullish, Strength: 0.03},
	})

	assert.Equal(t, models.ActionBuy, rec.Action)
	assert.Equal(t, 1.0, rec.Confidence)
	assert.Len(t, rec.Signals, 3)
}

func TestRecommend_SingleSell(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	rec := engine.Recommend(models.TechnicalSnapshot{
		RSI:   validRSI(72),
		MACD:  models.MACDData{Histogram: -0.005},
		Trend: models.TrendData{Direction: models.TrendBearish, Strength: 0.01},
	})

	assert.Equal(t, models.ActionSell, rec.Action)
	assert.Equal(t, 1.0, rec.Confidence)
	assert.Len(t, rec.Signals, 1)
}

func TestRecommend_MixedVote(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	// Buy weight 3 (RSI) vs sell weight 2 (MACD): buy wins at 3/5.
	rec := engine.Recommend(models.TechnicalSnapshot{
		RSI:  validRSI(25),
		MACD: models.MACDData{Histogram: -0.02},
	})

	assert.Equal(t, models.ActionBuy, rec.Action)
	assert.InDelta(t, 0.6, rec.Confidence, 1e-9)
}

func TestRecommend_TieAndEmpty(t *testing.T) {
	engine := NewSignalEngine(testLogger())

	// No signals at all.
	rec := engine.Recommend(models.TechnicalSnapshot{RSI: validRSI(50)})
	assert.Equal(t, models.ActionHold, rec.Action)
	assert.Equal(t, 0.5, rec.Confidence)

	// Weight-3 buy (trend) against weight-3 sell (RSI) is a tie.
	rec = engine.Recommend(models.TechnicalSnapshot{
		RSI:   validRSI(75),
		Trend: models.TrendData{Direction: models.TrendBullish, Strength: 0.05},
	})
	assert.Equal(t, models.ActionHold, rec.Action)
	assert.Equal(t, 0.5, rec.Confidence)
}

func TestClassifyConditions(t *testing.T) {
	tests := []struct {
		name       string
		spreadPct  float64
		volIndex   float64
		liquidity  models.ConditionState
		volatility models.ConditionState
	}{
		{"tight spread calm market", 0.0001, 0.0001, models.ConditionHigh, models.ConditionLow},
		{"wide spread turbulent market", 0.01, 0.01, models.ConditionLow, models.ConditionHigh},
		{"normal band", 0.001, 0.001, models.ConditionNormal, models.ConditionNormal},
		{"boundaries are normal", 0.0005, 0.002, models.ConditionNormal, models.ConditionNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions := ClassifyConditions(
				models.LiquiditySnapshot{SpreadPercentage: tt.spreadPct},
				models.VolatilityData{VolatilityIndex: tt.volIndex},
			)
			assert.Equal(t, tt.liquidity, conditions.LiquidityState)
			assert.Equal(t, tt.volatility, conditions.VolatilityState)
		})
	}
}
