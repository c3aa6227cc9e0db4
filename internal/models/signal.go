package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalDirection is the side a single rule votes for.
type SignalDirection string

const (
	SignalBuy  SignalDirection = "BUY"
	SignalSell SignalDirection = "SELL"
)

// Action is the aggregate decision for one instrument in one cycle.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Signal is a single weighted vote emitted by one rule of the signal battery.
type Signal struct {
	Direction SignalDirection `json:"direction"`
	Reason    string          `json:"reason"`
	Weight    int             `json:"weight"`
}

// Recommendation aggregates the signals fired for one instrument at one point
// in time. Confidence is the winning side's share of total weight, in [0,1];
// with no signals or a tie it is exactly 0.5 and the action is HOLD.
// Immutable once produced.
type Recommendation struct {
	Action     Action    `json:"action"`
	Confidence float64   `json:"confidence"`
	Signals    []Signal  `json:"signals"`
	Timestamp  time.Time `json:"timestamp"`
}

// ConditionState tags an advisory market condition.
type ConditionState string

const (
	ConditionHigh   ConditionState = "high"
	ConditionNormal ConditionState = "normal"
	ConditionLow    ConditionState = "low"
)

// MarketConditions are descriptive tags attached to an analysis report. They
// do not feed the weighted vote.
type MarketConditions struct {
	LiquidityState  ConditionState `json:"liquidity_state"`
	VolatilityState ConditionState `json:"volatility_state"`
}

// StrategyVerdict is the advisory output of a standalone strategy rule.
type StrategyVerdict string

const (
	VerdictBuy  StrategyVerdict = "buy"
	VerdictSell StrategyVerdict = "sell"
	VerdictHold StrategyVerdict = "hold"
)

// StrategyVerdicts collects the advisory strategy outputs.
type StrategyVerdicts struct {
	BollingerBand StrategyVerdict `json:"bollinger_band"`
	MACrossover   StrategyVerdict `json:"ma_crossover"`
}

// AnalysisReport is the per-instrument, per-cycle unit handed to downstream
// consumers: ticker context, derived snapshots, the recommendation and the
// advisory tags.
type AnalysisReport struct {
	ID             string            `json:"id"`
	Symbol         string            `json:"symbol"`
	Ticker         TickerSnapshot    `json:"ticker"`
	Technical      TechnicalSnapshot `json:"technical"`
	Liquidity      LiquiditySnapshot `json:"liquidity"`
	Recommendation Recommendation    `json:"recommendation"`
	Conditions     MarketConditions  `json:"market_conditions"`
	Strategies     StrategyVerdicts  `json:"strategies"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

// TradeInstruction is the core's output to the execution collaborator. The
// core only decides; whoever consumes this record places it on the exchange.
type TradeInstruction struct {
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}
