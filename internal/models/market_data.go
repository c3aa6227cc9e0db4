package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickerSnapshot represents a point-in-time quote for one instrument.
type TickerSnapshot struct {
	Symbol       string          `json:"symbol"`
	Last         decimal.Decimal `json:"last"`
	MarkPrice    decimal.Decimal `json:"mark_price"`
	High24h      decimal.Decimal `json:"high_24h"`
	Low24h       decimal.Decimal `json:"low_24h"`
	Volume24h    decimal.Decimal `json:"volume_24h"`
	FundingRate  decimal.Decimal `json:"funding_rate"`
	OpenInterest decimal.Decimal `json:"open_interest"`
	Timestamp    time.Time       `json:"timestamp"`
}

// PriceLevel is a single (price, size) entry in an order book.
type PriceLevel struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// OrderBookSnapshot holds both sides of an order book: bids descending by
// price, asks ascending. Either side may be empty.
type OrderBookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// PricePoint is a timestamped mark price observation.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PriceSeries is a chronological sequence of mark prices for one instrument.
// The zero value (no points) is the explicit empty-series sentinel; building
// a series from empty input is not an error.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// NewPriceSeries builds a series from already-parsed price points.
func NewPriceSeries(symbol string, points []PricePoint) PriceSeries {
	return PriceSeries{Symbol: symbol, Points: points}
}

// IsEmpty reports whether the series carries no observations.
func (ps PriceSeries) IsEmpty() bool {
	return len(ps.Points) == 0
}

// Prices returns the raw price values in chronological order.
func (ps PriceSeries) Prices() []float64 {
	prices := make([]float64, len(ps.Points))
	for i, p := range ps.Points {
		prices[i] = p.Price
	}
	return prices
}

// MarketSnapshot bundles everything the pipeline needs for one instrument in
// one cycle, already deserialized by the market-data collaborator.
type MarketSnapshot struct {
	Ticker    TickerSnapshot    `json:"ticker"`
	OrderBook OrderBookSnapshot `json:"order_book"`
	History   PriceSeries       `json:"history"`
}
