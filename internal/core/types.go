package core

import (
	"github.com/shopspring/decimal"
)

type TradeState string

const (
	None TradeState = "none"
	Buy  TradeState = "buy"
	Sell TradeState = "sell"
)

// RawTick is an exchange-native candlestick record at whatever granularity
// the exchange ships. Timestamps are epoch seconds.
type RawTick struct {
	High            float64
	Low             float64
	Open            float64
	Close           float64
	Volume          float64
	QuoteVolume     float64
	Timestamp       int64
	WeightedAverage float64
}

// Candle is a RawTick resampled onto a fixed-period grid. Its timestamp is
// always epochStart + k*period for the window it was produced for.
type Candle struct {
	High            float64
	Low             float64
	Open            float64
	Close           float64
	Volume          float64
	QuoteVolume     float64
	Timestamp       int64
	WeightedAverage float64
}

// TradeRecord is one entry of the exchange's public market history. The
// timestamp stays textual until aggregation; the exchange appends a
// fractional second part inconsistently.
type TradeRecord struct {
	Timestamp string
	Quantity  float64
}

// Quote is the real-time ticker snapshot for a single market.
type Quote struct {
	Last decimal.Decimal
	Ask  decimal.Decimal
	Bid  decimal.Decimal
}

// Ticker is a Quote enriched with the trailing trade volume, keyed by the
// internal pair name.
type Ticker struct {
	Pair   string
	Last   decimal.Decimal
	Ask    decimal.Decimal
	Bid    decimal.Decimal
	Volume float64
	Time   int64
}

// Balances maps currency symbol to available amount. It is rebuilt on every
// fetch and contains exactly the entries the exchange returned, zero
// balances included.
type Balances map[string]decimal.Decimal

// MarketSummary identifies one tradeable market in the exchange's wire
// naming.
type MarketSummary struct {
	Name string
}

// OpenOrder is an order resting on the exchange book.
type OpenOrder struct {
	UUID              string
	Market            string
	Type              string
	Quantity          decimal.Decimal
	QuantityRemaining decimal.Decimal
	Limit             decimal.Decimal
}

// TradeAction is a single instruction from the strategy engine. When
// BuySellAll is set the amount is resolved from the live balance snapshot
// right before submission.
type TradeAction struct {
	Pair   string
	Action TradeState
	Amount decimal.Decimal
	Rate   decimal.Decimal
	// BuySellAll requests an all-in amount: the entire available balance of
	// the relevant side, net of the transaction fee.
	BuySellAll bool
}
