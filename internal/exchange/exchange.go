package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"mosquito/internal/core"
)

// Endpoint is the narrow surface the adapter needs from an exchange backend.
// Market names are in the exchange's wire naming; the adapter translates
// pair names at every call. Implementations perform one blocking round trip
// per call, with no retry layer.
type Endpoint interface {
	MarketSummaries(ctx context.Context) ([]core.MarketSummary, error)
	Ticks(ctx context.Context, market, interval string) ([]core.RawTick, error)
	Balances(ctx context.Context) (core.Balances, error)
	Ticker(ctx context.Context, market string) (core.Quote, error)
	MarketHistory(ctx context.Context, market string, limit int) ([]core.TradeRecord, error)
	BuyLimit(ctx context.Context, market string, amount, rate decimal.Decimal) (string, error)
	SellLimit(ctx context.Context, market string, amount, rate decimal.Decimal) (string, error)
	Cancel(ctx context.Context, orderID string) error
	OpenOrders(ctx context.Context, market string) ([]core.OpenOrder, error)
}
