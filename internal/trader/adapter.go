package trader

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mosquito/internal/alert"
	"mosquito/internal/core"
	"mosquito/internal/exchange"
	"mosquito/internal/market"
)

// Adapter normalizes one exchange backend into the contract the strategy
// engine consumes: fixed-interval candles, a currency balance map, and
// buy/sell/cancel execution with all-in amount resolution. It owns the
// registry of orders the exchange has accepted.
type Adapter struct {
	endpoint     exchange.Endpoint
	fee          decimal.Decimal // percent
	delimiter    string
	tickInterval string
	log          logrus.FieldLogger
	registry     *Registry
	alerts       alert.Alerter
	now          func() time.Time
}

type Options struct {
	// TransactionFee is the proportional fee in percent deducted from
	// resolved all-in amounts.
	TransactionFee decimal.Decimal
	// PairDelimiter is the exchange's wire delimiter; defaults to "-".
	PairDelimiter string
	// TickInterval is the exchange-native candle granularity requested from
	// the ticks endpoint; defaults to "fiveMin".
	TickInterval string
	Logger       logrus.FieldLogger
	Registry     *Registry
	Alerts       alert.Alerter
}

func New(endpoint exchange.Endpoint, opts Options) *Adapter {
	delimiter := opts.PairDelimiter
	if delimiter == "" {
		delimiter = "-"
	}
	tickInterval := opts.TickInterval
	if tickInterval == "" {
		tickInterval = "fiveMin"
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry(nil)
	}
	return &Adapter{
		endpoint:     endpoint,
		fee:          opts.TransactionFee,
		delimiter:    delimiter,
		tickInterval: tickInterval,
		log:          log,
		registry:     registry,
		alerts:       opts.Alerts,
		now:          time.Now,
	}
}

// Registry exposes the adapter-owned open-orders registry.
func (a *Adapter) Registry() *Registry { return a.registry }

// Pairs lists all tradeable pairs in the internal naming.
func (a *Adapter) Pairs(ctx context.Context) ([]string, error) {
	summaries, err := a.endpoint.MarketSummaries(ctx)
	if err != nil {
		return nil, err
	}
	pairs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		pairs = append(pairs, core.InternalPair(s.Name, a.delimiter))
	}
	return pairs, nil
}

// Candles fetches raw ticks for the pair and resamples them onto the
// [epochStart, epochEnd) grid at period spacing. An empty feed yields an
// empty result and a diagnostic, not a failure.
func (a *Adapter) Candles(ctx context.Context, pair string, epochStart, epochEnd, period int64) ([]core.Candle, error) {
	ticks, err := a.endpoint.Ticks(ctx, core.WirePair(pair, a.delimiter), a.tickInterval)
	if err != nil {
		return nil, err
	}
	if len(ticks) == 0 {
		a.log.WithError(core.ErrEmptyFeed).WithField("pair", pair).Warn("got empty ticks")
		a.alertImportant("empty_feed", map[string]string{"pair": pair})
		return []core.Candle{}, nil
	}
	return market.Normalize(ticks, epochStart, epochEnd, period), nil
}

// Balances returns the available amount per currency, exactly as the
// exchange reported it.
func (a *Adapter) Balances(ctx context.Context) (core.Balances, error) {
	return a.endpoint.Balances(ctx)
}

// Ticker returns the real-time quote for the pair together with the trade
// volume of the trailing candleSize minutes.
func (a *Adapter) Ticker(ctx context.Context, pair string, candleSize int) (core.Ticker, error) {
	wire := core.WirePair(pair, a.delimiter)
	quote, err := a.endpoint.Ticker(ctx, wire)
	if err != nil {
		return core.Ticker{}, err
	}
	history, err := a.endpoint.MarketHistory(ctx, wire, 100)
	if err != nil {
		return core.Ticker{}, err
	}
	now := a.now()
	return core.Ticker{
		Pair:   pair,
		Last:   quote.Last,
		Ask:    quote.Ask,
		Bid:    quote.Bid,
		Volume: market.VolumeWithin(history, candleSize, now),
		Time:   now.UTC().Unix(),
	}, nil
}

// CancelOrder cancels a previously placed order by its exchange uuid.
func (a *Adapter) CancelOrder(ctx context.Context, orderID string) error {
	return a.endpoint.Cancel(ctx, orderID)
}

// OpenOrders lists orders resting on the book, optionally limited to one
// pair (empty pair means all).
func (a *Adapter) OpenOrders(ctx context.Context, pair string) ([]core.OpenOrder, error) {
	wire := ""
	if pair != "" {
		wire = core.WirePair(pair, a.delimiter)
	}
	return a.endpoint.OpenOrders(ctx, wire)
}

// AllInAmount resolves the trade amount that spends the entire available
// balance of the relevant side, net of the transaction fee. Conditions that
// make the amount unresolvable yield zero plus a typed error; the result is
// never negative.
func (a *Adapter) AllInAmount(balances core.Balances, action core.TradeState, pair string, rate decimal.Decimal) (decimal.Decimal, error) {
	if action == core.None {
		return decimal.Zero, nil
	}
	if rate.IsZero() {
		return decimal.Zero, core.ErrZeroRate
	}
	base, quote, ok := core.SplitPair(pair)
	if !ok {
		return decimal.Zero, core.ErrInsufficientAsset
	}

	amount := decimal.Zero
	if action == core.Buy {
		if assets, held := balances[base]; held {
			amount = assets.Div(rate)
		}
	} else if action == core.Sell {
		if assets, held := balances[quote]; held {
			amount = assets
		}
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, core.ErrInsufficientAsset
	}

	feeAmount := a.fee.Mul(amount).Div(decimal.NewFromInt(100))
	return amount.Sub(feeAmount), nil
}

// Execute submits the actions sequentially and returns the surviving list:
// no-op actions (action none, or amount resolving to zero) are dropped,
// rejected actions are kept unmodified for the caller to retry or discard.
// Each all-in action resolves against a balance snapshot fetched right
// before it, so balances seen by later actions may already be stale.
// Transport failures abort the batch and return the actions processed so
// far alongside the error.
func (a *Adapter) Execute(ctx context.Context, actions []core.TradeAction) ([]core.TradeAction, error) {
	out := make([]core.TradeAction, 0, len(actions))
	for _, action := range actions {
		if action.BuySellAll {
			balances, err := a.Balances(ctx)
			if err != nil {
				return out, err
			}
			amount, resolveErr := a.AllInAmount(balances, action.Action, action.Pair, action.Rate)
			if resolveErr != nil {
				a.log.WithError(resolveErr).WithField("pair", action.Pair).Warn("cannot resolve all-in amount")
			}
			action.Amount = amount
		}
		a.log.WithFields(logrus.Fields{
			"action":       action.Action,
			"pair":         action.Pair,
			"amount":       action.Amount,
			"rate":         action.Rate,
			"buy_sell_all": action.BuySellAll,
		}).Info("processing live action")

		if action.Action == core.None {
			continue
		}
		if action.Amount.IsZero() {
			a.log.WithField("pair", action.Pair).Warn("no assets to buy/sell, skipping action")
			continue
		}

		wire := core.WirePair(action.Pair, a.delimiter)
		var (
			orderID string
			err     error
		)
		switch action.Action {
		case core.Buy:
			orderID, err = a.endpoint.BuyLimit(ctx, wire, action.Amount, action.Rate)
		case core.Sell:
			orderID, err = a.endpoint.SellLimit(ctx, wire, action.Amount, action.Rate)
		}
		if err != nil {
			if isRejection(err) {
				a.log.WithError(err).WithFields(logrus.Fields{
					"action": action.Action,
					"pair":   action.Pair,
				}).Warn("order rejected")
				a.alertImportant("order_rejected", map[string]string{
					"action": string(action.Action),
					"pair":   action.Pair,
					"reason": err.Error(),
				})
				out = append(out, action)
				continue
			}
			return out, err
		}

		if regErr := a.registry.Add(orderID); regErr != nil {
			a.log.WithError(regErr).WithField("uuid", orderID).Warn("order placed but not recorded")
		}
		a.log.WithFields(logrus.Fields{
			"action": action.Action,
			"pair":   action.Pair,
			"amount": action.Amount,
			"uuid":   orderID,
		}).Info("order placed")
		a.alertImportant("order_placed", map[string]string{
			"action": string(action.Action),
			"pair":   action.Pair,
			"uuid":   orderID,
		})
		out = append(out, action)
	}
	return out, nil
}

// isRejection reports whether the exchange refused the order, as opposed to
// a transport failure. Rejections stay local to the action; everything else
// propagates.
func isRejection(err error) bool {
	return errors.Is(err, core.ErrOrderRejected) ||
		errors.Is(err, core.ErrInsufficientAsset) ||
		errors.Is(err, core.ErrOrderNotFound)
}

func (a *Adapter) alertImportant(event string, fields map[string]string) {
	if a.alerts == nil {
		return
	}
	a.alerts.Important(event, fields)
}
