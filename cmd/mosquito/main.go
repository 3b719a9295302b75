package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mosquito/internal/alert"
	"mosquito/internal/config"
	"mosquito/internal/exchange/bittrex"
	"mosquito/internal/store"
	"mosquito/internal/trader"
)

func main() {
	var (
		configPath string
		pair       string
		candleSize int
	)
	flag.StringVar(&configPath, "config", "config/config.yaml", "config yaml path")
	flag.StringVar(&pair, "pair", "BTC_LTC", "pair to probe, internal naming (BASE_QUOTE)")
	flag.IntVar(&candleSize, "candle-size", 5, "trailing volume window in minutes")
	flag.Parse()

	// Missing .env is fine; the environment may carry the keys directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err.Error())
	}
	logrus.SetLevel(cfg.LogLevel())

	alerts := buildAlertManager(cfg)
	if alerts != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := alerts.Close(closeCtx); err != nil {
				fmt.Fprintf(os.Stderr, "close alert manager failed: %v\n", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.State.Dir != "" {
		st, err = store.New(cfg.State.Dir)
		if err != nil {
			fatal(err.Error())
		}
	}
	registry, err := trader.LoadRegistry(st)
	if err != nil {
		fatal(err.Error())
	}

	client := bittrex.NewClient(cfg.Exchange)
	adapter := trader.New(client, trader.Options{
		TransactionFee: cfg.Exchange.TransactionFee.Decimal,
		PairDelimiter:  cfg.Exchange.PairDelimiter,
		TickInterval:   cfg.Exchange.TickInterval,
		Registry:       registry,
		Alerts:         alerts,
	})

	pairs, err := adapter.Pairs(ctx)
	if err != nil {
		fatal("list pairs: " + err.Error())
	}
	fmt.Printf("markets: %d\n", len(pairs))

	ticker, err := adapter.Ticker(ctx, pair, candleSize)
	if err != nil {
		fatal("ticker " + pair + ": " + err.Error())
	}
	fmt.Printf(
		"ticker pair=%s last=%s ask=%s bid=%s volume_%dm=%.8f\n",
		ticker.Pair, ticker.Last, ticker.Ask, ticker.Bid, candleSize, ticker.Volume,
	)

	balances, err := adapter.Balances(ctx)
	if err != nil {
		fatal("balances: " + err.Error())
	}
	fmt.Printf("balances: %d currencies\n", len(balances))
	for currency, available := range balances {
		fmt.Printf("  %s available=%s\n", currency, available)
	}

	open, err := adapter.OpenOrders(ctx, "")
	if err != nil {
		fatal("open orders: " + err.Error())
	}
	fmt.Printf("open orders on exchange: %d, recorded locally: %d\n", len(open), registry.Len())
}

func buildAlertManager(cfg config.Config) *alert.Manager {
	tg := cfg.Alerts.Telegram
	if !tg.Enabled {
		return nil
	}
	notifier := alert.NewTelegramNotifier(
		tg.BotToken,
		tg.ChatID,
		tg.APIBaseURL,
		time.Duration(tg.TimeoutSec)*time.Second,
	)
	return alert.NewManager("bittrex", notifier)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
