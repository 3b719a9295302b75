package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mosquito/internal/core"
	"mosquito/internal/exchange/bittrex"
	"mosquito/internal/market"
)

const (
	defaultBaseURL = "https://bittrex.com/api/v1.1"
	defaultOutDir  = "data/bittrex"
)

type candleLine struct {
	Time        string  `json:"time"`
	Timestamp   int64   `json:"timestamp"`
	Pair        string  `json:"pair"`
	PeriodSec   int64   `json:"period_sec"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	QuoteVolume float64 `json:"quote_volume"`
}

type dateWriter struct {
	root        string
	currentDate string
	currentFile *os.File
}

func newDateWriter(root string) (*dateWriter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &dateWriter{root: root}, nil
}

func (w *dateWriter) write(date string, line []byte) error {
	if err := w.rotate(date); err != nil {
		return err
	}
	if _, err := w.currentFile.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

func (w *dateWriter) rotate(date string) error {
	if date == w.currentDate && w.currentFile != nil {
		return nil
	}
	if w.currentFile != nil {
		if err := w.currentFile.Sync(); err != nil {
			_ = w.currentFile.Close()
			w.currentFile = nil
			return err
		}
		if err := w.currentFile.Close(); err != nil {
			w.currentFile = nil
			return err
		}
		w.currentFile = nil
	}
	path := filepath.Join(w.root, date+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.currentFile = f
	w.currentDate = date
	return nil
}

func (w *dateWriter) close() error {
	if w == nil || w.currentFile == nil {
		return nil
	}
	if err := w.currentFile.Sync(); err != nil {
		_ = w.currentFile.Close()
		w.currentFile = nil
		return err
	}
	err := w.currentFile.Close()
	w.currentFile = nil
	return err
}

func main() {
	var (
		baseURL   string
		pair      string
		delimiter string
		interval  string
		periodSec int64
		hoursBack int64
		outDir    string
		timeout   int64
	)
	flag.StringVar(&baseURL, "base-url", defaultBaseURL, "exchange REST base url")
	flag.StringVar(&pair, "pair", "BTC_LTC", "pair, internal naming (BASE_QUOTE)")
	flag.StringVar(&delimiter, "delimiter", "-", "exchange wire pair delimiter")
	flag.StringVar(&interval, "interval", "fiveMin", "exchange-native tick interval")
	flag.Int64Var(&periodSec, "period-sec", 300, "normalized candle period in seconds")
	flag.Int64Var(&hoursBack, "hours-back", 24, "how many hours back from now")
	flag.StringVar(&outDir, "out-dir", defaultOutDir, "output root dir")
	flag.Int64Var(&timeout, "timeout-sec", 20, "http timeout seconds")
	flag.Parse()

	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" || periodSec <= 0 || hoursBack <= 0 {
		fatal("pair/period-sec/hours-back are required")
	}

	client := bittrex.NewClientWithOptions(bittrex.Options{
		RestBaseURL:    baseURL,
		HTTPTimeoutSec: timeout,
	})

	epochEnd := time.Now().UTC().Truncate(time.Duration(periodSec) * time.Second).Unix()
	epochStart := epochEnd - hoursBack*3600

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ticks, err := client.Ticks(ctx, core.WirePair(pair, delimiter), interval)
	if err != nil {
		fatal(err.Error())
	}
	if len(ticks) == 0 {
		fatal("got empty ticks for pair " + pair)
	}
	candles := market.Normalize(ticks, epochStart, epochEnd, periodSec)

	writer, err := newDateWriter(filepath.Join(outDir, pair))
	if err != nil {
		fatal(err.Error())
	}
	defer func() {
		if closeErr := writer.close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "close writer failed: %v\n", closeErr)
		}
	}()

	for _, c := range candles {
		ts := time.Unix(c.Timestamp, 0).UTC()
		line := candleLine{
			Time:        ts.Format(time.RFC3339),
			Timestamp:   c.Timestamp,
			Pair:        pair,
			PeriodSec:   periodSec,
			Open:        c.Open,
			High:        c.High,
			Low:         c.Low,
			Close:       c.Close,
			Volume:      c.Volume,
			QuoteVolume: c.QuoteVolume,
		}
		encoded, err := json.Marshal(line)
		if err != nil {
			fatal(err.Error())
		}
		if err := writer.write(ts.Format("2006-01-02"), encoded); err != nil {
			fatal(err.Error())
		}
	}
	fmt.Printf("wrote %d candles for %s to %s\n", len(candles), pair, filepath.Join(outDir, pair))
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
