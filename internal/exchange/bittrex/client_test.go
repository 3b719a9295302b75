package bittrex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"mosquito/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClientWithOptions(Options{
		APIKey:      "key",
		APISecret:   "secret",
		RestBaseURL: srv.URL,
	})
	return client, srv
}

func TestSignedRequestCarriesAPISign(t *testing.T) {
	var sawNonces []int64
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/getbalances" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("apikey") != "key" {
			t.Errorf("apikey param = %q, want key", q.Get("apikey"))
		}
		nonce, err := strconv.ParseInt(q.Get("nonce"), 10, 64)
		if err != nil {
			t.Errorf("nonce param = %q, not an integer", q.Get("nonce"))
		}
		sawNonces = append(sawNonces, nonce)
		want := sign("secret", "http://"+r.Host+r.URL.RequestURI())
		if got := r.Header.Get("apisign"); got != want {
			t.Errorf("apisign header = %q, want %q", got, want)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":[]}`))
	})

	for i := 0; i < 2; i++ {
		if _, err := client.Balances(context.Background()); err != nil {
			t.Fatalf("Balances() error = %v", err)
		}
	}
	if len(sawNonces) != 2 || sawNonces[1] <= sawNonces[0] {
		t.Fatalf("nonces = %v, want two strictly increasing values", sawNonces)
	}
}

func TestBalancesKeepZeroEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":[
			{"Currency":"BTC","Balance":1.5,"Available":1.2,"Pending":0.3},
			{"Currency":"DOGE","Balance":0,"Available":0,"Pending":0}
		]}`))
	})
	balances, err := client.Balances(context.Background())
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("Balances() len = %d, want 2 (zero balances are kept)", len(balances))
	}
	if !balances["BTC"].Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("BTC available = %s, want 1.2", balances["BTC"])
	}
	if !balances["DOGE"].IsZero() {
		t.Fatalf("DOGE available = %s, want 0", balances["DOGE"])
	}
}

func TestTicksParsing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/getticks" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("marketName") != "BTC-LTC" || q.Get("tickInterval") != "fiveMin" {
			t.Errorf("query = %v, want marketName=BTC-LTC tickInterval=fiveMin", q)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":[
			{"T":"2017-08-14T00:00:00","H":2,"L":1,"O":1.5,"C":1.8,"V":10,"BV":0.5},
			{"T":"2017-08-14T00:05:00","H":3,"L":2,"O":1.8,"C":2.5,"V":20,"BV":0.9}
		]}`))
	})
	ticks, err := client.Ticks(context.Background(), "BTC-LTC", "fiveMin")
	if err != nil {
		t.Fatalf("Ticks() error = %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("Ticks() len = %d, want 2", len(ticks))
	}
	if ticks[0].Timestamp != 1502668800 {
		t.Fatalf("ticks[0].Timestamp = %d, want 1502668800 (UTC)", ticks[0].Timestamp)
	}
	if ticks[1].Timestamp-ticks[0].Timestamp != 300 {
		t.Fatalf("tick spacing = %d, want 300", ticks[1].Timestamp-ticks[0].Timestamp)
	}
	if ticks[0].Open != 1.5 || ticks[0].QuoteVolume != 0.5 {
		t.Fatalf("ticks[0] = %+v, fields not mapped", ticks[0])
	}
}

func TestBuyLimitReturnsUUID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/buylimit" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("market") != "BTC-LTC" || q.Get("quantity") != "0.5" || q.Get("rate") != "0.01" {
			t.Errorf("query = %v, want market/quantity/rate set", q)
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":{"uuid":"614c34e4-8d71-11e3-94b5-425861b86ab6"}}`))
	})
	uuid, err := client.BuyLimit(context.Background(), "BTC-LTC",
		decimal.RequireFromString("0.5"), decimal.RequireFromString("0.01"))
	if err != nil {
		t.Fatalf("BuyLimit() error = %v", err)
	}
	if uuid != "614c34e4-8d71-11e3-94b5-425861b86ab6" {
		t.Fatalf("BuyLimit() uuid = %q", uuid)
	}
}

func TestEnvelopeFailureClassification(t *testing.T) {
	cases := []struct {
		name    string
		message string
		call    func(*Client) error
		want    error
	}{
		{
			name:    "insufficient funds on buy",
			message: "INSUFFICIENT_FUNDS",
			call: func(c *Client) error {
				_, err := c.BuyLimit(context.Background(), "BTC-LTC", decimal.New(1, 0), decimal.New(1, 0))
				return err
			},
			want: core.ErrInsufficientAsset,
		},
		{
			name:    "unknown rejection on sell",
			message: "DUST_TRADE_DISALLOWED",
			call: func(c *Client) error {
				_, err := c.SellLimit(context.Background(), "BTC-LTC", decimal.New(1, 0), decimal.New(1, 0))
				return err
			},
			want: core.ErrOrderRejected,
		},
		{
			name:    "cancel missing order",
			message: "UUID_INVALID",
			call: func(c *Client) error {
				return c.Cancel(context.Background(), "nope")
			},
			want: core.ErrOrderNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"message":"` + tc.message + `","result":null}`))
			})
			err := tc.call(client)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("error = %v, want wrapped APIError", err)
			}
			if apiErr.Msg != tc.message {
				t.Fatalf("APIError.Msg = %q, want %q", apiErr.Msg, tc.message)
			}
		})
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	_, err := client.Balances(context.Background())
	if err == nil {
		t.Fatalf("Balances() error = nil, want transport error")
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatalf("transport failure classified as APIError: %v", err)
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error = %v, want http status mentioned", err)
	}
}

func TestMarketHistoryAndTicker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/getmarkethistory":
			if r.URL.Query().Get("count") != "100" {
				t.Errorf("count = %q, want 100", r.URL.Query().Get("count"))
			}
			_, _ = w.Write([]byte(`{"success":true,"message":"","result":[
				{"TimeStamp":"2017-08-14T11:45:13.37","Quantity":5.2}
			]}`))
		case "/public/getticker":
			_, _ = w.Write([]byte(`{"success":true,"message":"","result":{"Last":0.019,"Ask":0.02,"Bid":0.018}}`))
		default:
			http.NotFound(w, r)
		}
	})
	history, err := client.MarketHistory(context.Background(), "BTC-LTC", 100)
	if err != nil {
		t.Fatalf("MarketHistory() error = %v", err)
	}
	if len(history) != 1 || history[0].Timestamp != "2017-08-14T11:45:13.37" || history[0].Quantity != 5.2 {
		t.Fatalf("MarketHistory() = %+v", history)
	}

	quote, err := client.Ticker(context.Background(), "BTC-LTC")
	if err != nil {
		t.Fatalf("Ticker() error = %v", err)
	}
	if !quote.Last.Equal(decimal.RequireFromString("0.019")) {
		t.Fatalf("quote.Last = %s, want 0.019", quote.Last)
	}
}

func TestOpenOrdersParsing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":[
			{"OrderUuid":"8925d746-bc9f-4684-b1aa-e507467aaa99","Exchange":"BTC-LTC","OrderType":"LIMIT_SELL","Quantity":2,"QuantityRemaining":1.5,"Limit":0.02}
		]}`))
	})
	orders, err := client.OpenOrders(context.Background(), "BTC-LTC")
	if err != nil {
		t.Fatalf("OpenOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("OpenOrders() len = %d, want 1", len(orders))
	}
	ord := orders[0]
	if ord.UUID != "8925d746-bc9f-4684-b1aa-e507467aaa99" || ord.Market != "BTC-LTC" || ord.Type != "LIMIT_SELL" {
		t.Fatalf("order = %+v, fields not mapped", ord)
	}
	if !ord.QuantityRemaining.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("QuantityRemaining = %s, want 1.5", ord.QuantityRemaining)
	}
}

func TestMarketSummaries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"","result":[
			{"MarketName":"BTC-LTC"},{"MarketName":"USDT-BTC"}
		]}`))
	})
	summaries, err := client.MarketSummaries(context.Background())
	if err != nil {
		t.Fatalf("MarketSummaries() error = %v", err)
	}
	if len(summaries) != 2 || summaries[0].Name != "BTC-LTC" {
		t.Fatalf("MarketSummaries() = %+v", summaries)
	}
}
