package bittrex

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"mosquito/internal/config"
	"mosquito/internal/core"
)

const defaultBaseURL = "https://bittrex.com/api/v1.1"

// Client talks to the Bittrex REST API. Every method is a single blocking
// round trip; signed endpoints carry an apikey/nonce query pair and an
// HMAC-SHA512 apisign header over the full request URL.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	nonce      int64
}

type Options struct {
	APIKey         string
	APISecret      string
	RestBaseURL    string
	HTTPTimeoutSec int64
}

func NewClient(cfg config.ExchangeConfig) *Client {
	return NewClientWithOptions(Options{
		APIKey:         cfg.APIKey,
		APISecret:      cfg.Secret,
		RestBaseURL:    cfg.RestBaseURL,
		HTTPTimeoutSec: cfg.HTTPTimeoutSec,
	})
}

func NewClientWithOptions(opts Options) *Client {
	timeout := 15 * time.Second
	if opts.HTTPTimeoutSec > 0 {
		timeout = time.Duration(opts.HTTPTimeoutSec) * time.Second
	}
	baseURL := strings.TrimRight(opts.RestBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		nonce:      time.Now().UnixNano(),
	}
}

func (c *Client) Name() string { return "bittrex" }

func (c *Client) MarketSummaries(ctx context.Context) ([]core.MarketSummary, error) {
	result, err := c.doRequest(ctx, "/public/getmarketsummaries", url.Values{}, false, nil)
	if err != nil {
		return nil, err
	}
	var resp []marketSummaryResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("decode market summaries: %w", err)
	}
	summaries := make([]core.MarketSummary, 0, len(resp))
	for _, m := range resp {
		summaries = append(summaries, core.MarketSummary{Name: m.MarketName})
	}
	return summaries, nil
}

func (c *Client) Ticks(ctx context.Context, market, interval string) ([]core.RawTick, error) {
	params := url.Values{}
	params.Set("marketName", market)
	params.Set("tickInterval", interval)
	result, err := c.doRequest(ctx, "/public/getticks", params, false, nil)
	if err != nil {
		return nil, err
	}
	var resp []tickResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("decode ticks: %w", err)
	}
	ticks := make([]core.RawTick, 0, len(resp))
	for _, t := range resp {
		epoch, err := parseTickTime(t.T)
		if err != nil {
			return nil, fmt.Errorf("decode tick time %q: %w", t.T, err)
		}
		ticks = append(ticks, core.RawTick{
			High:        t.H,
			Low:         t.L,
			Open:        t.O,
			Close:       t.C,
			Volume:      t.V,
			QuoteVolume: t.BV,
			Timestamp:   epoch,
		})
	}
	return ticks, nil
}

func (c *Client) Balances(ctx context.Context) (core.Balances, error) {
	result, err := c.doRequest(ctx, "/account/getbalances", url.Values{}, true, nil)
	if err != nil {
		return nil, err
	}
	var resp []balanceResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("decode balances: %w", err)
	}
	balances := make(core.Balances, len(resp))
	for _, b := range resp {
		balances[b.Currency] = b.Available
	}
	return balances, nil
}

func (c *Client) Ticker(ctx context.Context, market string) (core.Quote, error) {
	params := url.Values{}
	params.Set("market", market)
	result, err := c.doRequest(ctx, "/public/getticker", params, false, nil)
	if err != nil {
		return core.Quote{}, err
	}
	var resp tickerResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return core.Quote{}, fmt.Errorf("decode ticker: %w", err)
	}
	return core.Quote{Last: resp.Last, Ask: resp.Ask, Bid: resp.Bid}, nil
}

func (c *Client) MarketHistory(ctx context.Context, market string, limit int) ([]core.TradeRecord, error) {
	params := url.Values{}
	params.Set("market", market)
	if limit > 0 {
		params.Set("count", strconv.Itoa(limit))
	}
	result, err := c.doRequest(ctx, "/public/getmarkethistory", params, false, nil)
	if err != nil {
		return nil, err
	}
	var resp []marketHistoryResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("decode market history: %w", err)
	}
	records := make([]core.TradeRecord, 0, len(resp))
	for _, h := range resp {
		records = append(records, core.TradeRecord{
			Timestamp: h.TimeStamp,
			Quantity:  h.Quantity,
		})
	}
	return records, nil
}

func (c *Client) BuyLimit(ctx context.Context, market string, amount, rate decimal.Decimal) (string, error) {
	return c.placeLimit(ctx, "/market/buylimit", market, amount, rate)
}

func (c *Client) SellLimit(ctx context.Context, market string, amount, rate decimal.Decimal) (string, error) {
	return c.placeLimit(ctx, "/market/selllimit", market, amount, rate)
}

func (c *Client) placeLimit(ctx context.Context, path, market string, amount, rate decimal.Decimal) (string, error) {
	params := url.Values{}
	params.Set("market", market)
	params.Set("quantity", amount.String())
	params.Set("rate", rate.String())
	result, err := c.doRequest(ctx, path, params, true, core.ErrOrderRejected)
	if err != nil {
		return "", err
	}
	var resp orderResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return "", fmt.Errorf("decode order result: %w", err)
	}
	if resp.UUID == "" {
		return "", fmt.Errorf("order result missing uuid")
	}
	return resp.UUID, nil
}

func (c *Client) Cancel(ctx context.Context, orderID string) error {
	params := url.Values{}
	params.Set("uuid", orderID)
	_, err := c.doRequest(ctx, "/market/cancel", params, true, core.ErrOrderNotFound)
	return err
}

func (c *Client) OpenOrders(ctx context.Context, market string) ([]core.OpenOrder, error) {
	params := url.Values{}
	if market != "" {
		params.Set("market", market)
	}
	result, err := c.doRequest(ctx, "/market/getopenorders", params, true, nil)
	if err != nil {
		return nil, err
	}
	var resp []openOrderResponse
	if err := json.Unmarshal(result, &resp); err != nil {
		return nil, fmt.Errorf("decode open orders: %w", err)
	}
	orders := make([]core.OpenOrder, 0, len(resp))
	for _, ord := range resp {
		orders = append(orders, core.OpenOrder{
			UUID:              ord.OrderUUID,
			Market:            ord.Exchange,
			Type:              ord.OrderType,
			Quantity:          ord.Quantity,
			QuantityRemaining: ord.QuantityRemaining,
			Limit:             ord.Limit,
		})
	}
	return orders, nil
}

// doRequest performs one GET round trip and unwraps the {success, message,
// result} envelope. A success=false envelope is classified against the typed
// error taxonomy with fallback as the default kind; transport and decoding
// failures are returned as-is.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, signed bool, fallback error) (json.RawMessage, error) {
	if signed {
		params.Set("apikey", c.apiKey)
		params.Set("nonce", strconv.FormatInt(atomic.AddInt64(&c.nonce, 1), 10))
	}
	urlStr := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		urlStr += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	if signed {
		req.Header.Set("apisign", sign(c.apiSecret, urlStr))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("bittrex http error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if !envelope.Success {
		return nil, wrapAPIError(envelope.Message, fallback)
	}
	return envelope.Result, nil
}

func sign(secret, payload string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseTickTime(value string) (int64, error) {
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, time.UTC)
	if err != nil {
		return 0, err
	}
	return ts.Unix(), nil
}
