package bittrex

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// apiResponse is the envelope every Bittrex endpoint answers with.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type marketSummaryResponse struct {
	MarketName string `json:"MarketName"`
}

type tickResponse struct {
	T  string  `json:"T"`
	H  float64 `json:"H"`
	L  float64 `json:"L"`
	O  float64 `json:"O"`
	C  float64 `json:"C"`
	V  float64 `json:"V"`
	BV float64 `json:"BV"`
}

type balanceResponse struct {
	Currency  string          `json:"Currency"`
	Balance   decimal.Decimal `json:"Balance"`
	Available decimal.Decimal `json:"Available"`
	Pending   decimal.Decimal `json:"Pending"`
}

type tickerResponse struct {
	Last decimal.Decimal `json:"Last"`
	Ask  decimal.Decimal `json:"Ask"`
	Bid  decimal.Decimal `json:"Bid"`
}

type marketHistoryResponse struct {
	TimeStamp string  `json:"TimeStamp"`
	Quantity  float64 `json:"Quantity"`
}

type orderResponse struct {
	UUID string `json:"uuid"`
}

type openOrderResponse struct {
	OrderUUID         string          `json:"OrderUuid"`
	Exchange          string          `json:"Exchange"`
	OrderType         string          `json:"OrderType"`
	Quantity          decimal.Decimal `json:"Quantity"`
	QuantityRemaining decimal.Decimal `json:"QuantityRemaining"`
	Limit             decimal.Decimal `json:"Limit"`
}
