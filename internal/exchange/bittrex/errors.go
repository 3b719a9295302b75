package bittrex

import (
	"errors"
	"strings"

	"mosquito/internal/core"
)

// APIError carries the message of a success=false envelope.
type APIError struct {
	Msg string
}

func (e APIError) Error() string {
	return "bittrex api error: " + e.Msg
}

var apiErrorMessageKinds = map[string]error{
	"INSUFFICIENT_FUNDS":            core.ErrInsufficientAsset,
	"MIN_TRADE_REQUIREMENT_NOT_MET": core.ErrOrderRejected,
	"QUANTITY_NOT_PROVIDED":         core.ErrOrderRejected,
	"RATE_NOT_PROVIDED":             core.ErrOrderRejected,
	"INVALID_MARKET":                core.ErrOrderRejected,
	"UUID_INVALID":                  core.ErrOrderNotFound,
	"ORDER_NOT_OPEN":                core.ErrOrderNotFound,
}

// wrapAPIError joins the raw envelope message with its typed kind. Messages
// with no known kind fall back to the per-endpoint default; nil fallback
// leaves the APIError bare.
func wrapAPIError(msg string, fallback error) error {
	apiErr := APIError{Msg: msg}
	kind, ok := apiErrorMessageKinds[normalizeAPIErrorMsg(msg)]
	if !ok {
		kind = fallback
	}
	if kind == nil {
		return apiErr
	}
	return errors.Join(apiErr, kind)
}

func normalizeAPIErrorMsg(msg string) string {
	return strings.ToUpper(strings.TrimSpace(msg))
}

func AsAPIError(err error) (APIError, bool) {
	var apiErr APIError
	if err == nil || !errors.As(err, &apiErr) {
		return APIError{}, false
	}
	return apiErr, true
}
