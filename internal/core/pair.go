package core

import "strings"

// PairDelimiter joins base and quote in the internal pair naming. Exchange
// wire names use their own delimiter; translation happens at every boundary
// call.
const PairDelimiter = "_"

// SplitPair decomposes an internal BASE_QUOTE pair name.
func SplitPair(pair string) (base, quote string, ok bool) {
	parts := strings.SplitN(pair, PairDelimiter, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// WirePair converts an internal pair name to the exchange's wire naming.
func WirePair(pair, delimiter string) string {
	return strings.ReplaceAll(pair, PairDelimiter, delimiter)
}

// InternalPair converts an exchange wire market name to the internal naming.
func InternalPair(market, delimiter string) string {
	return strings.ReplaceAll(market, delimiter, PairDelimiter)
}
