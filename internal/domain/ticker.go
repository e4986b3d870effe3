package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// tickerRegex matches B3 instrument symbols: four letters, a one or two
// digit series and an optional F for the fractional market.
var tickerRegex = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}F?$`)

// Ticker identifies a tradable instrument.
type Ticker string

// ParseTicker normalizes s to upper case and validates it.
func ParseTicker(s string) (Ticker, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if !tickerRegex.MatchString(t) {
		return "", &ValidationError{
			Message: fmt.Sprintf("ticker must match %s, got %q", tickerRegex.String(), s),
		}
	}
	return Ticker(t), nil
}

func (t Ticker) String() string {
	return string(t)
}

// AssetClass classifies an instrument.
type AssetClass string

// Supported asset classes.
const (
	AssetClassEquity AssetClass = "equity"
	AssetClassFund   AssetClass = "fund"
	AssetClassETF    AssetClass = "etf"
	AssetClassBDR    AssetClass = "bdr"
)

// ParseAssetClass validates s against the supported asset classes.
func ParseAssetClass(s string) (AssetClass, error) {
	switch c := AssetClass(strings.ToLower(strings.TrimSpace(s))); c {
	case AssetClassEquity, AssetClassFund, AssetClassETF, AssetClassBDR:
		return c, nil
	}
	return "", &ValidationError{
		Message: fmt.Sprintf("Unknown asset_class: %s. Must be one of: equity, fund, etf, bdr", s),
	}
}
