package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price snapshot for a ticker.
type Quote struct {
	Symbol             Ticker
	CurrentPrice       decimal.Decimal
	DailyPriceChange   decimal.Decimal
	DailyPercentChange decimal.Decimal // scaled to 2 digits
}

// NewQuote builds a validated Quote. A non-positive price is rejected
// with ErrMalformedQuote so no financial figure is derived from it.
func NewQuote(symbol Ticker, price, change, changePercent decimal.Decimal) (Quote, error) {
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: %s price %s is not positive", ErrMalformedQuote, symbol, price)
	}
	return Quote{
		Symbol:             symbol,
		CurrentPrice:       price,
		DailyPriceChange:   change,
		DailyPercentChange: RoundMoney(changePercent),
	}, nil
}
