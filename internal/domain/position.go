package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Position is one ticker's holding within a portfolio.
//
// Quantity, AverageCost and TotalInvested form the cost basis; the
// remaining fields are live values refreshed from a Quote on every
// read and write.
type Position struct {
	Ticker        Ticker
	AssetClass    AssetClass
	Quantity      int64
	AverageCost   decimal.Decimal
	TotalInvested decimal.Decimal

	CurrentPrice       decimal.Decimal
	DailyPriceChange   decimal.Decimal
	DailyPercentChange decimal.Decimal
	CurrentValue       decimal.Decimal
	TotalGainLoss      decimal.Decimal
	GainLossPercent    decimal.Decimal
	DailyGainLoss      decimal.Decimal

	OpenedAt  time.Time
	UpdatedAt time.Time
}

// Sale holds the figures of one executed sell, taken against the
// position's average cost at the moment of the sale.
type Sale struct {
	Quantity           int64
	SalePrice          decimal.Decimal
	SaleAmount         decimal.Decimal // SalePrice * Quantity
	CostBasisAtSale    decimal.Decimal // average cost per unit
	TotalCostBasis     decimal.Decimal // CostBasisAtSale * Quantity; the remaining TotalInvested on a closing sale
	RealizedProfitLoss decimal.Decimal // SaleAmount - TotalCostBasis
}

// NewPosition opens a position from a first buy: the unit price becomes
// the average cost, then live fields are filled from q.
func NewPosition(ticker Ticker, class AssetClass, quantity int64, unitPrice decimal.Decimal, q Quote, now time.Time) (*Position, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Message: "quantity must be a positive integer"}
	}
	p := &Position{
		Ticker:        ticker,
		AssetClass:    class,
		Quantity:      quantity,
		AverageCost:   RoundMoney(unitPrice),
		TotalInvested: Amount(unitPrice, quantity),
		OpenedAt:      now,
	}
	p.Refresh(q, now)
	return p, nil
}

// ApplyBuy adds quantity units bought at unitPrice and recomputes the
// weighted-average cost.
func (p *Position) ApplyBuy(quantity int64, unitPrice decimal.Decimal, q Quote, now time.Time) error {
	if quantity <= 0 {
		return &ValidationError{Message: "quantity must be a positive integer"}
	}
	p.Quantity += quantity
	p.TotalInvested = p.TotalInvested.Add(Amount(unitPrice, quantity))
	p.AverageCost = DivMoney(p.TotalInvested, decimal.NewFromInt(p.Quantity))
	p.Refresh(q, now)
	return nil
}

// ApplySell removes quantity units sold at salePrice. The average cost
// is unchanged; the invested total is recomputed from it. A sale that
// closes the position releases exactly the remaining invested total, so
// no rounding residual from the average survives the position. The
// position is left untouched when quantity exceeds the held quantity.
func (p *Position) ApplySell(quantity int64, salePrice decimal.Decimal, q Quote, now time.Time) (Sale, error) {
	if quantity <= 0 {
		return Sale{}, &ValidationError{Message: "quantity must be a positive integer"}
	}
	if quantity > p.Quantity {
		return Sale{}, fmt.Errorf("%w: selling %d %s, holding %d",
			ErrInsufficientQuantity, quantity, p.Ticker, p.Quantity)
	}

	saleAmount := Amount(salePrice, quantity)
	costBasis := Amount(p.AverageCost, quantity)
	if quantity == p.Quantity {
		costBasis = p.TotalInvested
	}
	sale := Sale{
		Quantity:           quantity,
		SalePrice:          salePrice,
		SaleAmount:         saleAmount,
		CostBasisAtSale:    p.AverageCost,
		TotalCostBasis:     costBasis,
		RealizedProfitLoss: saleAmount.Sub(costBasis),
	}

	p.Quantity -= quantity
	p.TotalInvested = Amount(p.AverageCost, p.Quantity)
	p.Refresh(q, now)
	return sale, nil
}

// Refresh recomputes the live fields from q.
func (p *Position) Refresh(q Quote, now time.Time) {
	qty := decimal.NewFromInt(p.Quantity)

	p.CurrentPrice = q.CurrentPrice
	p.DailyPriceChange = q.DailyPriceChange
	p.DailyPercentChange = RoundMoney(q.DailyPercentChange)
	p.CurrentValue = RoundMoney(q.CurrentPrice.Mul(qty))
	p.TotalGainLoss = p.CurrentValue.Sub(p.TotalInvested)
	p.DailyGainLoss = RoundMoney(q.DailyPriceChange.Mul(qty))
	p.GainLossPercent = PercentChange(p.CurrentValue, p.TotalInvested)
	p.UpdatedAt = now
}

// Closed reports whether the position no longer holds any units.
func (p *Position) Closed() bool {
	return p.Quantity == 0
}

// CheckInvariants verifies the quantity is non-negative and that the
// invested total matches quantity * average cost within the rounding
// carried by the average (half a cent per unit).
func (p *Position) CheckInvariants() error {
	if p.Quantity < 0 {
		return fmt.Errorf("%w: %s quantity %d is negative", ErrArithmeticInvariantViolation, p.Ticker, p.Quantity)
	}
	tol := Cent.Div(decimal.NewFromInt(2)).Mul(decimal.NewFromInt(p.Quantity))
	if !WithinTolerance(p.TotalInvested, Amount(p.AverageCost, p.Quantity), tol) {
		return fmt.Errorf("%w: %s total invested %s does not match %d x %s",
			ErrArithmeticInvariantViolation, p.Ticker, p.TotalInvested, p.Quantity, p.AverageCost)
	}
	return nil
}

// Clone returns an independent copy of p.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}
