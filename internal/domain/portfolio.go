package domain

import (
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// positionLess orders positions by ticker so snapshots list them in a
// stable order.
func positionLess(a, b *Position) bool {
	return a.Ticker < b.Ticker
}

// Portfolio is a client's investment account ("carteira"): cash, open
// positions keyed by ticker and running totals.
//
// A Portfolio is not safe for concurrent use. Stores hand out copies and
// the ledger serializes mutations per portfolio ID.
type Portfolio struct {
	ID                 string
	ClientID           string
	CashBalance        decimal.Decimal
	InvestedValue      decimal.Decimal
	RealizedProfitLoss decimal.Decimal
	TotalValue         decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time

	positions *btree.BTreeG[*Position]
}

// NewPortfolio creates an empty portfolio with zero balances.
func NewPortfolio(id, clientID string, now time.Time) *Portfolio {
	const degree = 8
	return &Portfolio{
		ID:                 id,
		ClientID:           clientID,
		CashBalance:        decimal.Zero,
		InvestedValue:      decimal.Zero,
		RealizedProfitLoss: decimal.Zero,
		TotalValue:         decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
		positions:          btree.NewG[*Position](degree, positionLess),
	}
}

// Position returns the open position for ticker, if any.
func (p *Portfolio) Position(ticker Ticker) (*Position, bool) {
	return p.positions.Get(&Position{Ticker: ticker})
}

// PutPosition inserts or replaces the position for pos.Ticker. A closed
// position is removed instead of stored.
func (p *Portfolio) PutPosition(pos *Position) {
	if pos.Closed() {
		p.positions.Delete(pos)
		return
	}
	p.positions.ReplaceOrInsert(pos)
}

// Positions returns the open positions ordered by ticker.
func (p *Portfolio) Positions() []*Position {
	out := make([]*Position, 0, p.positions.Len())
	p.positions.Ascend(func(pos *Position) bool {
		out = append(out, pos)
		return true
	})
	return out
}

// PositionCount returns the number of open positions.
func (p *Portfolio) PositionCount() int {
	return p.positions.Len()
}

// Deposit adds amount to the cash balance.
func (p *Portfolio) Deposit(amount decimal.Decimal, now time.Time) {
	p.CashBalance = p.CashBalance.Add(amount)
	p.touch(now)
}

// Withdraw removes amount from the cash balance. It fails with
// ErrInsufficientBalance, leaving the balance unchanged, when amount
// exceeds the available cash.
func (p *Portfolio) Withdraw(amount decimal.Decimal, now time.Time) error {
	if err := p.ensureCash(amount); err != nil {
		return err
	}
	p.CashBalance = p.CashBalance.Sub(amount)
	p.touch(now)
	return nil
}

// CanAfford returns ErrInsufficientBalance when cost exceeds the cash
// balance.
func (p *Portfolio) CanAfford(cost decimal.Decimal) error {
	return p.ensureCash(cost)
}

// SettlePurchase moves cost from cash into invested value.
func (p *Portfolio) SettlePurchase(cost decimal.Decimal, now time.Time) error {
	if err := p.ensureCash(cost); err != nil {
		return err
	}
	p.CashBalance = p.CashBalance.Sub(cost)
	p.InvestedValue = p.InvestedValue.Add(cost)
	p.touch(now)
	return nil
}

// SettleSale releases the sale's cost basis from invested value, credits
// the proceeds to cash and accumulates the realized result.
func (p *Portfolio) SettleSale(s Sale, now time.Time) {
	p.InvestedValue = p.InvestedValue.Sub(s.TotalCostBasis)
	p.CashBalance = p.CashBalance.Add(s.SaleAmount)
	p.RealizedProfitLoss = p.RealizedProfitLoss.Add(s.RealizedProfitLoss)
	p.touch(now)
}

func (p *Portfolio) ensureCash(amount decimal.Decimal) error {
	if amount.GreaterThan(p.CashBalance) {
		return fmt.Errorf("%w: need %s, have %s",
			ErrInsufficientBalance, amount.StringFixed(MoneyScale), p.CashBalance.StringFixed(MoneyScale))
	}
	return nil
}

func (p *Portfolio) touch(now time.Time) {
	p.TotalValue = p.CashBalance.Add(p.InvestedValue)
	p.UpdatedAt = now
}

// CheckInvariants verifies the portfolio totals and every open position.
func (p *Portfolio) CheckInvariants() error {
	if p.CashBalance.IsNegative() {
		return fmt.Errorf("%w: cash balance %s is negative", ErrArithmeticInvariantViolation, p.CashBalance)
	}
	if !WithinTolerance(p.TotalValue, p.CashBalance.Add(p.InvestedValue), Cent) {
		return fmt.Errorf("%w: total value %s != cash %s + invested %s",
			ErrArithmeticInvariantViolation, p.TotalValue, p.CashBalance, p.InvestedValue)
	}
	var err error
	p.positions.Ascend(func(pos *Position) bool {
		if pos.Closed() {
			err = fmt.Errorf("%w: closed position %s kept in active set", ErrArithmeticInvariantViolation, pos.Ticker)
			return false
		}
		err = pos.CheckInvariants()
		return err == nil
	})
	return err
}

// Clone returns a deep copy of p; mutating the copy or its positions
// never affects p.
func (p *Portfolio) Clone() *Portfolio {
	c := *p
	c.positions = btree.NewG[*Position](8, positionLess)
	p.positions.Ascend(func(pos *Position) bool {
		c.positions.ReplaceOrInsert(pos.Clone())
		return true
	})
	return &c
}
