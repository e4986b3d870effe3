package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPortfolio_ZeroBalances(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)

	assert.True(t, p.CashBalance.IsZero())
	assert.True(t, p.InvestedValue.IsZero())
	assert.True(t, p.RealizedProfitLoss.IsZero())
	assert.True(t, p.TotalValue.IsZero())
	assert.Equal(t, 0, p.PositionCount())
	require.NoError(t, p.CheckInvariants())
}

func TestPortfolio_DepositWithdraw(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)

	p.Deposit(dec("1000.00"), testNow)
	assertDec(t, "1000.00", p.TotalValue, "TotalValue")

	err := p.Withdraw(dec("1000.01"), testNow)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assertDec(t, "1000.00", p.CashBalance, "CashBalance")

	require.NoError(t, p.Withdraw(dec("250.50"), testNow))
	assertDec(t, "749.50", p.CashBalance, "CashBalance")
	assertDec(t, "749.50", p.TotalValue, "TotalValue")
	require.NoError(t, p.CheckInvariants())
}

func TestPortfolio_SettlePurchaseAndSale(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)
	p.Deposit(dec("5000.00"), testNow)

	require.NoError(t, p.SettlePurchase(dec("1000.00"), testNow))
	assertDec(t, "4000.00", p.CashBalance, "CashBalance")
	assertDec(t, "1000.00", p.InvestedValue, "InvestedValue")
	assertDec(t, "5000.00", p.TotalValue, "TotalValue")

	p.SettleSale(Sale{
		SaleAmount:         dec("1500.00"),
		TotalCostBasis:     dec("1000.00"),
		RealizedProfitLoss: dec("500.00"),
	}, testNow)
	assertDec(t, "5500.00", p.CashBalance, "CashBalance")
	assert.True(t, p.InvestedValue.IsZero())
	assertDec(t, "500.00", p.RealizedProfitLoss, "RealizedProfitLoss")
	assertDec(t, "5500.00", p.TotalValue, "TotalValue")

	require.ErrorIs(t, p.SettlePurchase(dec("9999.00"), testNow), ErrInsufficientBalance)
}

func TestPortfolio_PositionsOrderedAndClosedRemoved(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)
	for _, tk := range []Ticker{"VALE3", "BBAS3", "PETR4"} {
		pos, err := NewPosition(tk, AssetClassEquity, 1, dec("10.00"), quote(t, tk, "10.00", "0", "0"), testNow)
		require.NoError(t, err)
		p.PutPosition(pos)
	}

	got := p.Positions()
	require.Len(t, got, 3)
	assert.Equal(t, Ticker("BBAS3"), got[0].Ticker)
	assert.Equal(t, Ticker("PETR4"), got[1].Ticker)
	assert.Equal(t, Ticker("VALE3"), got[2].Ticker)

	pos, ok := p.Position("PETR4")
	require.True(t, ok)
	_, err := pos.ApplySell(1, dec("10.00"), quote(t, "PETR4", "10.00", "0", "0"), testNow)
	require.NoError(t, err)
	p.PutPosition(pos)

	_, ok = p.Position("PETR4")
	assert.False(t, ok, "closed position must leave the active set")
	assert.Equal(t, 2, p.PositionCount())
}

func TestPortfolio_CloneIsIndependent(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)
	p.Deposit(dec("100.00"), testNow)
	pos, err := NewPosition("PETR4", AssetClassEquity, 2, dec("10.00"), quote(t, "PETR4", "10.00", "0", "0"), testNow)
	require.NoError(t, err)
	p.PutPosition(pos)

	c := p.Clone()
	c.Deposit(dec("50.00"), testNow)
	cpos, _ := c.Position("PETR4")
	require.NoError(t, cpos.ApplyBuy(3, dec("10.00"), quote(t, "PETR4", "10.00", "0", "0"), testNow))

	assertDec(t, "100.00", p.CashBalance, "original CashBalance")
	orig, _ := p.Position("PETR4")
	assert.Equal(t, int64(2), orig.Quantity)
}

func TestPortfolio_CheckInvariantsDetectsTotalMismatch(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)
	p.Deposit(dec("100.00"), testNow)
	p.TotalValue = dec("99.00")

	require.ErrorIs(t, p.CheckInvariants(), ErrArithmeticInvariantViolation)
}

func TestNewSnapshot_CopiesPositions(t *testing.T) {
	p := NewPortfolio("p-1", "c-1", testNow)
	pos, err := NewPosition("PETR4", AssetClassEquity, 2, dec("10.00"), quote(t, "PETR4", "10.00", "0", "0"), testNow)
	require.NoError(t, err)
	p.PutPosition(pos)

	s := NewSnapshot(p, ClientSummary{ID: "c-1", Name: "Ana"})
	require.Len(t, s.Positions, 1)
	s.Positions[0].Quantity = 99

	orig, _ := p.Position("PETR4")
	assert.Equal(t, int64(2), orig.Quantity)
	assert.Equal(t, "Ana", s.Client.Name)
}
